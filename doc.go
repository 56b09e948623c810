// Package kadtable 提供 Kademlia 区域树路由表的对外入口
//
// Node 把存储、指标、探测与路由表四个内部模块装配为一个 Fx 应用，
// 负责它们的启动与关闭顺序：
//
//	storage → metrics → probe → routing/kad
//
// 停止时按相反顺序执行，路由表在存储引擎关闭前保存快照。
//
// 使用示例：
//
//	node, err := kadtable.New(
//	    kadtable.WithDataDir("./data"),
//	    kadtable.WithBucketSize(10),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := node.Start(ctx); err != nil {
//	    return err
//	}
//	defer node.Close()
//
//	node.Table().Add(info)
package kadtable
