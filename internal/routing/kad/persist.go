package kad

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-kadtable/pkg/types"
)

// ============================================================================
//                              快照持久化
// ============================================================================

// 键空间（位于 Store 前缀之下）
//
//	c/<32 位十六进制 ID> → 联系人记录
//	m/saved_at          → 保存时间（Unix 秒）
var (
	contactKeyPrefix = []byte("c/")
	savedAtKey       = []byte("m/saved_at")
)

// 联系人记录字段编号
const (
	fieldID       protowire.Number = 1
	fieldIP       protowire.Number = 2
	fieldUDPPort  protowire.Number = 3
	fieldTCPPort  protowire.Number = 4
	fieldVersion  protowire.Number = 5
	fieldUDPKey   protowire.Number = 6
	fieldUDPKeyIP protowire.Number = 7
	fieldVerified protowire.Number = 8
)

func contactKey(id types.ID) []byte {
	return append(append([]byte(nil), contactKeyPrefix...), id.String()...)
}

// encodeContact 把联系人描述编码为 protobuf 线格式
//
// 只保存端点字段；状态与时间戳在重新加载时重置。
func encodeContact(info types.ContactInfo) []byte {
	b := make([]byte, 0, 48)
	b = protowire.AppendTag(b, fieldID, protowire.BytesType)
	b = protowire.AppendBytes(b, info.ID.Bytes())
	b = protowire.AppendTag(b, fieldIP, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, info.IP)
	b = protowire.AppendTag(b, fieldUDPPort, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(info.UDPPort))
	b = protowire.AppendTag(b, fieldTCPPort, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(info.TCPPort))
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(info.Version))
	if !info.UDPKey.IsZero() {
		b = protowire.AppendTag(b, fieldUDPKey, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, info.UDPKey.Key)
		b = protowire.AppendTag(b, fieldUDPKeyIP, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, info.UDPKey.IP)
	}
	if info.Verified {
		b = protowire.AppendTag(b, fieldVerified, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}
	return b
}

// decodeContact 解析联系人记录，未知字段被跳过
func decodeContact(b []byte) (types.ContactInfo, error) {
	var info types.ContactInfo
	haveID := false

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return info, fmt.Errorf("%w: %v", ErrCorruptRecord, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldID && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return info, fmt.Errorf("%w: %v", ErrCorruptRecord, protowire.ParseError(n))
			}
			id, err := types.IDFromBytes(v)
			if err != nil {
				return info, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
			}
			info.ID = id
			haveID = true
			b = b[n:]

		case typ == protowire.Fixed32Type && (num == fieldIP || num == fieldUDPKey || num == fieldUDPKeyIP):
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return info, fmt.Errorf("%w: %v", ErrCorruptRecord, protowire.ParseError(n))
			}
			switch num {
			case fieldIP:
				info.IP = v
			case fieldUDPKey:
				info.UDPKey.Key = v
			case fieldUDPKeyIP:
				info.UDPKey.IP = v
			}
			b = b[n:]

		case typ == protowire.VarintType && num >= fieldUDPPort && num <= fieldVerified:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return info, fmt.Errorf("%w: %v", ErrCorruptRecord, protowire.ParseError(n))
			}
			switch num {
			case fieldUDPPort:
				info.UDPPort = uint16(v)
			case fieldTCPPort:
				info.TCPPort = uint16(v)
			case fieldVersion:
				info.Version = uint8(v)
			case fieldVerified:
				info.Verified = protowire.DecodeBool(v)
			}
			b = b[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return info, fmt.Errorf("%w: %v", ErrCorruptRecord, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if !haveID {
		return info, fmt.Errorf("%w: missing id", ErrCorruptRecord)
	}
	return info, nil
}

// SaveSnapshot 用当前路由表内容重写快照
func (t *RoutingTable) SaveSnapshot() error {
	if t.store == nil {
		return ErrNoStore
	}

	t.mu.Lock()
	var infos []types.ContactInfo
	t.root.leaves(func(z *zone) {
		infos = append(infos, z.bucket.infos()...)
	})
	savedAt := t.clock.Now().Unix()
	t.mu.Unlock()

	if err := t.store.DeletePrefix(contactKeyPrefix); err != nil {
		return fmt.Errorf("kad: clear snapshot: %w", err)
	}

	batch := t.store.NewBatch()
	defer batch.Close()
	for _, info := range infos {
		batch.Put(contactKey(info.ID), encodeContact(info))
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("kad: write snapshot: %w", err)
	}
	if err := t.store.PutUint64(savedAtKey, uint64(savedAt)); err != nil {
		return fmt.Errorf("kad: write snapshot time: %w", err)
	}

	logger.Debug("路由表快照已保存", "contacts", len(infos))
	return nil
}

// LoadSnapshot 从快照重新加入联系人，返回被接纳的数量
//
// 记录经过与 Add 相同的准入检查；损坏的记录被跳过并删除。
func (t *RoutingTable) LoadSnapshot() (int, error) {
	if t.store == nil {
		return 0, ErrNoStore
	}

	var (
		infos   []types.ContactInfo
		corrupt [][]byte
	)
	err := t.store.PrefixScan(contactKeyPrefix, func(key, value []byte) bool {
		info, err := decodeContact(value)
		if err != nil {
			logger.Warn("跳过损坏的快照记录", "key", string(key), "error", err)
			corrupt = append(corrupt, append([]byte(nil), key...))
			return true
		}
		infos = append(infos, info)
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("kad: scan snapshot: %w", err)
	}

	for _, key := range corrupt {
		if err := t.store.Delete(key); err != nil {
			logger.Warn("删除损坏的快照记录失败", "key", string(key), "error", err)
		}
	}

	admitted := 0
	for _, info := range infos {
		if t.Add(info) {
			admitted++
		}
	}
	return admitted, nil
}
