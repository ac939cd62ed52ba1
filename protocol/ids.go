package protocol

import (
	"encoding/binary"
	"strconv"

	uuid "github.com/satori/go.uuid"
)

// ClientID 参与者标识，由客户端在握手前生成
type ClientID uint64

// EntityID 实体标识，64 位随机值
type EntityID uint64

// AreaID 区域标识
type AreaID string

func (id ClientID) String() string { return strconv.FormatUint(uint64(id), 16) }

func (id EntityID) String() string { return strconv.FormatUint(uint64(id), 16) }

// random64 取 v4 UUID 的随机位折叠为 64 位，保证非零
func random64() uint64 {
	for {
		u := uuid.NewV4()
		v := binary.LittleEndian.Uint64(u[0:8]) ^ binary.LittleEndian.Uint64(u[8:16])
		if v != 0 {
			return v
		}
	}
}

// NewClientID 生成参与者标识
func NewClientID() ClientID { return ClientID(random64()) }

// NewEntityID 生成实体标识
func NewEntityID() EntityID { return EntityID(random64()) }
