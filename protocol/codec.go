package protocol

import (
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// envelope 批次中的一个元素：[类型, 原始载荷]
type envelope struct {
	_msgpack struct{} `msgpack:",as_array"`
	Kind     Kind
	Body     msgpack.RawMessage
}

// ErrEmptyBatch 空消息
var ErrEmptyBatch = errors.New("protocol: empty batch")

// EncodeBatch 把一组包序列化为一条传输消息，保持包顺序
func EncodeBatch(pkts []Packet) ([]byte, error) {
	envs := make([]envelope, 0, len(pkts))
	for _, p := range pkts {
		body, err := msgpack.Marshal(p)
		if err != nil {
			return nil, errors.Wrapf(err, "protocol: encode %s", p.Kind())
		}
		envs = append(envs, envelope{Kind: p.Kind(), Body: body})
	}
	b, err := msgpack.Marshal(envs)
	if err != nil {
		return nil, errors.Wrap(err, "protocol: encode batch")
	}
	return b, nil
}

// DecodeBatch 反序列化一条传输消息。任何一个包损坏都会使整批失败，
// 调用方应丢弃这批数据而不是中断进程。
func DecodeBatch(b []byte) ([]Packet, error) {
	if len(b) == 0 {
		return nil, ErrEmptyBatch
	}
	var envs []envelope
	if err := msgpack.Unmarshal(b, &envs); err != nil {
		return nil, errors.Wrap(err, "protocol: decode batch")
	}
	out := make([]Packet, 0, len(envs))
	for i, env := range envs {
		dec, ok := decoders[env.Kind]
		if !ok {
			return nil, errors.Errorf("protocol: unknown packet kind %d at index %d", env.Kind, i)
		}
		p, err := dec(env.Body)
		if err != nil {
			return nil, errors.Wrapf(err, "protocol: decode %s at index %d", env.Kind, i)
		}
		out = append(out, p)
	}
	return out, nil
}

// EncodeHandshake 握手消息：客户端连接打开后发送的第一条消息
func EncodeHandshake(id ClientID) ([]byte, error) {
	b, err := msgpack.Marshal(uint64(id))
	if err != nil {
		return nil, errors.Wrap(err, "protocol: encode handshake")
	}
	return b, nil
}

// DecodeHandshake 解析握手消息
func DecodeHandshake(b []byte) (ClientID, error) {
	if len(b) == 0 {
		return 0, ErrEmptyBatch
	}
	var v uint64
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return 0, errors.Wrap(err, "protocol: decode handshake")
	}
	if v == 0 {
		return 0, errors.New("protocol: zero client id in handshake")
	}
	return ClientID(v), nil
}

func decodeAs[T Packet](raw msgpack.RawMessage) (Packet, error) {
	var p T
	if err := msgpack.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p, nil
}

var decoders = map[Kind]func(msgpack.RawMessage) (Packet, error){
	KindPing:          decodeAs[Ping],
	KindLoadArea:      decodeAs[LoadArea],
	KindNewPlayer:     decodeAs[NewPlayer],
	KindRemovePlayer:  decodeAs[RemovePlayer],
	KindPlayerPos:     decodeAs[PlayerPos],
	KindPlayerVel:     decodeAs[PlayerVel],
	KindPlayerFacing:  decodeAs[PlayerFacing],
	KindPlayerHealth:  decodeAs[PlayerHealth],
	KindActiveSlot:    decodeAs[ActiveSlot],
	KindInventorySlot: decodeAs[InventorySlot],
	KindNewProp:       decodeAs[NewProp],
	KindRemoveProp:    decodeAs[RemoveProp],
	KindDissolveProp:  decodeAs[DissolveProp],
	KindPropPos:       decodeAs[PropPos],
	KindPropVel:       decodeAs[PropVel],
	KindPropOwner:     decodeAs[PropOwner],
	KindNewEnemy:      decodeAs[NewEnemy],
	KindRemoveEnemy:   decodeAs[RemoveEnemy],
	KindEnemyPos:      decodeAs[EnemyPos],
	KindEnemyVel:      decodeAs[EnemyVel],
	KindEnemyHealth:   decodeAs[EnemyHealth],
	KindNewItem:       decodeAs[NewItem],
	KindRemoveItem:    decodeAs[RemoveItem],
	KindNewProjectile: decodeAs[NewProjectile],
}
