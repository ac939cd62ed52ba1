package protocol

import "github.com/go-gl/mathgl/mgl64"

// AreaSnapshot 区域完整状态：LoadArea 的载荷，也是存档文档的格式
type AreaSnapshot struct {
	ID      AreaID        `msgpack:"id" json:"id"`
	Width   float64       `msgpack:"w" json:"width"`
	Height  float64       `msgpack:"h" json:"height"`
	Walls   []WallState   `msgpack:"walls" json:"walls"`
	Props   []PropState   `msgpack:"props" json:"props"`
	Enemies []EnemyState  `msgpack:"enemies" json:"enemies"`
	Items   []ItemState   `msgpack:"items" json:"items"`
	Players []PlayerState `msgpack:"players" json:"players,omitempty"`
}

// WallState 静态碰撞体
type WallState struct {
	Pos  mgl64.Vec2 `msgpack:"p" json:"pos"`
	Half mgl64.Vec2 `msgpack:"hf" json:"half"`
}

// PropState 道具
type PropState struct {
	ID     EntityID   `msgpack:"id" json:"id"`
	Owner  Owner      `msgpack:"o" json:"owner"`
	Pos    mgl64.Vec2 `msgpack:"p" json:"pos"`
	Vel    mgl64.Vec2 `msgpack:"v" json:"vel"`
	Half   mgl64.Vec2 `msgpack:"hf" json:"half"`
	Tether *Tether    `msgpack:"t" json:"tether,omitempty"`
}

// EnemyState 敌人
type EnemyState struct {
	ID     EntityID   `msgpack:"id" json:"id"`
	Owner  Owner      `msgpack:"o" json:"owner"`
	Pos    mgl64.Vec2 `msgpack:"p" json:"pos"`
	Vel    mgl64.Vec2 `msgpack:"v" json:"vel"`
	Health int32      `msgpack:"hp" json:"health"`
}

// ItemState 掉落物
type ItemState struct {
	ID   EntityID   `msgpack:"id" json:"id"`
	Pos  mgl64.Vec2 `msgpack:"p" json:"pos"`
	Vel  mgl64.Vec2 `msgpack:"v" json:"vel"`
	Item ItemStack  `msgpack:"it" json:"item"`
}

// PlayerState 玩家
type PlayerState struct {
	ID         EntityID    `msgpack:"id" json:"id"`
	Owner      Owner       `msgpack:"o" json:"owner"`
	Name       string      `msgpack:"n" json:"name"`
	Pos        mgl64.Vec2  `msgpack:"p" json:"pos"`
	Vel        mgl64.Vec2  `msgpack:"v" json:"vel"`
	Facing     float64     `msgpack:"f" json:"facing"`
	Health     int32       `msgpack:"hp" json:"health"`
	ActiveSlot uint8       `msgpack:"as" json:"activeSlot"`
	Inventory  []ItemStack `msgpack:"inv" json:"inventory"`
}
