package protocol

import "github.com/go-gl/mathgl/mgl64"

// Kind 包类型标签，写在每个包的信封中
type Kind uint8

const (
	KindPing Kind = iota + 1
	KindLoadArea

	KindNewPlayer
	KindRemovePlayer
	KindPlayerPos
	KindPlayerVel
	KindPlayerFacing
	KindPlayerHealth
	KindActiveSlot
	KindInventorySlot

	KindNewProp
	KindRemoveProp
	KindDissolveProp
	KindPropPos
	KindPropVel
	KindPropOwner

	KindNewEnemy
	KindRemoveEnemy
	KindEnemyPos
	KindEnemyVel
	KindEnemyHealth

	KindNewItem
	KindRemoveItem

	KindNewProjectile
)

var kindNames = map[Kind]string{
	KindPing:          "Ping",
	KindLoadArea:      "LoadArea",
	KindNewPlayer:     "NewPlayer",
	KindRemovePlayer:  "RemovePlayer",
	KindPlayerPos:     "PlayerPos",
	KindPlayerVel:     "PlayerVel",
	KindPlayerFacing:  "PlayerFacing",
	KindPlayerHealth:  "PlayerHealth",
	KindActiveSlot:    "ActiveSlot",
	KindInventorySlot: "InventorySlot",
	KindNewProp:       "NewProp",
	KindRemoveProp:    "RemoveProp",
	KindDissolveProp:  "DissolveProp",
	KindPropPos:       "PropPos",
	KindPropVel:       "PropVel",
	KindPropOwner:     "PropOwner",
	KindNewEnemy:      "NewEnemy",
	KindRemoveEnemy:   "RemoveEnemy",
	KindEnemyPos:      "EnemyPos",
	KindEnemyVel:      "EnemyVel",
	KindEnemyHealth:   "EnemyHealth",
	KindNewItem:       "NewItem",
	KindRemoveItem:    "RemoveItem",
	KindNewProjectile: "NewProjectile",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Kind(?)"
}

// Packet 一条离散的世界状态变化。包是不可变值，
// 携带目标区域与实体 ID，接收方只凭当前世界状态即可应用。
type Packet interface {
	Kind() Kind
}

// Targeted 指向某区域中某实体的包
type Targeted interface {
	Packet
	Target() (AreaID, EntityID)
}

// ItemKind 物品种类
type ItemKind uint16

const (
	ItemNone ItemKind = iota
	ItemAmmo
	ItemMedkit
	ItemScrap
)

// ItemStack 一格物品
type ItemStack struct {
	_msgpack struct{} `msgpack:",as_array"`
	Kind     ItemKind `json:"kind"`
	Count    uint16   `json:"count"`
}

// Empty 是否为空格
func (s ItemStack) Empty() bool { return s.Kind == ItemNone || s.Count == 0 }

// Ping 延迟探测，接收方原样回送
type Ping struct {
	_msgpack struct{} `msgpack:",as_array"`
	ID       uint32
}

// LoadArea 完整区域状态，加入时由服务器下发
type LoadArea struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaSnapshot
}

// NewPlayer 新玩家
type NewPlayer struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
	Owner    Owner
	Name     string
	Pos      mgl64.Vec2
	Health   int32
}

// RemovePlayer 移除玩家
type RemovePlayer struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
}

// PlayerPos 玩家位置修正
type PlayerPos struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
	Pos      mgl64.Vec2
}

// PlayerVel 玩家速度更新
type PlayerVel struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
	Vel      mgl64.Vec2
}

// PlayerFacing 玩家朝向（弧度）
type PlayerFacing struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
	Facing   float64
}

// PlayerHealth 玩家生命值
type PlayerHealth struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
	Health   int32
}

// ActiveSlot 当前选中的物品栏
type ActiveSlot struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
	Slot     uint8
}

// InventorySlot 某一格物品栏内容
type InventorySlot struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
	Slot     uint8
	Item     ItemStack
}

// NewProp 新道具。Tether 非空时道具用距离关节挂在固定锚点上。
type NewProp struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
	Owner    Owner
	Pos      mgl64.Vec2
	Vel      mgl64.Vec2
	Half     mgl64.Vec2
	Tether   *Tether
}

// Tether 道具锚点
type Tether struct {
	_msgpack struct{}   `msgpack:",as_array"`
	Anchor   mgl64.Vec2 `json:"anchor"`
	Length   float64    `json:"length"`
}

// RemoveProp 移除道具
type RemoveProp struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
}

// DissolveProp 道具碎裂特效，随后通常紧跟 RemoveProp
type DissolveProp struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
}

// PropPos 道具位置修正
type PropPos struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
	Pos      mgl64.Vec2
}

// PropVel 道具速度更新
type PropVel struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
	Vel      mgl64.Vec2
}

// PropOwner 道具权威方变更
type PropOwner struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
	Owner    Owner
}

// NewEnemy 新敌人
type NewEnemy struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
	Owner    Owner
	Pos      mgl64.Vec2
	Health   int32
}

// RemoveEnemy 移除敌人
type RemoveEnemy struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
}

// EnemyPos 敌人位置修正
type EnemyPos struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
	Pos      mgl64.Vec2
}

// EnemyVel 敌人速度更新
type EnemyVel struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
	Vel      mgl64.Vec2
}

// EnemyHealth 敌人生命值
type EnemyHealth struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
	Health   int32
}

// NewItem 掉落物
type NewItem struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
	Pos      mgl64.Vec2
	Vel      mgl64.Vec2
	Item     ItemStack
}

// RemoveItem 掉落物被拾取
type RemoveItem struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
}

// NewProjectile 发射的子弹，每个参与者本地模拟其飞行轨迹
type NewProjectile struct {
	_msgpack struct{} `msgpack:",as_array"`
	Area     AreaID
	ID       EntityID
	Owner    Owner
	Shooter  EntityID
	Pos      mgl64.Vec2
	Vel      mgl64.Vec2
	Damage   int32
}

func (Ping) Kind() Kind          { return KindPing }
func (LoadArea) Kind() Kind      { return KindLoadArea }
func (NewPlayer) Kind() Kind     { return KindNewPlayer }
func (RemovePlayer) Kind() Kind  { return KindRemovePlayer }
func (PlayerPos) Kind() Kind     { return KindPlayerPos }
func (PlayerVel) Kind() Kind     { return KindPlayerVel }
func (PlayerFacing) Kind() Kind  { return KindPlayerFacing }
func (PlayerHealth) Kind() Kind  { return KindPlayerHealth }
func (ActiveSlot) Kind() Kind    { return KindActiveSlot }
func (InventorySlot) Kind() Kind { return KindInventorySlot }
func (NewProp) Kind() Kind       { return KindNewProp }
func (RemoveProp) Kind() Kind    { return KindRemoveProp }
func (DissolveProp) Kind() Kind  { return KindDissolveProp }
func (PropPos) Kind() Kind       { return KindPropPos }
func (PropVel) Kind() Kind       { return KindPropVel }
func (PropOwner) Kind() Kind     { return KindPropOwner }
func (NewEnemy) Kind() Kind      { return KindNewEnemy }
func (RemoveEnemy) Kind() Kind   { return KindRemoveEnemy }
func (EnemyPos) Kind() Kind      { return KindEnemyPos }
func (EnemyVel) Kind() Kind      { return KindEnemyVel }
func (EnemyHealth) Kind() Kind   { return KindEnemyHealth }
func (NewItem) Kind() Kind       { return KindNewItem }
func (RemoveItem) Kind() Kind    { return KindRemoveItem }
func (NewProjectile) Kind() Kind { return KindNewProjectile }

func (p NewPlayer) Target() (AreaID, EntityID)     { return p.Area, p.ID }
func (p RemovePlayer) Target() (AreaID, EntityID)  { return p.Area, p.ID }
func (p PlayerPos) Target() (AreaID, EntityID)     { return p.Area, p.ID }
func (p PlayerVel) Target() (AreaID, EntityID)     { return p.Area, p.ID }
func (p PlayerFacing) Target() (AreaID, EntityID)  { return p.Area, p.ID }
func (p PlayerHealth) Target() (AreaID, EntityID)  { return p.Area, p.ID }
func (p ActiveSlot) Target() (AreaID, EntityID)    { return p.Area, p.ID }
func (p InventorySlot) Target() (AreaID, EntityID) { return p.Area, p.ID }
func (p NewProp) Target() (AreaID, EntityID)       { return p.Area, p.ID }
func (p RemoveProp) Target() (AreaID, EntityID)    { return p.Area, p.ID }
func (p DissolveProp) Target() (AreaID, EntityID)  { return p.Area, p.ID }
func (p PropPos) Target() (AreaID, EntityID)       { return p.Area, p.ID }
func (p PropVel) Target() (AreaID, EntityID)       { return p.Area, p.ID }
func (p PropOwner) Target() (AreaID, EntityID)     { return p.Area, p.ID }
func (p NewEnemy) Target() (AreaID, EntityID)      { return p.Area, p.ID }
func (p RemoveEnemy) Target() (AreaID, EntityID)   { return p.Area, p.ID }
func (p EnemyPos) Target() (AreaID, EntityID)      { return p.Area, p.ID }
func (p EnemyVel) Target() (AreaID, EntityID)      { return p.Area, p.ID }
func (p EnemyHealth) Target() (AreaID, EntityID)   { return p.Area, p.ID }
func (p NewItem) Target() (AreaID, EntityID)       { return p.Area, p.ID }
func (p RemoveItem) Target() (AreaID, EntityID)    { return p.Area, p.ID }
func (p NewProjectile) Target() (AreaID, EntityID) { return p.Area, p.ID }
