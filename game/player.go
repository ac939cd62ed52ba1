package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"arenasync/physics"
	"arenasync/protocol"
)

// Input 玩家意图，由本地控制器写入，在下一次 Tick 中解释
type Input struct {
	// Move 水平方向 -1..1
	Move float64
	Jump bool
	Fire bool
	// Aim 瞄准方向（弧度）
	Aim float64
	// SelectSlot 1..InventorySize 切换物品栏，0 表示不切换
	SelectSlot int
	// Use 使用当前物品栏中的物品
	Use bool
}

// Player 玩家实体，由其所属参与者权威驱动
type Player struct {
	ID         protocol.EntityID
	Owner      protocol.Owner
	Name       string
	Body       physics.BodyHandle
	Collider   physics.ColliderHandle
	Facing     float64
	Health     int32
	ActiveSlot uint8
	Inventory  [InventorySize]protocol.ItemStack
	Input      Input
	Despawn    bool

	rep             replicated
	lastFacing      float64
	lastHealth      int32
	fireCooldown    float64
	contactCooldown float64
}

func (a *Area) addPlayer(st protocol.PlayerState) *Player {
	body := physics.NewDynamicBody(st.Pos)
	body.Velocity = st.Vel
	body.UserData = uint64(st.ID)
	bh := a.Space.AddBody(body)
	ch := a.Space.AddCollider(physics.Collider{
		Shape:        physics.Cuboid(PlayerHalf[0], PlayerHalf[1]),
		Tags:         []string{TagPlayer},
		CollidesWith: []string{TagWall, TagProp},
		UserData:     uint64(st.ID),
	}, bh)
	p := &Player{
		ID:         st.ID,
		Owner:      st.Owner,
		Name:       st.Name,
		Body:       bh,
		Collider:   ch,
		Facing:     st.Facing,
		Health:     st.Health,
		ActiveSlot: st.ActiveSlot,
		lastFacing: st.Facing,
		lastHealth: st.Health,
	}
	copy(p.Inventory[:], st.Inventory)
	p.rep.observe(st.Pos, st.Vel)
	a.Players = append(a.Players, p)
	return p
}

// SpawnPlayer 在出生点创建一个本地拥有的玩家并广播
func (a *Area) SpawnPlayer(name string) *Player {
	st := protocol.PlayerState{
		ID:     protocol.NewEntityID(),
		Owner:  a.local(),
		Name:   name,
		Pos:    a.Spawn,
		Health: PlayerMaxHealth,
	}
	p := a.addPlayer(st)
	a.send(protocol.NewPlayer{Area: a.ID, ID: st.ID, Owner: st.Owner, Name: st.Name, Pos: st.Pos, Health: st.Health})
	return p
}

func (p *Player) state(s *physics.Space) protocol.PlayerState {
	b := s.Body(p.Body)
	inv := make([]protocol.ItemStack, len(p.Inventory))
	copy(inv, p.Inventory[:])
	return protocol.PlayerState{
		ID:         p.ID,
		Owner:      p.Owner,
		Name:       p.Name,
		Pos:        b.Position,
		Vel:        b.Velocity,
		Facing:     p.Facing,
		Health:     p.Health,
		ActiveSlot: p.ActiveSlot,
		Inventory:  inv,
	}
}

func (p *Player) tick(a *Area, dt float64) {
	if p.Despawn || !a.authoritative(p.Owner) {
		return
	}
	p.fireCooldown = math.Max(0, p.fireCooldown-dt)
	p.contactCooldown = math.Max(0, p.contactCooldown-dt)

	in := p.Input
	body := a.Space.Body(p.Body)
	vel := body.Velocity
	vel[0] = mgl64.Clamp(in.Move, -1, 1) * PlayerSpeed
	if in.Jump && a.grounded(p.Collider) {
		vel[1] = PlayerJumpSpeed
	}
	a.Space.SetVelocity(p.Body, vel)
	p.Facing = in.Aim

	if in.SelectSlot > 0 && in.SelectSlot <= InventorySize {
		if slot := uint8(in.SelectSlot - 1); slot != p.ActiveSlot {
			p.ActiveSlot = slot
			a.send(protocol.ActiveSlot{Area: a.ID, ID: p.ID, Slot: slot})
		}
	}
	if in.Use {
		p.useActive(a, body.Position)
	}
	if in.Fire && p.fireCooldown == 0 {
		p.fire(a, body.Position)
	}
	if p.contactCooldown == 0 && len(a.Space.Intersecting(p.Collider, TagEnemy)) > 0 {
		p.damage(PlayerContactDamage)
		p.contactCooldown = ContactCooldown
	}
	if p.Health <= 0 {
		p.respawn(a)
	}
	// 单次动作只生效一次
	p.Input.Jump, p.Input.Use, p.Input.SelectSlot = false, false, 0

	if p.Facing != p.lastFacing {
		p.lastFacing = p.Facing
		a.send(protocol.PlayerFacing{Area: a.ID, ID: p.ID, Facing: p.Facing})
	}
	if p.Health != p.lastHealth {
		p.lastHealth = p.Health
		a.send(protocol.PlayerHealth{Area: a.ID, ID: p.ID, Health: p.Health})
	}
	body = a.Space.Body(p.Body)
	sendVel, sendPos := p.rep.diff(body.Position, body.Velocity, a.correctionEvery())
	if sendVel {
		a.send(protocol.PlayerVel{Area: a.ID, ID: p.ID, Vel: body.Velocity})
	}
	if sendPos {
		a.send(protocol.PlayerPos{Area: a.ID, ID: p.ID, Pos: body.Position})
	}
}

func (p *Player) damage(n int32) {
	p.Health -= n
}

// respawn 生命值归零后回到出生点，位置立即修正
func (p *Player) respawn(a *Area) {
	a.Space.SetPosition(p.Body, a.Spawn)
	a.Space.SetVelocity(p.Body, mgl64.Vec2{})
	p.Health = PlayerMaxHealth
	p.rep.lastPos = a.Spawn
	a.send(protocol.PlayerPos{Area: a.ID, ID: p.ID, Pos: a.Spawn})
}

func (p *Player) fire(a *Area, from mgl64.Vec2) {
	dir := mgl64.Vec2{math.Cos(p.Facing), math.Sin(p.Facing)}
	pkt := protocol.NewProjectile{
		Area:    a.ID,
		ID:      protocol.NewEntityID(),
		Owner:   p.Owner,
		Shooter: p.ID,
		Pos:     from.Add(dir.Mul(PlayerHalf[0] + ProjectileHalf[0] + 1)),
		Vel:     dir.Mul(ProjectileSpeed),
		Damage:  ProjectileDamage,
	}
	a.addProjectile(pkt)
	a.send(pkt)
	p.fireCooldown = PlayerFireCooldown
}

// useActive 使用当前格：医疗包回血，废料在面前放置一个自己拥有的箱子
func (p *Player) useActive(a *Area, at mgl64.Vec2) {
	slot := &p.Inventory[p.ActiveSlot]
	if slot.Empty() {
		return
	}
	switch slot.Kind {
	case protocol.ItemMedkit:
		p.Health = min(PlayerMaxHealth, p.Health+MedkitHeal)
	case protocol.ItemScrap:
		side := 1.0
		if math.Cos(p.Facing) < 0 {
			side = -1
		}
		pos := at.Add(mgl64.Vec2{side * (PlayerHalf[0] + 12), 0})
		a.SpawnProp(pos, mgl64.Vec2{8, 8}, p.Owner, nil)
	default:
		return
	}
	slot.Count--
	if slot.Count == 0 {
		*slot = protocol.ItemStack{}
	}
	a.send(protocol.InventorySlot{Area: a.ID, ID: p.ID, Slot: p.ActiveSlot, Item: *slot})
}

// pickup 放入同类且未满的格子，否则放入第一个空格
func (p *Player) pickup(stack protocol.ItemStack) (uint8, bool) {
	for i := range p.Inventory {
		s := &p.Inventory[i]
		if s.Kind == stack.Kind && !s.Empty() && int(s.Count)+int(stack.Count) <= ItemStackMax {
			s.Count += stack.Count
			return uint8(i), true
		}
	}
	for i := range p.Inventory {
		if p.Inventory[i].Empty() {
			p.Inventory[i] = stack
			return uint8(i), true
		}
	}
	return 0, false
}

func (p *Player) despawned() bool { return p.Despawn }

// Release 删除刚体（级联碰撞体）
func (p *Player) Release(s *physics.Space) {
	s.RemoveBody(p.Body)
}
