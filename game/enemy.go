package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"arenasync/physics"
	"arenasync/protocol"
)

// Enemy 追逐最近玩家的敌人
type Enemy struct {
	ID       protocol.EntityID
	Owner    protocol.Owner
	Body     physics.BodyHandle
	Collider physics.ColliderHandle
	Health   int32
	Despawn  bool

	rep        replicated
	lastHealth int32
}

func (a *Area) addEnemy(st protocol.EnemyState) *Enemy {
	body := physics.NewDynamicBody(st.Pos)
	body.Velocity = st.Vel
	body.UserData = uint64(st.ID)
	bh := a.Space.AddBody(body)
	ch := a.Space.AddCollider(physics.Collider{
		Shape:        physics.Cuboid(EnemyHalf[0], EnemyHalf[1]),
		Tags:         []string{TagEnemy},
		CollidesWith: []string{TagWall, TagProp},
		UserData:     uint64(st.ID),
	}, bh)
	e := &Enemy{
		ID:         st.ID,
		Owner:      st.Owner,
		Body:       bh,
		Collider:   ch,
		Health:     st.Health,
		lastHealth: st.Health,
	}
	e.rep.observe(st.Pos, st.Vel)
	a.Enemies = append(a.Enemies, e)
	return e
}

// SpawnEnemy 创建一个本地拥有的敌人并广播
func (a *Area) SpawnEnemy(pos mgl64.Vec2) *Enemy {
	st := protocol.EnemyState{ID: protocol.NewEntityID(), Owner: a.local(), Pos: pos, Health: EnemyMaxHealth}
	e := a.addEnemy(st)
	a.send(protocol.NewEnemy{Area: a.ID, ID: st.ID, Owner: st.Owner, Pos: pos, Health: st.Health})
	return e
}

func (e *Enemy) state(s *physics.Space) protocol.EnemyState {
	b := s.Body(e.Body)
	return protocol.EnemyState{ID: e.ID, Owner: e.Owner, Pos: b.Position, Vel: b.Velocity, Health: e.Health}
}

// tick 权威方负责 AI：水平追向最近玩家，并与过近的兄弟敌人分开
func (e *Enemy) tick(a *Area, siblings []*Enemy) {
	if e.Despawn || !a.authoritative(e.Owner) {
		return
	}
	body := a.Space.Body(e.Body)
	pos := body.Position
	if e.Health <= 0 {
		e.die(a, pos)
		return
	}

	vel := body.Velocity
	vel[0] = 0
	if target, ok := a.nearestPlayer(pos); ok {
		if dx := target[0] - pos[0]; math.Abs(dx) > 1 {
			vel[0] = math.Copysign(EnemySpeed, dx)
		}
	}
	for _, o := range siblings {
		if o.Despawn {
			continue
		}
		d := pos.Sub(a.Space.Body(o.Body).Position)
		if d.Len() >= EnemySeparation {
			continue
		}
		push := EnemyPush
		if d[0] < 0 || (d[0] == 0 && e.ID < o.ID) {
			push = -push
		}
		vel[0] += push
	}
	a.Space.SetVelocity(e.Body, vel)

	if e.Health != e.lastHealth {
		e.lastHealth = e.Health
		a.send(protocol.EnemyHealth{Area: a.ID, ID: e.ID, Health: e.Health})
	}
	sendVel, sendPos := e.rep.diff(pos, vel, a.correctionEvery())
	if sendVel {
		a.send(protocol.EnemyVel{Area: a.ID, ID: e.ID, Vel: vel})
	}
	if sendPos {
		a.send(protocol.EnemyPos{Area: a.ID, ID: e.ID, Pos: pos})
	}
}

func (e *Enemy) damage(n int32) {
	e.Health -= n
}

// die 广播移除并掉落一个物品
func (e *Enemy) die(a *Area, at mgl64.Vec2) {
	e.Despawn = true
	a.send(protocol.RemoveEnemy{Area: a.ID, ID: e.ID})
	drop := protocol.ItemStack{Kind: protocol.ItemKind(1 + uint64(e.ID)%3), Count: 1}
	a.SpawnItem(at, mgl64.Vec2{0, 120}, drop)
	a.burst(at)
}

func (e *Enemy) despawned() bool { return e.Despawn }

// Release 删除刚体
func (e *Enemy) Release(s *physics.Space) {
	s.RemoveBody(e.Body)
}
