package game

import (
	"github.com/go-gl/mathgl/mgl64"

	"arenasync/physics"
	"arenasync/protocol"
)

// Prop 可被击碎的箱子。带 Tether 时用距离关节挂在一个固定锚点上。
type Prop struct {
	ID       protocol.EntityID
	Owner    protocol.Owner
	Body     physics.BodyHandle
	Collider physics.ColliderHandle
	Half     mgl64.Vec2
	Tether   *protocol.Tether
	Despawn  bool

	anchor physics.BodyHandle
	joint  physics.JointHandle
	rep    replicated
}

func (a *Area) addProp(st protocol.PropState) *Prop {
	body := physics.NewDynamicBody(st.Pos)
	body.Velocity = st.Vel
	body.UserData = uint64(st.ID)
	bh := a.Space.AddBody(body)
	ch := a.Space.AddCollider(physics.Collider{
		Shape:        physics.Cuboid(st.Half[0], st.Half[1]),
		Restitution:  0.2,
		Tags:         []string{TagProp},
		CollidesWith: []string{TagWall, TagProp},
		UserData:     uint64(st.ID),
	}, bh)
	p := &Prop{
		ID:       st.ID,
		Owner:    st.Owner,
		Body:     bh,
		Collider: ch,
		Half:     st.Half,
	}
	if st.Tether != nil {
		t := *st.Tether
		p.Tether = &t
		p.anchor = a.Space.AddBody(physics.NewFixedBody(t.Anchor))
		p.joint = a.Space.AddJoint(physics.DistanceJoint{A: bh, B: p.anchor, Length: t.Length, Stiffness: 1})
	}
	p.rep.observe(st.Pos, st.Vel)
	a.Props = append(a.Props, p)
	return p
}

// SpawnProp 创建道具并广播
func (a *Area) SpawnProp(pos, half mgl64.Vec2, owner protocol.Owner, tether *protocol.Tether) *Prop {
	st := protocol.PropState{ID: protocol.NewEntityID(), Owner: owner, Pos: pos, Half: half, Tether: tether}
	p := a.addProp(st)
	a.send(protocol.NewProp{Area: a.ID, ID: st.ID, Owner: owner, Pos: pos, Half: half, Tether: tether})
	return p
}

func (p *Prop) state(s *physics.Space) protocol.PropState {
	b := s.Body(p.Body)
	return protocol.PropState{ID: p.ID, Owner: p.Owner, Pos: b.Position, Vel: b.Velocity, Half: p.Half, Tether: p.Tether}
}

func (p *Prop) tick(a *Area) {
	if p.Despawn || !a.authoritative(p.Owner) {
		return
	}
	b := a.Space.Body(p.Body)
	sendVel, sendPos := p.rep.diff(b.Position, b.Velocity, a.correctionEvery())
	if sendVel {
		a.send(protocol.PropVel{Area: a.ID, ID: p.ID, Vel: b.Velocity})
	}
	if sendPos {
		a.send(protocol.PropPos{Area: a.ID, ID: p.ID, Pos: b.Position})
	}
}

// Hit 被子弹击中。只有权威方会碎裂它：广播 DissolveProp 与 RemoveProp 并标记 Despawn。
func (p *Prop) Hit(a *Area) bool {
	if p.Despawn || !a.authoritative(p.Owner) {
		return false
	}
	a.send(protocol.DissolveProp{Area: a.ID, ID: p.ID})
	a.send(protocol.RemoveProp{Area: a.ID, ID: p.ID})
	a.burst(a.Space.Body(p.Body).Position)
	p.Despawn = true
	return true
}

// handOver 权威方变更，以当前状态重置复制缓存
func (p *Prop) handOver(s *physics.Space, owner protocol.Owner) {
	p.Owner = owner
	b := s.Body(p.Body)
	p.rep = replicated{}
	p.rep.observe(b.Position, b.Velocity)
}

func (p *Prop) despawned() bool { return p.Despawn }

// Release 删除刚体（级联关节）与锚点
func (p *Prop) Release(s *physics.Space) {
	s.RemoveBody(p.Body)
	if !p.anchor.IsZero() {
		s.RemoveBody(p.anchor)
	}
}
