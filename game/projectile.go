package game

import (
	"arenasync/physics"
	"arenasync/protocol"
)

// Projectile 子弹。每个参与者都本地模拟飞行与命中，
// 被命中实体的后果只由该实体的权威方结算。
type Projectile struct {
	ID       protocol.EntityID
	Owner    protocol.Owner
	Shooter  protocol.EntityID
	Body     physics.BodyHandle
	Collider physics.ColliderHandle
	Damage   int32
	Lifetime float64
	Despawn  bool

	age int
}

func (a *Area) addProjectile(pkt protocol.NewProjectile) *Projectile {
	bh := a.Space.AddBody(physics.RigidBody{
		Type:     physics.Kinematic,
		Position: pkt.Pos,
		Velocity: pkt.Vel,
		UserData: uint64(pkt.ID),
	})
	ch := a.Space.AddCollider(physics.Collider{
		Shape:    physics.Cuboid(ProjectileHalf[0], ProjectileHalf[1]),
		Sensor:   true,
		Tags:     []string{TagProjectile},
		UserData: uint64(pkt.ID),
	}, bh)
	p := &Projectile{
		ID:       pkt.ID,
		Owner:    pkt.Owner,
		Shooter:  pkt.Shooter,
		Body:     bh,
		Collider: ch,
		Damage:   pkt.Damage,
		Lifetime: ProjectileLifetime,
	}
	a.Projectiles = append(a.Projectiles, p)
	return p
}

// tick 检查命中。两颗子弹相撞时互相抵消，这需要访问兄弟集合。
func (p *Projectile) tick(a *Area, siblings []*Projectile, dt float64) {
	if p.Despawn {
		return
	}
	p.Lifetime -= dt
	if p.Lifetime <= 0 {
		p.Despawn = true
		return
	}
	p.age++
	if p.age%ProjectileTrail == 0 {
		a.addPixel(a.Space.Body(p.Body).Position, a.Space.Body(p.Body).Velocity.Mul(0.1))
	}

	for _, ch := range a.Space.Intersecting(p.Collider) {
		c := a.Space.Collider(ch)
		id := protocol.EntityID(c.UserData)
		switch {
		case c.HasTag(TagWall):
			p.Despawn = true
		case c.HasTag(TagProjectile):
			if o := findProjectile(siblings, id); o != nil && !o.Despawn {
				o.Despawn = true
				p.Despawn = true
			}
		case c.HasTag(TagProp):
			if prop := a.Prop(id); prop != nil && !prop.Despawn {
				prop.Hit(a)
				p.Despawn = true
			}
		case c.HasTag(TagEnemy):
			if e := a.Enemy(id); e != nil && !e.Despawn {
				if a.authoritative(e.Owner) {
					e.damage(p.Damage)
				}
				p.Despawn = true
			}
		case c.HasTag(TagPlayer):
			if id == p.Shooter {
				continue
			}
			if pl := a.Player(id); pl != nil && !pl.Despawn {
				if a.authoritative(pl.Owner) {
					pl.damage(p.Damage)
				}
				p.Despawn = true
			}
		}
		if p.Despawn {
			return
		}
	}
}

func findProjectile(list []*Projectile, id protocol.EntityID) *Projectile {
	for _, p := range list {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (p *Projectile) despawned() bool { return p.Despawn }

// Release 删除刚体
func (p *Projectile) Release(s *physics.Space) {
	s.RemoveBody(p.Body)
}
