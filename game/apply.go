package game

import (
	"arenasync/protocol"
)

// Apply 应用一个远端的包。状态包指向不存在的区域或实体时 panic（InvariantError）；
// 移除类包的目标已经不在时忽略。
func (w *World) Apply(pkt protocol.Packet) {
	switch p := pkt.(type) {
	case protocol.Ping:
		// 由连接层回送
	case protocol.LoadArea:
		w.AddArea(NewAreaFromSnapshot(p.Area))

	case protocol.NewPlayer:
		a := w.mustArea(p.Area)
		if a.Player(p.ID) != nil {
			w.log.Debugw("duplicate player ignored", "area", p.Area, "id", p.ID)
			return
		}
		a.addPlayer(protocol.PlayerState{ID: p.ID, Owner: p.Owner, Name: p.Name, Pos: p.Pos, Health: p.Health})
	case protocol.RemovePlayer:
		if a, ok := w.areas[p.Area]; ok {
			if pl := a.Player(p.ID); pl != nil {
				pl.Despawn = true
			}
		}
	case protocol.PlayerPos:
		a, pl := w.mustPlayer(p.Area, p.ID)
		a.Space.SetPosition(pl.Body, p.Pos)
		pl.rep.lastPos = p.Pos
	case protocol.PlayerVel:
		a, pl := w.mustPlayer(p.Area, p.ID)
		a.Space.SetVelocity(pl.Body, p.Vel)
		pl.rep.lastVel = p.Vel
	case protocol.PlayerFacing:
		_, pl := w.mustPlayer(p.Area, p.ID)
		pl.Facing, pl.lastFacing = p.Facing, p.Facing
	case protocol.PlayerHealth:
		_, pl := w.mustPlayer(p.Area, p.ID)
		pl.Health, pl.lastHealth = p.Health, p.Health
	case protocol.ActiveSlot:
		_, pl := w.mustPlayer(p.Area, p.ID)
		if int(p.Slot) >= InventorySize {
			invariantf("%s: slot %d out of range", p.Area, p.Slot)
		}
		pl.ActiveSlot = p.Slot
	case protocol.InventorySlot:
		_, pl := w.mustPlayer(p.Area, p.ID)
		if int(p.Slot) >= InventorySize {
			invariantf("%s: slot %d out of range", p.Area, p.Slot)
		}
		pl.Inventory[p.Slot] = p.Item

	case protocol.NewProp:
		a := w.mustArea(p.Area)
		if a.Prop(p.ID) != nil {
			return
		}
		a.addProp(protocol.PropState{ID: p.ID, Owner: p.Owner, Pos: p.Pos, Vel: p.Vel, Half: p.Half, Tether: p.Tether})
	case protocol.RemoveProp:
		if a, ok := w.areas[p.Area]; ok {
			if pr := a.Prop(p.ID); pr != nil {
				pr.Despawn = true
			}
		}
	case protocol.DissolveProp:
		if a, ok := w.areas[p.Area]; ok {
			if pr := a.Prop(p.ID); pr != nil && !pr.Despawn {
				a.burst(a.Space.Body(pr.Body).Position)
			}
		}
	case protocol.PropPos:
		a, pr := w.mustProp(p.Area, p.ID)
		a.Space.SetPosition(pr.Body, p.Pos)
		pr.rep.lastPos = p.Pos
	case protocol.PropVel:
		a, pr := w.mustProp(p.Area, p.ID)
		a.Space.SetVelocity(pr.Body, p.Vel)
		pr.rep.lastVel = p.Vel
	case protocol.PropOwner:
		a, pr := w.mustProp(p.Area, p.ID)
		pr.handOver(a.Space, p.Owner)

	case protocol.NewEnemy:
		a := w.mustArea(p.Area)
		if a.Enemy(p.ID) != nil {
			return
		}
		a.addEnemy(protocol.EnemyState{ID: p.ID, Owner: p.Owner, Pos: p.Pos, Health: p.Health})
	case protocol.RemoveEnemy:
		if a, ok := w.areas[p.Area]; ok {
			if e := a.Enemy(p.ID); e != nil {
				e.Despawn = true
			}
		}
	case protocol.EnemyPos:
		a, e := w.mustEnemy(p.Area, p.ID)
		a.Space.SetPosition(e.Body, p.Pos)
		e.rep.lastPos = p.Pos
	case protocol.EnemyVel:
		a, e := w.mustEnemy(p.Area, p.ID)
		a.Space.SetVelocity(e.Body, p.Vel)
		e.rep.lastVel = p.Vel
	case protocol.EnemyHealth:
		_, e := w.mustEnemy(p.Area, p.ID)
		e.Health, e.lastHealth = p.Health, p.Health

	case protocol.NewItem:
		a := w.mustArea(p.Area)
		if a.Item(p.ID) != nil {
			return
		}
		a.addItem(protocol.ItemState{ID: p.ID, Pos: p.Pos, Vel: p.Vel, Item: p.Item})
	case protocol.RemoveItem:
		if a, ok := w.areas[p.Area]; ok {
			if it := a.Item(p.ID); it != nil {
				it.Despawn = true
			}
		}

	case protocol.NewProjectile:
		a := w.mustArea(p.Area)
		if a.Projectile(p.ID) != nil {
			return
		}
		a.addProjectile(p)

	default:
		invariantf("unhandled packet kind %s", pkt.Kind())
	}
}

func (w *World) mustArea(id protocol.AreaID) *Area {
	a, ok := w.areas[id]
	if !ok {
		invariantf("unknown area %q", id)
	}
	return a
}

func (w *World) mustPlayer(area protocol.AreaID, id protocol.EntityID) (*Area, *Player) {
	a := w.mustArea(area)
	p := a.Player(id)
	if p == nil {
		invariantf("%s: unknown player %s", area, id)
	}
	return a, p
}

func (w *World) mustProp(area protocol.AreaID, id protocol.EntityID) (*Area, *Prop) {
	a := w.mustArea(area)
	p := a.Prop(id)
	if p == nil {
		invariantf("%s: unknown prop %s", area, id)
	}
	return a, p
}

func (w *World) mustEnemy(area protocol.AreaID, id protocol.EntityID) (*Area, *Enemy) {
	a := w.mustArea(area)
	e := a.Enemy(id)
	if e == nil {
		invariantf("%s: unknown enemy %s", area, id)
	}
	return a, e
}
