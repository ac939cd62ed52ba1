package game

import (
	"github.com/go-gl/mathgl/mgl64"

	"arenasync/physics"
	"arenasync/protocol"
)

// Item 地上的掉落物，不属于任何参与者
type Item struct {
	ID       protocol.EntityID
	Body     physics.BodyHandle
	Collider physics.ColliderHandle
	Stack    protocol.ItemStack
	Despawn  bool
}

func (a *Area) addItem(st protocol.ItemState) *Item {
	body := physics.NewDynamicBody(st.Pos)
	body.Velocity = st.Vel
	body.UserData = uint64(st.ID)
	bh := a.Space.AddBody(body)
	ch := a.Space.AddCollider(physics.Collider{
		Shape:        physics.Cuboid(ItemHalf[0], ItemHalf[1]),
		Tags:         []string{TagItem},
		CollidesWith: []string{TagWall, TagProp},
		UserData:     uint64(st.ID),
	}, bh)
	it := &Item{ID: st.ID, Body: bh, Collider: ch, Stack: st.Item}
	a.Items = append(a.Items, it)
	return it
}

// SpawnItem 创建掉落物并广播
func (a *Area) SpawnItem(pos, vel mgl64.Vec2, stack protocol.ItemStack) *Item {
	st := protocol.ItemState{ID: protocol.NewEntityID(), Pos: pos, Vel: vel, Item: stack}
	it := a.addItem(st)
	a.send(protocol.NewItem{Area: a.ID, ID: st.ID, Pos: pos, Vel: vel, Item: stack})
	return it
}

func (it *Item) state(s *physics.Space) protocol.ItemState {
	b := s.Body(it.Body)
	return protocol.ItemState{ID: it.ID, Pos: b.Position, Vel: b.Velocity, Item: it.Stack}
}

// tick 被本地拥有的玩家碰到时拾取
func (it *Item) tick(a *Area) {
	if it.Despawn {
		return
	}
	for _, ch := range a.Space.Intersecting(it.Collider, TagPlayer) {
		p := a.Player(protocol.EntityID(a.Space.Collider(ch).UserData))
		if p == nil || p.Despawn || !a.authoritative(p.Owner) {
			continue
		}
		slot, ok := p.pickup(it.Stack)
		if !ok {
			continue
		}
		a.send(protocol.InventorySlot{Area: a.ID, ID: p.ID, Slot: slot, Item: p.Inventory[slot]})
		a.send(protocol.RemoveItem{Area: a.ID, ID: it.ID})
		it.Despawn = true
		return
	}
}

func (it *Item) despawned() bool { return it.Despawn }

// Release 删除刚体
func (it *Item) Release(s *physics.Space) {
	s.RemoveBody(it.Body)
}
