package game

import (
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"arenasync/protocol"
)

const dt = 1.0 / 60

type recorder struct {
	pkts []protocol.Packet
}

func (r *recorder) Send(p protocol.Packet) { r.pkts = append(r.pkts, p) }

func (r *recorder) take() []protocol.Packet {
	out := r.pkts
	r.pkts = nil
	return out
}

func kinds(pkts []protocol.Packet) []protocol.Kind {
	out := make([]protocol.Kind, len(pkts))
	for i, p := range pkts {
		out[i] = p.Kind()
	}
	return out
}

func countKind(pkts []protocol.Packet, k protocol.Kind) int {
	n := 0
	for _, p := range pkts {
		if p.Kind() == k {
			n++
		}
	}
	return n
}

// floorArena 只有地板的测试场景
func floorArena(id protocol.AreaID) protocol.AreaSnapshot {
	return protocol.AreaSnapshot{
		ID:     id,
		Width:  400,
		Height: 400,
		Walls:  []protocol.WallState{{Pos: mgl64.Vec2{200, 10}, Half: mgl64.Vec2{200, 10}}},
	}
}

func newServer(t *testing.T) (*World, *Area, *recorder) {
	t.Helper()
	rec := &recorder{}
	w := NewWorld(protocol.ServerOwner(), rec, nil)
	a := NewAreaFromSnapshot(floorArena("test"))
	w.AddArea(a)
	return w, a, rec
}

func newClient(t *testing.T, id protocol.ClientID) (*World, *Area, *recorder) {
	t.Helper()
	rec := &recorder{}
	w := NewWorld(protocol.ClientOwner(id), rec, nil)
	a := NewAreaFromSnapshot(floorArena("test"))
	w.AddArea(a)
	return w, a, rec
}

func TestDespawnSweepReleasesOnce(t *testing.T) {
	w, a, _ := newServer(t)
	e := a.addEnemy(protocol.EnemyState{ID: 1, Owner: protocol.ServerOwner(), Pos: mgl64.Vec2{100, 30}, Health: 10})
	keep := a.addEnemy(protocol.EnemyState{ID: 2, Owner: protocol.ServerOwner(), Pos: mgl64.Vec2{300, 30}, Health: 10})
	bodies := a.Space.BodyCount()

	e.Despawn = true
	w.Tick(dt)
	if a.Space.ContainsBody(e.Body) {
		t.Fatalf("despawned enemy body still present")
	}
	if len(a.Enemies) != 1 || a.Enemies[0] != keep {
		t.Fatalf("enemies after sweep = %v", a.Enemies)
	}
	if got := a.Space.BodyCount(); got != bodies-1 {
		t.Fatalf("body count = %d, want %d", got, bodies-1)
	}
	// 再走一帧：已释放的实体不会被再次释放
	w.Tick(dt)
	if got := a.Space.BodyCount(); got != bodies-1 {
		t.Fatalf("body count after second tick = %d, want %d", got, bodies-1)
	}
}

func TestZeroTickKeepsPositions(t *testing.T) {
	w, a, _ := newServer(t)
	p := a.addProp(protocol.PropState{ID: 5, Owner: protocol.ServerOwner(), Pos: mgl64.Vec2{100, 100}, Vel: mgl64.Vec2{3, 4}, Half: mgl64.Vec2{8, 8}})
	w.Tick(0)
	w.Tick(0)
	if got := a.Space.Body(p.Body).Position; got != (mgl64.Vec2{100, 100}) {
		t.Fatalf("position after zero ticks = %v", got)
	}
}

func TestPropHitByAuthority(t *testing.T) {
	_, a, rec := newServer(t)
	prop := a.addProp(protocol.PropState{ID: 5, Owner: protocol.ServerOwner(), Pos: mgl64.Vec2{100, 100}, Half: mgl64.Vec2{8, 8}})

	if !prop.Hit(a) {
		t.Fatalf("authority hit returned false")
	}
	if !prop.Despawn {
		t.Fatalf("prop not marked for despawn")
	}
	got := kinds(rec.take())
	if len(got) != 2 || got[0] != protocol.KindDissolveProp || got[1] != protocol.KindRemoveProp {
		t.Fatalf("packets = %v, want [DissolveProp RemoveProp]", got)
	}
	if prop.Hit(a) {
		t.Fatalf("second hit on a despawned prop succeeded")
	}
}

func TestPropHitWithoutAuthority(t *testing.T) {
	_, a, rec := newClient(t, 3)
	prop := a.addProp(protocol.PropState{ID: 5, Owner: protocol.ServerOwner(), Pos: mgl64.Vec2{100, 100}, Half: mgl64.Vec2{8, 8}})
	if prop.Hit(a) || prop.Despawn {
		t.Fatalf("non-authority dissolved a server prop")
	}
	if len(rec.take()) != 0 {
		t.Fatalf("non-authority emitted packets")
	}
}

func TestProjectileDissolvesServerProp(t *testing.T) {
	w, a, rec := newServer(t)
	prop := a.addProp(protocol.PropState{ID: 5, Owner: protocol.ServerOwner(), Pos: mgl64.Vec2{100, 100}, Half: mgl64.Vec2{8, 8}})
	a.addProjectile(protocol.NewProjectile{Area: a.ID, ID: 6, Owner: protocol.ClientOwner(9), Pos: mgl64.Vec2{100, 100}, Damage: 10})

	w.Tick(dt)
	got := kinds(rec.take())
	if len(got) != 2 || got[0] != protocol.KindDissolveProp || got[1] != protocol.KindRemoveProp {
		t.Fatalf("packets = %v, want [DissolveProp RemoveProp]", got)
	}
	if a.Prop(prop.ID) != nil || a.Space.ContainsBody(prop.Body) {
		t.Fatalf("prop survived the sweep")
	}
	if len(a.Projectiles) != 0 {
		t.Fatalf("projectile survived the hit")
	}
}

func TestProjectilesCancelEachOther(t *testing.T) {
	w, a, _ := newServer(t)
	a.addProjectile(protocol.NewProjectile{Area: a.ID, ID: 1, Owner: protocol.ClientOwner(1), Pos: mgl64.Vec2{200, 200}, Vel: mgl64.Vec2{60, 0}})
	a.addProjectile(protocol.NewProjectile{Area: a.ID, ID: 2, Owner: protocol.ClientOwner(2), Pos: mgl64.Vec2{201, 200}, Vel: mgl64.Vec2{-60, 0}})
	a.addProjectile(protocol.NewProjectile{Area: a.ID, ID: 3, Owner: protocol.ClientOwner(2), Pos: mgl64.Vec2{50, 300}, Vel: mgl64.Vec2{60, 0}})

	w.Tick(dt)
	if len(a.Projectiles) != 1 || a.Projectiles[0].ID != 3 {
		t.Fatalf("projectiles after collision = %d", len(a.Projectiles))
	}
}

func TestOnlyAuthorityEmits(t *testing.T) {
	snap := floorArena("test")
	snap.Props = []protocol.PropState{{ID: 5, Owner: protocol.ServerOwner(), Pos: mgl64.Vec2{100, 200}, Half: mgl64.Vec2{8, 8}}}

	srvRec, cliRec := &recorder{}, &recorder{}
	srv := NewWorld(protocol.ServerOwner(), srvRec, nil)
	cli := NewWorld(protocol.ClientOwner(4), cliRec, nil)
	srv.AddArea(NewAreaFromSnapshot(snap))
	cli.AddArea(NewAreaFromSnapshot(snap))

	for i := 0; i < 10; i++ {
		srv.Tick(dt)
		cli.Tick(dt)
	}
	if countKind(srvRec.pkts, protocol.KindPropVel) == 0 {
		t.Fatalf("authority did not replicate a falling prop")
	}
	if len(cliRec.pkts) != 0 {
		t.Fatalf("non-authority emitted %v", kinds(cliRec.pkts))
	}
}

func TestReceiverConvergesOnCorrection(t *testing.T) {
	snap := floorArena("test")
	snap.Props = []protocol.PropState{{ID: 5, Owner: protocol.ServerOwner(), Pos: mgl64.Vec2{100, 100}, Half: mgl64.Vec2{8, 8}}}

	srvRec, cliRec := &recorder{}, &recorder{}
	srv := NewWorld(protocol.ServerOwner(), srvRec, nil)
	cli := NewWorld(protocol.ClientOwner(4), cliRec, nil)
	srv.CorrectionEvery = 5
	srv.AddArea(NewAreaFromSnapshot(snap))
	cli.AddArea(NewAreaFromSnapshot(snap))
	sa, _ := srv.Area("test")
	ca, _ := cli.Area("test")

	// 只有权威方知道的外力
	sa.Space.SetVelocity(sa.Props[0].Body, mgl64.Vec2{50, 200})

	const rounds = 20
	for i := 1; i <= rounds; i++ {
		srv.Tick(dt)
		for _, p := range srvRec.take() {
			cli.Apply(p)
		}
		if i < rounds {
			cli.Tick(dt)
		}
	}
	want := sa.Space.Body(sa.Props[0].Body)
	got := ca.Space.Body(ca.Props[0].Body)
	if got.Position != want.Position || got.Velocity != want.Velocity {
		t.Fatalf("receiver state %v/%v, authority %v/%v", got.Position, got.Velocity, want.Position, want.Velocity)
	}
	if len(cliRec.pkts) != 0 {
		t.Fatalf("receiver echoed %v", kinds(cliRec.pkts))
	}
}

func TestApplyUnknownTargetPanics(t *testing.T) {
	w, _, _ := newClient(t, 1)
	cases := []protocol.Packet{
		protocol.PropVel{Area: "test", ID: 99},
		protocol.PlayerPos{Area: "test", ID: 99},
		protocol.EnemyHealth{Area: "test", ID: 99},
		protocol.NewPlayer{Area: "nowhere", ID: 1},
	}
	for _, p := range cases {
		func() {
			defer func() {
				r := recover()
				if _, ok := r.(InvariantError); !ok {
					t.Fatalf("%s: recovered %v, want InvariantError", p.Kind(), r)
				}
			}()
			w.Apply(p)
		}()
	}
}

func TestApplyRemovalIsIdempotent(t *testing.T) {
	w, a, _ := newClient(t, 1)
	w.Apply(protocol.NewProp{Area: "test", ID: 5, Owner: protocol.ServerOwner(), Pos: mgl64.Vec2{100, 100}, Half: mgl64.Vec2{8, 8}})
	w.Apply(protocol.RemoveProp{Area: "test", ID: 5})
	w.Apply(protocol.RemoveProp{Area: "test", ID: 5})
	w.Tick(dt)
	w.Apply(protocol.RemoveProp{Area: "test", ID: 5})
	w.Apply(protocol.RemoveEnemy{Area: "test", ID: 77})
	w.Apply(protocol.RemoveItem{Area: "gone", ID: 1})
	if len(a.Props) != 0 {
		t.Fatalf("prop not removed")
	}
}

func TestApplyStatePackets(t *testing.T) {
	w, a, _ := newClient(t, 1)
	owner := protocol.ClientOwner(2)
	w.Apply(protocol.NewPlayer{Area: "test", ID: 8, Owner: owner, Name: "bob", Pos: mgl64.Vec2{50, 50}, Health: 100})
	w.Apply(protocol.PlayerPos{Area: "test", ID: 8, Pos: mgl64.Vec2{60, 70}})
	w.Apply(protocol.PlayerVel{Area: "test", ID: 8, Vel: mgl64.Vec2{1, 2}})
	w.Apply(protocol.PlayerHealth{Area: "test", ID: 8, Health: 42})
	w.Apply(protocol.ActiveSlot{Area: "test", ID: 8, Slot: 2})
	w.Apply(protocol.InventorySlot{Area: "test", ID: 8, Slot: 2, Item: protocol.ItemStack{Kind: protocol.ItemAmmo, Count: 4}})

	p := a.Player(8)
	if p == nil || p.Owner != owner || p.Name != "bob" {
		t.Fatalf("player not spawned: %+v", p)
	}
	b := a.Space.Body(p.Body)
	if b.Position != (mgl64.Vec2{60, 70}) || b.Velocity != (mgl64.Vec2{1, 2}) {
		t.Fatalf("body = %v/%v", b.Position, b.Velocity)
	}
	if p.Health != 42 || p.ActiveSlot != 2 || p.Inventory[2].Count != 4 {
		t.Fatalf("player fields not applied: %+v", p)
	}
	owned, ok := w.OwnerOf("test", 8)
	if !ok || owned != owner {
		t.Fatalf("OwnerOf = %v, %v", owned, ok)
	}
}

func TestPropOwnerHandOver(t *testing.T) {
	w, a, rec := newClient(t, 1)
	w.Apply(protocol.NewProp{Area: "test", ID: 5, Owner: protocol.ServerOwner(), Pos: mgl64.Vec2{100, 100}, Half: mgl64.Vec2{8, 8}})
	w.Tick(dt)
	if len(rec.take()) != 0 {
		t.Fatalf("client replicated a server prop")
	}
	w.Apply(protocol.PropOwner{Area: "test", ID: 5, Owner: protocol.ClientOwner(1)})
	w.Tick(dt)
	if countKind(rec.take(), protocol.KindPropVel) != 1 {
		t.Fatalf("new owner did not replicate on its next tick")
	}
	if !a.Props[0].Owner.Is(1) {
		t.Fatalf("owner not updated")
	}
}

func TestEnemyDeathDropsItem(t *testing.T) {
	w, a, rec := newServer(t)
	e := a.addEnemy(protocol.EnemyState{ID: 11, Owner: protocol.ServerOwner(), Pos: mgl64.Vec2{100, 30}, Health: 5})
	e.damage(ProjectileDamage)

	w.Tick(dt)
	pkts := rec.take()
	if countKind(pkts, protocol.KindRemoveEnemy) != 1 || countKind(pkts, protocol.KindNewItem) != 1 {
		t.Fatalf("death packets = %v", kinds(pkts))
	}
	if len(a.Enemies) != 0 || len(a.Items) != 1 {
		t.Fatalf("enemies=%d items=%d", len(a.Enemies), len(a.Items))
	}
}

func TestEnemiesSeparate(t *testing.T) {
	w, a, _ := newServer(t)
	left := a.addEnemy(protocol.EnemyState{ID: 1, Owner: protocol.ServerOwner(), Pos: mgl64.Vec2{100, 30}, Health: 10})
	right := a.addEnemy(protocol.EnemyState{ID: 2, Owner: protocol.ServerOwner(), Pos: mgl64.Vec2{110, 30}, Health: 10})

	w.Tick(dt)
	if v := a.Space.Body(left.Body).Velocity[0]; v >= 0 {
		t.Fatalf("left enemy velocity %v, want negative", v)
	}
	if v := a.Space.Body(right.Body).Velocity[0]; v <= 0 {
		t.Fatalf("right enemy velocity %v, want positive", v)
	}
}

func TestPlayerPicksUpItem(t *testing.T) {
	w, a, rec := newClient(t, 1)
	p := a.SpawnPlayer("alice")
	a.Space.SetPosition(p.Body, mgl64.Vec2{100, 34})
	a.addItem(protocol.ItemState{ID: 70, Pos: mgl64.Vec2{100, 30}, Item: protocol.ItemStack{Kind: protocol.ItemMedkit, Count: 1}})
	rec.take()

	w.Tick(dt)
	pkts := rec.take()
	if countKind(pkts, protocol.KindInventorySlot) != 1 || countKind(pkts, protocol.KindRemoveItem) != 1 {
		t.Fatalf("pickup packets = %v", kinds(pkts))
	}
	if p.Inventory[0].Kind != protocol.ItemMedkit || len(a.Items) != 0 {
		t.Fatalf("inventory = %v, items = %d", p.Inventory, len(a.Items))
	}

	p.Health = 50
	p.Input.Use = true
	w.Tick(dt)
	if p.Health != 50+MedkitHeal || !p.Inventory[0].Empty() {
		t.Fatalf("medkit not used: health=%d slot=%v", p.Health, p.Inventory[0])
	}
}

func TestPlayerFires(t *testing.T) {
	w, a, rec := newClient(t, 1)
	p := a.SpawnPlayer("alice")
	if got := kinds(rec.take()); len(got) != 1 || got[0] != protocol.KindNewPlayer {
		t.Fatalf("spawn packets = %v", got)
	}
	p.Input.Fire = true
	w.Tick(dt)
	if countKind(rec.take(), protocol.KindNewProjectile) != 1 || len(a.Projectiles) != 1 {
		t.Fatalf("fire did not spawn a projectile")
	}
	if a.Projectiles[0].Shooter != p.ID {
		t.Fatalf("shooter = %v", a.Projectiles[0].Shooter)
	}
}

func TestDropClient(t *testing.T) {
	w, a, rec := newServer(t)
	w.Apply(protocol.NewPlayer{Area: "test", ID: 8, Owner: protocol.ClientOwner(3), Pos: mgl64.Vec2{50, 50}, Health: 100})
	w.Apply(protocol.NewProp{Area: "test", ID: 9, Owner: protocol.ClientOwner(3), Pos: mgl64.Vec2{80, 50}, Half: mgl64.Vec2{8, 8}})
	w.Apply(protocol.NewPlayer{Area: "test", ID: 10, Owner: protocol.ClientOwner(4), Pos: mgl64.Vec2{150, 50}, Health: 100})

	w.DropClient(3)
	got := kinds(rec.take())
	if len(got) != 2 || got[0] != protocol.KindRemovePlayer || got[1] != protocol.KindPropOwner {
		t.Fatalf("drop packets = %v", got)
	}
	if !a.Prop(9).Owner.IsServer() {
		t.Fatalf("prop not handed to the server")
	}
	w.Tick(dt)
	if a.Player(8) != nil || a.Player(10) == nil {
		t.Fatalf("wrong players removed")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	snap := DefaultArena("arena")
	a := NewAreaFromSnapshot(snap)
	got := a.Snapshot(false)
	if len(got.Props) != len(snap.Props) || len(got.Enemies) != len(snap.Enemies) || len(got.Walls) != len(snap.Walls) {
		t.Fatalf("entity counts differ")
	}
	for i := range snap.Props {
		if got.Props[i].ID != snap.Props[i].ID || got.Props[i].Pos != snap.Props[i].Pos {
			t.Fatalf("prop %d = %+v, want %+v", i, got.Props[i], snap.Props[i])
		}
	}
	if got.Props[3].Tether == nil || *got.Props[3].Tether != *snap.Props[3].Tether {
		t.Fatalf("tether lost")
	}
	if a.Space.JointCount() != 1 {
		t.Fatalf("joint count = %d", a.Space.JointCount())
	}

	path := filepath.Join(t.TempDir(), "arena.json")
	if err := SaveArea(path, a); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadAreaFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	again := loaded.Snapshot(false)
	for i := range got.Enemies {
		if again.Enemies[i].ID != got.Enemies[i].ID || again.Enemies[i].Pos != got.Enemies[i].Pos {
			t.Fatalf("enemy %d changed across save", i)
		}
	}
}

func TestTetheredPropReleasesAnchor(t *testing.T) {
	w, a, _ := newServer(t)
	p := a.addProp(protocol.PropState{ID: 5, Owner: protocol.ServerOwner(), Pos: mgl64.Vec2{100, 200}, Half: mgl64.Vec2{8, 8},
		Tether: &protocol.Tether{Anchor: mgl64.Vec2{100, 300}, Length: 100}})
	bodies := a.Space.BodyCount()
	p.Despawn = true
	w.Tick(dt)
	if a.Space.BodyCount() != bodies-2 || a.Space.JointCount() != 0 {
		t.Fatalf("bodies=%d joints=%d", a.Space.BodyCount(), a.Space.JointCount())
	}
}

func TestLoadAreaReplacesArea(t *testing.T) {
	w, old, _ := newClient(t, 1)
	w.Apply(protocol.NewProp{Area: "test", ID: 5, Owner: protocol.ServerOwner(), Pos: mgl64.Vec2{100, 100}, Half: mgl64.Vec2{8, 8}})
	w.Apply(protocol.LoadArea{Area: floorArena("test")})
	fresh, ok := w.Area("test")
	if !ok || fresh == old {
		t.Fatalf("area not replaced")
	}
	if old.Space != nil || old.Props != nil {
		t.Fatalf("old area still holds state")
	}
	if len(fresh.Props) != 0 {
		t.Fatalf("props leaked into new area: %d", len(fresh.Props))
	}
	w.Tick(dt)
	if !w.UnloadArea("test") {
		t.Fatalf("unload returned false")
	}
	if w.UnloadArea("test") {
		t.Fatalf("second unload returned true")
	}
	if len(w.Areas()) != 0 {
		t.Fatalf("areas left: %d", len(w.Areas()))
	}
}

func TestDespawnedPixelNotTicked(t *testing.T) {
	_, a, _ := newServer(t)
	px := a.addPixel(mgl64.Vec2{100, 100}, mgl64.Vec2{})
	px.Despawn = true
	px.tick(dt)
	if px.Lifetime != PixelLifetime {
		t.Fatalf("lifetime = %v, want %v", px.Lifetime, PixelLifetime)
	}
}
