package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"arenasync/physics"
	"arenasync/protocol"
	"arenasync/swapiter"
)

// Area 一个独立的模拟区域：一个物理空间加上若干有序实体集合。
// 实体持有的所有 handle 都指向本区域的 Space。
type Area struct {
	ID     protocol.AreaID
	Width  float64
	Height float64
	Space  *physics.Space

	Players     []*Player
	Enemies     []*Enemy
	Props       []*Prop
	Items       []*Item
	Projectiles []*Projectile
	Pixels      []*Pixel
	Walls       []*Wall

	// Spawn 玩家出生点
	Spawn mgl64.Vec2

	world *World
}

// NewArea 创建空区域
func NewArea(id protocol.AreaID, width, height float64) *Area {
	return &Area{
		ID:     id,
		Width:  width,
		Height: height,
		Space:  physics.NewSpace(width, height),
		Spawn:  mgl64.Vec2{width / 2, height / 2},
	}
}

// Tick 推进一帧：物理步进，需要兄弟集合的实体用 SwapIter 处理，
// 其余集合普通遍历，最后统一清理标记为 Despawn 的实体
func (a *Area) Tick(dt float64) {
	a.Space.Step(dt)

	swapiter.ForEach(&a.Enemies, func(e *Enemy, siblings *[]*Enemy) {
		e.tick(a, *siblings)
	})
	swapiter.ForEach(&a.Projectiles, func(p *Projectile, siblings *[]*Projectile) {
		p.tick(a, *siblings, dt)
	})
	for _, p := range a.Players {
		p.tick(a, dt)
	}
	for _, p := range a.Props {
		p.tick(a)
	}
	for _, it := range a.Items {
		it.tick(a)
	}
	for _, px := range a.Pixels {
		px.tick(dt)
	}

	a.sweep()
}

// sweep 释放并移除所有 Despawn 实体，每个实体只释放一次
func (a *Area) sweep() {
	a.Players = sweepSlice(a.Space, a.Players)
	a.Enemies = sweepSlice(a.Space, a.Enemies)
	a.Props = sweepSlice(a.Space, a.Props)
	a.Items = sweepSlice(a.Space, a.Items)
	a.Projectiles = sweepSlice(a.Space, a.Projectiles)
	a.Pixels = sweepSlice(a.Space, a.Pixels)
}

type releaser interface {
	despawned() bool
	Release(s *physics.Space)
}

func sweepSlice[T releaser](s *physics.Space, items []T) []T {
	kept := items[:0]
	for _, e := range items {
		if e.despawned() {
			e.Release(s)
			continue
		}
		kept = append(kept, e)
	}
	clear(items[len(kept):])
	return kept
}

func (a *Area) send(p protocol.Packet) {
	if a.world != nil {
		a.world.send(p)
	}
}

func (a *Area) local() protocol.Owner {
	if a.world == nil {
		return protocol.Owner{}
	}
	return a.world.Local
}

func (a *Area) authoritative(owner protocol.Owner) bool {
	return protocol.IsLocalAuthority(owner, a.local())
}

func (a *Area) correctionEvery() int {
	if a.world == nil || a.world.CorrectionEvery <= 0 {
		return DefaultCorrectionEvery
	}
	return a.world.CorrectionEvery
}

// Player 按 ID 查找，不存在返回 nil
func (a *Area) Player(id protocol.EntityID) *Player {
	for _, p := range a.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Enemy 按 ID 查找
func (a *Area) Enemy(id protocol.EntityID) *Enemy {
	for _, e := range a.Enemies {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Prop 按 ID 查找
func (a *Area) Prop(id protocol.EntityID) *Prop {
	for _, p := range a.Props {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Item 按 ID 查找
func (a *Area) Item(id protocol.EntityID) *Item {
	for _, it := range a.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// Projectile 按 ID 查找
func (a *Area) Projectile(id protocol.EntityID) *Projectile {
	for _, p := range a.Projectiles {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// nearestPlayer 最近的存活玩家位置
func (a *Area) nearestPlayer(from mgl64.Vec2) (mgl64.Vec2, bool) {
	var best mgl64.Vec2
	bestDist := -1.0
	for _, p := range a.Players {
		if p.Despawn {
			continue
		}
		pos := a.Space.Body(p.Body).Position
		if d := pos.Sub(from).Len(); bestDist < 0 || d < bestDist {
			best, bestDist = pos, d
		}
	}
	return best, bestDist >= 0
}

// grounded 碰撞体正下方是否有墙或道具
func (a *Area) grounded(h physics.ColliderHandle) bool {
	lo, hi := a.Space.Collider(h).AABB()
	return len(a.Space.QueryAABB(
		mgl64.Vec2{lo[0] + 1, lo[1] - 2},
		mgl64.Vec2{hi[0] - 1, lo[1]},
		TagWall, TagProp)) > 0
}

// burst 道具碎裂时的像素特效，只在本地生成
func (a *Area) burst(at mgl64.Vec2) {
	for i := 0; i < BurstPixels; i++ {
		angle := float64(i) * 2 * math.Pi / BurstPixels
		vel := mgl64.Vec2{BurstSpeed * math.Cos(angle), BurstSpeed * math.Sin(angle)}
		a.addPixel(at, vel)
	}
}
