package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarlune/resolv"
)

// Intersecting 返回与该碰撞体相交的其他碰撞体（包括传感器），
// 跳过同一刚体上的碰撞体。tags 非空时只返回带任一标签的对象。
func (s *Space) Intersecting(h ColliderHandle, tags ...string) []ColliderHandle {
	col := s.mustCollider(h)
	lo, hi := col.AABB()
	var out []ColliderHandle
	for _, oh := range s.broadPhase(lo, hi, tags...) {
		other := s.mustCollider(oh)
		if other.parent == col.parent {
			continue
		}
		if col.touches(other) {
			out = append(out, oh)
		}
	}
	sortColliders(out)
	return out
}

// QueryAABB 返回与给定包围盒相交的碰撞体
func (s *Space) QueryAABB(lo, hi mgl64.Vec2, tags ...string) []ColliderHandle {
	size := hi.Sub(lo)
	if size[0] <= 0 || size[1] <= 0 {
		return nil
	}
	region := &Collider{Shape: Cuboid(size[0]/2, size[1]/2), center: lo.Add(hi).Mul(0.5)}
	region.shape = region.Shape.resolvShape()
	region.placeShape()

	var out []ColliderHandle
	for _, oh := range s.broadPhase(lo, hi, tags...) {
		if region.touches(s.mustCollider(oh)) {
			out = append(out, oh)
		}
	}
	sortColliders(out)
	return out
}

// broadPhase 用一个临时 resolv 对象取出包围盒所在网格中的候选碰撞体
func (s *Space) broadPhase(lo, hi mgl64.Vec2, tags ...string) []ColliderHandle {
	size := hi.Sub(lo)
	if size[0] <= 0 || size[1] <= 0 {
		return nil
	}
	probe := resolv.NewObject(lo[0]+broadMargin, lo[1]+broadMargin, size[0], size[1])
	s.broad.Add(probe)
	defer s.broad.Remove(probe)

	found := probe.Check(0, 0, tags...)
	if found == nil {
		return nil
	}
	out := make([]ColliderHandle, 0, len(found.Objects))
	for _, o := range found.Objects {
		if h, ok := o.Data.(ColliderHandle); ok && s.ContainsCollider(h) {
			out = append(out, h)
		}
	}
	return out
}
