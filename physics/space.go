package physics

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/solarlune/resolv"
)

// DefaultGravity 固定的向下重力（y 轴向上）
var DefaultGravity = mgl64.Vec2{0, -980}

const (
	// CellSize resolv 粗检测网格尺寸
	CellSize = 32
	// broadMargin 允许对象略微越过区域边界仍被粗检测覆盖
	broadMargin = 256
)

// Space 一个区域内全部刚体、碰撞体、关节以及空间查询结构。
// 只能被所属区域的 Tick 线程访问。
type Space struct {
	gravity mgl64.Vec2

	bodies    arena[*RigidBody]
	colliders arena[*Collider]
	joints    arena[*DistanceJoint]

	broad *resolv.Space
	steps uint64
}

// NewSpace 创建覆盖 [0,width]x[0,height] 的物理世界
func NewSpace(width, height float64) *Space {
	w := int(math.Ceil(width)) + 2*broadMargin
	h := int(math.Ceil(height)) + 2*broadMargin
	return &Space{
		gravity: DefaultGravity,
		broad:   resolv.NewSpace(w, h, CellSize, CellSize),
	}
}

// Steps 已执行的非零步数
func (s *Space) Steps() uint64 { return s.steps }

// BodyCount 存活刚体数
func (s *Space) BodyCount() int { return s.bodies.count }

// ColliderCount 存活碰撞体数
func (s *Space) ColliderCount() int { return s.colliders.count }

// JointCount 存活关节数
func (s *Space) JointCount() int { return s.joints.count }

// AddBody 插入刚体
func (s *Space) AddBody(b RigidBody) BodyHandle {
	body := b
	body.colliders = nil
	return BodyHandle(s.bodies.insert(&body))
}

// Body 返回刚体；handle 失效时 panic
func (s *Space) Body(h BodyHandle) *RigidBody {
	return s.mustBody(h)
}

// ContainsBody handle 是否仍然有效
func (s *Space) ContainsBody(h BodyHandle) bool {
	_, ok := s.bodies.get(handle(h))
	return ok
}

// ContainsCollider handle 是否仍然有效
func (s *Space) ContainsCollider(h ColliderHandle) bool {
	_, ok := s.colliders.get(handle(h))
	return ok
}

// ContainsJoint handle 是否仍然有效
func (s *Space) ContainsJoint(h JointHandle) bool {
	_, ok := s.joints.get(handle(h))
	return ok
}

// SetPosition 直接设置刚体位置（网络修正），同步碰撞体
func (s *Space) SetPosition(h BodyHandle, pos mgl64.Vec2) {
	b := s.mustBody(h)
	b.Position = pos
	s.syncBody(b)
}

// SetVelocity 直接设置刚体速度
func (s *Space) SetVelocity(h BodyHandle, vel mgl64.Vec2) {
	s.mustBody(h).Velocity = vel
}

// RemoveBody 删除刚体，级联删除其碰撞体与关节
func (s *Space) RemoveBody(h BodyHandle) {
	b, ok := s.bodies.remove(handle(h))
	if !ok {
		panic(staleHandle("body", handle(h)))
	}
	for _, ch := range b.colliders {
		s.RemoveCollider(ch)
	}
	var dead []JointHandle
	s.joints.each(func(jh handle, j *DistanceJoint) {
		if j.A == h || j.B == h {
			dead = append(dead, JointHandle(jh))
		}
	})
	for _, jh := range dead {
		s.RemoveJoint(jh)
	}
}

// AddCollider 把碰撞体挂到刚体上
func (s *Space) AddCollider(c Collider, parent BodyHandle) ColliderHandle {
	b := s.mustBody(parent)
	col := c
	col.parent = parent
	col.center = b.Position.Add(col.Offset)
	half := col.Shape.HalfSize()
	lo := col.center.Sub(half)
	col.obj = resolv.NewObject(lo[0]+broadMargin, lo[1]+broadMargin, 2*half[0], 2*half[1], col.Tags...)
	h := ColliderHandle(s.colliders.insert(&col))
	col.obj.Data = h
	s.broad.Add(col.obj)
	col.shape = col.Shape.resolvShape()
	col.obj.SetShape(col.shape)
	col.placeShape()
	b.colliders = append(b.colliders, h)
	return h
}

// Collider 返回碰撞体；handle 失效时 panic
func (s *Space) Collider(h ColliderHandle) *Collider {
	return s.mustCollider(h)
}

// RemoveCollider 删除单个碰撞体
func (s *Space) RemoveCollider(h ColliderHandle) {
	c, ok := s.colliders.remove(handle(h))
	if !ok {
		panic(staleHandle("collider", handle(h)))
	}
	s.broad.Remove(c.obj)
	if b, ok := s.bodies.get(handle(c.parent)); ok {
		for i, ch := range b.colliders {
			if ch == h {
				b.colliders = append(b.colliders[:i], b.colliders[i+1:]...)
				break
			}
		}
	}
}

// AddJoint 插入距离关节，两端刚体必须存在
func (s *Space) AddJoint(j DistanceJoint) JointHandle {
	s.mustBody(j.A)
	s.mustBody(j.B)
	joint := j
	return JointHandle(s.joints.insert(&joint))
}

// RemoveJoint 删除关节
func (s *Space) RemoveJoint(h JointHandle) {
	if _, ok := s.joints.remove(handle(h)); !ok {
		panic(staleHandle("joint", handle(h)))
	}
}

// Step 推进 dt 秒。dt 为 0 时不做任何事；dt 为负是调用方错误。
func (s *Space) Step(dt float64) {
	if dt < 0 || math.IsNaN(dt) {
		panic(errors.Errorf("physics: invalid step dt=%v", dt))
	}
	if dt == 0 {
		return
	}
	s.integrateForces(dt)
	s.solveJoints()
	s.integratePositions(dt)
	s.steps++
}

func (s *Space) integrateForces(dt float64) {
	s.bodies.each(func(_ handle, b *RigidBody) {
		if b.Type != Dynamic {
			return
		}
		b.Velocity = b.Velocity.Add(s.gravity.Mul(b.GravityScale * dt))
		if b.LinearDamping > 0 {
			b.Velocity = b.Velocity.Mul(1 / (1 + dt*b.LinearDamping))
		}
	})
}

func (s *Space) integratePositions(dt float64) {
	s.bodies.each(func(_ handle, b *RigidBody) {
		switch b.Type {
		case Fixed:
			return
		case Kinematic:
			b.Position = b.Position.Add(b.Velocity.Mul(dt))
			s.syncBody(b)
			return
		}
		primary := s.primaryCollider(b)
		if primary == nil {
			b.Position = b.Position.Add(b.Velocity.Mul(dt))
			s.syncBody(b)
			return
		}
		s.moveAxis(b, primary, 0, b.Velocity[0]*dt)
		s.moveAxis(b, primary, 1, b.Velocity[1]*dt)
	})
}

// primaryCollider 第一个非传感器碰撞体负责接触求解
func (s *Space) primaryCollider(b *RigidBody) *Collider {
	for _, ch := range b.colliders {
		c := s.mustCollider(ch)
		if !c.Sensor {
			return c
		}
	}
	return nil
}

// moveAxis 沿单轴移动。检测从起点到终点的整段扫掠区间，停在最近的阻挡面上，
// 被阻挡时按恢复系数反弹。一步走得再远也不会穿过薄墙。
func (s *Space) moveAxis(b *RigidBody, col *Collider, axis int, delta float64) {
	if delta == 0 {
		return
	}
	cross := 1 - axis
	half := col.Shape.HalfSize()
	center := b.Position.Add(col.Offset)
	smin, smax := center.Sub(half), center.Add(half)
	dmin, dmax := smin, smax
	dmin[axis] += delta
	dmax[axis] += delta
	lo := mgl64.Vec2{math.Min(smin[0], dmin[0]), math.Min(smin[1], dmin[1])}
	hi := mgl64.Vec2{math.Max(smax[0], dmax[0]), math.Max(smax[1], dmax[1])}

	target := b.Position[axis] + delta
	hit := false
	restitution := col.Restitution
	for _, h := range s.broadPhase(lo, hi, col.CollidesWith...) {
		other := s.mustCollider(h)
		if other.Sensor || other.parent == col.parent {
			continue
		}
		bmin, bmax := other.AABB()
		if smin[cross] >= bmax[cross]-overlapEps || smax[cross] <= bmin[cross]+overlapEps {
			continue
		}
		// 阻挡面在起点前方且落在扫掠区间内；或者已经嵌入，终点仍与之重叠
		endOverlap := overlaps(dmin, dmax, bmin, bmax)
		if delta > 0 {
			ahead := bmin[axis] >= smax[axis]-overlapEps && bmin[axis] < dmax[axis]-overlapEps
			if !ahead && !endOverlap {
				continue
			}
			target = math.Min(target, bmin[axis]-half[axis]-col.Offset[axis])
		} else {
			ahead := bmax[axis] <= smin[axis]+overlapEps && bmax[axis] > dmin[axis]+overlapEps
			if !ahead && !endOverlap {
				continue
			}
			target = math.Max(target, bmax[axis]+half[axis]-col.Offset[axis])
		}
		hit = true
		restitution = math.Max(restitution, other.Restitution)
	}
	if hit {
		b.Velocity[axis] = -b.Velocity[axis] * restitution
	}
	b.Position[axis] = target
	s.syncBody(b)
}

func (s *Space) syncBody(b *RigidBody) {
	for _, ch := range b.colliders {
		c := s.mustCollider(ch)
		c.center = b.Position.Add(c.Offset)
		half := c.Shape.HalfSize()
		c.obj.X = c.center[0] - half[0] + broadMargin
		c.obj.Y = c.center[1] - half[1] + broadMargin
		c.obj.Update()
		c.placeShape()
	}
}

func (s *Space) mustBody(h BodyHandle) *RigidBody {
	b, ok := s.bodies.get(handle(h))
	if !ok {
		panic(staleHandle("body", handle(h)))
	}
	return b
}

func (s *Space) mustCollider(h ColliderHandle) *Collider {
	c, ok := s.colliders.get(handle(h))
	if !ok {
		panic(staleHandle("collider", handle(h)))
	}
	return c
}

// sortColliders 查询结果按 handle 排序（槽位，其次代数），
// 同一状态下的查询顺序与 resolv 网格内部顺序无关
func sortColliders(hs []ColliderHandle) {
	sort.Slice(hs, func(i, j int) bool {
		if hs[i].index != hs[j].index {
			return hs[i].index < hs[j].index
		}
		return hs[i].gen < hs[j].gen
	})
}
