package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarlune/resolv"
)

// ShapeKind 碰撞形状
type ShapeKind uint8

const (
	ShapeCuboid ShapeKind = iota
	ShapeBall
)

// Shape 碰撞形状参数。接触求解（阻挡与反弹）按包围盒处理；
// 相交查询用 resolv 的形状做精确检测。
type Shape struct {
	Kind        ShapeKind
	HalfExtents mgl64.Vec2
	Radius      float64
}

// Cuboid 轴对齐矩形，参数为半宽/半高
func Cuboid(hx, hy float64) Shape {
	return Shape{Kind: ShapeCuboid, HalfExtents: mgl64.Vec2{hx, hy}}
}

// Ball 圆形
func Ball(radius float64) Shape {
	return Shape{Kind: ShapeBall, Radius: radius}
}

// HalfSize 包围盒半尺寸
func (s Shape) HalfSize() mgl64.Vec2 {
	if s.Kind == ShapeBall {
		return mgl64.Vec2{s.Radius, s.Radius}
	}
	return s.HalfExtents
}

// resolvShape 对应的 resolv 形状：矩形以左下角定位，圆以圆心定位
func (s Shape) resolvShape() resolv.IShape {
	if s.Kind == ShapeBall {
		return resolv.NewCircle(0, 0, s.Radius)
	}
	return resolv.NewRectangle(0, 0, 2*s.HalfExtents[0], 2*s.HalfExtents[1])
}

// Collider 挂在刚体上的碰撞体，同时在 resolv 空间中有一个镜像对象用于粗检测
type Collider struct {
	Shape       Shape
	Offset      mgl64.Vec2
	Restitution float64
	// Sensor 只参与查询，不产生接触响应
	Sensor bool
	// Tags 写入 resolv 对象，供查询过滤
	Tags []string
	// CollidesWith 为空时与所有非传感器碰撞体接触，否则只与带这些标签的接触
	CollidesWith []string
	UserData     uint64

	parent BodyHandle
	center mgl64.Vec2
	obj    *resolv.Object
	shape  resolv.IShape
}

// placeShape 把 resolv 形状移到碰撞体当前位置（与 resolv 对象同一坐标系）
func (c *Collider) placeShape() {
	if c.Shape.Kind == ShapeBall {
		c.shape.SetPosition(c.center[0]+broadMargin, c.center[1]+broadMargin)
		return
	}
	lo := c.center.Sub(c.Shape.HalfExtents)
	c.shape.SetPosition(lo[0]+broadMargin, lo[1]+broadMargin)
}

// AABB 世界坐标包围盒
func (c *Collider) AABB() (min, max mgl64.Vec2) {
	half := c.Shape.HalfSize()
	return c.center.Sub(half), c.center.Add(half)
}

// HasTag 是否带有标签
func (c *Collider) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// touches 精确相交检测。两个矩形的包围盒就是其本身；涉及圆时交给 resolv。
// resolv 只报告边界相交的情况，完全包含时由中心点是否落在对方形状内判断。
func (c *Collider) touches(o *Collider) bool {
	amin, amax := c.AABB()
	bmin, bmax := o.AABB()
	if !overlaps(amin, amax, bmin, bmax) {
		return false
	}
	if c.Shape.Kind == ShapeCuboid && o.Shape.Kind == ShapeCuboid {
		return true
	}
	return shapesIntersect(c.shape, o.shape) || c.contains(o.center) || o.contains(c.center)
}

// contains 点是否在形状内
func (c *Collider) contains(p mgl64.Vec2) bool {
	if c.Shape.Kind == ShapeBall {
		return p.Sub(c.center).Len() < c.Shape.Radius
	}
	lo, hi := c.AABB()
	return p[0] > lo[0] && p[0] < hi[0] && p[1] > lo[1] && p[1] < hi[1]
}

// shapesIntersect 多边形在前调用，resolv 的多边形实现同时处理多边形与圆
func shapesIntersect(a, b resolv.IShape) bool {
	if _, ok := a.(*resolv.Circle); ok {
		if _, ok := b.(*resolv.ConvexPolygon); ok {
			a, b = b, a
		}
	}
	return a.Intersection(0, 0, b) != nil
}

const overlapEps = 1e-6

func overlaps(amin, amax, bmin, bmax mgl64.Vec2) bool {
	return amin[0] < bmax[0]-overlapEps && amax[0] > bmin[0]+overlapEps &&
		amin[1] < bmax[1]-overlapEps && amax[1] > bmin[1]+overlapEps
}
