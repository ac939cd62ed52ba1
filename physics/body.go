package physics

import "github.com/go-gl/mathgl/mgl64"

// BodyType 刚体类型
type BodyType uint8

const (
	// Dynamic 受重力与接触影响
	Dynamic BodyType = iota
	// Fixed 永不移动（墙体、锚点）
	Fixed
	// Kinematic 按速度移动，不受接触影响
	Kinematic
)

// RigidBody 刚体状态，由 Space 持有，通过 BodyHandle 访问
type RigidBody struct {
	Type          BodyType
	Position      mgl64.Vec2
	Velocity      mgl64.Vec2
	GravityScale  float64
	LinearDamping float64
	// UserData 通常为所属实体 ID
	UserData uint64

	colliders []ColliderHandle
}

// NewDynamicBody 默认重力系数为 1 的动态刚体
func NewDynamicBody(pos mgl64.Vec2) RigidBody {
	return RigidBody{Type: Dynamic, Position: pos, GravityScale: 1}
}

// NewFixedBody 固定刚体
func NewFixedBody(pos mgl64.Vec2) RigidBody {
	return RigidBody{Type: Fixed, Position: pos}
}

// Colliders 挂在该刚体上的碰撞体
func (b *RigidBody) Colliders() []ColliderHandle {
	return b.colliders
}

func (b *RigidBody) invMass() float64 {
	if b.Type == Dynamic {
		return 1
	}
	return 0
}
