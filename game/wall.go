package game

import (
	"github.com/go-gl/mathgl/mgl64"

	"arenasync/physics"
	"arenasync/protocol"
)

// Wall 静态碰撞体
type Wall struct {
	Body     physics.BodyHandle
	Collider physics.ColliderHandle
	Half     mgl64.Vec2
}

func (a *Area) addWall(st protocol.WallState) *Wall {
	bh := a.Space.AddBody(physics.NewFixedBody(st.Pos))
	ch := a.Space.AddCollider(physics.Collider{
		Shape: physics.Cuboid(st.Half[0], st.Half[1]),
		Tags:  []string{TagWall},
	}, bh)
	w := &Wall{Body: bh, Collider: ch, Half: st.Half}
	a.Walls = append(a.Walls, w)
	return w
}

func (w *Wall) state(s *physics.Space) protocol.WallState {
	return protocol.WallState{Pos: s.Body(w.Body).Position, Half: w.Half}
}
