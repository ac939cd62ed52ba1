package game

import (
	"github.com/go-gl/mathgl/mgl64"

	"arenasync/physics"
)

// Pixel 纯本地的短命粒子，没有碰撞体，也不参与复制
type Pixel struct {
	Body     physics.BodyHandle
	Lifetime float64
	Despawn  bool
}

func (a *Area) addPixel(pos, vel mgl64.Vec2) *Pixel {
	body := physics.NewDynamicBody(pos)
	body.Velocity = vel
	px := &Pixel{Body: a.Space.AddBody(body), Lifetime: PixelLifetime}
	a.Pixels = append(a.Pixels, px)
	return px
}

func (px *Pixel) tick(dt float64) {
	if px.Despawn {
		return
	}
	px.Lifetime -= dt
	if px.Lifetime <= 0 {
		px.Despawn = true
	}
}

func (px *Pixel) despawned() bool { return px.Despawn }

// Release 删除刚体
func (px *Pixel) Release(s *physics.Space) {
	s.RemoveBody(px.Body)
}
