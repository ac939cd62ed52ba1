package client

import (
	"math"
	"math/rand"

	"arenasync/game"
)

// Wander 随机游走的控制器：隔一段时间换一个方向，偶尔跳跃和射击
type Wander struct {
	rng   *rand.Rand
	timer float64
	move  float64
	aim   float64
}

// NewWander 以给定种子创建控制器
func NewWander(seed int64) *Wander {
	return &Wander{rng: rand.New(rand.NewSource(seed))}
}

func (w *Wander) Update(p *game.Player, dt float64) {
	w.timer -= dt
	if w.timer <= 0 {
		w.timer = 0.5 + w.rng.Float64()*1.5
		w.move = float64(w.rng.Intn(3) - 1)
		w.aim = w.rng.Float64() * 2 * math.Pi
	}
	p.Input.Move = w.move
	p.Input.Aim = w.aim
	p.Input.Jump = w.rng.Float64() < 0.02
	p.Input.Fire = w.rng.Float64() < 0.05
	p.Input.Use = w.rng.Float64() < 0.01
	if w.rng.Float64() < 0.01 {
		p.Input.SelectSlot = 1 + w.rng.Intn(game.InventorySize)
	}
}
