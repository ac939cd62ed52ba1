package game

import "github.com/go-gl/mathgl/mgl64"

// replicated 权威方缓存的上一次已复制状态
type replicated struct {
	lastVel         mgl64.Vec2
	lastPos         mgl64.Vec2
	sinceCorrection int
}

// diff 比较当前状态与缓存：速度变化即发送；位置每 every 个 Tick 检查一次，有移动才发送
func (r *replicated) diff(pos, vel mgl64.Vec2, every int) (sendVel, sendPos bool) {
	if vel != r.lastVel {
		r.lastVel = vel
		sendVel = true
	}
	r.sinceCorrection++
	if r.sinceCorrection >= every {
		r.sinceCorrection = 0
		if pos != r.lastPos {
			r.lastPos = pos
			sendPos = true
		}
	}
	return sendVel, sendPos
}

// observe 应用了远端的状态后同步缓存，避免回显
func (r *replicated) observe(pos, vel mgl64.Vec2) {
	r.lastPos = pos
	r.lastVel = vel
}
