package server

import (
	"context"
	"time"
)

// maxStep 单帧最长模拟时间，卡顿后不会一次推进过多
const maxStep = 0.1

// TickInterval 当前 Tick 间隔
func (s *Server) TickInterval() time.Duration {
	return time.Second / time.Duration(s.Settings().TickRate)
}

// Step 一帧：执行命令 → 接收并分发 → 推进世界 → 发送本帧产生的包
func (s *Server) Step(dt float64) {
	start := time.Now()
	s.drainCommands()
	s.handle(s.IO.Receive())
	s.World.Tick(min(dt, maxStep))
	s.IO.FlushAll()
	s.Metrics.AddTick(time.Since(start).Nanoseconds())
}

// Run 启动 Tick 循环（单协程推进世界），ctx 结束时返回
func (s *Server) Run(ctx context.Context) {
	interval := s.TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Step(now.Sub(last).Seconds())
			last = now
			if cur := s.TickInterval(); cur != interval {
				interval = cur
				ticker.Reset(interval)
			}
		}
	}
}
