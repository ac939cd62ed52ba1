package server

import (
	"sync/atomic"
)

// Metrics 记录服务器运行期的关键指标（用于监控与调试）
type Metrics struct {
	TickCount    int64 // 统计的 Tick 次数
	TotalTickNs  int64 // Tick 累计耗时（纳秒）
	PacketsIn    int64 // 收到的包
	PacketsOut   int64 // 发出的包（按连接累计）
	Malformed    int64 // 因无法解码被丢弃的批次
	Unauthorized int64 // 因无权限被拒绝的包
	Joins        int64
	Leaves       int64
	SendFailures int64 // 发送失败而被移除的连接
}

func (m *Metrics) AddIn(n int)      { atomic.AddInt64(&m.PacketsIn, int64(n)) }
func (m *Metrics) AddOut(n int)     { atomic.AddInt64(&m.PacketsOut, int64(n)) }
func (m *Metrics) IncMalformed()    { atomic.AddInt64(&m.Malformed, 1) }
func (m *Metrics) IncUnauthorized() { atomic.AddInt64(&m.Unauthorized, 1) }
func (m *Metrics) IncJoins()        { atomic.AddInt64(&m.Joins, 1) }
func (m *Metrics) IncLeaves()       { atomic.AddInt64(&m.Leaves, 1) }
func (m *Metrics) IncSendFailures() { atomic.AddInt64(&m.SendFailures, 1) }
func (m *Metrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":    tick,
		"packets_in":    atomic.LoadInt64(&m.PacketsIn),
		"packets_out":   atomic.LoadInt64(&m.PacketsOut),
		"malformed":     atomic.LoadInt64(&m.Malformed),
		"unauthorized":  atomic.LoadInt64(&m.Unauthorized),
		"joins":         atomic.LoadInt64(&m.Joins),
		"leaves":        atomic.LoadInt64(&m.Leaves),
		"send_failures": atomic.LoadInt64(&m.SendFailures),
		"avg_tick_ms":   avgMs,
	}
}
