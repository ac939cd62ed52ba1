package protocol

import "time"

// Pinger 轻量回显测延迟：发送方记录 nonce 与发送时间，收到回显后计算耗时
type Pinger struct {
	next    uint32
	pending map[uint32]time.Time
	last    time.Duration
	samples int
}

// NewPinger 创建延迟采样器
func NewPinger() *Pinger {
	return &Pinger{pending: make(map[uint32]time.Time)}
}

// Start 生成一个新的 Ping 并记录发送时间
func (p *Pinger) Start(now time.Time) Ping {
	p.next++
	p.pending[p.next] = now
	return Ping{ID: p.next}
}

// Echo 处理回显：删除对应记录并返回本次延迟；未知 ID 返回 false
func (p *Pinger) Echo(ping Ping, now time.Time) (time.Duration, bool) {
	sent, ok := p.pending[ping.ID]
	if !ok {
		return 0, false
	}
	delete(p.pending, ping.ID)
	p.last = now.Sub(sent)
	p.samples++
	return p.last, true
}

// Prune 丢弃超过 maxAge 仍未回显的记录，返回丢弃数量
func (p *Pinger) Prune(now time.Time, maxAge time.Duration) int {
	n := 0
	for id, sent := range p.pending {
		if now.Sub(sent) > maxAge {
			delete(p.pending, id)
			n++
		}
	}
	return n
}

// Pending 未回显数量
func (p *Pinger) Pending() int { return len(p.pending) }

// Sent 是否仍在等待该 ID 的回显
func (p *Pinger) Sent(id uint32) bool {
	_, ok := p.pending[id]
	return ok
}

// Latency 最近一次采样
func (p *Pinger) Latency() time.Duration { return p.last }

// Samples 累计采样次数
func (p *Pinger) Samples() int { return p.samples }
