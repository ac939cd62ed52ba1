package client

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"arenasync/game"
	"arenasync/protocol"
)

// ErrDisconnected 与服务器的连接已断开
var ErrDisconnected = errors.New("client: disconnected")

// Controller 每帧写入本地玩家的输入
type Controller interface {
	Update(p *game.Player, dt float64)
}

// Options 会话参数
type Options struct {
	Name         string
	PingInterval time.Duration
	// CorrectionEvery 本地权威实体的位置修正间隔
	CorrectionEvery int
}

// Session 客户端会话：一个世界，一个连接，一个本地玩家
type Session struct {
	ID         protocol.ClientID
	World      *game.World
	IO         *ClientIO
	Pinger     *protocol.Pinger
	Controller Controller

	opts     Options
	log      *zap.SugaredLogger
	player   *game.Player
	area     *game.Area
	lastPing time.Time
}

// NewSession 创建会话，世界产生的包经 io 发往服务器
func NewSession(id protocol.ClientID, io *ClientIO, opts Options, log *zap.SugaredLogger) *Session {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = time.Second
	}
	w := game.NewWorld(protocol.ClientOwner(id), game.OutboxFunc(io.Send), log.Named("world"))
	if opts.CorrectionEvery > 0 {
		w.CorrectionEvery = opts.CorrectionEvery
	}
	return &Session{
		ID:     id,
		World:  w,
		IO:     io,
		Pinger: protocol.NewPinger(),
		opts:   opts,
		log:    log,
	}
}

// Player 本地玩家，尚未加入区域时为 nil
func (s *Session) Player() *game.Player { return s.player }

// Tick 一帧：接收并应用 → 生成本地玩家 → 控制器 → 推进世界 → Ping → 发送
func (s *Session) Tick(now time.Time, dt float64) error {
	for _, p := range s.IO.Receive() {
		if ping, ok := p.(protocol.Ping); ok {
			if rtt, ok := s.Pinger.Echo(ping, now); ok {
				s.log.Debugw("latency", "rtt", rtt)
			}
			continue
		}
		s.World.Apply(p)
	}
	if !s.IO.Connected() {
		return ErrDisconnected
	}

	s.ensurePlayer()
	if s.player != nil && s.Controller != nil {
		s.Controller.Update(s.player, dt)
	}
	s.World.Tick(dt)

	if now.Sub(s.lastPing) >= s.opts.PingInterval {
		s.lastPing = now
		s.IO.Send(s.Pinger.Start(now))
		if n := s.Pinger.Prune(now, 5*s.opts.PingInterval); n > 0 {
			s.log.Debugw("pings lost", "count", n)
		}
	}

	if err := s.IO.Flush(); err != nil {
		if !s.IO.Connected() {
			return ErrDisconnected
		}
		s.log.Warnw("flush failed", "err", err)
	}
	return nil
}

// ensurePlayer 第一个区域加载后生成本地玩家；区域被整体替换时重新生成
func (s *Session) ensurePlayer() {
	if s.area != nil {
		if a, ok := s.World.Area(s.area.ID); ok && a == s.area && a.Player(s.player.ID) == s.player {
			return
		}
	}
	areas := s.World.Areas()
	if len(areas) == 0 {
		s.player, s.area = nil, nil
		return
	}
	s.area = areas[0]
	s.player = s.area.SpawnPlayer(s.opts.Name)
	s.log.Infow("player spawned", "area", s.area.ID, "id", s.player.ID)
}

// Run 按固定间隔 Tick，直到 ctx 结束或连接断开
func (s *Session) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := min(now.Sub(last).Seconds(), 0.1)
			last = now
			if err := s.Tick(now, dt); err != nil {
				return err
			}
		}
	}
}
