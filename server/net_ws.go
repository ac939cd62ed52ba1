package server

import (
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"arenasync/protocol"
	"arenasync/transport"
)

var (
	// ErrDuplicateClient 同一个 ClientID 已经连接
	ErrDuplicateClient = errors.New("server: duplicate client id")
	// ErrHandshakeTimeout 客户端没有及时发送 ID
	ErrHandshakeTimeout = errors.New("server: handshake timed out")
)

type peerState uint8

const (
	peerConnecting peerState = iota
	peerOpen
	peerDisconnected
)

// peer 服务器端的一个连接及其待发送队列
type peer struct {
	id    protocol.ClientID
	conn  transport.Conn
	queue []protocol.Packet
	state peerState
}

// Inbound 收到的一个包及其发送方
type Inbound struct {
	From   protocol.ClientID
	Packet protocol.Packet
}

// Incoming 一次 Receive 的结果
type Incoming struct {
	Joined  []protocol.ClientID
	Left    []protocol.ClientID
	Packets []Inbound
}

// ServerIO 服务器的复制端点：每个连接一条出站队列，每帧统一 Flush。
// Accept 来自 HTTP 协程，其余方法只由 Tick 协程调用。
type ServerIO struct {
	cfg     transport.Config
	metrics *Metrics
	log     *zap.SugaredLogger

	mu      deadlock.Mutex
	pending []*peer
	known   map[protocol.ClientID]struct{}

	peers map[protocol.ClientID]*peer
	left  []protocol.ClientID
	open  int64
}

// NewServerIO 创建服务器端点
func NewServerIO(cfg transport.Config, metrics *Metrics, log *zap.SugaredLogger) *ServerIO {
	if metrics == nil {
		metrics = &Metrics{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ServerIO{
		cfg:     cfg,
		metrics: metrics,
		log:     log,
		known:   make(map[protocol.ClientID]struct{}),
		peers:   make(map[protocol.ClientID]*peer),
	}
}

// Accept 登记一个完成握手的连接，下一次 Receive 时报告为 Joined
func (s *ServerIO) Accept(id protocol.ClientID, conn transport.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.known[id]; dup {
		return ErrDuplicateClient
	}
	s.known[id] = struct{}{}
	s.pending = append(s.pending, &peer{id: id, conn: conn, state: peerConnecting})
	return nil
}

// PeerCount 已打开的连接数，可从任意协程读取
func (s *ServerIO) PeerCount() int {
	return int(atomic.LoadInt64(&s.open))
}

// SendAll 发给所有连接
func (s *ServerIO) SendAll(p protocol.Packet) {
	for _, pr := range s.peers {
		pr.queue = append(pr.queue, p)
	}
}

// SendAllExcept 发给除 except 外的所有连接（转发）
func (s *ServerIO) SendAllExcept(except protocol.ClientID, p protocol.Packet) {
	for id, pr := range s.peers {
		if id != except {
			pr.queue = append(pr.queue, p)
		}
	}
}

// SendOne 只发给一个连接；连接不存在时丢弃
func (s *ServerIO) SendOne(to protocol.ClientID, p protocol.Packet) {
	if pr, ok := s.peers[to]; ok {
		pr.queue = append(pr.queue, p)
	}
}

// FlushAll 每个连接的队列编码成一个批次发出。
// 发送失败（包括缓冲区满）的连接被移除，不影响其他连接。
func (s *ServerIO) FlushAll() int {
	failed := 0
	for _, id := range s.ids() {
		pr := s.peers[id]
		if len(pr.queue) == 0 {
			continue
		}
		n := len(pr.queue)
		b, err := protocol.EncodeBatch(pr.queue)
		clear(pr.queue)
		pr.queue = pr.queue[:0]
		if err != nil {
			s.log.Errorw("encode batch failed", "client", id, "err", err)
			continue
		}
		if err := pr.conn.TrySend(b); err != nil {
			s.log.Warnw("send failed, dropping client", "client", id, "err", err)
			s.metrics.IncSendFailures()
			s.purge(pr)
			failed++
			continue
		}
		s.metrics.AddOut(n)
	}
	return failed
}

// Receive 取出新连接、断开的连接以及所有已到达的包（按连接 ID 排序，连接内保持顺序）
func (s *ServerIO) Receive() Incoming {
	var in Incoming
	in.Left, s.left = s.left, nil

	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, pr := range pending {
		pr.state = peerOpen
		s.peers[pr.id] = pr
		atomic.AddInt64(&s.open, 1)
		s.metrics.IncJoins()
		in.Joined = append(in.Joined, pr.id)
	}

	for _, id := range s.ids() {
		pr := s.peers[id]
		for {
			msg, err := pr.conn.Poll()
			if err == transport.ErrWouldBlock {
				break
			}
			if err != nil {
				s.log.Infow("client disconnected", "client", id, "err", err)
				s.purge(pr)
				break
			}
			pkts, err := protocol.DecodeBatch(msg)
			if err != nil {
				s.log.Warnw("malformed batch dropped", "client", id, "err", err)
				s.metrics.IncMalformed()
				continue
			}
			s.metrics.AddIn(len(pkts))
			for _, p := range pkts {
				in.Packets = append(in.Packets, Inbound{From: id, Packet: p})
			}
		}
	}
	in.Left = append(in.Left, s.left...)
	s.left = nil
	return in
}

// Close 关闭所有连接
func (s *ServerIO) Close() error {
	var err error
	for _, pr := range s.peers {
		err = multierr.Append(err, pr.conn.Close())
	}
	s.mu.Lock()
	for _, pr := range s.pending {
		err = multierr.Append(err, pr.conn.Close())
	}
	s.pending = nil
	s.mu.Unlock()
	return err
}

// purge 移除连接并在下一次 Receive 中报告为 Left
func (s *ServerIO) purge(pr *peer) {
	if pr.state == peerDisconnected {
		return
	}
	pr.state = peerDisconnected
	_ = pr.conn.Close()
	delete(s.peers, pr.id)
	atomic.AddInt64(&s.open, -1)
	s.left = append(s.left, pr.id)
	s.metrics.IncLeaves()

	s.mu.Lock()
	delete(s.known, pr.id)
	s.mu.Unlock()
}

func (s *ServerIO) ids() []protocol.ClientID {
	ids := make([]protocol.ClientID, 0, len(s.peers))
	for id := range s.peers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// HandleWS WebSocket 接入：升级后等待客户端发送 ClientID，再交给 Tick 协程
func (s *ServerIO) HandleWS(w http.ResponseWriter, r *http.Request) {
	sock, err := transport.Upgrade(w, r, s.cfg)
	if err != nil {
		s.log.Warnw("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	id, err := AwaitHandshake(sock, s.cfg.HandshakeTimeout)
	if err != nil {
		s.log.Warnw("handshake failed", "remote", r.RemoteAddr, "err", err)
		_ = sock.Close()
		return
	}
	if err := s.Accept(id, sock); err != nil {
		s.log.Warnw("connection rejected", "client", id, "err", err)
		_ = sock.Close()
		return
	}
	s.log.Infow("client connected", "client", id, "remote", r.RemoteAddr)
}

// AwaitHandshake 轮询直到收到握手消息或超时
func AwaitHandshake(c transport.Conn, timeout time.Duration) (protocol.ClientID, error) {
	deadline := time.Now().Add(timeout)
	for {
		msg, err := c.Poll()
		switch {
		case err == nil:
			return protocol.DecodeHandshake(msg)
		case err != transport.ErrWouldBlock:
			return 0, err
		case time.Now().After(deadline):
			return 0, ErrHandshakeTimeout
		}
		time.Sleep(time.Millisecond)
	}
}
