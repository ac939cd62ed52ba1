package client

import (
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"arenasync/protocol"
	"arenasync/transport"
)

const dt = 1.0 / 60

type fakeConn struct {
	mu      sync.Mutex
	inbox   [][]byte
	sent    [][]byte
	sendErr error
	pollErr error
	closed  bool
}

func (c *fakeConn) TrySend(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, b)
	return nil
}

func (c *fakeConn) Poll() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.inbox) > 0 {
		msg := c.inbox[0]
		c.inbox = c.inbox[1:]
		return msg, nil
	}
	if c.pollErr != nil {
		return nil, c.pollErr
	}
	return nil, transport.ErrWouldBlock
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) push(t *testing.T, pkts ...protocol.Packet) {
	t.Helper()
	b, err := protocol.EncodeBatch(pkts)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	c.inbox = append(c.inbox, b)
}

func (c *fakeConn) batches(t *testing.T) [][]protocol.Packet {
	t.Helper()
	var out [][]protocol.Packet
	for _, b := range c.sent {
		pkts, err := protocol.DecodeBatch(b)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		out = append(out, pkts)
	}
	c.sent = nil
	return out
}

func floor() protocol.AreaSnapshot {
	return protocol.AreaSnapshot{
		ID:     "test",
		Width:  400,
		Height: 400,
		Walls:  []protocol.WallState{{Pos: mgl64.Vec2{200, 10}, Half: mgl64.Vec2{200, 10}}},
	}
}

func TestFlushSendsOneBatch(t *testing.T) {
	conn := &fakeConn{}
	io := NewClientIO(conn, nil)
	if err := io.Flush(); err != nil || len(conn.sent) != 0 {
		t.Fatalf("empty flush: err=%v sent=%d", err, len(conn.sent))
	}
	io.Send(protocol.Ping{ID: 1})
	io.Send(protocol.Ping{ID: 2})
	if err := io.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	got := conn.batches(t)
	if len(got) != 1 || len(got[0]) != 2 {
		t.Fatalf("batches=%v", got)
	}
	if io.Queued() != 0 {
		t.Fatalf("queue not cleared")
	}
}

func TestFlushErrors(t *testing.T) {
	conn := &fakeConn{sendErr: transport.ErrWouldBlock}
	io := NewClientIO(conn, nil)
	io.Send(protocol.Ping{ID: 1})
	if err := io.Flush(); !errors.Is(err, transport.ErrWouldBlock) {
		t.Fatalf("err=%v, want ErrWouldBlock", err)
	}
	if !io.Connected() || io.Queued() != 0 {
		t.Fatalf("full buffer: connected=%v queued=%d", io.Connected(), io.Queued())
	}

	conn.sendErr = transport.ErrClosed
	io.Send(protocol.Ping{ID: 2})
	if err := io.Flush(); !errors.Is(err, transport.ErrClosed) {
		t.Fatalf("err=%v, want ErrClosed", err)
	}
	if io.Connected() {
		t.Fatalf("still connected after ErrClosed")
	}
}

func TestReceiveDropsMalformedBatch(t *testing.T) {
	conn := &fakeConn{}
	conn.push(t, protocol.Ping{ID: 1})
	conn.inbox = append(conn.inbox, []byte{0xc1})
	conn.push(t, protocol.Ping{ID: 2}, protocol.Ping{ID: 3})
	conn.pollErr = transport.ErrClosed

	io := NewClientIO(conn, nil)
	got := io.Receive()
	if len(got) != 3 {
		t.Fatalf("got %d packets, want 3", len(got))
	}
	if io.Connected() {
		t.Fatalf("connection error not reported")
	}
	if again := io.Receive(); len(again) != 0 {
		t.Fatalf("receive after disconnect returned %d packets", len(again))
	}
}

func TestSessionSpawnsPlayerAfterLoad(t *testing.T) {
	conn := &fakeConn{}
	s := NewSession(5, NewClientIO(conn, nil), Options{Name: "bot", PingInterval: time.Second}, nil)
	now := time.Unix(100, 0)

	if err := s.Tick(now, dt); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if s.Player() != nil {
		t.Fatalf("player spawned before any area loaded")
	}
	conn.batches(t)

	conn.push(t, protocol.LoadArea{Area: floor()})
	if err := s.Tick(now.Add(time.Millisecond), dt); err != nil {
		t.Fatalf("tick: %v", err)
	}
	p := s.Player()
	if p == nil || !p.Owner.Is(5) {
		t.Fatalf("local player not spawned: %+v", p)
	}
	var announced bool
	for _, b := range conn.batches(t) {
		for _, pkt := range b {
			if np, ok := pkt.(protocol.NewPlayer); ok && np.ID == p.ID && np.Owner.Is(5) {
				announced = true
			}
		}
	}
	if !announced {
		t.Fatalf("NewPlayer not sent")
	}

	// 再次 Tick 不会重复生成
	if err := s.Tick(now.Add(2*time.Millisecond), dt); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if s.Player() != p {
		t.Fatalf("player respawned")
	}
}

func TestSessionPing(t *testing.T) {
	conn := &fakeConn{}
	s := NewSession(5, NewClientIO(conn, nil), Options{PingInterval: time.Second}, nil)
	now := time.Unix(100, 0)

	if err := s.Tick(now, dt); err != nil {
		t.Fatalf("tick: %v", err)
	}
	var ping protocol.Ping
	for _, b := range conn.batches(t) {
		for _, pkt := range b {
			if p, ok := pkt.(protocol.Ping); ok {
				ping = p
			}
		}
	}
	if ping.ID == 0 {
		t.Fatalf("no ping sent")
	}

	conn.push(t, ping)
	if err := s.Tick(now.Add(40*time.Millisecond), dt); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if s.Pinger.Samples() != 1 || s.Pinger.Latency() != 40*time.Millisecond {
		t.Fatalf("samples=%d latency=%v", s.Pinger.Samples(), s.Pinger.Latency())
	}
	// 间隔未到不再发送
	if len(conn.batches(t)) != 0 {
		t.Fatalf("ping sent before interval elapsed")
	}
}

func TestSessionDisconnect(t *testing.T) {
	conn := &fakeConn{pollErr: transport.ErrClosed}
	s := NewSession(5, NewClientIO(conn, nil), Options{}, nil)
	if err := s.Tick(time.Unix(100, 0), dt); err != ErrDisconnected {
		t.Fatalf("err=%v, want ErrDisconnected", err)
	}
}

func TestWanderWritesInput(t *testing.T) {
	conn := &fakeConn{}
	s := NewSession(5, NewClientIO(conn, nil), Options{Name: "bot"}, nil)
	s.Controller = NewWander(1)
	conn.push(t, protocol.LoadArea{Area: floor()})
	now := time.Unix(100, 0)
	for i := 0; i < 120; i++ {
		if err := s.Tick(now.Add(time.Duration(i)*time.Millisecond*16), dt); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if s.Player() == nil {
		t.Fatalf("no player")
	}
	if m := s.Player().Input.Move; m < -1 || m > 1 {
		t.Fatalf("move=%v out of range", m)
	}
}
