package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// Socket 基于 gorilla/websocket 的 Conn 实现：
// 读写各一个协程，Tick 侧只通过带缓冲的通道交互
type Socket struct {
	ws   *websocket.Conn
	cfg  Config
	send chan []byte
	recv chan []byte
	done chan struct{}

	closeOnce sync.Once
	mu        sync.Mutex
	reason    error
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// NewSocket 包装已建立的 websocket 连接并启动读写协程
func NewSocket(ws *websocket.Conn, cfg Config) *Socket {
	s := &Socket{
		ws:   ws,
		cfg:  cfg,
		send: make(chan []byte, cfg.SendQueueSize),
		recv: make(chan []byte, cfg.RecvQueueSize),
		done: make(chan struct{}),
	}
	go s.writePump()
	go s.readPump()
	return s
}

// Upgrade 在 HTTP 处理函数中升级连接
func Upgrade(w http.ResponseWriter, r *http.Request, cfg Config) (*Socket, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, errors.Wrap(err, "transport: upgrade")
	}
	return NewSocket(ws, cfg), nil
}

// Dial 连接服务器
func Dial(ctx context.Context, url string, cfg Config) (*Socket, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "transport: dial %s", url)
	}
	return NewSocket(ws, cfg), nil
}

// TrySend 非阻塞发送
func (s *Socket) TrySend(msg []byte) error {
	select {
	case <-s.done:
		return s.err()
	default:
	}
	select {
	case s.send <- msg:
		return nil
	default:
		return ErrWouldBlock
	}
}

// Poll 非阻塞接收。连接关闭后仍会先交出已缓冲的消息。
func (s *Socket) Poll() ([]byte, error) {
	select {
	case msg := <-s.recv:
		return msg, nil
	default:
	}
	select {
	case <-s.done:
		select {
		case msg := <-s.recv:
			return msg, nil
		default:
		}
		return nil, s.err()
	default:
		return nil, ErrWouldBlock
	}
}

// Close 关闭连接，可重复调用
func (s *Socket) Close() error {
	s.shutdown(ErrClosed)
	return nil
}

// Done 连接结束时关闭
func (s *Socket) Done() <-chan struct{} { return s.done }

// RemoteAddr 对端地址
func (s *Socket) RemoteAddr() string { return s.ws.RemoteAddr().String() }

func (s *Socket) shutdown(reason error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.reason = reason
		s.mu.Unlock()
		close(s.done)
	})
}

func (s *Socket) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reason == nil {
		return ErrClosed
	}
	return s.reason
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定时发送心跳
func (s *Socket) writePump() {
	heartbeat := time.NewTicker(s.cfg.HeartbeatInterval)
	defer func() {
		heartbeat.Stop()
		_ = s.ws.Close()
	}()
	for {
		select {
		case msg := <-s.send:
			_ = s.ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.ws.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				s.shutdown(ErrClosed)
				return
			}
		case <-heartbeat.C:
			if err := s.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout)); err != nil {
				s.shutdown(ErrClosed)
				return
			}
		case <-s.done:
			_ = s.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(s.cfg.WriteTimeout))
			return
		}
	}
}

// readPump 读取对端消息放入 recv；非二进制帧视为协议错误
func (s *Socket) readPump() {
	defer func() { _ = s.ws.Close() }()
	s.ws.SetReadLimit(s.cfg.MaxMessageSize)
	_ = s.ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	for {
		typ, payload, err := s.ws.ReadMessage()
		if err != nil {
			s.shutdown(ErrClosed)
			return
		}
		if typ != websocket.BinaryMessage {
			s.shutdown(ErrProtocol)
			return
		}
		_ = s.ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		select {
		case s.recv <- payload:
		case <-s.done:
			return
		}
	}
}
