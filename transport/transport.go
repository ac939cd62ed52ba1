package transport

import (
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrWouldBlock 缓冲区满（发送）或暂无数据（接收），下一帧再试即可
	ErrWouldBlock = errors.New("transport: would block")
	// ErrClosed 连接已关闭
	ErrClosed = errors.New("transport: connection closed")
	// ErrProtocol 对端发送了非二进制帧
	ErrProtocol = errors.New("transport: protocol violation")
)

// Conn 非阻塞的消息连接。一条消息对应一个完整的批次。
// TrySend 与 Poll 都不会阻塞调用方的 Tick。
type Conn interface {
	// TrySend 将消息放入发送缓冲；满时返回 ErrWouldBlock
	TrySend(msg []byte) error
	// Poll 取出下一条已收到的消息；没有时返回 ErrWouldBlock
	Poll() ([]byte, error)
	Close() error
}

// Config 连接参数
type Config struct {
	SendQueueSize     int
	RecvQueueSize     int
	WriteTimeout      time.Duration
	ReadTimeout       time.Duration
	HeartbeatInterval time.Duration
	MaxMessageSize    int64
	// HandshakeTimeout 服务器等待客户端 ID 的最长时间
	HandshakeTimeout time.Duration
}

// DefaultConfig 默认参数
func DefaultConfig() Config {
	return Config{
		SendQueueSize:     64,
		RecvQueueSize:     256,
		WriteTimeout:      5 * time.Second,
		ReadTimeout:       60 * time.Second,
		HeartbeatInterval: 20 * time.Second,
		MaxMessageSize:    1 << 20, // 1MB
		HandshakeTimeout:  5 * time.Second,
	}
}
