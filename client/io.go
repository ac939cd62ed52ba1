package client

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"arenasync/protocol"
	"arenasync/transport"
)

// ClientIO 客户端的复制端点：一条出站队列，每帧 Flush 成一个批次。
// 只由 Tick 协程调用。
type ClientIO struct {
	conn      transport.Conn
	queue     []protocol.Packet
	connected bool
	log       *zap.SugaredLogger
}

// NewClientIO 包装一个已完成握手的连接
func NewClientIO(conn transport.Conn, log *zap.SugaredLogger) *ClientIO {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ClientIO{conn: conn, connected: true, log: log}
}

// Connect 拨号并发送握手（本客户端的 ID）
func Connect(ctx context.Context, url string, id protocol.ClientID, cfg transport.Config, log *zap.SugaredLogger) (*ClientIO, error) {
	sock, err := transport.Dial(ctx, url, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "client: dial %s", url)
	}
	hs, err := protocol.EncodeHandshake(id)
	if err != nil {
		_ = sock.Close()
		return nil, err
	}
	if err := sock.TrySend(hs); err != nil {
		_ = sock.Close()
		return nil, errors.Wrap(err, "client: send handshake")
	}
	return NewClientIO(sock, log), nil
}

// Send 放入出站队列
func (c *ClientIO) Send(p protocol.Packet) {
	c.queue = append(c.queue, p)
}

// Queued 出站队列长度
func (c *ClientIO) Queued() int { return len(c.queue) }

// Flush 队列编码成一个批次发出，队列总会被清空。
// 出错不致命；连接已关闭时标记为断开。
func (c *ClientIO) Flush() error {
	if len(c.queue) == 0 {
		return nil
	}
	b, err := protocol.EncodeBatch(c.queue)
	clear(c.queue)
	c.queue = c.queue[:0]
	if err != nil {
		return err
	}
	if err := c.conn.TrySend(b); err != nil {
		if !errors.Is(err, transport.ErrWouldBlock) {
			c.connected = false
		}
		return errors.Wrap(err, "client: flush")
	}
	return nil
}

// Receive 取出所有已到达的包。无法解码的批次整个丢弃；
// 连接出错时返回已取到的部分并标记为断开。
func (c *ClientIO) Receive() []protocol.Packet {
	var out []protocol.Packet
	for c.connected {
		msg, err := c.conn.Poll()
		if errors.Is(err, transport.ErrWouldBlock) {
			break
		}
		if err != nil {
			c.log.Infow("connection lost", "err", err)
			c.connected = false
			break
		}
		pkts, err := protocol.DecodeBatch(msg)
		if err != nil {
			c.log.Warnw("malformed batch dropped", "err", err)
			continue
		}
		out = append(out, pkts...)
	}
	return out
}

// Connected 连接是否仍然可用
func (c *ClientIO) Connected() bool { return c.connected }

// Close 关闭连接
func (c *ClientIO) Close() error {
	c.connected = false
	return c.conn.Close()
}
