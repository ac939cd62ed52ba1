package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.HeartbeatInterval = 50 * time.Millisecond
	return cfg
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// pollUntil 轮询直到拿到消息或出现非 WouldBlock 错误
func pollUntil(t *testing.T, c Conn, timeout time.Duration) ([]byte, error) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		msg, err := c.Poll()
		if err != ErrWouldBlock {
			return msg, err
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("poll timed out after %v", timeout)
	return nil, nil
}

func echoServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := Upgrade(w, r, testConfig())
		if err != nil {
			return
		}
		go func() {
			for {
				msg, err := s.Poll()
				if err == ErrWouldBlock {
					time.Sleep(time.Millisecond)
					continue
				}
				if err != nil {
					return
				}
				_ = s.TrySend(msg)
			}
		}()
	}))
}

func TestSocketEcho(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	c, err := Dial(context.Background(), wsURL(srv), testConfig())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if _, err := c.Poll(); err != ErrWouldBlock {
		t.Fatalf("poll on idle socket = %v, want ErrWouldBlock", err)
	}
	if err := c.TrySend([]byte{1, 2, 3}); err != nil {
		t.Fatalf("send: %v", err)
	}
	msg, err := pollUntil(t, c, 2*time.Second)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if string(msg) != string([]byte{1, 2, 3}) {
		t.Fatalf("echo = %v", msg)
	}
}

func TestSocketClosed(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	c, err := Dial(context.Background(), wsURL(srv), testConfig())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = c.Close()
	_ = c.Close()
	if err := c.TrySend([]byte{1}); err != ErrClosed {
		t.Fatalf("send after close = %v, want ErrClosed", err)
	}
	if _, err := c.Poll(); err != ErrClosed {
		t.Fatalf("poll after close = %v, want ErrClosed", err)
	}
}

func TestSocketRejectsTextFrames(t *testing.T) {
	got := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := Upgrade(w, r, testConfig())
		if err != nil {
			got <- err
			return
		}
		go func() {
			for {
				_, err := s.Poll()
				if err == ErrWouldBlock {
					time.Sleep(time.Millisecond)
					continue
				}
				got <- err
				return
			}
		}()
	}))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()
	if err := ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"move"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case err := <-got:
		if err != ErrProtocol {
			t.Fatalf("poll err = %v, want ErrProtocol", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("server never saw the text frame")
	}
}

func TestSocketPeerClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := Upgrade(w, r, testConfig())
		if err != nil {
			return
		}
		_ = s.TrySend([]byte{9})
		time.Sleep(20 * time.Millisecond)
		_ = s.Close()
	}))
	defer srv.Close()

	c, err := Dial(context.Background(), wsURL(srv), testConfig())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	msg, err := pollUntil(t, c, 2*time.Second)
	if err != nil || len(msg) != 1 || msg[0] != 9 {
		t.Fatalf("first poll = %v, %v", msg, err)
	}
	if _, err := pollUntil(t, c, 2*time.Second); err != ErrClosed {
		t.Fatalf("poll after peer close = %v, want ErrClosed", err)
	}
}
