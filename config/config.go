package config

import (
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config 进程配置。服务器与 arena-bot 共用，各取所需字段。
type Config struct {
	Addr      string
	ServerURL string

	// TickRate 每秒 Tick 次数
	TickRate int
	// PingInterval 客户端发送 Ping 的间隔
	PingInterval time.Duration
	// CorrectionEvery 权威方每隔多少 Tick 发送一次位置修正
	CorrectionEvery int

	SendQueueSize    int
	HandshakeTimeout time.Duration

	ArenaFile string
	SaveFile  string

	LogFile    string
	LogLevel   string
	LogConsole bool

	BotName string
}

// Default 默认配置
func Default() Config {
	return Config{
		Addr:             ":8080",
		ServerURL:        "ws://localhost:8080/ws",
		TickRate:         60,
		PingInterval:     time.Second,
		CorrectionEvery:  30,
		SendQueueSize:    64,
		HandshakeTimeout: 5 * time.Second,
		SaveFile:         "arena.json",
		LogFile:          "app.log",
		LogLevel:         "info",
		BotName:          "bot",
	}
}

// TickInterval 每个 Tick 的时长
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Validate 检查取值范围
func (c Config) Validate() error {
	switch {
	case c.TickRate <= 0:
		return errors.Errorf("config: tick rate must be positive, got %d", c.TickRate)
	case c.CorrectionEvery <= 0:
		return errors.Errorf("config: correction interval must be positive, got %d", c.CorrectionEvery)
	case c.PingInterval <= 0:
		return errors.Errorf("config: ping interval must be positive, got %v", c.PingInterval)
	case c.SendQueueSize <= 0:
		return errors.Errorf("config: send queue size must be positive, got %d", c.SendQueueSize)
	case c.HandshakeTimeout <= 0:
		return errors.Errorf("config: handshake timeout must be positive, got %v", c.HandshakeTimeout)
	}
	return nil
}

// Load 读取 .env 文件（不存在时忽略），再用 ARENA_* 环境变量覆盖默认值
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Wrapf(err, "config: load %s", envFile)
		}
	}
	cfg := Default()
	o := overlay{}
	o.setString("ARENA_ADDR", &cfg.Addr)
	o.setString("ARENA_SERVER_URL", &cfg.ServerURL)
	o.setInt("ARENA_TICK_RATE", &cfg.TickRate)
	o.setDuration("ARENA_PING_INTERVAL", &cfg.PingInterval)
	o.setInt("ARENA_CORRECTION_EVERY", &cfg.CorrectionEvery)
	o.setInt("ARENA_SEND_QUEUE", &cfg.SendQueueSize)
	o.setDuration("ARENA_HANDSHAKE_TIMEOUT", &cfg.HandshakeTimeout)
	o.setString("ARENA_ARENA_FILE", &cfg.ArenaFile)
	o.setString("ARENA_SAVE_FILE", &cfg.SaveFile)
	o.setString("ARENA_LOG_FILE", &cfg.LogFile)
	o.setString("ARENA_LOG_LEVEL", &cfg.LogLevel)
	o.setBool("ARENA_LOG_CONSOLE", &cfg.LogConsole)
	o.setString("ARENA_BOT_NAME", &cfg.BotName)
	if o.err != nil {
		return Config{}, o.err
	}
	return cfg, nil
}

// overlay 记录第一个解析错误，后续字段照常跳过
type overlay struct {
	err error
}

func (o *overlay) lookup(key string) (string, bool) {
	if o.err != nil {
		return "", false
	}
	v, ok := os.LookupEnv(key)
	return v, ok && v != ""
}

func (o *overlay) setString(key string, dst *string) {
	if v, ok := o.lookup(key); ok {
		*dst = v
	}
}

func (o *overlay) setInt(key string, dst *int) {
	if v, ok := o.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			o.err = errors.Wrapf(err, "config: %s", key)
			return
		}
		*dst = n
	}
}

func (o *overlay) setDuration(key string, dst *time.Duration) {
	if v, ok := o.lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			o.err = errors.Wrapf(err, "config: %s", key)
			return
		}
		*dst = d
	}
}

func (o *overlay) setBool(key string, dst *bool) {
	if v, ok := o.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			o.err = errors.Wrapf(err, "config: %s", key)
			return
		}
		*dst = b
	}
}
