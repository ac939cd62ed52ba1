package server

import (
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"

	"arenasync/config"
	"arenasync/game"
	"arenasync/protocol"
	"arenasync/transport"
)

// Settings 可在运行期通过管理接口调整的参数
type Settings struct {
	TickRate        int `json:"tickRate"`
	CorrectionEvery int `json:"correctionEvery"`
}

// Server 专用服务器：持有世界与复制端点，单协程 Tick 推进。
// HTTP 协程只能通过 Enqueue 投递命令，命令在下一次 Tick 开始时执行。
type Server struct {
	World   *game.World
	IO      *ServerIO
	Metrics *Metrics

	log      *zap.SugaredLogger
	commands chan func(*Server)
	saveFile string

	mu       deadlock.RWMutex
	settings Settings
}

// New 创建服务器并加载区域
func New(cfg config.Config, areas []*game.Area, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	tcfg := transport.DefaultConfig()
	tcfg.SendQueueSize = cfg.SendQueueSize
	tcfg.HandshakeTimeout = cfg.HandshakeTimeout

	m := &Metrics{}
	io := NewServerIO(tcfg, m, log.Named("serverio"))
	s := &Server{
		IO:       io,
		Metrics:  m,
		log:      log,
		commands: make(chan func(*Server), 64),
		saveFile: cfg.SaveFile,
		settings: Settings{TickRate: cfg.TickRate, CorrectionEvery: cfg.CorrectionEvery},
	}
	s.World = game.NewWorld(protocol.ServerOwner(), game.OutboxFunc(io.SendAll), log.Named("world"))
	s.World.CorrectionEvery = cfg.CorrectionEvery
	for _, a := range areas {
		s.World.AddArea(a)
	}
	return s
}

// Enqueue 投递一个在 Tick 协程中执行的命令（非阻塞，满则返回 false）
func (s *Server) Enqueue(cmd func(*Server)) bool {
	select {
	case s.commands <- cmd:
		return true
	default:
		return false
	}
}

// drainCommands 执行当前帧之前投递的所有命令（非阻塞 drain）
func (s *Server) drainCommands() {
	for {
		select {
		case cmd := <-s.commands:
			cmd(s)
		default:
			return
		}
	}
}

// Settings 当前参数，可从任意协程读取
func (s *Server) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// applySettings 只在 Tick 协程中调用
func (s *Server) applySettings(set Settings) {
	s.mu.Lock()
	s.settings = set
	s.mu.Unlock()
	s.World.CorrectionEvery = set.CorrectionEvery
	s.log.Infow("settings updated", "tickRate", set.TickRate, "correctionEvery", set.CorrectionEvery)
}

// saveArea 只在 Tick 协程中调用
func (s *Server) saveArea(id protocol.AreaID, path string) error {
	a, ok := s.World.Area(id)
	if !ok {
		return errUnknownArea
	}
	if path == "" {
		path = s.saveFile
	}
	return game.SaveArea(path, a)
}

// Close 关闭所有连接
func (s *Server) Close() error {
	return s.IO.Close()
}
