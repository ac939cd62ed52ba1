package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"arenasync/client"
	"arenasync/config"
	"arenasync/logger"
	"arenasync/protocol"
	"arenasync/transport"
)

// arena-bot 无界面客户端：连接服务器，加入区域后随机游走
func main() {
	envFile := os.Getenv("ARENA_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		panic(err)
	}
	seed := flag.Int64("seed", 0, "controller seed (0: derived from client id)")
	flag.StringVar(&cfg.ServerURL, "url", cfg.ServerURL, "server websocket url")
	flag.StringVar(&cfg.BotName, "name", cfg.BotName, "player name")
	flag.IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "ticks per second")
	flag.StringVar(&cfg.LogFile, "log", "bot.log", "log file")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug/info/warn/error")
	flag.BoolVar(&cfg.LogConsole, "log-console", true, "also log to stderr")
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	if err := logger.InitLogger(logger.Options{File: cfg.LogFile, Level: cfg.LogLevel, Console: cfg.LogConsole}); err != nil {
		panic(err)
	}
	defer logger.SyncLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	id := protocol.NewClientID()
	tcfg := transport.DefaultConfig()
	tcfg.SendQueueSize = cfg.SendQueueSize
	io, err := client.Connect(ctx, cfg.ServerURL, id, tcfg, logger.Named("clientio"))
	if err != nil {
		logger.Log.Fatalf("connect: %v", err)
	}
	defer io.Close()

	s := client.NewSession(id, io, client.Options{
		Name:            cfg.BotName,
		PingInterval:    cfg.PingInterval,
		CorrectionEvery: cfg.CorrectionEvery,
	}, logger.Named("session"))
	if *seed == 0 {
		*seed = int64(id)
	}
	s.Controller = client.NewWander(*seed)

	logger.Log.Infof("arena-bot %s connected to %s", id, cfg.ServerURL)
	if err := s.Run(ctx, cfg.TickInterval()); err != nil && err != context.Canceled {
		logger.Log.Errorw("session ended", "err", err)
	}
	logger.Log.Infow("bot stopped", "latency", s.Pinger.Latency())
}
