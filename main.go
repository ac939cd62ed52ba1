package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arenasync/config"
	"arenasync/game"
	"arenasync/logger"
	"arenasync/server"
)

// arenasync 入口：加载场景，启动 WebSocket 服务与 Tick 循环
func main() {
	envFile := os.Getenv("ARENA_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		panic(err)
	}
	// 命令行参数覆盖配置文件与环境变量
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "server listen address, e.g. :8080")
	flag.IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "ticks per second")
	flag.StringVar(&cfg.ArenaFile, "arena", cfg.ArenaFile, "arena file to load (empty: built-in arena)")
	flag.StringVar(&cfg.SaveFile, "save", cfg.SaveFile, "file written by /admin/save")
	flag.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug/info/warn/error")
	flag.BoolVar(&cfg.LogConsole, "log-console", cfg.LogConsole, "also log to stderr")
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	if err := logger.InitLogger(logger.Options{File: cfg.LogFile, Level: cfg.LogLevel, Console: cfg.LogConsole}); err != nil {
		panic(err)
	}
	defer logger.SyncLogger()

	area, err := loadArena(cfg.ArenaFile)
	if err != nil {
		logger.Log.Fatalf("load arena: %v", err)
	}
	srv := server.New(cfg, []*game.Area{area}, logger.Named("server"))

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.IO.HandleWS)
	// 管理与监控接口
	mux.HandleFunc("/admin/config", srv.HandleAdminConfig)
	mux.HandleFunc("/admin/save", srv.HandleSave)
	mux.HandleFunc("/metrics", srv.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	httpSrv := &http.Server{Addr: cfg.Addr, Handler: mux}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Run(ctx)
		close(done)
	}()
	go func() {
		logger.Log.Infof("arenasync listening on %s, area %q", cfg.Addr, area.ID)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down...")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = httpSrv.Shutdown(shutdownCtx)
	cancel()
	<-done
	if err := srv.Close(); err != nil {
		logger.Log.Warnw("close connections", "err", err)
	}
}

// loadArena 读取场景文件，未指定时使用内置场景
func loadArena(path string) (*game.Area, error) {
	if path == "" {
		return game.NewAreaFromSnapshot(game.DefaultArena("arena")), nil
	}
	return game.LoadAreaFile(path)
}
