package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"bumparena/config"
	"bumparena/server"
)

const shutdownTimeout = 5 * time.Second

// BumpArena 入口：加载配置，启动 HTTP + WebSocket 服务与匹配循环
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var cfgPath, addr string
	flag.StringVar(&cfgPath, "config", "config.yaml", "path to the yaml config file (created with defaults if missing)")
	flag.StringVar(&addr, "addr", "", "server listen address override, e.g. :8080")
	flag.Parse()

	loaded, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := loaded.Config
	if addr != "" {
		cfg.ListenAddr = addr
	}

	// 使用第三方 zap 日志库写入日志文件（带滚动）
	if err := server.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		return err
	}
	defer server.SyncLogger()
	for _, w := range loaded.Warnings {
		server.Log.Warnf("config: %s", w)
	}

	manager, err := server.NewManager(cfg)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", manager.HandleWS)
	// 管理与监控接口
	mux.HandleFunc("/admin/config", manager.HandleAdminConfig)
	mux.HandleFunc("/metrics", manager.HandleMetrics)
	mux.HandleFunc("/healthz", server.HandleHealthz)

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}

	// 优雅退出（Ctrl+C）
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		server.Log.Infof("BumpArena listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return manager.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		server.Log.Info("Shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return multierr.Combine(srv.Shutdown(sctx), manager.Shutdown(sctx))
	})
	return g.Wait()
}
