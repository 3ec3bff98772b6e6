package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"

	"github.com/xtding233/tile-merge/internal/game"
	"github.com/xtding233/tile-merge/internal/server"
	"github.com/xtding233/tile-merge/internal/sim"
)

func newLogger(level string, dev bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func main() {
	configDir := flag.String("config", "./configs", "base directory holding profiles/")
	httpAddr := flag.String("http-addr", ":8080", "HTTP listen address; empty disables")
	grpcAddr := flag.String("grpc-addr", ":9090", "gRPC listen address; empty disables")
	logLevel := flag.String("log-level", "info", "debug|info|warn|error")
	dev := flag.Bool("dev", false, "human-readable development logging")
	checkProfile := flag.String("check", "", "profile to smoke-test with a short simulation before serving")
	flag.Parse()

	log, err := newLogger(*logLevel, *dev)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	loader := game.NewLoader(*configDir)
	if _, _, err := loader.Resolve(game.DefaultProfile, game.Overrides{}); err != nil {
		log.Fatal("load default profile", zap.String("dir", *configDir), zap.Error(err))
	}
	if *checkProfile != "" {
		_, cfg, err := loader.Resolve(*checkProfile, game.Overrides{})
		if err != nil {
			log.Fatal("load profile", zap.String("profile", *checkProfile), zap.Error(err))
		}
		res, err := sim.Run(sim.Params{Config: cfg, Trials: 200, Seed: 1, Logger: log})
		if err != nil {
			log.Fatal("profile check", zap.String("profile", *checkProfile), zap.Error(err))
		}
		log.Info("profile check",
			zap.String("profile", *checkProfile),
			zap.Float64("score_mean", res.Score.Mean),
			zap.Float64("score_p90", res.Score.P90),
			zap.Int("cascade_max", res.Cascade.Max),
			zap.Int("cap_hits", res.CapHits),
		)
	}

	watcher, err := game.WatchProfiles(loader, log)
	if err != nil {
		log.Warn("profile hot reload disabled", zap.Error(err))
	} else {
		defer watcher.Stop()
	}

	reg := server.NewRegistry(loader, log)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 2)

	var httpSrv *http.Server
	if *httpAddr != "" {
		httpSrv = &http.Server{
			Addr:              *httpAddr,
			Handler:           server.NewHTTP(reg, log).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("http listening", zap.String("addr", *httpAddr))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()
	}

	var grpcSrv *grpc.Server
	if *grpcAddr != "" {
		lis, err := net.Listen("tcp", *grpcAddr)
		if err != nil {
			log.Fatal("grpc listen", zap.String("addr", *grpcAddr), zap.Error(err))
		}
		grpcSrv = grpc.NewServer(grpc.UnaryInterceptor(server.UnaryLogger(log)))
		server.NewGRPC(reg).Register(grpcSrv)
		go func() {
			log.Info("grpc listening", zap.String("addr", *grpcAddr), zap.String("service", server.ServiceName))
			if err := grpcSrv.Serve(lis); err != nil {
				errc <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errc:
		log.Error("server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if httpSrv != nil {
		_ = httpSrv.Shutdown(shutdownCtx)
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	log.Info("bye", zap.Int("live_sessions", reg.Len()))
}
