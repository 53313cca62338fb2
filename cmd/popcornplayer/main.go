package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voyagen/popcornplayer/internal/cache"
	"github.com/voyagen/popcornplayer/internal/config"
	"github.com/voyagen/popcornplayer/internal/server"
	"github.com/voyagen/popcornplayer/internal/service"
	"github.com/voyagen/popcornplayer/internal/store"
	"github.com/voyagen/popcornplayer/internal/transport"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", "", "Optional config file path (YAML); else use environment variables")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := buildLogger(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var appStore store.Store
	if cfg.DatabaseURL != "" {
		if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("db", zap.Error(err))
		}
		defer pg.Close()
		appStore = pg
		log.Info("postgres connected")
	} else {
		appStore = store.NewMemory()
		log.Warn("DATABASE_URL not set, playlists are kept in memory")
	}

	var rds *cache.Redis
	var opts []service.Option
	if cfg.RedisURL != "" {
		rds, err = cache.New(cfg.RedisURL)
		if err != nil {
			log.Fatal("redis", zap.Error(err))
		}
		defer rds.Close()

		if err := rds.Ping(ctx); err != nil {
			log.Fatal("redis ping", zap.Error(err))
		}

		appStore = store.NewCachedStore(appStore, rds, log)
		opts = append(opts, service.WithLocker(service.NewRedisLocker(rds, 10*time.Minute)), service.WithQueue(rds))
		log.Info("redis connected (caching, locking and refresh queue enabled)")
	} else {
		log.Info("redis disabled (REDIS_URL not set)")
	}

	getter := transport.New(&http.Client{Timeout: cfg.Timeout}, cfg.UserAgent, log)
	svc := service.New(appStore, getter, log, opts...)

	if rds != nil {
		go runRefreshWorker(ctx, rds, svc, log.Named("worker"))
	}
	go service.NewAutoUpdater(svc, cfg.AutoUpdate).Run(ctx)

	srv := server.New(svc, cfg.ServerPort, log)
	if err := srv.ListenAndServe(ctx); err != nil {
		log.Fatal("server", zap.Error(err))
	}
}

// runRefreshWorker continuously dequeues refresh jobs from Redis and
// processes them. It stops when ctx is cancelled.
func runRefreshWorker(ctx context.Context, rds *cache.Redis, svc *service.Service, log *zap.Logger) {
	log.Info("refresh worker started")
	for {
		select {
		case <-ctx.Done():
			log.Info("refresh worker stopping")
			return
		default:
		}

		job, err := cache.Dequeue(ctx, rds, cache.RefreshQueue, 5*time.Second)
		if err != nil {
			log.Warn("dequeue", zap.Error(err))
			time.Sleep(2 * time.Second)
			continue
		}
		if job == nil {
			continue // timeout, loop back to check ctx
		}

		log.Info("processing refresh job", zap.String("playlist_id", job.PlaylistID), zap.Time("requested", job.Requested))
		if job.PlaylistID == "" {
			_, err = svc.RefreshAll(ctx)
		} else {
			_, err = svc.RefreshPlaylist(ctx, job.PlaylistID)
		}
		if err != nil {
			log.Warn("refresh job failed", zap.String("playlist_id", job.PlaylistID), zap.Error(err))
		}
	}
}

func buildLogger(level string) *zap.Logger {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	logConfig.Level.SetLevel(lvl)
	return zap.Must(logConfig.Build())
}
