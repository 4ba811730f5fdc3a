package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"Gin_postgres_redis_lending/config"
	"Gin_postgres_redis_lending/db"
	"Gin_postgres_redis_lending/lending"
	"Gin_postgres_redis_lending/notify"
	"Gin_postgres_redis_lending/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router  *gin.Engine
	DB      *gorm.DB
	RDB     *redis.Client
	Repo    *db.Repo
	Engine  *lending.Engine
	Sweeper *scheduler.Sweeper
	Config  config.Config
	Log     *slog.Logger

	closers []io.Closer
}

// NewLogger installs a JSON slog handler as the process default.
func NewLogger(level slog.Level) *slog.Logger {
	l := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(l)
	return l
}

// Open connects the database and notifier and builds the engine. It is
// enough for one-shot commands; New adds Redis, the sweeper and the router.
func Open(cfg config.Config, log *slog.Logger) (*App, error) {
	conn, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &App{DB: conn, Repo: db.NewRepo(conn), Config: cfg, Log: log}
	if sqlDB, err := conn.DB(); err == nil {
		a.closers = append(a.closers, sqlDB)
	}

	var sender lending.Notifier = notify.LogSender{Log: log}
	if cfg.AMQP.URL != "" {
		s, err := notify.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Retries, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, s)
		sender = s
	} else {
		log.Warn("AMQP_URL not set, notifications are only logged")
	}

	a.Engine = NewEngine(cfg, a.Repo, sender, log)
	return a, nil
}

func NewEngine(cfg config.Config, repo lending.Repository, sender lending.Notifier, log *slog.Logger) *lending.Engine {
	p := lending.DefaultPolicy()
	p.MaxExtensions = cfg.MaxExtensions
	if cfg.PenaltyTZ != nil {
		p.Location = cfg.PenaltyTZ
	}
	return lending.NewEngine(repo, sender, lending.WithPolicy(p), lending.WithLogger(log))
}

// New builds the full server: Open plus Redis, the sweeper and the router.
func New(cfg config.Config, log *slog.Logger) (*App, error) {
	a, err := Open(cfg, log)
	if err != nil {
		return nil, err
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		a.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	a.RDB = rdb
	a.closers = append(a.closers, rdb)

	a.Sweeper = scheduler.NewSweeper(a.Engine, scheduler.NewRedisLock(rdb, ""), cfg.Sweep.Interval, cfg.Sweep.LockTTL, log)

	// --- Gin ---
	r := gin.New()
	r.Use(gin.Recovery(), requestLog(log))
	useCORS(r, cfg.WebOrigin)
	a.Router = r
	return a, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
	a.closers = nil
}
