package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 从环境变量读取
type Config struct {
	Port      string
	WebOrigin string
	LogLevel  slog.Level

	Database Database
	Redis    Redis
	AMQP     AMQP
	Sweep    Sweep

	MaxExtensions int
	PenaltyTZ     *time.Location
}

type Database struct {
	Driver     string // postgres | sqlite
	Host       string
	User       string
	Password   string
	Name       string
	Port       string
	SSLMode    string
	SQLitePath string
}

type Redis struct {
	Addr     string
	Password string
}

// AMQP 为空 URL 时通知只写日志
type AMQP struct {
	URL      string
	Exchange string
	Retries  int
}

type Sweep struct {
	Interval time.Duration
	LockTTL  time.Duration
}

func Load() (Config, error) {
	interval, err := duration("SWEEP_INTERVAL", 4*time.Hour)
	if err != nil {
		return Config{}, err
	}
	lockTTL, err := duration("SWEEP_LOCK_TTL", 10*time.Minute)
	if err != nil {
		return Config{}, err
	}
	maxExt, err := integer("MAX_EXTENSIONS", 0)
	if err != nil {
		return Config{}, err
	}
	retries, err := integer("NOTIFY_RETRIES", 3)
	if err != nil {
		return Config{}, err
	}
	loc, err := time.LoadLocation(getenv("PENALTY_TZ", "Local"))
	if err != nil {
		return Config{}, fmt.Errorf("PENALTY_TZ: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return Config{
		Port:      getenv("PORT", "3001"),
		WebOrigin: getenv("WEB_ORIGIN", "http://localhost:5173"),
		LogLevel:  level,
		Database: Database{
			Driver:     strings.ToLower(getenv("DB_DRIVER", "postgres")),
			Host:       getenv("DB_HOST", "127.0.0.1"),
			User:       getenv("DB_USER", "postgres"),
			Password:   os.Getenv("DB_PASSWORD"),
			Name:       getenv("DB_NAME", "lending"),
			Port:       getenv("DB_PORT", "5432"),
			SSLMode:    getenv("DB_SSLMODE", "disable"),
			SQLitePath: getenv("SQLITE_PATH", "data/lending.db"),
		},
		Redis: Redis{
			Addr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		AMQP: AMQP{
			URL:      os.Getenv("AMQP_URL"),
			Exchange: getenv("AMQP_EXCHANGE", "lending.notifications"),
			Retries:  retries,
		},
		Sweep: Sweep{
			Interval: interval,
			LockTTL:  lockTTL,
		},
		MaxExtensions: maxExt,
		PenaltyTZ:     loc,
	}, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func duration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive", k)
	}
	return d, nil
}

func integer(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s: must not be negative", k)
	}
	return n, nil
}
