package config

import (
	"log/slog"

	"github.com/joho/godotenv"
)

// LoadEnv 读取 .env；文件不存在时沿用进程环境变量
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}
}
