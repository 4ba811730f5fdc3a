// controllers/srv.go
package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"Gin_postgres_redis_lending/app"
	"Gin_postgres_redis_lending/db"
	"Gin_postgres_redis_lending/lending"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Srv struct {
	Engine *lending.Engine
	Repo   *db.Repo
	Log    *slog.Logger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{Engine: a.Engine, Repo: a.Repo, Log: a.Log}
}

// --- helpers ---

// 路径中的 id 必须是 UUID
func pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid " + name})
		return "", false
	}
	return id, true
}

// fail 把领域错误映射成 HTTP 状态码
func (s *Srv) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lending.ErrNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
	case errors.Is(err, lending.ErrInvalidState), errors.Is(err, db.ErrEmailTaken):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	case errors.Is(err, lending.ErrInvalidSort):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	default:
		s.Log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
	}
}
