package controllers

import (
	"net/http"

	"Gin_postgres_redis_lending/app"

	"github.com/gin-gonic/gin"
)

type StatsController struct{ *Srv }

func NewStatsController(s *Srv) *StatsController { return &StatsController{Srv: s} }

func (sc *StatsController) GenreCount(c *gin.Context) {
	rows, err := sc.Engine.CountByGenre(c.Request.Context())
	if err != nil {
		sc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"genres": rows})
}

// 近三个月每周（周日起）的预约数
func (sc *StatsController) ReservationsOverTime(c *gin.Context) {
	rows, err := sc.Engine.ReservationsPerWeek(c.Request.Context())
	if err != nil {
		sc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"weeks": rows})
}

func (sc *StatsController) ItemsInventory(c *gin.Context) {
	items, err := sc.Repo.ListItems(c.Request.Context(), "")
	if err != nil {
		sc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}
