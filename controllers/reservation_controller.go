// controllers/reservation_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_lending/app"
	"Gin_postgres_redis_lending/lending"

	"github.com/gin-gonic/gin"
)

type ReservationController struct{ *Srv }

func NewReservationController(s *Srv) *ReservationController { return &ReservationController{Srv: s} }

// POST /reservations
func (rc *ReservationController) Reserve(c *gin.Context) {
	var in struct {
		ItemID string `json:"itemId" binding:"required,uuid"`
		UserID string `json:"userId" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	r, err := rc.Engine.Reserve(c.Request.Context(), in.ItemID, in.UserID)
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GET /reservations?page=0&size=10&sortField=dueDate&sortDirection=desc
func (rc *ReservationController) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid page"})
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid size"})
		return
	}
	q, err := lending.ParseListQuery(page, size, c.Query("sortField"), c.Query("sortDirection"))
	if err != nil {
		rc.fail(c, err)
		return
	}
	res, err := rc.Engine.List(c.Request.Context(), q)
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (rc *ReservationController) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := rc.Repo.FindReservationDetail(c.Request.Context(), id)
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// 取走
func (rc *ReservationController) CheckOut(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := rc.Engine.CheckOut(c.Request.Context(), id)
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// 归还
func (rc *ReservationController) CheckIn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := rc.Engine.CheckIn(c.Request.Context(), id)
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (rc *ReservationController) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := rc.Engine.Cancel(c.Request.Context(), id); err != nil {
		rc.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// 续借
func (rc *ReservationController) Extend(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := rc.Engine.ExtendDueDate(c.Request.Context(), id)
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// 手动触发罚金（每天最多一次）
func (rc *ReservationController) ApplyPenalty(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := rc.Engine.Get(c.Request.Context(), id)
	if err != nil {
		rc.fail(c, err)
		return
	}
	applied, err := rc.Engine.ApplyPenalty(c.Request.Context(), r.ID, r.UserID)
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"applied": applied})
}

func (rc *ReservationController) ListForUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rs, err := rc.Engine.ListForUser(c.Request.Context(), id)
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rs})
}

// 逾期未还（顺带计罚金）
func (rc *ReservationController) OverdueCheckins(c *gin.Context) {
	rs := rc.Engine.FindOverdueCheckins(c.Request.Context())
	c.JSON(http.StatusOK, app.H{"items": rs})
}

func (rc *ReservationController) OverduePickups(c *gin.Context) {
	rs, err := rc.Engine.FindOverduePickups(c.Request.Context())
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rs})
}

func (rc *ReservationController) PurgeNonPickedUp(c *gin.Context) {
	n, err := rc.Engine.PurgeNonPickedUpReservations(c.Request.Context())
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"purged": n})
}

// GET /stats/reservations-by-item
func (rc *ReservationController) CountByItem(c *gin.Context) {
	rows, err := rc.Engine.CountByItem(c.Request.Context())
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows})
}
