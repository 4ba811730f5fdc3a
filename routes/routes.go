package routes

import (
	"net/http"

	"Gin_postgres_redis_lending/app"
	"Gin_postgres_redis_lending/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	Register(r, controllers.GetSrv(a))
}

// Register mounts the API on r using the given handler dependencies.
func Register(r *gin.Engine, s *controllers.Srv) {
	rc := controllers.NewReservationController(s)
	itemCtl := controllers.NewItemController(s)
	uc := controllers.NewUserController(s)
	sc := controllers.NewStatsController(s)

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })

	api := r.Group("/api/v1")

	// ------------------------------
	// 预约生命周期
	// ------------------------------
	res := api.Group("/reservations")
	{
		res.POST("", rc.Reserve)
		res.GET("", rc.List) // ?page=&size=&sortField=&sortDirection=
		res.GET("/:id", rc.Get)
		res.PUT("/checkout/:id", rc.CheckOut)
		res.PUT("/checkin/:id", rc.CheckIn)
		res.DELETE("/cancel/:id", rc.Cancel)
		res.PUT("/:id/extend", rc.Extend)
		res.POST("/:id/penalty", rc.ApplyPenalty)
		res.GET("/userId/:id", rc.ListForUser)

		// 逾期
		res.GET("/overdue-checkins", rc.OverdueCheckins)
		res.GET("/overdue-pickups", rc.OverduePickups)
		res.POST("/purge-non-picked-up", rc.PurgeNonPickedUp)
	}

	// ------------------------------
	// 目录
	// ------------------------------
	items := api.Group("/items")
	{
		items.POST("", itemCtl.CreateItem)
		items.GET("", itemCtl.ListItems) // ?q=
		items.GET("/:id", itemCtl.GetItem)
		items.PUT("/:id", itemCtl.UpdateItem)
		items.DELETE("/:id", itemCtl.DeleteItem)
	}

	// ------------------------------
	// 用户
	// ------------------------------
	users := api.Group("/users")
	{
		users.POST("", uc.CreateUser)
		users.GET("/:id", uc.GetUser)
		users.DELETE("/:id", uc.DeleteUser)
		users.POST("/:id/settle", uc.SettleBalance)
		users.DELETE("/:id/reservations", uc.CancelReservations)
	}

	// 统计
	stats := api.Group("/stats")
	{
		stats.GET("/reservations-by-item", rc.CountByItem)
		stats.GET("/genre-count", sc.GenreCount)
		stats.GET("/reservations-over-time", sc.ReservationsOverTime)
		stats.GET("/items-inventory", sc.ItemsInventory)
	}
}
