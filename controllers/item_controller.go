// controllers/item_controller.go
package controllers

import (
	"net/http"

	"Gin_postgres_redis_lending/app"
	"Gin_postgres_redis_lending/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ItemController struct{ *Srv }

func NewItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

type itemInput struct {
	Title             string `json:"title" binding:"required"`
	Author            string `json:"author"`
	ISBN              string `json:"isbn"`
	Genre             string `json:"genre"`
	PublicationYear   int    `json:"publicationYear"`
	AvailableQuantity int    `json:"availableQuantity" binding:"min=0"`
}

func (in itemInput) item(id string) models.Item {
	return models.Item{
		ID:                id,
		Title:             in.Title,
		Author:            in.Author,
		ISBN:              in.ISBN,
		Genre:             in.Genre,
		PublicationYear:   in.PublicationYear,
		AvailableQuantity: in.AvailableQuantity,
	}
}

// 新建目录条目
func (ic *ItemController) CreateItem(c *gin.Context) {
	var in itemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	it := in.item(uuid.NewString())
	if err := ic.Repo.CreateItem(c.Request.Context(), &it); err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

// GET /items?q=
func (ic *ItemController) ListItems(c *gin.Context) {
	items, err := ic.Repo.ListItems(c.Request.Context(), c.Query("q"))
	if err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

func (ic *ItemController) GetItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	it, err := ic.Repo.FindItem(c.Request.Context(), id)
	if err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// PUT /items/:id 整体更新，也用于人工修正库存
func (ic *ItemController) UpdateItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in itemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	it, err := ic.Engine.UpdateItem(c.Request.Context(), in.item(id))
	if err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (ic *ItemController) DeleteItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := ic.Repo.DeleteItem(c.Request.Context(), id); err != nil {
		ic.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
