package db

import (
	"context"
	"fmt"
	"strings"

	"Gin_postgres_redis_lending/lending"
	"Gin_postgres_redis_lending/models"

	"gorm.io/gorm"
)

// Items
func (r *Repo) CreateItem(ctx context.Context, it *models.Item) error {
	if err := r.DB.WithContext(ctx).Create(it).Error; err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *Repo) FindItem(ctx context.Context, id string) (*models.Item, error) {
	var it models.Item
	if err := r.read(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, findErr(err, "item", id)
	}
	return &it, nil
}

func (r *Repo) SaveItem(ctx context.Context, it *models.Item) error {
	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ?", it.ID).
		Updates(map[string]any{
			"title":              it.Title,
			"author":             it.Author,
			"isbn":               it.ISBN,
			"genre":              it.Genre,
			"publication_year":   it.PublicationYear,
			"available_quantity": it.AvailableQuantity,
		})
	return updated(res, "item", it.ID)
}

// DeleteItem removes an item together with its reservations.
func (r *Repo) DeleteItem(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.Reservation{}).Error; err != nil {
			return classify(fmt.Errorf("delete reservations of item %s: %w", id, err))
		}
		q := tx.Where("id = ?", id).Delete(&models.Item{})
		if q.Error != nil {
			return classify(fmt.Errorf("delete item %s: %w", id, q.Error))
		}
		if q.RowsAffected == 0 {
			return fmt.Errorf("item %s: %w", id, lending.ErrNotFound)
		}
		return nil
	})
}

func (r *Repo) CountItemsByGenre(ctx context.Context) ([]lending.GenreCount, error) {
	var rows []lending.GenreCount
	err := r.DB.WithContext(ctx).Model(&models.Item{}).
		Select("genre, COUNT(id) AS count").
		Group("genre").
		Order("genre").
		Scan(&rows).Error
	return rows, err
}

// 列表（关键词匹配标题/作者）
func (r *Repo) ListItems(ctx context.Context, q string) ([]models.Item, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Item{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", like, like)
	}
	var items []models.Item
	err := tx.Order("created_at DESC").Find(&items).Error
	return items, err
}
