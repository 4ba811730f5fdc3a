package db

import (
	"context"
	"fmt"
	"time"

	"Gin_postgres_redis_lending/lending"
	"Gin_postgres_redis_lending/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repo) FindReservation(ctx context.Context, id string) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.read(ctx).First(&res, "id = ?", id).Error; err != nil {
		return nil, findErr(err, "reservation", id)
	}
	return &res, nil
}

// FindReservationDetail 附带物品与用户，供 API 展示
func (r *Repo) FindReservationDetail(ctx context.Context, id string) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.DB.WithContext(ctx).Preload("Item").Preload("User").First(&res, "id = ?", id).Error; err != nil {
		return nil, findErr(err, "reservation", id)
	}
	return &res, nil
}

func (r *Repo) CreateReservation(ctx context.Context, res *models.Reservation) error {
	if err := r.DB.WithContext(ctx).Omit(clause.Associations).Create(res).Error; err != nil {
		return classify(fmt.Errorf("insert reservation: %w", err))
	}
	return nil
}

// item_id / user_id / reserved_at / pick_up_by 创建后不再变
func (r *Repo) SaveReservation(ctx context.Context, res *models.Reservation) error {
	q := r.DB.WithContext(ctx).Model(&models.Reservation{}).
		Where("id = ?", res.ID).
		Updates(map[string]any{
			"checked_out_at":          res.CheckedOutAt,
			"due_date":                res.DueDate,
			"returned":                res.Returned,
			"extensions":              res.Extensions,
			"last_penalty_applied_on": res.LastPenaltyAppliedOn,
		})
	return updated(q, "reservation", res.ID)
}

func (r *Repo) DeleteReservation(ctx context.Context, id string) error {
	q := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Reservation{})
	if q.Error != nil {
		return classify(fmt.Errorf("delete reservation %s: %w", id, q.Error))
	}
	if q.RowsAffected == 0 {
		return fmt.Errorf("reservation %s: %w", id, lending.ErrNotFound)
	}
	return nil
}

func (r *Repo) ListOverduePickups(ctx context.Context, now time.Time) ([]models.Reservation, error) {
	var ls []models.Reservation
	err := r.DB.WithContext(ctx).
		Where("pick_up_by < ? AND checked_out_at IS NULL", now.UTC()).
		Order("pick_up_by").
		Find(&ls).Error
	if err != nil {
		return nil, fmt.Errorf("list overdue pickups: %w", err)
	}
	return ls, nil
}

func (r *Repo) ListOverdueCheckins(ctx context.Context, now time.Time) ([]models.Reservation, error) {
	var ls []models.Reservation
	err := r.DB.WithContext(ctx).
		Where("checked_out_at IS NOT NULL AND due_date < ? AND returned = ?", now.UTC(), false).
		Order("due_date").
		Find(&ls).Error
	if err != nil {
		return nil, fmt.Errorf("list overdue checkins: %w", err)
	}
	return ls, nil
}

func (r *Repo) ListReservations(ctx context.Context, q lending.ListQuery) (lending.Page, error) {
	// Session 让 Count 与 Find 各自从同一基础查询出发
	tx := r.DB.WithContext(ctx).Model(&models.Reservation{}).Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return lending.Page{}, err
	}

	var rs []models.Reservation
	if err := tx.
		Order(q.OrderClause()).
		Offset(q.Page * q.Size).
		Limit(q.Size).
		Find(&rs).Error; err != nil {
		return lending.Page{}, err
	}
	return lending.Page{Reservations: rs, Total: total, Page: q.Page, Size: q.Size}, nil
}

func (r *Repo) ListReservationsByUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	var rs []models.Reservation
	if err := r.read(ctx).
		Where("user_id = ?", userID).
		Order("reserved_at DESC").
		Find(&rs).Error; err != nil {
		return nil, classify(err)
	}
	return rs, nil
}

// 统计：每个物品的预约数
func (r *Repo) CountReservationsByItem(ctx context.Context) ([]lending.ItemCount, error) {
	var rows []lending.ItemCount
	err := r.DB.WithContext(ctx).
		Table(models.ReservationTable + " r").
		Select("r.item_id AS item_id, i.title AS title, COUNT(r.id) AS count").
		Joins("JOIN " + models.ItemTable + " i ON i.id = r.item_id").
		Group("r.item_id, i.title").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *Repo) ListReservedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var out []time.Time
	err := r.DB.WithContext(ctx).Model(&models.Reservation{}).
		Where("reserved_at >= ?", since).
		Order("reserved_at").
		Pluck("reserved_at", &out).Error
	return out, err
}
