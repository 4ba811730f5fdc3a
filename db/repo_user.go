package db

import (
	"context"
	"errors"
	"fmt"

	"Gin_postgres_redis_lending/lending"
	"Gin_postgres_redis_lending/models"

	"gorm.io/gorm"
)

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// 按 ID 查
func (r *Repo) FindUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.read(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, findErr(err, "user", id)
	}
	return &u, nil
}

func (r *Repo) SaveUser(ctx context.Context, u *models.User) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"email":      u.Email,
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"balance":    u.Balance,
		})
	return updated(res, "user", u.ID)
}

// 预约由外键级联删除；调用方应先通过 engine 取消预约归还库存
func (r *Repo) DeleteUser(ctx context.Context, id string) error {
	q := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if q.Error != nil {
		return classify(fmt.Errorf("delete user %s: %w", id, q.Error))
	}
	if q.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", id, lending.ErrNotFound)
	}
	return nil
}
