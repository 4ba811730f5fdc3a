package db

import (
	"Gin_postgres_redis_lending/lending"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrEmailTaken = errors.New("email already exists")

// Repo implements lending.Repository on gorm. A Repo handed out by
// Transaction reads rows with SELECT ... FOR UPDATE.
type Repo struct {
	DB     *gorm.DB
	locked bool
}

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

var _ lending.Repository = (*Repo)(nil)

func (r *Repo) Transaction(ctx context.Context, fn func(tx lending.Repository) error) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repo{DB: tx, locked: true})
	})
	return classify(err)
}

// read 返回读查询；事务内加行锁
func (r *Repo) read(ctx context.Context) *gorm.DB {
	db := r.DB.WithContext(ctx)
	if r.locked {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func findErr(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, lending.ErrNotFound)
	}
	return classify(fmt.Errorf("find %s %s: %w", what, id, err))
}

func updated(res *gorm.DB, what, id string) error {
	if res.Error != nil {
		return classify(fmt.Errorf("update %s %s: %w", what, id, res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", what, id, lending.ErrNotFound)
	}
	return nil
}

// classify marks serialization failures, deadlocks and sqlite busy errors as
// lending.ErrConflict so the engine can retry them.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %w", lending.ErrConflict, err)
		}
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked {
			return fmt.Errorf("%w: %w", lending.ErrConflict, err)
		}
	}
	return err
}
