package lending

import (
	"context"
	"time"

	"Gin_postgres_redis_lending/models"
)

// CatalogStore looks up and persists item records.
type CatalogStore interface {
	FindItem(ctx context.Context, id string) (*models.Item, error)
	SaveItem(ctx context.Context, it *models.Item) error
	CountItemsByGenre(ctx context.Context) ([]GenreCount, error)
}

// UserDirectory looks up and persists user records.
type UserDirectory interface {
	FindUser(ctx context.Context, id string) (*models.User, error)
	SaveUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

type ReservationStore interface {
	FindReservation(ctx context.Context, id string) (*models.Reservation, error)
	CreateReservation(ctx context.Context, r *models.Reservation) error
	SaveReservation(ctx context.Context, r *models.Reservation) error
	DeleteReservation(ctx context.Context, id string) error

	// pickUpBy < now AND checkedOutAt IS NULL
	ListOverduePickups(ctx context.Context, now time.Time) ([]models.Reservation, error)
	// checkedOutAt IS NOT NULL AND dueDate < now AND returned = false
	ListOverdueCheckins(ctx context.Context, now time.Time) ([]models.Reservation, error)

	ListReservations(ctx context.Context, q ListQuery) (Page, error)
	ListReservationsByUser(ctx context.Context, userID string) ([]models.Reservation, error)
	CountReservationsByItem(ctx context.Context) ([]ItemCount, error)
	// reservedAt of every reservation made at or after since
	ListReservedSince(ctx context.Context, since time.Time) ([]time.Time, error)
}

// Repository is the full store surface. Transaction runs fn against a
// Repository bound to one transaction; lookups inside it lock the rows they read.
type Repository interface {
	CatalogStore
	UserDirectory
	ReservationStore
	Transaction(ctx context.Context, fn func(tx Repository) error) error
}

// Notifier delivers a message; delivery is not confirmed.
type Notifier interface {
	Send(ctx context.Context, address, subject, body string) error
}

type GenreCount struct {
	Genre string `json:"genre"`
	Count int64  `json:"count"`
}

type ItemCount struct {
	ItemID string `json:"itemId"`
	Title  string `json:"title"`
	Count  int64  `json:"count"`
}
