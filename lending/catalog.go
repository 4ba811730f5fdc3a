package lending

import (
	"context"
	"sort"
	"time"

	"Gin_postgres_redis_lending/models"
)

// UpdateItem overwrites the editable fields of a catalog item, including
// its available quantity. It is the manual correction path for stock.
func (e *Engine) UpdateItem(ctx context.Context, in models.Item) (*models.Item, error) {
	if in.AvailableQuantity < 0 {
		return nil, ErrNegativeStock
	}
	var out *models.Item
	err := e.inTx(ctx, func(tx Repository) error {
		it, err := tx.FindItem(ctx, in.ID)
		if err != nil {
			return err
		}
		it.Title = in.Title
		it.Author = in.Author
		it.ISBN = in.ISBN
		it.Genre = in.Genre
		it.PublicationYear = in.PublicationYear
		it.AvailableQuantity = in.AvailableQuantity
		if err := tx.SaveItem(ctx, it); err != nil {
			return err
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("item updated", "item_id", out.ID, "available_quantity", out.AvailableQuantity)
	return out, nil
}

func (e *Engine) CountByGenre(ctx context.Context) ([]GenreCount, error) {
	return e.repo.CountItemsByGenre(ctx)
}

// StatsWindow is how far back ReservationsPerWeek looks.
const StatsWindow = 3 // months

type WeekCount struct {
	StartDateOfWeek time.Time `json:"startDateOfWeek"`
	Count           int64     `json:"count"`
}

// ReservationsPerWeek counts reservations made in the last three months,
// grouped by the Sunday that starts their week in the policy's location.
func (e *Engine) ReservationsPerWeek(ctx context.Context) ([]WeekCount, error) {
	loc := e.policy.Location
	if loc == nil {
		loc = time.UTC
	}
	now := e.now().In(loc)
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, -StatsWindow, 0)

	stamps, err := e.repo.ListReservedSince(ctx, since.UTC())
	if err != nil {
		return nil, err
	}

	counts := map[time.Time]int64{}
	for _, ts := range stamps {
		local := ts.In(loc)
		week := CalendarDate(local.AddDate(0, 0, -int(local.Weekday())), loc)
		counts[week]++
	}
	out := make([]WeekCount, 0, len(counts))
	for week, n := range counts {
		out = append(out, WeekCount{StartDateOfWeek: week, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDateOfWeek.Before(out[j].StartDateOfWeek) })
	return out, nil
}
