package lending

import (
	"fmt"
	"strings"

	"Gin_postgres_redis_lending/models"
)

// SortField is a reservation column the listing can be ordered by.
type SortField string

const (
	SortByID           SortField = "id"
	SortByReservedAt   SortField = "reservedAt"
	SortByPickUpBy     SortField = "pickUpBy"
	SortByDueDate      SortField = "dueDate"
	SortByCheckedOutAt SortField = "checkedOutAt"
)

var sortColumns = map[SortField]string{
	SortByID:           "id",
	SortByReservedAt:   "reserved_at",
	SortByPickUpBy:     "pick_up_by",
	SortByDueDate:      "due_date",
	SortByCheckedOutAt: "checked_out_at",
}

// Column returns the database column behind the field.
func (f SortField) Column() string { return sortColumns[f] }

const (
	defaultPageSize = 10
	maxPageSize     = 100
	// 防止 Page*Size 溢出成负的 offset
	maxPage = 1_000_000
)

type ListQuery struct {
	Page       int // 从 0 开始
	Size       int
	SortField  SortField
	Descending bool
}

type Page struct {
	Reservations []models.Reservation `json:"content"`
	Total        int64                `json:"totalElements"`
	Page         int                  `json:"number"`
	Size         int                  `json:"size"`
}

// ParseListQuery validates raw sort parameters and normalizes paging.
// Empty field/direction fall back to id/asc.
func ParseListQuery(page, size int, field, direction string) (ListQuery, error) {
	q := ListQuery{Page: page, Size: size, SortField: SortByID}
	if f := strings.TrimSpace(field); f != "" {
		q.SortField = SortField(f)
	}
	if _, ok := sortColumns[q.SortField]; !ok {
		return ListQuery{}, fmt.Errorf("%w: unknown sort field %q", ErrInvalidSort, field)
	}
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "asc":
	case "desc":
		q.Descending = true
	default:
		return ListQuery{}, fmt.Errorf("%w: unknown sort direction %q", ErrInvalidSort, direction)
	}
	return q.normalized(), nil
}

func (q ListQuery) normalized() ListQuery {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Page > maxPage {
		q.Page = maxPage
	}
	if q.Size <= 0 {
		q.Size = defaultPageSize
	}
	if q.Size > maxPageSize {
		q.Size = maxPageSize
	}
	if _, ok := sortColumns[q.SortField]; !ok {
		q.SortField = SortByID
	}
	return q
}

// OrderClause renders the ORDER BY expression, e.g. "due_date DESC".
func (q ListQuery) OrderClause() string {
	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	return q.normalized().SortField.Column() + " " + dir
}
