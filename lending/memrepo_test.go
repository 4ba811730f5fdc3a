package lending

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"Gin_postgres_redis_lending/models"
)

// memStore is an in-memory Repository. Transactions are serialized and roll
// back by restoring a snapshot when fn fails.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	items map[string]models.Item
	users map[string]models.User
	res   map[string]models.Reservation

	scanErr   error // returned by ListOverdueCheckins
	conflicts int   // Transaction calls to fail with ErrConflict before running fn
	txCalls   int
}

func newMemStore() *memStore {
	return &memStore{
		items: map[string]models.Item{},
		users: map[string]models.User{},
		res:   map[string]models.Reservation{},
	}
}

type memRepo struct{ s *memStore }

func (s *memStore) repo() *memRepo { return &memRepo{s: s} }

func (s *memStore) item(id string) models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id]
}

func (s *memStore) user(id string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *memStore) reservation(id string) (models.Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.res[id]
	return r, ok
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.res)
}

func (m *memRepo) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	s := m.s
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.txCalls++
	if s.conflicts > 0 {
		s.conflicts--
		s.mu.Unlock()
		return fmt.Errorf("serialize: %w", ErrConflict)
	}
	items, users, res := cloneMap(s.items), cloneMap(s.users), cloneMap(s.res)
	s.mu.Unlock()

	if err := fn(m); err != nil {
		s.mu.Lock()
		s.items, s.users, s.res = items, users, res
		s.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *memRepo) FindItem(_ context.Context, id string) (*models.Item, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	it, ok := m.s.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return &it, nil
}

func (m *memRepo) SaveItem(_ context.Context, it *models.Item) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.items[it.ID]; !ok {
		return fmt.Errorf("item %s: %w", it.ID, ErrNotFound)
	}
	if it.AvailableQuantity < 0 {
		return errors.New("check constraint: available_quantity >= 0")
	}
	m.s.items[it.ID] = *it
	return nil
}

func (m *memRepo) FindUser(_ context.Context, id string) (*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return &u, nil
}

func (m *memRepo) SaveUser(_ context.Context, u *models.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[u.ID]; !ok {
		return fmt.Errorf("user %s: %w", u.ID, ErrNotFound)
	}
	m.s.users[u.ID] = *u
	return nil
}

func (m *memRepo) DeleteUser(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	delete(m.s.users, id)
	return nil
}

func (m *memRepo) CountItemsByGenre(_ context.Context) ([]GenreCount, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	counts := map[string]int64{}
	for _, it := range m.s.items {
		counts[it.Genre]++
	}
	var out []GenreCount
	for g, n := range counts {
		out = append(out, GenreCount{Genre: g, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Genre < out[j].Genre })
	return out, nil
}

func (m *memRepo) FindReservation(_ context.Context, id string) (*models.Reservation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.res[id]
	if !ok {
		return nil, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	return &r, nil
}

func (m *memRepo) CreateReservation(_ context.Context, r *models.Reservation) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.res[r.ID] = *r
	return nil
}

func (m *memRepo) SaveReservation(_ context.Context, r *models.Reservation) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.res[r.ID]; !ok {
		return fmt.Errorf("reservation %s: %w", r.ID, ErrNotFound)
	}
	m.s.res[r.ID] = *r
	return nil
}

func (m *memRepo) DeleteReservation(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.res[id]; !ok {
		return fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	delete(m.s.res, id)
	return nil
}

func (m *memRepo) filter(keep func(r models.Reservation) bool) []models.Reservation {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Reservation
	for _, r := range m.s.res {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memRepo) ListOverduePickups(_ context.Context, now time.Time) ([]models.Reservation, error) {
	return m.filter(func(r models.Reservation) bool {
		return r.CheckedOutAt == nil && r.PickUpBy.Before(now)
	}), nil
}

func (m *memRepo) ListOverdueCheckins(_ context.Context, now time.Time) ([]models.Reservation, error) {
	if m.s.scanErr != nil {
		return nil, m.s.scanErr
	}
	return m.filter(func(r models.Reservation) bool {
		return r.CheckedOutAt != nil && r.DueDate != nil && r.DueDate.Before(now) && !r.Returned
	}), nil
}

func (m *memRepo) ListReservations(_ context.Context, q ListQuery) (Page, error) {
	all := m.filter(func(models.Reservation) bool { return true })
	total := len(all)
	from := q.Page * q.Size
	if from > total {
		from = total
	}
	to := from + q.Size
	if to > total {
		to = total
	}
	return Page{Reservations: all[from:to], Total: int64(total), Page: q.Page, Size: q.Size}, nil
}

func (m *memRepo) ListReservationsByUser(_ context.Context, userID string) ([]models.Reservation, error) {
	return m.filter(func(r models.Reservation) bool { return r.UserID == userID }), nil
}

func (m *memRepo) CountReservationsByItem(_ context.Context) ([]ItemCount, error) {
	counts := map[string]int64{}
	for _, r := range m.filter(func(models.Reservation) bool { return true }) {
		counts[r.ItemID]++
	}
	var out []ItemCount
	m.s.mu.Lock()
	for id, n := range counts {
		out = append(out, ItemCount{ItemID: id, Title: m.s.items[id].Title, Count: n})
	}
	m.s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

func (m *memRepo) ListReservedSince(_ context.Context, since time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, r := range m.filter(func(r models.Reservation) bool { return !r.ReservedAt.Before(since) }) {
		out = append(out, r.ReservedAt)
	}
	return out, nil
}

type sentMail struct{ To, Subject, Body string }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, address, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{address, subject, body})
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
