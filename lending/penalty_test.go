package lending

import (
	"context"
	"testing"
	"time"

	"Gin_postgres_redis_lending/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkedOut(t *testing.T, f *fixture, itemID, userID string) *models.Reservation {
	t.Helper()
	ctx := context.Background()
	r, err := f.engine.Reserve(ctx, itemID, userID)
	require.NoError(t, err)
	r, err = f.engine.CheckOut(ctx, r.ID)
	require.NoError(t, err)
	return r
}

func TestOverdueScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.engine.Reserve(ctx, itemA, userU)
	require.NoError(t, err)
	assert.Equal(t, 0, f.store.item(itemA).AvailableQuantity)

	f.at(1 * day)
	r, err = f.engine.CheckOut(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(15*day), *r.DueDate)

	f.at(20 * day)
	overdue := f.engine.FindOverdueCheckins(ctx)
	require.Len(t, overdue, 1)
	assert.Equal(t, 0.5, f.store.user(userU).Balance)

	got, _ := f.store.reservation(r.ID)
	require.NotNil(t, got.LastPenaltyAppliedOn)
	assert.Equal(t, CalendarDate(t0.Add(20*day), time.UTC), *got.LastPenaltyAppliedOn)

	// 同一天第二次扫描
	f.at(20*day + 4*time.Hour)
	f.engine.FindOverdueCheckins(ctx)
	assert.Equal(t, 0.5, f.store.user(userU).Balance)
	assert.Equal(t, 1, f.notify.count())

	f.at(21 * day)
	f.engine.FindOverdueCheckins(ctx)
	assert.Equal(t, 1.0, f.store.user(userU).Balance)
	assert.Equal(t, 2, f.notify.count())
}

func TestApplyPenaltyOncePerDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := checkedOut(t, f, itemB, userU)

	f.at(16 * day)
	applied, err := f.engine.ApplyPenalty(ctx, r.ID, userU)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = f.engine.ApplyPenalty(ctx, r.ID, userU)
	require.NoError(t, err)
	assert.False(t, applied)

	assert.Equal(t, 0.5, f.store.user(userU).Balance)
	require.Len(t, f.notify.sent, 1)
	assert.Equal(t, sentMail{"u@example.com", OverdueSubject, OverdueBody}, f.notify.sent[0])
}

func TestApplyPenaltyIsPerReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r1 := checkedOut(t, f, itemB, userU)
	r2 := checkedOut(t, f, itemB, userU)

	f.at(16 * day)
	for _, r := range []*models.Reservation{r1, r2} {
		applied, err := f.engine.ApplyPenalty(ctx, r.ID, userU)
		require.NoError(t, err)
		assert.True(t, applied)
	}
	assert.Equal(t, 1.0, f.store.user(userU).Balance)
}

func TestBalanceNeverExceedsCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := checkedOut(t, f, itemB, userU)

	f.store.mu.Lock()
	u := f.store.users[userU]
	u.Balance = 49.8
	f.store.users[userU] = u
	f.store.mu.Unlock()

	for d := 15; d < 120; d++ {
		f.at(time.Duration(d) * day)
		_, err := f.engine.ApplyPenalty(ctx, r.ID, userU)
		require.NoError(t, err)
		assert.LessOrEqual(t, f.store.user(userU).Balance, DefaultBalanceCap)
	}
	assert.Equal(t, DefaultBalanceCap, f.store.user(userU).Balance)
}

func TestApplyPenaltyMissingRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := checkedOut(t, f, itemB, userU)

	_, err := f.engine.ApplyPenalty(ctx, r.ID, "99999999-9999-9999-9999-999999999999")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.engine.ApplyPenalty(ctx, "99999999-9999-9999-9999-999999999999", userU)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Zero(t, f.store.user(userU).Balance)
	assert.Zero(t, f.notify.count())
}

func TestApplyPenaltyKeepsChargeWhenNotificationFails(t *testing.T) {
	f := newFixture(t)
	f.notify.err = assert.AnError
	r := checkedOut(t, f, itemB, userU)

	f.at(16 * day)
	applied, err := f.engine.ApplyPenalty(context.Background(), r.ID, userU)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 0.5, f.store.user(userU).Balance)

	got, _ := f.store.reservation(r.ID)
	assert.NotNil(t, got.LastPenaltyAppliedOn)
}

func TestPenaltyDayFollowsPolicyLocation(t *testing.T) {
	p := DefaultPolicy()
	p.Location = time.FixedZone("UTC-5", -5*3600)
	f := newFixture(t, WithPolicy(p))
	ctx := context.Background()
	r := checkedOut(t, f, itemB, userU)

	// 03:00 UTC 是前一天 22:00（UTC-5），06:00 UTC 已是新的一天
	late := time.Date(2024, time.March, 24, 3, 0, 0, 0, time.UTC)
	f.clock.Set(late)
	applied, err := f.engine.ApplyPenalty(ctx, r.ID, userU)
	require.NoError(t, err)
	assert.True(t, applied)

	f.clock.Set(late.Add(3 * time.Hour))
	applied, err = f.engine.ApplyPenalty(ctx, r.ID, userU)
	require.NoError(t, err)
	assert.True(t, applied)

	got, _ := f.store.reservation(r.ID)
	assert.Equal(t, time.Date(2024, time.March, 24, 0, 0, 0, 0, time.UTC), *got.LastPenaltyAppliedOn)
}

func TestCalendarDate(t *testing.T) {
	ts := time.Date(2024, time.March, 4, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), CalendarDate(ts, nil))
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), CalendarDate(ts, time.FixedZone("UTC+2", 2*3600)))

	d := CalendarDate(ts, time.UTC)
	assert.True(t, sameDate(&d, d))
	assert.False(t, sameDate(nil, d))
}
