package lending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"Gin_postgres_redis_lending/models"

	"github.com/google/uuid"
)

// Engine executes the reservation lifecycle: reserve, cancel, check-out,
// check-in, extend, overdue detection and penalty accrual.
type Engine struct {
	repo   Repository
	notify Notifier
	policy Policy
	log    *slog.Logger
	clock  func() time.Time
	retry  []RetryOption
}

type Option func(*Engine)

func WithPolicy(p Policy) Option            { return func(e *Engine) { e.policy = p } }
func WithLogger(l *slog.Logger) Option      { return func(e *Engine) { e.log = l } }
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.clock = now } }
func WithRetry(opts ...RetryOption) Option  { return func(e *Engine) { e.retry = opts } }

func NewEngine(repo Repository, notifier Notifier, opts ...Option) *Engine {
	e := &Engine{
		repo:   repo,
		notify: notifier,
		policy: DefaultPolicy(),
		log:    slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Policy() Policy { return e.policy }

func (e *Engine) now() time.Time { return e.clock().UTC() }

func (e *Engine) inTx(ctx context.Context, fn func(tx Repository) error) error {
	return RetryOnConflict(ctx, func(ctx context.Context) error {
		return e.repo.Transaction(ctx, fn)
	}, e.retry...)
}

// Reserve removes one unit from the item's available quantity and records a
// reservation with a pick-up deadline.
func (e *Engine) Reserve(ctx context.Context, itemID, userID string) (*models.Reservation, error) {
	var created *models.Reservation
	err := e.inTx(ctx, func(tx Repository) error {
		it, err := tx.FindItem(ctx, itemID)
		if err != nil {
			return err
		}
		if _, err := tx.FindUser(ctx, userID); err != nil {
			return err
		}
		if it.AvailableQuantity <= 0 {
			return ErrUnavailable
		}

		now := e.now()
		r := &models.Reservation{
			ID:         uuid.NewString(),
			ItemID:     it.ID,
			UserID:     userID,
			ReservedAt: now,
			PickUpBy:   now.Add(e.policy.PickupWindow),
		}
		it.AvailableQuantity--
		if err := tx.SaveItem(ctx, it); err != nil {
			return err
		}
		if err := tx.CreateReservation(ctx, r); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("item reserved", "reservation_id", created.ID, "item_id", itemID, "user_id", userID)
	return created, nil
}

// Cancel restores the reserved unit and deletes the reservation. The returned
// value is the record as it was before deletion.
func (e *Engine) Cancel(ctx context.Context, reservationID string) (*models.Reservation, error) {
	var snapshot *models.Reservation
	err := e.inTx(ctx, func(tx Repository) error {
		r, err := tx.FindReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		if err := cancelLocked(ctx, tx, r); err != nil {
			return err
		}
		snapshot = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("reservation cancelled", "reservation_id", reservationID, "item_id", snapshot.ItemID)
	return snapshot, nil
}

func cancelLocked(ctx context.Context, tx Repository, r *models.Reservation) error {
	it, err := tx.FindItem(ctx, r.ItemID)
	if err != nil {
		return err
	}
	it.AvailableQuantity++
	if err := tx.SaveItem(ctx, it); err != nil {
		return err
	}
	return tx.DeleteReservation(ctx, r.ID)
}

// CheckOut marks the item as collected and starts the loan period. Calling it
// again on a checked-out reservation restarts the loan period.
func (e *Engine) CheckOut(ctx context.Context, reservationID string) (*models.Reservation, error) {
	return e.mutate(ctx, reservationID, func(r *models.Reservation) error {
		now := e.now()
		due := now.Add(e.policy.LoanPeriod)
		r.CheckedOutAt = &now
		r.DueDate = &due
		r.Returned = false
		r.Extensions = 0
		return nil
	})
}

// CheckIn marks the reservation returned. Inventory is not restored here;
// the unit stays counted as out.
func (e *Engine) CheckIn(ctx context.Context, reservationID string) (*models.Reservation, error) {
	return e.mutate(ctx, reservationID, func(r *models.Reservation) error {
		r.Returned = true
		return nil
	})
}

func (e *Engine) ExtendDueDate(ctx context.Context, reservationID string) (*models.Reservation, error) {
	return e.mutate(ctx, reservationID, func(r *models.Reservation) error {
		if r.DueDate == nil {
			return ErrNotCheckedOut
		}
		if e.policy.MaxExtensions > 0 && r.Extensions >= e.policy.MaxExtensions {
			return ErrExtensionLimit
		}
		due := r.DueDate.Add(e.policy.ExtensionPeriod)
		r.DueDate = &due
		r.Extensions++
		return nil
	})
}

func (e *Engine) mutate(ctx context.Context, reservationID string, change func(r *models.Reservation) error) (*models.Reservation, error) {
	var out *models.Reservation
	err := e.inTx(ctx, func(tx Repository) error {
		r, err := tx.FindReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		if err := change(r); err != nil {
			return err
		}
		if err := tx.SaveReservation(ctx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) Get(ctx context.Context, reservationID string) (*models.Reservation, error) {
	return e.repo.FindReservation(ctx, reservationID)
}

func (e *Engine) List(ctx context.Context, q ListQuery) (Page, error) {
	return e.repo.ListReservations(ctx, q.normalized())
}

func (e *Engine) ListForUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	if _, err := e.repo.FindUser(ctx, userID); err != nil {
		return nil, err
	}
	return e.repo.ListReservationsByUser(ctx, userID)
}

func (e *Engine) CountByItem(ctx context.Context) ([]ItemCount, error) {
	return e.repo.CountReservationsByItem(ctx)
}

// CancelForUser cancels every reservation of a user with a settled balance.
func (e *Engine) CancelForUser(ctx context.Context, userID string) (int, error) {
	n := 0
	err := e.inTx(ctx, func(tx Repository) error {
		var err error
		n, err = cancelAllLocked(ctx, tx, userID)
		return err
	})
	if err != nil {
		return 0, err
	}
	e.log.Info("reservations cancelled for user", "user_id", userID, "count", n)
	return n, nil
}

// DeleteUser cancels the user's reservations, returning each unit to its
// item, and removes the user in the same transaction.
func (e *Engine) DeleteUser(ctx context.Context, userID string) (int, error) {
	n := 0
	err := e.inTx(ctx, func(tx Repository) error {
		var err error
		if n, err = cancelAllLocked(ctx, tx, userID); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, userID)
	})
	if err != nil {
		return 0, err
	}
	e.log.Info("user deleted", "user_id", userID, "reservations_cancelled", n)
	return n, nil
}

// 有欠款的用户不能取消
func cancelAllLocked(ctx context.Context, tx Repository, userID string) (int, error) {
	u, err := tx.FindUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if u.Balance > 0 {
		return 0, ErrUnpaidBalance
	}
	rs, err := tx.ListReservationsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	for i := range rs {
		if err := cancelLocked(ctx, tx, &rs[i]); err != nil {
			return 0, fmt.Errorf("cancel reservation %s: %w", rs[i].ID, err)
		}
	}
	return len(rs), nil
}

// SettleBalance clears a user's balance after the payment processor reports a
// successful charge.
func (e *Engine) SettleBalance(ctx context.Context, userID string) (*models.User, error) {
	var out *models.User
	err := e.inTx(ctx, func(tx Repository) error {
		u, err := tx.FindUser(ctx, userID)
		if err != nil {
			return err
		}
		u.Balance = 0
		if err := tx.SaveUser(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("balance settled", "user_id", userID)
	return out, nil
}

// FindOverduePickups lists reservations whose pick-up deadline passed
// without the item being collected.
func (e *Engine) FindOverduePickups(ctx context.Context) ([]models.Reservation, error) {
	return e.repo.ListOverduePickups(ctx, e.now())
}

// PurgeNonPickedUpReservations deletes every overdue pick-up. Unlike Cancel it
// does not give the unit back to the item's available quantity.
func (e *Engine) PurgeNonPickedUpReservations(ctx context.Context) (int, error) {
	overdue, err := e.FindOverduePickups(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range overdue {
		if err := e.repo.DeleteReservation(ctx, r.ID); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return n, err
		}
		n++
	}
	e.log.Info("purged non-picked-up reservations", "count", n)
	return n, nil
}

// FindOverdueCheckins returns the checked-out, unreturned reservations past
// their due date and applies the daily penalty to each. It never returns an
// error: a failed scan is logged and yields an empty list.
func (e *Engine) FindOverdueCheckins(ctx context.Context) []models.Reservation {
	e.log.Info("checking for overdue reservations")
	overdue, err := e.repo.ListOverdueCheckins(ctx, e.now())
	if err != nil {
		e.log.Error("overdue check-in scan failed", "err", err)
		return []models.Reservation{}
	}
	if overdue == nil {
		overdue = []models.Reservation{}
	}

	for _, r := range overdue {
		if ctx.Err() != nil {
			e.log.Warn("overdue check-in scan interrupted", "err", ctx.Err())
			break
		}
		if r.UserID == "" {
			continue
		}
		if _, err := e.ApplyPenalty(ctx, r.ID, r.UserID); err != nil {
			if errors.Is(err, ErrNotFound) {
				// 扫描过程中被取消/删除
				e.log.Debug("overdue reservation vanished during scan", "reservation_id", r.ID)
				continue
			}
			e.log.Error("apply penalty failed", "reservation_id", r.ID, "user_id", r.UserID, "err", err)
		}
	}
	return overdue
}
