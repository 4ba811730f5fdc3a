package lending

import (
	"context"
	"math"

	"Gin_postgres_redis_lending/models"
)

// ApplyPenalty charges the overdue fine for one reservation at most once per
// calendar day. The user's balance grows by PenaltyIncrement and never exceeds
// BalanceCap. It reports whether a charge was made.
//
// Balance and reservation are written in one transaction before the
// notification goes out, so a failed send never leaves an unrecorded charge.
func (e *Engine) ApplyPenalty(ctx context.Context, reservationID, userID string) (bool, error) {
	today := CalendarDate(e.now(), e.policy.Location)

	var charged *models.User
	err := e.inTx(ctx, func(tx Repository) error {
		charged = nil
		u, err := tx.FindUser(ctx, userID)
		if err != nil {
			return err
		}
		r, err := tx.FindReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		if sameDate(r.LastPenaltyAppliedOn, today) {
			return nil
		}

		u.Balance = math.Min(u.Balance+e.policy.PenaltyIncrement, e.policy.BalanceCap)
		if err := tx.SaveUser(ctx, u); err != nil {
			return err
		}
		day := today
		r.LastPenaltyAppliedOn = &day
		if err := tx.SaveReservation(ctx, r); err != nil {
			return err
		}
		charged = u
		return nil
	})
	if err != nil {
		return false, err
	}
	if charged == nil {
		e.log.Info("penalty already applied today", "reservation_id", reservationID, "user_id", userID)
		return false, nil
	}

	e.log.Info("penalty applied", "reservation_id", reservationID, "user_id", userID, "balance", charged.Balance)
	if err := e.notify.Send(ctx, charged.Email, OverdueSubject, OverdueBody); err != nil {
		e.log.Error("overdue notification not delivered",
			"reservation_id", reservationID, "user_id", userID, "email", charged.Email, "err", err)
	}
	return true, nil
}
