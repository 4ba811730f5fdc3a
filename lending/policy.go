package lending

import "time"

const (
	DefaultPickupWindow     = 7 * 24 * time.Hour
	DefaultLoanPeriod       = 14 * 24 * time.Hour
	DefaultExtensionPeriod  = 7 * 24 * time.Hour
	DefaultPenaltyIncrement = 0.50
	DefaultBalanceCap       = 50.0

	OverdueSubject = "Overdue Item Return"
	OverdueBody    = "You have been issued a 0.50 charge for an overdue item return."
)

// Policy holds the time windows and money constants of the lending rules.
type Policy struct {
	PickupWindow     time.Duration
	LoanPeriod       time.Duration
	ExtensionPeriod  time.Duration
	MaxExtensions    int // 0 = 不限次数
	PenaltyIncrement float64
	BalanceCap       float64
	// Location 决定罚金"每日一次"按哪个时区的日历日计算
	Location *time.Location
}

func DefaultPolicy() Policy {
	return Policy{
		PickupWindow:     DefaultPickupWindow,
		LoanPeriod:       DefaultLoanPeriod,
		ExtensionPeriod:  DefaultExtensionPeriod,
		PenaltyIncrement: DefaultPenaltyIncrement,
		BalanceCap:       DefaultBalanceCap,
		Location:         time.Local,
	}
}

// CalendarDate returns t's calendar date in loc, encoded as midnight UTC.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// sameDate compares a stored calendar date with a date produced by CalendarDate.
func sameDate(stored *time.Time, day time.Time) bool {
	if stored == nil {
		return false
	}
	y1, m1, d1 := stored.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
