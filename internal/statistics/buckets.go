package statistics

import (
	"time"

	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
)

const (
	defaultRangeDays = 30
	maxRangeDays     = 366
	dateLayout       = "2006-01-02"
)

// Range is an inclusive [From, To] window bucketed by Period.
type Range struct {
	Period enums.StatsPeriod
	From   time.Time
	To     time.Time
}

// normalize fills defaults and rejects inverted or oversized windows.
func (r Range) normalize(now time.Time) (Range, error) {
	if r.Period == "" {
		r.Period = enums.StatsPeriodDay
	}
	if !r.Period.IsValid() {
		return r, pkgerrors.New(pkgerrors.CodeValidation, "period must be day, week or month")
	}
	if r.To.IsZero() {
		r.To = now
	}
	if r.From.IsZero() {
		r.From = r.To.AddDate(0, 0, -(defaultRangeDays - 1))
	}
	r.From = truncateDay(r.From)
	r.To = truncateDay(r.To).Add(24*time.Hour - time.Nanosecond)
	if r.From.After(r.To) {
		return r, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to")
	}
	if r.To.Sub(r.From) > maxRangeDays*24*time.Hour {
		return r, pkgerrors.New(pkgerrors.CodeValidation, "range exceeds 366 days")
	}
	return r, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// bucketStart maps t to the first instant of its bucket. Weeks start Monday.
func bucketStart(t time.Time, period enums.StatsPeriod) time.Time {
	day := truncateDay(t)
	switch period {
	case enums.StatsPeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case enums.StatsPeriodMonth:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

func nextBucket(t time.Time, period enums.StatsPeriod) time.Time {
	switch period {
	case enums.StatsPeriodWeek:
		return t.AddDate(0, 0, 7)
	case enums.StatsPeriodMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// bucketKeys lists every bucket start in the range so empty buckets still
// appear in the series.
func bucketKeys(r Range) []time.Time {
	var keys []time.Time
	for cur := bucketStart(r.From, r.Period); !cur.After(r.To); cur = nextBucket(cur, r.Period) {
		keys = append(keys, cur)
	}
	return keys
}
