package daterange

import (
	"time"

	"staybook/internal/pkg/apperror"
)

const day = 24 * time.Hour

var ErrInvalidRange = apperror.Invalid("daterange.invalid", "end date must be after start date")

// DateRange is the half-open stay interval [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: start.UTC(), End: end.UTC()}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() || !dr.End.After(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// BilledDays counts whole days in the range, rounding any partial day up.
func (dr DateRange) BilledDays() int64 {
	span := dr.End.Sub(dr.Start)
	if span <= 0 {
		return 0
	}
	days := int64(span / day)
	if span%day != 0 {
		days++
	}
	return days
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.Start.Before(other.End) && other.Start.Before(dr.End)
}
