package aggregation

import (
	"time"

	"github.com/frankincense-labs/cx-management/internal/shared/biztime"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
)

// DateRange bounds creation times by calendar day in the business timezone.
// A zero bound is open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses optional YYYY-MM-DD bounds. The start bound begins at
// 00:00:00.000 and the end bound includes the whole day up to 23:59:59.999.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if start != "" {
		d, err := biztime.ParseDate(start)
		if err != nil {
			return DateRange{}, errors.NewValidationError("invalid start date", err.Error())
		}
		r.Start = biztime.StartOfDayUTC(d)
	}
	if end != "" {
		d, err := biztime.ParseDate(end)
		if err != nil {
			return DateRange{}, errors.NewValidationError("invalid end date", err.Error())
		}
		r.End = biztime.EndOfDayUTC(d)
	}
	return r, nil
}

// Contains reports whether t falls inside the range, bounds inclusive.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// Filter narrows the merged feed. Zero-valued fields do not filter.
type Filter struct {
	Type     InteractionType
	Email    string
	Category string
	Rating   int
	Status   string
	Range    DateRange
}

// Apply returns the matching interactions in their input order. It never
// modifies items.
func (f Filter) Apply(items []Interaction) []Interaction {
	out := make([]Interaction, 0, len(items))
	for _, i := range items {
		if f.matches(i) {
			out = append(out, i)
		}
	}
	return out
}

func (f Filter) matches(i Interaction) bool {
	if f.Type != "" && i.Type != f.Type {
		return false
	}
	if f.Email != "" && i.Email != f.Email {
		return false
	}
	if f.Category != "" && i.Category != f.Category {
		return false
	}
	if f.Rating != 0 && i.Rating != f.Rating {
		return false
	}
	if f.Status != "" && i.Status != f.Status {
		return false
	}
	return f.Range.Contains(i.Date)
}
