package domain

import "time"

// MaxListLimit caps how many entries a single list call may return.
const MaxListLimit = 1000

// DateRange bounds a query on entry start time. Both ends are inclusive
// and either may be nil, meaning unbounded on that side.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// EntryFilter carries list options from the HTTP layer to the repo layer.
// Limit of 0 means no limit.
type EntryFilter struct {
	Range DateRange
	Limit int
}

// NewEntryFilter builds an EntryFilter from optional query params.
// A nil or non-positive limit means unlimited; larger values are capped at
// MaxListLimit to prevent runaway queries.
func NewEntryFilter(r DateRange, limit *int) EntryFilter {
	f := EntryFilter{Range: r}
	if limit != nil && *limit >= 1 {
		f.Limit = *limit
		if f.Limit > MaxListLimit {
			f.Limit = MaxListLimit
		}
	}
	return f
}
