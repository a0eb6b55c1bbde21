package domain

import "time"

// DurationSource records where an entry's stored duration came from.
type DurationSource int

const (
	// DurationUnknown means there is no end time and no caller value, so
	// nothing is stored.
	DurationUnknown DurationSource = iota
	// DurationExplicit means the caller supplied the value; it is stored
	// as given even when it disagrees with the timestamps.
	DurationExplicit
	// DurationDerived means the value is floor(end - start) in seconds.
	DurationDerived
)

func (s DurationSource) String() string {
	switch s {
	case DurationExplicit:
		return "explicit"
	case DurationDerived:
		return "derived"
	default:
		return "unknown"
	}
}

// DurationDecision is the outcome of ResolveDuration.
type DurationDecision struct {
	Source  DurationSource
	Seconds int64
}

// Value returns the duration to persist, or nil for DurationUnknown.
func (d DurationDecision) Value() *int64 {
	if d.Source == DurationUnknown {
		return nil
	}
	v := d.Seconds
	return &v
}

// ResolveDuration picks the duration to store for an interval.
// An explicit value always wins; otherwise a closed interval derives its
// duration from the timestamps.
func ResolveDuration(start time.Time, end *time.Time, explicit *int64) DurationDecision {
	if explicit != nil {
		return DurationDecision{Source: DurationExplicit, Seconds: *explicit}
	}
	if end != nil {
		return DurationDecision{Source: DurationDerived, Seconds: ElapsedSeconds(start, *end)}
	}
	return DurationDecision{Source: DurationUnknown}
}

// ElapsedSeconds returns floor((end - start) / 1s). Sub-second remainders
// round toward negative infinity, so a negative interval never rounds up to 0.
func ElapsedSeconds(start, end time.Time) int64 {
	d := end.Sub(start)
	secs := int64(d / time.Second)
	if d < 0 && d%time.Second != 0 {
		secs--
	}
	return secs
}
