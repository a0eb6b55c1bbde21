package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SecondsPerHour converts stored durations into report hours.
const SecondsPerHour = 3600

// Summary is the overall total for a user over a date range.
// TotalHours is not rounded.
type Summary struct {
	TotalHours   float64
	TotalEntries int
	DateRange    DateRange
}

// ProjectReport is one row of the per-project breakdown.
// Revenue is zero for projects without an hourly rate.
type ProjectReport struct {
	ProjectID    uuid.UUID
	ProjectName  string
	ClientName   string
	Color        string
	TotalHours   float64
	Revenue      decimal.Decimal
	EntriesCount int
}

// DailyReport is the total for one UTC calendar day ("2006-01-02").
type DailyReport struct {
	Date       string
	TotalHours float64
	Entries    int
}

// Hours converts whole seconds into fractional hours.
func Hours(seconds int64) float64 {
	return float64(seconds) / SecondsPerHour
}
