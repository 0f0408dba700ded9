package domain

import "time"

// MaxRecapDays bounds the inclusive date range of a single recap.
const MaxRecapDays = 366

// TargetMetDays counts the days of a recap that met the macro target.
type TargetMetDays struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DayRecap is one calendar day of a recap.
type DayRecap struct {
	Date      string `json:"date"`
	Totals    Macros `json:"totals"`
	MetTarget bool   `json:"metTarget"`
}

// RecapMetrics summarizes adherence to a target over an inclusive date range.
// It is derived data; callers may cache it but it owns no state.
type RecapMetrics struct {
	StartDate     string        `json:"startDate"`
	EndDate       string        `json:"endDate"`
	Timezone      string        `json:"timezone"`
	TotalDays     int           `json:"totalDays"`
	TargetMetDays TargetMetDays `json:"targetMetDays"`
	Target        Macros        `json:"target"`
	Average       Macros        `json:"average"`
	Days          []DayRecap    `json:"days"`
}

// CachedRecap is a recap persisted by the batch job.
type CachedRecap struct {
	UserID     string       `json:"userId"`
	Recap      RecapMetrics `json:"recap"`
	ComputedAt time.Time    `json:"computedAt"`
}
