package kpi

import "time"

// Period names accepted by the sales and counting tools.
const (
	PeriodCurrentMonth  = "mes_actual"
	PeriodPreviousMonth = "mes_anterior"
	PeriodQuarter       = "trimestre"
	PeriodYear          = "anio"
)

// PeriodRange resolves a period name to its half-open [start, end) date
// window. Unknown or empty names fall back to the current month.
func PeriodRange(now time.Time, periodo string) (time.Time, time.Time) {
	year, month, _ := now.Date()
	loc := now.Location()

	switch periodo {
	case PeriodPreviousMonth:
		start := time.Date(year, month, 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0)
		return start, start.AddDate(0, 1, 0)
	case PeriodQuarter:
		quarterMonth := time.Month(((int(month)-1)/3)*3 + 1)
		start := time.Date(year, quarterMonth, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 3, 0)
	case PeriodYear:
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0)
	default:
		start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	}
}

func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}
