package kpi

import (
	"testing"
	"time"
)

func TestPeriodRange(t *testing.T) {
	now := time.Date(2025, time.May, 17, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		periodo   string
		wantStart string
		wantEnd   string
	}{
		{"current month", PeriodCurrentMonth, "2025-05-01", "2025-06-01"},
		{"previous month", PeriodPreviousMonth, "2025-04-01", "2025-05-01"},
		{"quarter", PeriodQuarter, "2025-04-01", "2025-07-01"},
		{"year", PeriodYear, "2025-01-01", "2026-01-01"},
		{"unknown falls back to current month", "fortnight", "2025-05-01", "2025-06-01"},
		{"empty falls back to current month", "", "2025-05-01", "2025-06-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := PeriodRange(now, tt.periodo)
			if got := isoDate(start); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := isoDate(end); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestPeriodRangeYearBoundary(t *testing.T) {
	now := time.Date(2025, time.January, 3, 9, 0, 0, 0, time.UTC)

	start, end := PeriodRange(now, PeriodPreviousMonth)
	if isoDate(start) != "2024-12-01" || isoDate(end) != "2025-01-01" {
		t.Errorf("previous month across year boundary = [%s, %s)", isoDate(start), isoDate(end))
	}
}

func TestGuardrailExceeds(t *testing.T) {
	g := Guardrail{Threshold: 50}

	tests := []struct {
		name     string
		count    int
		expected bool
	}{
		{"below threshold", 10, false},
		{"exactly at threshold", 50, false},
		{"one over threshold", 51, true},
		{"far over threshold", 500, true},
		{"zero", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Exceeds(tt.count); got != tt.expected {
				t.Errorf("Exceeds(%d) = %v, want %v", tt.count, got, tt.expected)
			}
		})
	}
}
