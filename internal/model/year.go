package model

import "time"

// FiscalYear is an accounting period. Once Closed it is immutable.
type FiscalYear struct {
	ID          int64     `json:"id"`
	ChartID     int64     `json:"id_chart"`
	Label       string    `json:"label"`
	Start       time.Time `json:"start_date"`
	End         time.Time `json:"end_date"`
	Closed      bool      `json:"closed"`
	ClosingDate time.Time `json:"closing_date,omitzero"`
}

// Contains reports whether date falls within [Start, End], by calendar day.
func (y FiscalYear) Contains(date time.Time) bool {
	d := Day(date)
	return !d.Before(Day(y.Start)) && !d.After(Day(y.End))
}

// Overlaps reports whether [start, end] intersects the year.
func (y FiscalYear) Overlaps(start, end time.Time) bool {
	return !Day(start).After(Day(y.End)) && !Day(end).Before(Day(y.Start))
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
