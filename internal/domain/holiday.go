package domain

import "time"

// Holiday is one non-business day in the office calendar. An empty
// OfficeID marks a holiday observed by every office.
type Holiday struct {
	Date     time.Time
	OfficeID string
	Name     string
}
