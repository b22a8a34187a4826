// Package clock provides the wall-clock time source used by commands.
package clock

import (
	"time"

	"github.com/iho/godeposit/internal/domain"
)

// System reads UTC wall time.
type System struct{}

// Now returns the current instant in UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Today returns the current business date: today at midnight UTC.
func (System) Today() time.Time {
	return domain.ToDate(time.Now().UTC())
}
