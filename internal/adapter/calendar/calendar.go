package calendar

import (
	"context"
	"time"

	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/usecase"
)

// HolidaySource answers holiday lookups, usually the postgres holidays
// table.
type HolidaySource interface {
	IsHoliday(ctx context.Context, officeID string, date time.Time) (bool, error)
}

// Service implements usecase.CalendarService. Weekends come from
// configuration; holidays come from the source, cached because batch
// jobs ask about the same dates for every account.
type Service struct {
	weekend  map[time.Weekday]bool
	holidays HolidaySource
	cache    usecase.Cache
	cacheTTL time.Duration
}

// NewService creates a calendar service. cache may be nil, in which case
// every holiday lookup goes to the source.
func NewService(weekendDays []string, holidays HolidaySource, cache usecase.Cache, cacheTTL time.Duration) *Service {
	return &Service{
		weekend:  parseWeekendDays(weekendDays),
		holidays: holidays,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// IsWorkingDay reports whether the date is outside the configured
// weekend.
func (s *Service) IsWorkingDay(_ context.Context, date time.Time) (bool, error) {
	return !s.weekend[date.Weekday()], nil
}

// IsHoliday reports whether the date is in the office's holiday
// calendar.
func (s *Service) IsHoliday(ctx context.Context, officeID string, date time.Time) (bool, error) {
	key := "holiday:" + officeID + ":" + domain.ToDate(date).Format("2006-01-02")

	if s.cache != nil {
		if val, err := s.cache.Get(ctx, key); err == nil && len(val) == 1 {
			return val[0] == '1', nil
		}
	}

	holiday, err := s.holidays.IsHoliday(ctx, officeID, date)
	if err != nil {
		return false, err
	}

	if s.cache != nil {
		val := []byte("0")
		if holiday {
			val = []byte("1")
		}
		// Cache failures only cost a future lookup.
		_ = s.cache.Set(ctx, key, val, s.cacheTTL)
	}

	return holiday, nil
}

var weekdayNames = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

func parseWeekendDays(names []string) map[time.Weekday]bool {
	weekend := make(map[time.Weekday]bool, len(names))
	for _, name := range names {
		if day, ok := weekdayNames[name]; ok {
			weekend[day] = true
		}
	}
	return weekend
}
