package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/godeposit/internal/domain"
)

// HolidayRepository stores the office holiday calendar.
type HolidayRepository struct {
	pool *pgxpool.Pool
}

// NewHolidayRepository creates a new HolidayRepository.
func NewHolidayRepository(pool *pgxpool.Pool) *HolidayRepository {
	return &HolidayRepository{pool: pool}
}

// Add records a holiday, overwriting the name on conflict.
func (r *HolidayRepository) Add(ctx context.Context, holiday domain.Holiday) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO holidays (holiday_date, office_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (holiday_date, office_id) DO UPDATE SET name = EXCLUDED.name`,
		dateToPgDate(domain.ToDate(holiday.Date)), holiday.OfficeID, holiday.Name)

	return err
}

// Remove deletes a holiday.
func (r *HolidayRepository) Remove(ctx context.Context, officeID string, date time.Time) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM holidays WHERE holiday_date = $1 AND office_id = $2`,
		dateToPgDate(domain.ToDate(date)), officeID)

	return err
}

// IsHoliday reports whether the date is a holiday for the office, either
// office-specific or observed everywhere.
func (r *HolidayRepository) IsHoliday(ctx context.Context, officeID string, date time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM holidays
			WHERE holiday_date = $1 AND office_id IN ('', $2)
		)`,
		dateToPgDate(domain.ToDate(date)), officeID).Scan(&exists)

	return exists, err
}

// List returns holidays in the inclusive date range, ordered by date.
func (r *HolidayRepository) List(ctx context.Context, from, to time.Time) ([]domain.Holiday, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT holiday_date, office_id, name
		FROM holidays
		WHERE holiday_date BETWEEN $1 AND $2
		ORDER BY holiday_date, office_id`,
		dateToPgDate(domain.ToDate(from)), dateToPgDate(domain.ToDate(to)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []domain.Holiday
	for rows.Next() {
		var (
			date     pgtype.Date
			officeID string
			name     string
		)
		if err := rows.Scan(&date, &officeID, &name); err != nil {
			return nil, err
		}
		holidays = append(holidays, domain.Holiday{Date: date.Time, OfficeID: officeID, Name: name})
	}

	return holidays, rows.Err()
}
