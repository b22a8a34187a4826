package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/godeposit/internal/domain"
)

// CurrencyRepository implements usecase.CurrencyService against the
// currencies reference table seeded by the migrations.
type CurrencyRepository struct {
	pool *pgxpool.Pool
}

// NewCurrencyRepository creates a new CurrencyRepository.
func NewCurrencyRepository(pool *pgxpool.Pool) *CurrencyRepository {
	return &CurrencyRepository{pool: pool}
}

// Lookup resolves a currency code to its configuration. Codes are
// matched case-insensitively against the uppercase ISO codes in the
// table.
func (r *CurrencyRepository) Lookup(ctx context.Context, code string) (domain.Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var currency domain.Currency
	err := r.pool.QueryRow(ctx, `
		SELECT code, decimal_places, in_multiples_of
		FROM currencies
		WHERE code = $1`, code).
		Scan(&currency.Code, &currency.DecimalPlaces, &currency.InMultiplesOf)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Currency{}, fmt.Errorf("%w: %s", domain.ErrCurrencyUnknown, code)
		}

		return domain.Currency{}, err
	}

	return currency, nil
}
