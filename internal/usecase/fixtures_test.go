package usecase_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/domain/interest"
	"github.com/iho/godeposit/internal/usecase/mocks"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptrDay(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var usd = domain.Currency{Code: "usd", DecimalPlaces: 2}

// testEnv bundles the mocked collaborators every usecase test wires up.
type testEnv struct {
	txm        *mocks.MockTransactionManager
	accounts   *mocks.MockAccountRepository
	transfers  *mocks.MockTransferRepository
	journal    *mocks.MockJournalPoster
	calendar   *mocks.MockCalendarService
	currencies *mocks.MockCurrencyService
	clock      *mocks.MockClock
	idGen      *mocks.MockIDGenerator
	retrier    *mocks.MockRetrier
}

func newTestEnv(idPrefix string) *testEnv {
	return &testEnv{
		txm:        mocks.NewMockTransactionManager(),
		accounts:   mocks.NewMockAccountRepository(),
		transfers:  mocks.NewMockTransferRepository(),
		journal:    mocks.NewMockJournalPoster(),
		calendar:   mocks.NewMockCalendarService(),
		currencies: mocks.NewMockCurrencyService(),
		clock:      mocks.NewMockClock(time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)),
		idGen:      mocks.NewMockIDGenerator(idPrefix),
		retrier:    mocks.NewMockRetrier(),
	}
}

// activeSavings builds a savings account activated on 2024-01-01 with a
// 12% nominal rate posted monthly.
func activeSavings(id string) *domain.Account {
	activated := day(2024, time.January, 1)
	return &domain.Account{
		ID:       id,
		OfficeID: "office-1",
		ClientID: "client-1",
		Kind:     domain.KindSavings,
		Status:   domain.StatusActive,
		Currency: usd,

		NominalAnnualRate: decimal.NewFromInt(12),
		CompoundingPeriod: interest.CompoundMonthly,
		PostingPeriod:     interest.PostMonthly,
		CalculationMethod: interest.DailyBalance,
		DaysInYear:        365,

		AllowTransactionsOnHolidays:       true,
		AllowTransactionsOnNonWorkingDays: true,

		SubmittedOn: activated,
		ActivatedOn: &activated,
	}
}
