package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/domain/interest"
	"github.com/iho/godeposit/internal/usecase"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// load path serves locked and unlocked reads.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository implements usecase.AccountRepository. An account is
// loaded and saved as a whole aggregate: the accounts row plus its
// transactions, charges, installments and manual posting dates.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `
	id, office_id, client_id, kind, status, status_before_transfer,
	currency_code, currency_decimal_places, currency_in_multiples_of,
	opening_balance, nominal_annual_rate, overdraft_rate,
	compounding_period, posting_period, calculation_method,
	days_in_year, min_balance_for_interest, financial_year_start,
	allow_overdraft, overdraft_limit, lock_in_months, locked_in_until,
	allow_tx_on_holidays, allow_tx_on_non_working_days, withdrawal_fee_for_transfer,
	submitted_on, approved_on, activated_on, closed_on, last_interest_posted_on,
	term_deposit_amount, term_deposit_period_months, term_maturity_date,
	term_maturity_amount, term_premature_closure_allowed, term_premature_penalty_rate,
	recurrence_frequency, recurrence_every, recurrence_installment_amount,
	total_deposits, total_withdrawals, total_interest_posted, total_charges_paid,
	account_balance, next_seq, version`

// Create inserts the accounts row. A freshly submitted application has
// no ledger yet, so no child rows are written.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
			$31, $32, $33, $34, $35, $36, $37, $38, $39, $40, $41, $42, $43, $44, $45, $46)`,
		accountArgs(account)...)
	return err
}

// GetByID loads the aggregate without locking.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return getAccount(ctx, r.pool, id, false)
}

// GetByIDForUpdate loads the aggregate holding a FOR UPDATE lock on the
// accounts row for the rest of the transaction.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	return getAccount(ctx, tx.(*Tx).PgxTx(), id, true)
}

// GetByIDsForUpdate locks several accounts in one statement. Rows come
// back ordered by ID so concurrent multi-account commands acquire locks
// in the same order.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	q := tx.(*Tx).PgxTx()

	rows, err := q.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}

	accounts, err := scanAccounts(rows)
	if err != nil {
		return nil, err
	}

	if err := loadChildren(ctx, q, accounts); err != nil {
		return nil, err
	}

	return accounts, nil
}

// Save persists the whole aggregate: the accounts row is updated in
// place and the child rows are replaced. The ledger is append-mostly but
// reversals and schedule regeneration rewrite existing rows, so a full
// replace is simpler than diffing and the row counts stay small.
func (r *AccountRepository) Save(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	q := tx.(*Tx).PgxTx()

	args := accountArgs(account)
	tag, err := q.Exec(ctx, `
		UPDATE accounts SET
			office_id = $2, client_id = $3, kind = $4, status = $5, status_before_transfer = $6,
			currency_code = $7, currency_decimal_places = $8, currency_in_multiples_of = $9,
			opening_balance = $10, nominal_annual_rate = $11, overdraft_rate = $12,
			compounding_period = $13, posting_period = $14, calculation_method = $15,
			days_in_year = $16, min_balance_for_interest = $17, financial_year_start = $18,
			allow_overdraft = $19, overdraft_limit = $20, lock_in_months = $21, locked_in_until = $22,
			allow_tx_on_holidays = $23, allow_tx_on_non_working_days = $24, withdrawal_fee_for_transfer = $25,
			submitted_on = $26, approved_on = $27, activated_on = $28, closed_on = $29, last_interest_posted_on = $30,
			term_deposit_amount = $31, term_deposit_period_months = $32, term_maturity_date = $33,
			term_maturity_amount = $34, term_premature_closure_allowed = $35, term_premature_penalty_rate = $36,
			recurrence_frequency = $37, recurrence_every = $38, recurrence_installment_amount = $39,
			total_deposits = $40, total_withdrawals = $41, total_interest_posted = $42, total_charges_paid = $43,
			account_balance = $44, next_seq = $45, version = $46
		WHERE id = $1`,
		args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return saveChildren(ctx, q, account)
}

// List lists accounts with pagination, newest application first.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY submitted_on DESC, id DESC
		LIMIT $1 OFFSET $2`, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}

	accounts, err := scanAccounts(rows)
	if err != nil {
		return nil, err
	}

	if err := loadChildren(ctx, r.pool, accounts); err != nil {
		return nil, err
	}

	return accounts, nil
}

// ListActiveIDs feeds the batch jobs: IDs of every account whose status
// permits interest posting and charge application.
func (r *AccountRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM accounts WHERE status = $1 ORDER BY id`,
		string(domain.StatusActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func getAccount(ctx context.Context, q querier, id string, forUpdate bool) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	account, err := scanAccount(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	if err := loadChildren(ctx, q, []*domain.Account{account}); err != nil {
		return nil, err
	}

	return account, nil
}

func accountArgs(a *domain.Account) []any {
	var (
		termAmount   pgtype.Numeric
		termMonths   pgtype.Int4
		termMaturity pgtype.Date
		termMatAmt   pgtype.Numeric
		termPreAllow pgtype.Bool
		termPreRate  pgtype.Numeric

		recFreq   pgtype.Text
		recEvery  pgtype.Int4
		recAmount pgtype.Numeric
	)

	if a.Term != nil {
		termAmount = decimalToNumeric(a.Term.DepositAmount)
		termMonths = pgtype.Int4{Int32: int32(a.Term.DepositPeriodMonths), Valid: true}
		termMaturity = ptrToPgDate(a.Term.MaturityDate)
		termMatAmt = decimalToNumeric(a.Term.MaturityAmount)
		termPreAllow = pgtype.Bool{Bool: a.Term.PrematureClosureAllowed, Valid: true}
		termPreRate = decimalToNumeric(a.Term.PrematurePenaltyRate)
	}
	if a.Recurrence != nil {
		recFreq = pgtype.Text{String: string(a.Recurrence.Frequency), Valid: true}
		recEvery = pgtype.Int4{Int32: int32(a.Recurrence.Every), Valid: true}
		recAmount = decimalToNumeric(a.Recurrence.InstallmentAmount)
	}

	return []any{
		a.ID, a.OfficeID, a.ClientID, string(a.Kind), string(a.Status), string(a.StatusBeforeTransfer),
		a.Currency.Code, a.Currency.DecimalPlaces, a.Currency.InMultiplesOf,
		decimalToNumeric(a.OpeningBalance), decimalToNumeric(a.NominalAnnualRate), decimalToNumeric(a.OverdraftRate),
		string(a.CompoundingPeriod), string(a.PostingPeriod), string(a.CalculationMethod),
		a.DaysInYear, decimalToNumeric(a.MinBalanceForInterest), int(a.FinancialYearStart),
		a.AllowOverdraft, decimalToNumeric(a.OverdraftLimit), a.LockInMonths, ptrToPgDate(a.LockedInUntil),
		a.AllowTransactionsOnHolidays, a.AllowTransactionsOnNonWorkingDays, a.WithdrawalFeeForTransfer,
		dateToPgDate(a.SubmittedOn), ptrToPgDate(a.ApprovedOn), ptrToPgDate(a.ActivatedOn),
		ptrToPgDate(a.ClosedOn), ptrToPgDate(a.LastInterestPostedOn),
		termAmount, termMonths, termMaturity, termMatAmt, termPreAllow, termPreRate,
		recFreq, recEvery, recAmount,
		decimalToNumeric(a.Summary.TotalDeposits), decimalToNumeric(a.Summary.TotalWithdrawals),
		decimalToNumeric(a.Summary.TotalInterestPosted), decimalToNumeric(a.Summary.TotalChargesPaid),
		decimalToNumeric(a.Summary.AccountBalance), a.NextSeq, a.Version,
	}
}

func scanAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a domain.Account

		kind, status, statusBefore          string
		compounding, posting, calcMethod    string
		financialYearStart                  int
		openingBalance, nominalRate         pgtype.Numeric
		overdraftRate, minBalance           pgtype.Numeric
		overdraftLimit                      pgtype.Numeric
		lockedInUntil, approvedOn           pgtype.Date
		activatedOn, closedOn, lastInterest pgtype.Date
		submittedOn                         pgtype.Date

		termAmount   pgtype.Numeric
		termMonths   pgtype.Int4
		termMaturity pgtype.Date
		termMatAmt   pgtype.Numeric
		termPreAllow pgtype.Bool
		termPreRate  pgtype.Numeric

		recFreq   pgtype.Text
		recEvery  pgtype.Int4
		recAmount pgtype.Numeric

		totDeposits, totWithdrawals pgtype.Numeric
		totInterest, totCharges     pgtype.Numeric
		balance                     pgtype.Numeric
	)

	err := row.Scan(
		&a.ID, &a.OfficeID, &a.ClientID, &kind, &status, &statusBefore,
		&a.Currency.Code, &a.Currency.DecimalPlaces, &a.Currency.InMultiplesOf,
		&openingBalance, &nominalRate, &overdraftRate,
		&compounding, &posting, &calcMethod,
		&a.DaysInYear, &minBalance, &financialYearStart,
		&a.AllowOverdraft, &overdraftLimit, &a.LockInMonths, &lockedInUntil,
		&a.AllowTransactionsOnHolidays, &a.AllowTransactionsOnNonWorkingDays, &a.WithdrawalFeeForTransfer,
		&submittedOn, &approvedOn, &activatedOn, &closedOn, &lastInterest,
		&termAmount, &termMonths, &termMaturity, &termMatAmt, &termPreAllow, &termPreRate,
		&recFreq, &recEvery, &recAmount,
		&totDeposits, &totWithdrawals, &totInterest, &totCharges,
		&balance, &a.NextSeq, &a.Version,
	)
	if err != nil {
		return nil, err
	}

	a.Kind = domain.AccountKind(kind)
	a.Status = domain.AccountStatus(status)
	a.StatusBeforeTransfer = domain.AccountStatus(statusBefore)
	a.OpeningBalance = numericToDecimal(openingBalance)
	a.NominalAnnualRate = numericToDecimal(nominalRate)
	a.OverdraftRate = numericToDecimal(overdraftRate)
	a.CompoundingPeriod = interest.CompoundingType(compounding)
	a.PostingPeriod = interest.PostingType(posting)
	a.CalculationMethod = interest.CalculationMethod(calcMethod)
	a.MinBalanceForInterest = numericToDecimal(minBalance)
	a.FinancialYearStart = time.Month(financialYearStart)
	a.OverdraftLimit = numericToDecimal(overdraftLimit)
	a.LockedInUntil = pgDateToPtr(lockedInUntil)
	a.SubmittedOn = submittedOn.Time
	a.ApprovedOn = pgDateToPtr(approvedOn)
	a.ActivatedOn = pgDateToPtr(activatedOn)
	a.ClosedOn = pgDateToPtr(closedOn)
	a.LastInterestPostedOn = pgDateToPtr(lastInterest)

	if termMonths.Valid {
		a.Term = &domain.TermDetails{
			DepositAmount:           numericToDecimal(termAmount),
			DepositPeriodMonths:     int(termMonths.Int32),
			MaturityDate:            pgDateToPtr(termMaturity),
			MaturityAmount:          numericToDecimal(termMatAmt),
			PrematureClosureAllowed: termPreAllow.Bool,
			PrematurePenaltyRate:    numericToDecimal(termPreRate),
		}
	}
	if recFreq.Valid {
		a.Recurrence = &domain.Recurrence{
			Frequency:         domain.RecurrenceFrequency(recFreq.String),
			Every:             int(recEvery.Int32),
			InstallmentAmount: numericToDecimal(recAmount),
		}
	}

	a.Summary = domain.Summary{
		TotalDeposits:       numericToDecimal(totDeposits),
		TotalWithdrawals:    numericToDecimal(totWithdrawals),
		TotalInterestPosted: numericToDecimal(totInterest),
		TotalChargesPaid:    numericToDecimal(totCharges),
		AccountBalance:      numericToDecimal(balance),
	}

	return &a, nil
}

func loadChildren(ctx context.Context, q querier, accounts []*domain.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Account, len(accounts))
	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	if err := loadTransactions(ctx, q, ids, byID); err != nil {
		return err
	}
	if err := loadCharges(ctx, q, ids, byID); err != nil {
		return err
	}
	if err := loadInstallments(ctx, q, ids, byID); err != nil {
		return err
	}

	return loadPostingDates(ctx, q, ids, byID)
}

func loadTransactions(ctx context.Context, q querier, ids []string, byID map[string]*domain.Account) error {
	rows, err := q.Query(ctx, `
		SELECT account_id, id, type, amount, transaction_date, created_at, seq,
			running_balance, reversed, replaced_by_id, transfer_id, charge_id
		FROM account_transactions
		WHERE account_id = ANY($1)
		ORDER BY transaction_date, created_at, seq`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			accountID string
			tx        domain.Transaction
			txType    string
			amount    pgtype.Numeric
			txDate    pgtype.Date
			createdAt pgtype.Timestamptz
			running   pgtype.Numeric
		)
		err := rows.Scan(&accountID, &tx.ID, &txType, &amount, &txDate, &createdAt,
			&tx.Seq, &running, &tx.Reversed, &tx.ReplacedByID, &tx.TransferID, &tx.ChargeID)
		if err != nil {
			return err
		}

		account := byID[accountID]
		tx.Type = domain.TransactionType(txType)
		tx.Amount = domain.NewMoney(account.Currency, numericToDecimal(amount))
		tx.TransactionDate = txDate.Time
		tx.CreatedAt = createdAt.Time
		tx.RunningBalance = domain.NewMoney(account.Currency, numericToDecimal(running))
		account.Transactions = append(account.Transactions, &tx)
	}

	return rows.Err()
}

func loadCharges(ctx context.Context, q querier, ids []string, byID map[string]*domain.Account) error {
	rows, err := q.Query(ctx, `
		SELECT account_id, id, charge_definition_id, name, calculation, charge_time,
			penalty, due_date, percentage, amount_expected, amount_paid,
			amount_waived, amount_written_off, active
		FROM account_charges
		WHERE account_id = ANY($1)
		ORDER BY account_id, position`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			accountID          string
			c                  domain.Charge
			calculation        string
			chargeTime         string
			dueDate            pgtype.Date
			percentage         pgtype.Numeric
			expected, paid     pgtype.Numeric
			waived, writtenOff pgtype.Numeric
		)
		err := rows.Scan(&accountID, &c.ID, &c.ChargeDefinitionID, &c.Name, &calculation,
			&chargeTime, &c.Penalty, &dueDate, &percentage, &expected, &paid,
			&waived, &writtenOff, &c.Active)
		if err != nil {
			return err
		}

		c.Calculation = domain.ChargeCalculation(calculation)
		c.Time = domain.ChargeTime(chargeTime)
		c.DueDate = pgDateToPtr(dueDate)
		c.Percentage = numericToDecimal(percentage)
		c.AmountExpected = numericToDecimal(expected)
		c.AmountPaid = numericToDecimal(paid)
		c.AmountWaived = numericToDecimal(waived)
		c.AmountWrittenOff = numericToDecimal(writtenOff)
		byID[accountID].Charges = append(byID[accountID].Charges, &c)
	}

	return rows.Err()
}

func loadInstallments(ctx context.Context, q querier, ids []string, byID map[string]*domain.Account) error {
	rows, err := q.Query(ctx, `
		SELECT account_id, seq, due_date, amount, deposited, overdue
		FROM account_installments
		WHERE account_id = ANY($1)
		ORDER BY account_id, seq`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			accountID         string
			inst              domain.Installment
			dueDate           pgtype.Date
			amount, deposited pgtype.Numeric
		)
		if err := rows.Scan(&accountID, &inst.Seq, &dueDate, &amount, &deposited, &inst.Overdue); err != nil {
			return err
		}

		inst.DueDate = dueDate.Time
		inst.Amount = numericToDecimal(amount)
		inst.Deposited = numericToDecimal(deposited)

		account := byID[accountID]
		if account.Recurrence != nil {
			account.Recurrence.Installments = append(account.Recurrence.Installments, &inst)
		}
	}

	return rows.Err()
}

func loadPostingDates(ctx context.Context, q querier, ids []string, byID map[string]*domain.Account) error {
	rows, err := q.Query(ctx, `
		SELECT account_id, posting_date
		FROM account_posting_dates
		WHERE account_id = ANY($1)
		ORDER BY account_id, posting_date`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			accountID string
			date      pgtype.Date
		)
		if err := rows.Scan(&accountID, &date); err != nil {
			return err
		}
		account := byID[accountID]
		account.ManualPostingDates = append(account.ManualPostingDates, date.Time)
	}

	return rows.Err()
}

func saveChildren(ctx context.Context, q querier, a *domain.Account) error {
	for _, table := range []string{
		"account_transactions", "account_charges", "account_installments", "account_posting_dates",
	} {
		if _, err := q.Exec(ctx, `DELETE FROM `+table+` WHERE account_id = $1`, a.ID); err != nil {
			return err
		}
	}

	for _, tx := range a.Transactions {
		_, err := q.Exec(ctx, `
			INSERT INTO account_transactions (account_id, id, type, amount, transaction_date,
				created_at, seq, running_balance, reversed, replaced_by_id, transfer_id, charge_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			a.ID, tx.ID, string(tx.Type), decimalToNumeric(tx.Amount.Amount()),
			dateToPgDate(tx.TransactionDate), timeToPgTimestamptz(tx.CreatedAt), tx.Seq,
			decimalToNumeric(tx.RunningBalance.Amount()), tx.Reversed,
			tx.ReplacedByID, tx.TransferID, tx.ChargeID)
		if err != nil {
			return err
		}
	}

	for pos, c := range a.Charges {
		_, err := q.Exec(ctx, `
			INSERT INTO account_charges (account_id, position, id, charge_definition_id, name,
				calculation, charge_time, penalty, due_date, percentage, amount_expected,
				amount_paid, amount_waived, amount_written_off, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			a.ID, pos, c.ID, c.ChargeDefinitionID, c.Name,
			string(c.Calculation), string(c.Time), c.Penalty, ptrToPgDate(c.DueDate),
			decimalToNumeric(c.Percentage), decimalToNumeric(c.AmountExpected),
			decimalToNumeric(c.AmountPaid), decimalToNumeric(c.AmountWaived),
			decimalToNumeric(c.AmountWrittenOff), c.Active)
		if err != nil {
			return err
		}
	}

	if a.Recurrence != nil {
		for _, inst := range a.Recurrence.Installments {
			_, err := q.Exec(ctx, `
				INSERT INTO account_installments (account_id, seq, due_date, amount, deposited, overdue)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				a.ID, inst.Seq, dateToPgDate(inst.DueDate),
				decimalToNumeric(inst.Amount), decimalToNumeric(inst.Deposited), inst.Overdue)
			if err != nil {
				return err
			}
		}
	}

	for _, date := range a.ManualPostingDates {
		_, err := q.Exec(ctx, `
			INSERT INTO account_posting_dates (account_id, posting_date)
			VALUES ($1, $2)`,
			a.ID, dateToPgDate(date))
		if err != nil {
			return err
		}
	}

	return nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func dateToPgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: true}
}

func ptrToPgDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}

	return pgtype.Date{Time: *t, Valid: true}
}

func pgDateToPtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}

	t := domain.ToDate(d.Time)

	return &t
}
