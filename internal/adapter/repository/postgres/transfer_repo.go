package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/usecase"
)

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	pool *pgxpool.Pool
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{pool: pool}
}

const transferColumns = `
	id, from_account_id, to_account_id, from_office_id, to_office_id,
	amount, transfer_date, status, out_transaction_id, in_transaction_id, created_at`

// Create inserts the transfer record within the command's transaction,
// atomically with the source account save.
func (r *TransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.AccountTransfer) error {
	_, err := tx.(*Tx).PgxTx().Exec(ctx, `
		INSERT INTO account_transfers (`+transferColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		transfer.ID, transfer.FromAccountID, transfer.ToAccountID,
		transfer.FromOfficeID, transfer.ToOfficeID,
		decimalToNumeric(transfer.Amount), dateToPgDate(transfer.TransferDate),
		string(transfer.Status), transfer.OutTransactionID, transfer.InTransactionID,
		timeToPgTimestamptz(transfer.CreatedAt))

	return err
}

// GetByID retrieves a transfer by ID.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.AccountTransfer, error) {
	return scanTransfer(r.pool.QueryRow(ctx, `
		SELECT `+transferColumns+` FROM account_transfers WHERE id = $1`, id))
}

// GetByIDForUpdate retrieves a transfer holding a FOR UPDATE lock, so
// two settlement commands for the same transfer serialize.
func (r *TransferRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.AccountTransfer, error) {
	return scanTransfer(tx.(*Tx).PgxTx().QueryRow(ctx, `
		SELECT `+transferColumns+` FROM account_transfers WHERE id = $1 FOR UPDATE`, id))
}

// Update persists the transfer's settlement outcome.
func (r *TransferRepository) Update(ctx context.Context, tx usecase.Transaction, transfer *domain.AccountTransfer) error {
	tag, err := tx.(*Tx).PgxTx().Exec(ctx, `
		UPDATE account_transfers
		SET status = $2, out_transaction_id = $3, in_transaction_id = $4
		WHERE id = $1`,
		transfer.ID, string(transfer.Status),
		transfer.OutTransactionID, transfer.InTransactionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransferNotFound
	}

	return nil
}

// ListByAccount lists transfers touching the account on either side,
// newest first.
func (r *TransferRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.AccountTransfer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+transferColumns+`
		FROM account_transfers
		WHERE from_account_id = $1 OR to_account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, accountID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*domain.AccountTransfer
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}

	return transfers, rows.Err()
}

func scanTransfer(row pgx.Row) (*domain.AccountTransfer, error) {
	var (
		t            domain.AccountTransfer
		status       string
		amount       pgtype.Numeric
		transferDate pgtype.Date
		createdAt    pgtype.Timestamptz
	)

	err := row.Scan(&t.ID, &t.FromAccountID, &t.ToAccountID, &t.FromOfficeID, &t.ToOfficeID,
		&amount, &transferDate, &status, &t.OutTransactionID, &t.InTransactionID, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}

		return nil, err
	}

	t.Amount = numericToDecimal(amount)
	t.TransferDate = transferDate.Time
	t.Status = domain.TransferStatus(status)
	t.CreatedAt = createdAt.Time

	return &t, nil
}
