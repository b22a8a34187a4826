package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/usecase"
)

// JournalOutboxRepository implements usecase.JournalPoster and
// usecase.JournalOutboxRepository over a single outbox table. PostBridge
// runs inside the command's transaction, so a committed command always
// has its journal delta queued; the relay drains the queue afterwards.
type JournalOutboxRepository struct {
	pool *pgxpool.Pool
}

// NewJournalOutboxRepository creates a new JournalOutboxRepository.
func NewJournalOutboxRepository(pool *pgxpool.Pool) *JournalOutboxRepository {
	return &JournalOutboxRepository{pool: pool}
}

// PostBridge queues the command's ledger delta within the transaction.
func (r *JournalOutboxRepository) PostBridge(ctx context.Context, tx usecase.Transaction, data domain.AccountingBridgeData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	_, err = tx.(*Tx).PgxTx().Exec(ctx, `
		INSERT INTO journal_outbox (account_id, office_id, payload, created_at, posted)
		VALUES ($1, $2, $3, now(), false)`,
		data.AccountID, data.OfficeID, payload)

	return err
}

// GetUnposted retrieves queued entries in arrival order.
func (r *JournalOutboxRepository) GetUnposted(ctx context.Context, limit int) ([]*domain.JournalOutboxEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, office_id, payload, created_at, posted, posted_at
		FROM journal_outbox
		WHERE posted = false
		ORDER BY id
		LIMIT $1`, int32(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.JournalOutboxEntry
	for rows.Next() {
		var (
			entry     domain.JournalOutboxEntry
			payload   []byte
			createdAt pgtype.Timestamptz
			postedAt  pgtype.Timestamptz
		)
		err := rows.Scan(&entry.ID, &entry.AccountID, &entry.OfficeID,
			&payload, &createdAt, &entry.Posted, &postedAt)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(payload, &entry.Bridge); err != nil {
			return nil, err
		}
		entry.CreatedAt = createdAt.Time
		if postedAt.Valid {
			t := postedAt.Time
			entry.PostedAt = &t
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// MarkPosted records the entry as delivered.
func (r *JournalOutboxRepository) MarkPosted(ctx context.Context, id int64, postedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE journal_outbox
		SET posted = true, posted_at = $2
		WHERE id = $1`,
		id, timeToPgTimestamptz(postedAt))

	return err
}
