package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// JournalFact is what the external double-entry poster needs to journal
// one transaction, without reaching back into the aggregate.
type JournalFact struct {
	TransactionID string
	Type          TransactionType
	Date          time.Time
	Amount        decimal.Decimal
	Reversed      bool
}

// AccountingBridgeData is the diff handed to the external journal-posting
// service after a command: transactions created since the snapshot and
// transactions newly marked reversed. Journaling the delta rather than
// the ledger means each movement is journaled exactly once.
type AccountingBridgeData struct {
	AccountID                   string
	OfficeID                    string
	Currency                    Currency
	NewTransactionIDs           []string
	NewlyReversedTransactionIDs []string
	JournalFacts                []JournalFact
}

// IsEmpty reports whether the command produced nothing to journal.
func (d AccountingBridgeData) IsEmpty() bool {
	return len(d.NewTransactionIDs) == 0 && len(d.NewlyReversedTransactionIDs) == 0
}

// DeriveBridgeData diffs the ledger against the pre-command snapshots.
func (a *Account) DeriveBridgeData(existingIDs, existingReversedIDs map[string]bool) AccountingBridgeData {
	data := AccountingBridgeData{
		AccountID: a.ID,
		OfficeID:  a.OfficeID,
		Currency:  a.Currency,
	}
	for _, tx := range a.Transactions {
		isNew := !existingIDs[tx.ID]
		newlyReversed := tx.Reversed && !isNew && !existingReversedIDs[tx.ID]
		if !isNew && !newlyReversed {
			continue
		}
		if isNew {
			data.NewTransactionIDs = append(data.NewTransactionIDs, tx.ID)
		}
		if newlyReversed {
			data.NewlyReversedTransactionIDs = append(data.NewlyReversedTransactionIDs, tx.ID)
		}
		data.JournalFacts = append(data.JournalFacts, JournalFact{
			TransactionID: tx.ID,
			Type:          tx.Type,
			Date:          tx.TransactionDate,
			Amount:        tx.Amount.Amount(),
			Reversed:      tx.Reversed,
		})
	}
	sort.Strings(data.NewTransactionIDs)
	sort.Strings(data.NewlyReversedTransactionIDs)
	return data
}

// JournalOutboxEntry is one bridge delta queued for delivery to the
// accounting service. Entries are written in the same database
// transaction as the aggregate save, so a committed command always has
// its journal delta on disk.
type JournalOutboxEntry struct {
	ID        int64
	AccountID string
	OfficeID  string
	Bridge    AccountingBridgeData
	CreatedAt time.Time
	Posted    bool
	PostedAt  *time.Time
}
