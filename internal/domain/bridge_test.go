package domain

import (
	"testing"
	"time"
)

func TestAccount_DeriveBridgeData(t *testing.T) {
	a := postedSavings(t)
	now := time.Date(2024, 2, 5, 9, 0, 0, 0, time.UTC)

	existing := a.ExistingTransactionIDs()
	existingReversed := a.ExistingReversedTransactionIDs()

	// undoing the Jan 10 deposit reverses it, reverses the stale interest
	// posting and appends a corrected one
	if _, err := a.UndoTransaction("tx-2", ids("re"), now); err != nil {
		t.Fatalf("undo: %v", err)
	}

	data := a.DeriveBridgeData(existing, existingReversed)
	if data.IsEmpty() {
		t.Fatal("undo produced ledger movements, bridge data must not be empty")
	}
	if data.AccountID != a.ID || data.OfficeID != a.OfficeID {
		t.Errorf("bridge data addressed to %s/%s, want %s/%s", data.AccountID, data.OfficeID, a.ID, a.OfficeID)
	}

	if len(data.NewTransactionIDs) != 1 || data.NewTransactionIDs[0] != "re-1" {
		t.Errorf("new ids = %v, want [re-1]", data.NewTransactionIDs)
	}
	wantReversed := []string{"int-1", "tx-2"}
	if len(data.NewlyReversedTransactionIDs) != 2 {
		t.Fatalf("newly reversed = %v, want %v", data.NewlyReversedTransactionIDs, wantReversed)
	}
	for i, id := range wantReversed {
		if data.NewlyReversedTransactionIDs[i] != id {
			t.Errorf("newly reversed[%d] = %s, want %s", i, data.NewlyReversedTransactionIDs[i], id)
		}
	}

	// one journal fact per delta entry
	if len(data.JournalFacts) != 3 {
		t.Fatalf("expected 3 journal facts, got %d", len(data.JournalFacts))
	}
	facts := make(map[string]JournalFact, len(data.JournalFacts))
	for _, f := range data.JournalFacts {
		facts[f.TransactionID] = f
	}
	if f := facts["re-1"]; f.Reversed || f.Type != TypeInterestPosting || !f.Amount.Equal(dec("10.19")) {
		t.Errorf("fact for re-1 = %+v", f)
	}
	if f := facts["tx-2"]; !f.Reversed || f.Type != TypeDeposit {
		t.Errorf("fact for tx-2 = %+v", f)
	}
}

func TestAccount_DeriveBridgeDataNoChanges(t *testing.T) {
	a := postedSavings(t)
	data := a.DeriveBridgeData(a.ExistingTransactionIDs(), a.ExistingReversedTransactionIDs())
	if !data.IsEmpty() {
		t.Errorf("no command ran, bridge data should be empty: %+v", data)
	}
}
