package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurrenceFrequency is the unit of the installment cadence.
type RecurrenceFrequency string

const (
	FrequencyWeekly  RecurrenceFrequency = "weekly"
	FrequencyMonthly RecurrenceFrequency = "monthly"
	FrequencyYearly  RecurrenceFrequency = "yearly"
)

// Installment is one expected deposit of a recurring deposit schedule.
type Installment struct {
	Seq       int
	DueDate   time.Time
	Amount    decimal.Decimal
	Deposited decimal.Decimal
	Overdue   bool
}

// Outstanding returns the amount still expected for this installment.
func (i *Installment) Outstanding() decimal.Decimal {
	return i.Amount.Sub(i.Deposited)
}

// Recurrence is the mandatory installment schedule of a recurring
// deposit. Installments are fully derived: they are regenerated whenever
// the schedule or the maturity inputs change.
type Recurrence struct {
	Frequency         RecurrenceFrequency
	Every             int
	InstallmentAmount decimal.Decimal
	Installments      []*Installment
}

// GenerateSchedule derives the installment list from the recurrence,
// replacing any previous schedule but re-applying amounts already
// deposited against the old one in due-date order.
func (r *Recurrence) GenerateSchedule(currency Currency, start time.Time, termMonths int) {
	deposited := decimal.Zero
	for _, inst := range r.Installments {
		deposited = deposited.Add(inst.Deposited)
	}

	every := r.Every
	if every <= 0 {
		every = 1
	}
	end := ToDate(start).AddDate(0, termMonths, 0)
	r.Installments = nil
	due := ToDate(start)
	for seq := 1; !AfterDay(due, end); seq++ {
		r.Installments = append(r.Installments, &Installment{
			Seq:     seq,
			DueDate: due,
			Amount:  NewMoney(currency, r.InstallmentAmount).Amount(),
		})
		switch r.Frequency {
		case FrequencyWeekly:
			due = due.AddDate(0, 0, 7*every)
		case FrequencyYearly:
			due = due.AddDate(every, 0, 0)
		default:
			due = due.AddDate(0, every, 0)
		}
	}

	if deposited.IsPositive() {
		r.AllocateDeposit(ToDate(start), deposited)
	}
}

// AllocateDeposit applies a deposit against the earliest unpaid
// installments.
func (r *Recurrence) AllocateDeposit(date time.Time, amount decimal.Decimal) {
	remaining := amount
	for _, inst := range r.Installments {
		if !remaining.IsPositive() {
			break
		}
		outstanding := inst.Outstanding()
		if !outstanding.IsPositive() {
			continue
		}
		applied := decimal.Min(outstanding, remaining)
		inst.Deposited = inst.Deposited.Add(applied)
		remaining = remaining.Sub(applied)
	}
}

// UpdateOverdue flags installments unpaid past their due date.
func (r *Recurrence) UpdateOverdue(today time.Time) {
	for _, inst := range r.Installments {
		inst.Overdue = BeforeDay(inst.DueDate, today) && inst.Outstanding().IsPositive()
	}
}

// Clone returns a deep copy.
func (r *Recurrence) Clone() *Recurrence {
	c := *r
	c.Installments = make([]*Installment, len(r.Installments))
	for i, inst := range r.Installments {
		cp := *inst
		c.Installments[i] = &cp
	}
	return &c
}
