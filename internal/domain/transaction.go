package domain

import "time"

type TransactionType string

const (
	TransactionCreation      TransactionType = "creation"
	TransactionParticipation TransactionType = "participation"
	TransactionBonus         TransactionType = "bonus"
	TransactionDeduction     TransactionType = "deduction"
)

// PointTransaction is one signed, append-only ledger entry. Entries are never
// edited or deleted; undoing a settlement appends equal-and-opposite rows.
type PointTransaction struct {
	ID         uint            `json:"id"`
	UserID     uint            `json:"user"`
	Amount     int             `json:"amount"` // positive = credit, negative = debit
	Reason     string          `json:"reason"`
	ActivityID *uint           `json:"activity,omitempty"`
	Type       TransactionType `json:"type"`
	AwardedBy  *uint           `json:"awarded_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Reversal returns the equal-and-opposite deduction entry for a settled payout.
func (t *PointTransaction) Reversal(reason string) PointTransaction {
	return PointTransaction{
		UserID:     t.UserID,
		Amount:     -t.Amount,
		Reason:     reason,
		ActivityID: t.ActivityID,
		Type:       TransactionDeduction,
	}
}
