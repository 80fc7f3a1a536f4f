// Package ledger defines member balance accounts, ledger entries and
// withdrawals.
package ledger

import "time"

// Account tracks a member's commission balance. Available excludes amounts
// reserved by pending withdrawals; LifetimeEarned only ever grows.
type Account struct {
	MemberID       string    `json:"member_id"`
	Available      float64   `json:"available"`
	Pending        float64   `json:"pending"`
	LifetimeEarned float64   `json:"lifetime_earned"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EntryType classifies a ledger movement.
type EntryType string

const (
	EntryCredit     EntryType = "credit"
	EntryWithdrawal EntryType = "withdrawal"
	EntryRefund     EntryType = "refund"
)

// Entry is one balance movement. Reference carries the idempotency key of
// the motion that produced it (commission transaction ID or withdrawal ID);
// a second entry with the same reference is rejected.
type Entry struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"member_id"`
	Type      EntryType `json:"type"`
	Amount    float64   `json:"amount"`
	Reference string    `json:"reference"`
	Memo      string    `json:"memo,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// WithdrawalStatus tracks payout progress.
type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalCompleted WithdrawalStatus = "completed"
	WithdrawalFailed    WithdrawalStatus = "failed"
)

// Withdrawal is a member payout request. The amount is reserved from the
// available balance when the request is accepted and restored on failure.
type Withdrawal struct {
	ID        string           `json:"id"`
	MemberID  string           `json:"member_id"`
	Amount    float64          `json:"amount"`
	PixKey    string           `json:"pix_key"`
	Status    WithdrawalStatus `json:"status"`
	Message   string           `json:"message,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
