// Package commission defines referral commission transactions and the level
// rate table.
package commission

import (
	"fmt"
	"time"
)

// MaxDepth is the number of upline levels that earn on a payment.
const MaxDepth = 3

// Rates maps upline level to its commission percentage.
type Rates map[int]float64

// DefaultRates is the published compensation table: 25% for the direct
// referrer, 15% and 10% for the two levels above.
func DefaultRates() Rates {
	return Rates{1: 0.25, 2: 0.15, 3: 0.10}
}

// Transaction is one commission credit earned by an upline member from a
// downline payment. Key is unique per (source, period, level), which makes a
// settlement retry a no-op per level.
type Transaction struct {
	ID            string    `json:"id"`
	BeneficiaryID string    `json:"beneficiary_id"`
	SourceID      string    `json:"source_id"`
	Level         int       `json:"level"`
	Percentage    float64   `json:"percentage"`
	Amount        float64   `json:"amount"`
	Period        string    `json:"period"`
	Key           string    `json:"key"`
	Reversal      bool      `json:"reversal,omitempty"`
	ReversalOf    string    `json:"reversal_of,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TransactionKey builds the idempotency key for a settlement level.
func TransactionKey(sourceID, period string, level int) string {
	return fmt.Sprintf("%s:%s:%d", sourceID, period, level)
}

// PaymentEvent is a confirmed subscription payment to be settled.
type PaymentEvent struct {
	MemberID   string    `json:"member_id"`
	Amount     float64   `json:"amount"`
	Period     string    `json:"period"`
	ExternalID string    `json:"external_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
