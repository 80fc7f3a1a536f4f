// Package member defines the referral-network member model.
package member

import "time"

// SubscriptionPlan identifies the product subscription a member holds.
type SubscriptionPlan string

const (
	PlanFree    SubscriptionPlan = "free"
	PlanPremium SubscriptionPlan = "premium"
)

// BillingCycle is the premium billing cadence.
type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)

// Premium prices in BRL.
const (
	PriceMonthly = 30.0
	PriceYearly  = 300.0
)

// Member is a participant in the referral network. ReferrerID is set once at
// enrollment and never changes, so the network forms a forest.
type Member struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	WhatsApp      string           `json:"whatsapp,omitempty"`
	ReferralCode  string           `json:"referral_code"`
	ReferrerID    string           `json:"referrer_id,omitempty"`
	Active        bool             `json:"active"`
	Plan          SubscriptionPlan `json:"plan"`
	BillingCycle  BillingCycle     `json:"billing_cycle,omitempty"`
	PaidThrough   time.Time        `json:"paid_through,omitempty"`
	CareerLevel   string           `json:"career_level"`
	DirectCount   int              `json:"direct_count"`
	IndirectCount int              `json:"indirect_count"`
	EnrolledAt    time.Time        `json:"enrolled_at"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// CyclePrice returns the premium charge for a billing cycle.
func CyclePrice(cycle BillingCycle) float64 {
	if cycle == CycleYearly {
		return PriceYearly
	}
	return PriceMonthly
}
