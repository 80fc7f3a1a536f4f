package storage

import (
	"context"
	"errors"

	"github.com/fitmova/platform/internal/app/domain/career"
	"github.com/fitmova/platform/internal/app/domain/commission"
	"github.com/fitmova/platform/internal/app/domain/ledger"
	"github.com/fitmova/platform/internal/app/domain/member"
	"github.com/fitmova/platform/internal/app/domain/plan"
)

// Sentinel errors shared by all backends. Implementations wrap these so
// services can classify failures without knowing the backend.
var (
	ErrNotFound             = errors.New("not found")
	ErrDuplicateTransaction = errors.New("duplicate transaction")
	ErrInsufficientFunds    = errors.New("insufficient funds")
)

// MemberStore persists member records and the referral forest. Referral
// counters move only through IncrementReferralCounts, which must apply the
// deltas atomically; UpdateMember leaves them untouched so a stale row read
// cannot roll a concurrent enrollment back.
type MemberStore interface {
	CreateMember(ctx context.Context, m member.Member) (member.Member, error)
	UpdateMember(ctx context.Context, m member.Member) (member.Member, error)
	IncrementReferralCounts(ctx context.Context, memberID string, direct, indirect int) (member.Member, error)
	GetMember(ctx context.Context, id string) (member.Member, error)
	GetMemberByCode(ctx context.Context, code string) (member.Member, error)
	ListMembers(ctx context.Context) ([]member.Member, error)
	ListDirects(ctx context.Context, referrerID string) ([]member.Member, error)
}

// CommissionStore persists commission transactions. CreateCommission must
// reject a second transaction with the same Key with ErrDuplicateTransaction.
type CommissionStore interface {
	CreateCommission(ctx context.Context, tx commission.Transaction) (commission.Transaction, error)
	GetCommission(ctx context.Context, id string) (commission.Transaction, error)
	ListCommissions(ctx context.Context, beneficiaryID string) ([]commission.Transaction, error)
	ListCommissionsBySource(ctx context.Context, sourceID, period string) ([]commission.Transaction, error)
}

// LedgerStore persists balance accounts, entries and withdrawals. Balance
// motions are atomic per account: CreditBalance applies entry and balance
// together and rejects a duplicate entry reference; ReserveWithdrawal fails
// with ErrInsufficientFunds rather than overdrawing.
type LedgerStore interface {
	EnsureLedgerAccount(ctx context.Context, memberID string) (ledger.Account, error)
	GetLedgerAccount(ctx context.Context, memberID string) (ledger.Account, error)
	CreditBalance(ctx context.Context, entry ledger.Entry) (ledger.Account, error)
	ReserveWithdrawal(ctx context.Context, memberID string, amount float64) (ledger.Account, error)
	SettleWithdrawal(ctx context.Context, memberID string, amount float64, success bool) (ledger.Account, error)
	ListLedgerEntries(ctx context.Context, memberID string) ([]ledger.Entry, error)

	CreateWithdrawal(ctx context.Context, wd ledger.Withdrawal) (ledger.Withdrawal, error)
	UpdateWithdrawal(ctx context.Context, wd ledger.Withdrawal) (ledger.Withdrawal, error)
	GetWithdrawal(ctx context.Context, id string) (ledger.Withdrawal, error)
	ListWithdrawals(ctx context.Context, memberID string) ([]ledger.Withdrawal, error)
	ListPendingWithdrawals(ctx context.Context) ([]ledger.Withdrawal, error)
}

// CareerStore persists append-only career evaluations.
type CareerStore interface {
	CreateEvaluation(ctx context.Context, ev career.Evaluation) (career.Evaluation, error)
	LatestEvaluation(ctx context.Context, memberID string) (career.Evaluation, error)
	ListEvaluations(ctx context.Context, memberID string) ([]career.Evaluation, error)
}

// PlanStore persists generated fitness content.
type PlanStore interface {
	CreatePlan(ctx context.Context, rec plan.Record) (plan.Record, error)
	ListPlans(ctx context.Context, memberID string, kind plan.Kind) ([]plan.Record, error)
}
