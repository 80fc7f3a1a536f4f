package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fitmova/platform/internal/app/domain/career"
	"github.com/fitmova/platform/internal/app/domain/commission"
	"github.com/fitmova/platform/internal/app/domain/ledger"
	"github.com/fitmova/platform/internal/app/domain/member"
	"github.com/fitmova/platform/internal/app/domain/plan"
	"github.com/fitmova/platform/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu     sync.RWMutex
	nextID int64

	members       map[string]member.Member
	membersByCode map[string]string
	directs       map[string][]string

	commissions      map[string]commission.Transaction
	commissionsByKey map[string]string

	ledgerAccounts map[string]ledger.Account
	ledgerEntries  map[string][]ledger.Entry
	entryRefs      map[string]string

	withdrawals map[string]ledger.Withdrawal

	evaluations map[string][]career.Evaluation
	plans       map[string][]plan.Record
}

var _ storage.MemberStore = (*Store)(nil)
var _ storage.CommissionStore = (*Store)(nil)
var _ storage.LedgerStore = (*Store)(nil)
var _ storage.CareerStore = (*Store)(nil)
var _ storage.PlanStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:           1,
		members:          make(map[string]member.Member),
		membersByCode:    make(map[string]string),
		directs:          make(map[string][]string),
		commissions:      make(map[string]commission.Transaction),
		commissionsByKey: make(map[string]string),
		ledgerAccounts:   make(map[string]ledger.Account),
		ledgerEntries:    make(map[string][]ledger.Entry),
		entryRefs:        make(map[string]string),
		withdrawals:      make(map[string]ledger.Withdrawal),
		evaluations:      make(map[string][]career.Evaluation),
		plans:            make(map[string][]plan.Record),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// MemberStore implementation -------------------------------------------------

func (s *Store) CreateMember(_ context.Context, m member.Member) (member.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = s.nextIDLocked()
	} else if _, exists := s.members[m.ID]; exists {
		return member.Member{}, fmt.Errorf("member %s already exists", m.ID)
	}

	codeKey := strings.ToUpper(strings.TrimSpace(m.ReferralCode))
	if codeKey != "" {
		if existing, exists := s.membersByCode[codeKey]; exists {
			return member.Member{}, fmt.Errorf("referral code %s already assigned to member %s", m.ReferralCode, existing)
		}
	}
	if m.ReferrerID != "" {
		if _, ok := s.members[m.ReferrerID]; !ok {
			return member.Member{}, fmt.Errorf("referrer %s: %w", m.ReferrerID, storage.ErrNotFound)
		}
	}

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.EnrolledAt.IsZero() {
		m.EnrolledAt = now
	}

	s.members[m.ID] = m
	if codeKey != "" {
		s.membersByCode[codeKey] = m.ID
	}
	if m.ReferrerID != "" {
		s.directs[m.ReferrerID] = append(s.directs[m.ReferrerID], m.ID)
	}
	return m, nil
}

func (s *Store) UpdateMember(_ context.Context, m member.Member) (member.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.members[m.ID]
	if !ok {
		return member.Member{}, fmt.Errorf("member %s: %w", m.ID, storage.ErrNotFound)
	}

	// The referral edge and code are immutable, and referral counters move
	// only through IncrementReferralCounts.
	m.ReferrerID = original.ReferrerID
	m.ReferralCode = original.ReferralCode
	m.EnrolledAt = original.EnrolledAt
	m.CreatedAt = original.CreatedAt
	m.DirectCount = original.DirectCount
	m.IndirectCount = original.IndirectCount
	m.UpdatedAt = time.Now().UTC()

	s.members[m.ID] = m
	return m, nil
}

func (s *Store) IncrementReferralCounts(_ context.Context, memberID string, direct, indirect int) (member.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[memberID]
	if !ok {
		return member.Member{}, fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	m.DirectCount += direct
	m.IndirectCount += indirect
	m.UpdatedAt = time.Now().UTC()
	s.members[memberID] = m
	return m, nil
}

func (s *Store) GetMember(_ context.Context, id string) (member.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[id]
	if !ok {
		return member.Member{}, fmt.Errorf("member %s: %w", id, storage.ErrNotFound)
	}
	return m, nil
}

func (s *Store) GetMemberByCode(_ context.Context, code string) (member.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := s.membersByCode[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return s.members[id], nil
	}
	return member.Member{}, fmt.Errorf("referral code %s: %w", code, storage.ErrNotFound)
}

func (s *Store) ListMembers(_ context.Context) ([]member.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]member.Member, 0, len(s.members))
	for _, m := range s.members {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *Store) ListDirects(_ context.Context, referrerID string) ([]member.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.directs[referrerID]
	result := make([]member.Member, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.members[id])
	}
	return result, nil
}

// CommissionStore implementation ---------------------------------------------

func (s *Store) CreateCommission(_ context.Context, tx commission.Transaction) (commission.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.Key != "" {
		if _, exists := s.commissionsByKey[tx.Key]; exists {
			return commission.Transaction{}, fmt.Errorf("commission %s: %w", tx.Key, storage.ErrDuplicateTransaction)
		}
	}
	if tx.ID == "" {
		tx.ID = s.nextIDLocked()
	} else if _, exists := s.commissions[tx.ID]; exists {
		return commission.Transaction{}, fmt.Errorf("commission %s already exists", tx.ID)
	}

	tx.CreatedAt = time.Now().UTC()
	s.commissions[tx.ID] = tx
	if tx.Key != "" {
		s.commissionsByKey[tx.Key] = tx.ID
	}
	return tx, nil
}

func (s *Store) GetCommission(_ context.Context, id string) (commission.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.commissions[id]
	if !ok {
		return commission.Transaction{}, fmt.Errorf("commission %s: %w", id, storage.ErrNotFound)
	}
	return tx, nil
}

func (s *Store) ListCommissions(_ context.Context, beneficiaryID string) ([]commission.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]commission.Transaction, 0)
	for _, tx := range s.commissions {
		if tx.BeneficiaryID == beneficiaryID {
			result = append(result, tx)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *Store) ListCommissionsBySource(_ context.Context, sourceID, period string) ([]commission.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]commission.Transaction, 0)
	for _, tx := range s.commissions {
		if tx.SourceID == sourceID && (period == "" || tx.Period == period) {
			result = append(result, tx)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Level < result[j].Level })
	return result, nil
}

// LedgerStore implementation --------------------------------------------------

func (s *Store) EnsureLedgerAccount(_ context.Context, memberID string) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureAccountLocked(memberID), nil
}

func (s *Store) ensureAccountLocked(memberID string) ledger.Account {
	acct, ok := s.ledgerAccounts[memberID]
	if !ok {
		now := time.Now().UTC()
		acct = ledger.Account{MemberID: memberID, CreatedAt: now, UpdatedAt: now}
		s.ledgerAccounts[memberID] = acct
	}
	return acct
}

func (s *Store) GetLedgerAccount(_ context.Context, memberID string) (ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.ledgerAccounts[memberID]
	if !ok {
		return ledger.Account{}, fmt.Errorf("ledger account %s: %w", memberID, storage.ErrNotFound)
	}
	return acct, nil
}

func (s *Store) CreditBalance(_ context.Context, entry ledger.Entry) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Reference == "" {
		return ledger.Account{}, fmt.Errorf("ledger entry reference required")
	}
	if _, exists := s.entryRefs[entry.Reference]; exists {
		return ledger.Account{}, fmt.Errorf("ledger entry %s: %w", entry.Reference, storage.ErrDuplicateTransaction)
	}

	acct := s.ensureAccountLocked(entry.MemberID)
	acct.Available += entry.Amount
	acct.LifetimeEarned += entry.Amount
	acct.UpdatedAt = time.Now().UTC()
	s.ledgerAccounts[entry.MemberID] = acct

	if entry.ID == "" {
		entry.ID = s.nextIDLocked()
	}
	entry.Type = ledger.EntryCredit
	entry.CreatedAt = acct.UpdatedAt
	s.ledgerEntries[entry.MemberID] = append(s.ledgerEntries[entry.MemberID], entry)
	s.entryRefs[entry.Reference] = entry.ID
	return acct, nil
}

func (s *Store) ReserveWithdrawal(_ context.Context, memberID string, amount float64) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.ensureAccountLocked(memberID)
	if acct.Available < amount {
		return acct, fmt.Errorf("reserve %.2f for %s: %w", amount, memberID, storage.ErrInsufficientFunds)
	}
	acct.Available -= amount
	acct.Pending += amount
	acct.UpdatedAt = time.Now().UTC()
	s.ledgerAccounts[memberID] = acct
	return acct, nil
}

func (s *Store) SettleWithdrawal(_ context.Context, memberID string, amount float64, success bool) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.ledgerAccounts[memberID]
	if !ok {
		return ledger.Account{}, fmt.Errorf("ledger account %s: %w", memberID, storage.ErrNotFound)
	}
	acct.Pending -= amount
	if acct.Pending < 0 {
		acct.Pending = 0
	}
	if !success {
		acct.Available += amount
	}
	acct.UpdatedAt = time.Now().UTC()
	s.ledgerAccounts[memberID] = acct
	return acct, nil
}

func (s *Store) ListLedgerEntries(_ context.Context, memberID string) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]ledger.Entry(nil), s.ledgerEntries[memberID]...), nil
}

func (s *Store) CreateWithdrawal(_ context.Context, wd ledger.Withdrawal) (ledger.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if wd.ID == "" {
		wd.ID = s.nextIDLocked()
	} else if _, exists := s.withdrawals[wd.ID]; exists {
		return ledger.Withdrawal{}, fmt.Errorf("withdrawal %s already exists", wd.ID)
	}

	now := time.Now().UTC()
	wd.CreatedAt = now
	wd.UpdatedAt = now
	s.withdrawals[wd.ID] = wd
	return wd, nil
}

func (s *Store) UpdateWithdrawal(_ context.Context, wd ledger.Withdrawal) (ledger.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.withdrawals[wd.ID]
	if !ok {
		return ledger.Withdrawal{}, fmt.Errorf("withdrawal %s: %w", wd.ID, storage.ErrNotFound)
	}

	wd.MemberID = original.MemberID
	wd.CreatedAt = original.CreatedAt
	wd.UpdatedAt = time.Now().UTC()
	s.withdrawals[wd.ID] = wd
	return wd, nil
}

func (s *Store) GetWithdrawal(_ context.Context, id string) (ledger.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wd, ok := s.withdrawals[id]
	if !ok {
		return ledger.Withdrawal{}, fmt.Errorf("withdrawal %s: %w", id, storage.ErrNotFound)
	}
	return wd, nil
}

func (s *Store) ListWithdrawals(_ context.Context, memberID string) ([]ledger.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]ledger.Withdrawal, 0)
	for _, wd := range s.withdrawals {
		if wd.MemberID == memberID {
			result = append(result, wd)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *Store) ListPendingWithdrawals(_ context.Context) ([]ledger.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]ledger.Withdrawal, 0)
	for _, wd := range s.withdrawals {
		if wd.Status == ledger.WithdrawalPending {
			result = append(result, wd)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// CareerStore implementation --------------------------------------------------

func (s *Store) CreateEvaluation(_ context.Context, ev career.Evaluation) (career.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.ID == "" {
		ev.ID = s.nextIDLocked()
	}
	ev.CreatedAt = time.Now().UTC()
	if ev.QualifiedAt.IsZero() {
		ev.QualifiedAt = ev.CreatedAt
	}
	s.evaluations[ev.MemberID] = append(s.evaluations[ev.MemberID], ev)
	return ev, nil
}

func (s *Store) LatestEvaluation(_ context.Context, memberID string) (career.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evs := s.evaluations[memberID]
	if len(evs) == 0 {
		return career.Evaluation{}, fmt.Errorf("evaluation for %s: %w", memberID, storage.ErrNotFound)
	}
	return evs[len(evs)-1], nil
}

func (s *Store) ListEvaluations(_ context.Context, memberID string) ([]career.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]career.Evaluation(nil), s.evaluations[memberID]...), nil
}

// PlanStore implementation ----------------------------------------------------

func (s *Store) CreatePlan(_ context.Context, rec plan.Record) (plan.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = s.nextIDLocked()
	}
	rec.CreatedAt = time.Now().UTC()
	rec.Content = append([]byte(nil), rec.Content...)
	s.plans[rec.MemberID] = append(s.plans[rec.MemberID], rec)
	return rec, nil
}

func (s *Store) ListPlans(_ context.Context, memberID string, kind plan.Kind) ([]plan.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]plan.Record, 0)
	for _, rec := range s.plans[memberID] {
		if kind == "" || rec.Kind == kind {
			rec.Content = append([]byte(nil), rec.Content...)
			result = append(result, rec)
		}
	}
	return result, nil
}
