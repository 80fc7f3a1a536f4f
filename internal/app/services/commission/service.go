// Package commission distributes referral commissions for settled billing
// periods across the paying member's upline.
package commission

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/fitmova/platform/internal/app/domain/commission"
	"github.com/fitmova/platform/internal/app/domain/ledger"
	"github.com/fitmova/platform/internal/app/services/attribution"
	"github.com/fitmova/platform/internal/app/storage"
	apperrors "github.com/fitmova/platform/internal/errors"
	"github.com/fitmova/platform/pkg/logger"
)

// SettleInput describes one paid billing period for a member.
type SettleInput struct {
	MemberID string
	Amount   float64
	Period   string // YYYY-MM
}

// Settlement reports the outcome of one settle call.
type Settlement struct {
	MemberID     string                   `json:"member_id"`
	Period       string                   `json:"period"`
	Transactions []commission.Transaction `json:"transactions"`
	// Forfeited lists upline levels skipped because the ancestor was
	// inactive when the period settled.
	Forfeited []int `json:"forfeited,omitempty"`
}

// Service runs commission settlement. All writes for one (member, period)
// pair are serialized in-process, and every storage write is idempotent, so
// crashed or repeated settlements never double-pay.
type Service struct {
	members     storage.MemberStore
	commissions storage.CommissionStore
	ledger      storage.LedgerStore
	resolver    *attribution.Resolver
	rates       commission.Rates
	log         *logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New wires a commission service. Nil rates fall back to the default
// level table and a nil logger falls back to a default JSON logger.
func New(members storage.MemberStore, commissions storage.CommissionStore, ledgerStore storage.LedgerStore, rates commission.Rates, log *logger.Logger) *Service {
	if rates == nil {
		rates = commission.DefaultRates()
	}
	if log == nil {
		log = logger.NewDefault("commission")
	}
	return &Service{
		members:     members,
		commissions: commissions,
		ledger:      ledgerStore,
		resolver:    attribution.NewResolver(members),
		rates:       rates,
		log:         log,
		locks:       make(map[string]*sync.Mutex),
	}
}

func (s *Service) lockPeriod(key string) func() {
	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}

// SettlePeriod credits the paying member's upline for one billing period.
// Each upline level is paid at its configured rate; levels whose ancestor is
// inactive are forfeited. Settling a period that has already produced every
// eligible credit fails with a duplicate settlement error.
func (s *Service) SettlePeriod(ctx context.Context, in SettleInput) (Settlement, error) {
	memberID := strings.TrimSpace(in.MemberID)
	if memberID == "" {
		return Settlement{}, apperrors.InvalidInput("member id is required")
	}
	period, err := normalizePeriod(in.Period)
	if err != nil {
		return Settlement{}, err
	}
	if in.Amount <= 0 {
		return Settlement{}, apperrors.InvalidInput("amount must be positive")
	}

	if _, err := s.members.GetMember(ctx, memberID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Settlement{}, apperrors.NotFound("member", memberID)
		}
		return Settlement{}, fmt.Errorf("load member: %w", err)
	}

	unlock := s.lockPeriod(memberID + ":" + period)
	defer unlock()

	chain, err := s.resolver.Resolve(ctx, memberID)
	if err != nil {
		return Settlement{}, fmt.Errorf("resolve upline: %w", err)
	}

	result := Settlement{MemberID: memberID, Period: period, Transactions: []commission.Transaction{}}
	duplicates := 0
	for _, ancestor := range chain {
		rate, ok := s.rates[ancestor.Level]
		if !ok {
			continue
		}
		if !ancestor.Member.Active {
			result.Forfeited = append(result.Forfeited, ancestor.Level)
			s.log.WithFields(map[string]interface{}{
				"member_id":      memberID,
				"period":         period,
				"level":          ancestor.Level,
				"beneficiary_id": ancestor.Member.ID,
			}).Info("commission level forfeited, beneficiary inactive")
			continue
		}

		key := commission.TransactionKey(memberID, period, ancestor.Level)
		tx, err := s.commissions.CreateCommission(ctx, commission.Transaction{
			BeneficiaryID: ancestor.Member.ID,
			SourceID:      memberID,
			Level:         ancestor.Level,
			Percentage:    rate,
			Amount:        round2(in.Amount * rate),
			Period:        period,
			Key:           key,
		})
		created := true
		if err != nil {
			if !errors.Is(err, storage.ErrDuplicateTransaction) {
				return Settlement{}, fmt.Errorf("record commission: %w", err)
			}
			created = false
			duplicates++
		}

		// The credit carries the commission key as its reference, so a
		// settlement replayed after a crash between the two writes still
		// lands exactly one ledger entry per level.
		if err := s.credit(ctx, ancestor.Member.ID, key, round2(in.Amount*rate), memberID, period, ancestor.Level); err != nil {
			return Settlement{}, err
		}
		if created {
			result.Transactions = append(result.Transactions, tx)
			s.log.WithFields(map[string]interface{}{
				"member_id":      memberID,
				"period":         period,
				"level":          ancestor.Level,
				"beneficiary_id": ancestor.Member.ID,
				"amount":         tx.Amount,
			}).Info("commission credited")
		}
	}

	if len(result.Transactions) == 0 && duplicates > 0 {
		return Settlement{}, apperrors.DuplicateSettlement(memberID, period)
	}
	return result, nil
}

func (s *Service) credit(ctx context.Context, beneficiaryID, reference string, amount float64, sourceID, period string, level int) error {
	_, err := s.ledger.CreditBalance(ctx, ledger.Entry{
		MemberID:  beneficiaryID,
		Type:      ledger.EntryCredit,
		Amount:    amount,
		Reference: reference,
		Memo:      fmt.Sprintf("level %d commission from %s for %s", level, sourceID, period),
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateTransaction) {
			return nil
		}
		return fmt.Errorf("credit beneficiary %s: %w", beneficiaryID, err)
	}
	return nil
}

// Transactions lists every commission credited to the given beneficiary.
func (s *Service) Transactions(ctx context.Context, beneficiaryID string) ([]commission.Transaction, error) {
	beneficiaryID = strings.TrimSpace(beneficiaryID)
	if beneficiaryID == "" {
		return nil, apperrors.InvalidInput("member id is required")
	}
	if _, err := s.members.GetMember(ctx, beneficiaryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NotFound("member", beneficiaryID)
		}
		return nil, fmt.Errorf("load member: %w", err)
	}
	txs, err := s.commissions.ListCommissions(ctx, beneficiaryID)
	if err != nil {
		return nil, fmt.Errorf("list commissions: %w", err)
	}
	return txs, nil
}

func normalizePeriod(period string) (string, error) {
	period = strings.TrimSpace(period)
	if _, err := time.Parse("2006-01", period); err != nil {
		return "", apperrors.InvalidInput(fmt.Sprintf("period %q must use YYYY-MM", period))
	}
	return period, nil
}

// round2 rounds to cents half away from zero, so negative amounts such as
// reversals round symmetrically to positive ones.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
