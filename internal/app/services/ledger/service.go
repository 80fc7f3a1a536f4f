// Package ledger exposes member balances and the withdrawal flow. Funds
// enter through commission settlement and leave through PIX payouts.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fitmova/platform/internal/app/domain/ledger"
	"github.com/fitmova/platform/internal/app/storage"
	apperrors "github.com/fitmova/platform/internal/errors"
	"github.com/fitmova/platform/pkg/logger"
)

// WithdrawalInput carries a payout request.
type WithdrawalInput struct {
	MemberID string
	Amount   float64
	PixKey   string
}

// Service reads balances and moves funds between the available and pending
// buckets of a member's account.
type Service struct {
	members storage.MemberStore
	store   storage.LedgerStore
	log     *logger.Logger
}

// New wires a ledger service. A nil logger falls back to a default
// JSON logger.
func New(members storage.MemberStore, store storage.LedgerStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("ledger")
	}
	return &Service{members: members, store: store, log: log}
}

// Balance returns the member's account, creating an empty one on first read.
func (s *Service) Balance(ctx context.Context, memberID string) (ledger.Account, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return ledger.Account{}, apperrors.InvalidInput("member id is required")
	}
	if err := s.requireMember(ctx, memberID); err != nil {
		return ledger.Account{}, err
	}
	acct, err := s.store.EnsureLedgerAccount(ctx, memberID)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("ensure account: %w", err)
	}
	return acct, nil
}

// Entries lists the member's ledger entries, newest first.
func (s *Service) Entries(ctx context.Context, memberID string) ([]ledger.Entry, error) {
	if err := s.requireMember(ctx, memberID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListLedgerEntries(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// RequestWithdrawal moves the requested amount from available to pending and
// records a withdrawal for the payout poller to resolve. A request beyond the
// available balance is rejected without touching the account.
func (s *Service) RequestWithdrawal(ctx context.Context, in WithdrawalInput) (ledger.Withdrawal, error) {
	memberID := strings.TrimSpace(in.MemberID)
	if memberID == "" {
		return ledger.Withdrawal{}, apperrors.InvalidInput("member id is required")
	}
	if in.Amount <= 0 {
		return ledger.Withdrawal{}, apperrors.InvalidInput("amount must be positive")
	}
	pixKey := strings.TrimSpace(in.PixKey)
	if pixKey == "" {
		return ledger.Withdrawal{}, apperrors.InvalidInput("pix key is required")
	}
	if err := s.requireMember(ctx, memberID); err != nil {
		return ledger.Withdrawal{}, err
	}

	acct, err := s.store.ReserveWithdrawal(ctx, memberID, in.Amount)
	if err != nil {
		if errors.Is(err, storage.ErrInsufficientFunds) {
			current, balErr := s.store.GetLedgerAccount(ctx, memberID)
			if balErr != nil {
				current = ledger.Account{MemberID: memberID}
			}
			return ledger.Withdrawal{}, apperrors.InsufficientBalance(current.Available, in.Amount)
		}
		return ledger.Withdrawal{}, fmt.Errorf("reserve funds: %w", err)
	}

	wd, err := s.store.CreateWithdrawal(ctx, ledger.Withdrawal{
		MemberID: memberID,
		Amount:   in.Amount,
		PixKey:   pixKey,
		Status:   ledger.WithdrawalPending,
	})
	if err != nil {
		// Roll the reservation back so the funds are not stranded in pending.
		if _, settleErr := s.store.SettleWithdrawal(ctx, memberID, in.Amount, false); settleErr != nil {
			s.log.WithError(settleErr).WithField("member_id", memberID).
				Error("failed to release reserved funds")
		}
		return ledger.Withdrawal{}, fmt.Errorf("record withdrawal: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"withdrawal_id": wd.ID,
		"member_id":     memberID,
		"amount":        in.Amount,
		"available":     acct.Available,
	}).Info("withdrawal requested")
	return wd, nil
}

// CompleteWithdrawal finishes a pending withdrawal. Success burns the pending
// funds, failure returns them to the available balance.
func (s *Service) CompleteWithdrawal(ctx context.Context, id string, success bool, message string) (ledger.Withdrawal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ledger.Withdrawal{}, apperrors.InvalidInput("withdrawal id is required")
	}
	wd, err := s.store.GetWithdrawal(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ledger.Withdrawal{}, apperrors.NotFound("withdrawal", id)
		}
		return ledger.Withdrawal{}, fmt.Errorf("load withdrawal: %w", err)
	}
	if wd.Status != ledger.WithdrawalPending {
		return wd, nil
	}

	if _, err := s.store.SettleWithdrawal(ctx, wd.MemberID, wd.Amount, success); err != nil {
		return ledger.Withdrawal{}, fmt.Errorf("settle funds: %w", err)
	}
	if success {
		wd.Status = ledger.WithdrawalCompleted
	} else {
		wd.Status = ledger.WithdrawalFailed
	}
	wd.Message = message
	updated, err := s.store.UpdateWithdrawal(ctx, wd)
	if err != nil {
		return ledger.Withdrawal{}, fmt.Errorf("update withdrawal: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"withdrawal_id": updated.ID,
		"member_id":     updated.MemberID,
		"status":        string(updated.Status),
	}).Info("withdrawal settled")
	return updated, nil
}

// Withdrawals lists the member's withdrawal history.
func (s *Service) Withdrawals(ctx context.Context, memberID string) ([]ledger.Withdrawal, error) {
	if err := s.requireMember(ctx, memberID); err != nil {
		return nil, err
	}
	wds, err := s.store.ListWithdrawals(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	return wds, nil
}

func (s *Service) requireMember(ctx context.Context, memberID string) error {
	if _, err := s.members.GetMember(ctx, memberID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NotFound("member", memberID)
		}
		return fmt.Errorf("load member: %w", err)
	}
	return nil
}
