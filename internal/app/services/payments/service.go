// Package payments turns provider webhook events into subscription state and
// commission settlements.
package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fitmova/platform/internal/app/domain/member"
	commissionsvc "github.com/fitmova/platform/internal/app/services/commission"
	"github.com/fitmova/platform/internal/app/services/members"
	apperrors "github.com/fitmova/platform/internal/errors"
	"github.com/fitmova/platform/pkg/logger"
)

// Event statuses accepted from the payment provider.
const (
	StatusApproved = "approved"
	StatusRefused  = "refused"
	StatusExpired  = "expired"
)

// Event is one normalized payment notification.
type Event struct {
	MemberID   string  `json:"member_id"`
	Status     string  `json:"status"`
	Cycle      string  `json:"cycle"`
	Amount     float64 `json:"amount"`
	Period     string  `json:"period"`
	ExternalID string  `json:"external_id"`
}

// Outcome reports what an event changed.
type Outcome struct {
	MemberID   string                    `json:"member_id"`
	Status     string                    `json:"status"`
	Settlement *commissionsvc.Settlement `json:"settlement,omitempty"`
}

// Service applies payment events.
type Service struct {
	members     *members.Service
	commissions *commissionsvc.Service
	log         *logger.Logger
}

// New wires a payments service. A nil logger falls back to a default
// JSON logger.
func New(membersSvc *members.Service, commissions *commissionsvc.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("payments")
	}
	return &Service{members: membersSvc, commissions: commissions, log: log}
}

// Process applies one payment event. An approved payment activates the
// member's subscription and settles the period's commissions; a refused or
// expired payment deactivates the member. Replays of an already settled
// payment are absorbed.
func (s *Service) Process(ctx context.Context, ev Event) (Outcome, error) {
	memberID := strings.TrimSpace(ev.MemberID)
	if memberID == "" {
		return Outcome{}, apperrors.InvalidInput("member id is required")
	}

	switch strings.ToLower(strings.TrimSpace(ev.Status)) {
	case StatusApproved:
		return s.applyApproved(ctx, memberID, ev)
	case StatusRefused, StatusExpired:
		if _, err := s.members.Deactivate(ctx, memberID); err != nil {
			return Outcome{}, err
		}
		return Outcome{MemberID: memberID, Status: "deactivated"}, nil
	default:
		return Outcome{}, apperrors.InvalidInput(fmt.Sprintf("unknown payment status %q", ev.Status))
	}
}

func (s *Service) applyApproved(ctx context.Context, memberID string, ev Event) (Outcome, error) {
	cycle := member.BillingCycle(strings.ToLower(strings.TrimSpace(ev.Cycle)))
	if cycle == "" {
		cycle = member.CycleMonthly
	}
	amount := ev.Amount
	if amount <= 0 {
		amount = member.CyclePrice(cycle)
	}
	period := strings.TrimSpace(ev.Period)
	if period == "" {
		period = time.Now().UTC().Format("2006-01")
	}

	if _, err := s.members.Activate(ctx, memberID, cycle); err != nil {
		return Outcome{}, err
	}

	settlement, err := s.commissions.SettlePeriod(ctx, commissionsvc.SettleInput{
		MemberID: memberID,
		Amount:   amount,
		Period:   period,
	})
	if err != nil {
		if se := apperrors.GetServiceError(err); se != nil && se.Code == apperrors.CodeDuplicateSettlement {
			s.log.WithFields(map[string]interface{}{
				"member_id":   memberID,
				"period":      period,
				"external_id": ev.ExternalID,
			}).Info("payment replay absorbed, period already settled")
			return Outcome{MemberID: memberID, Status: "already_settled"}, nil
		}
		return Outcome{}, err
	}

	s.log.WithFields(map[string]interface{}{
		"member_id":   memberID,
		"period":      period,
		"credited":    len(settlement.Transactions),
		"external_id": ev.ExternalID,
	}).Info("payment applied")
	return Outcome{MemberID: memberID, Status: "settled", Settlement: &settlement}, nil
}
