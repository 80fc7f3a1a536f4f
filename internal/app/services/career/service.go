// Package career evaluates members against the career ladder and keeps the
// qualification history.
package career

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fitmova/platform/internal/app/domain/career"
	"github.com/fitmova/platform/internal/app/domain/member"
	"github.com/fitmova/platform/internal/app/storage"
	apperrors "github.com/fitmova/platform/internal/errors"
	"github.com/fitmova/platform/pkg/logger"
)

// Metrics are the inputs one qualification check runs against.
type Metrics struct {
	Directs       int     `json:"directs"`
	Indirects     int     `json:"indirects"`
	CompanyVolume float64 `json:"company_volume"`
}

// Status is the career snapshot served to members.
type Status struct {
	MemberID      string              `json:"member_id"`
	Level         career.Level        `json:"level"`
	Metrics       Metrics             `json:"metrics"`
	QualifiedAt   time.Time           `json:"qualified_at,omitempty"`
	RequalifyBy   time.Time           `json:"requalify_by,omitempty"`
	Next          *career.Requirement `json:"next,omitempty"`
	DirectsNeeded int                 `json:"directs_needed,omitempty"`
	IndirectsNeed int                 `json:"indirects_needed,omitempty"`
}

// Service runs career evaluations against the ladder.
type Service struct {
	members     storage.MemberStore
	commissions storage.CommissionStore
	evaluations storage.CareerStore
	log         *logger.Logger
}

// New wires a career service. A nil logger falls back to a default
// JSON logger.
func New(members storage.MemberStore, commissions storage.CommissionStore, evaluations storage.CareerStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("career")
	}
	return &Service{members: members, commissions: commissions, evaluations: evaluations, log: log}
}

// QualifyingLevel returns the highest ladder tier the metrics satisfy.
func QualifyingLevel(m Metrics) career.Level {
	level := career.LevelNone
	for _, req := range career.Ladder {
		if m.Directs >= req.Directs && m.Indirects >= req.Indirects && m.CompanyVolume >= req.CompanyVolume {
			level = req.Level
		}
	}
	return level
}

// Evaluate runs one qualification check for a member. Levels are never taken
// away: the recorded level is the higher of the member's current tier and the
// tier the metrics reach. A new record is appended only when the tier changes.
func (s *Service) Evaluate(ctx context.Context, memberID string) (career.Evaluation, error) {
	m, err := s.loadMember(ctx, memberID)
	if err != nil {
		return career.Evaluation{}, err
	}

	metrics, err := s.metricsFor(ctx, m)
	if err != nil {
		return career.Evaluation{}, err
	}

	current := career.Level(m.CareerLevel)
	candidate := QualifyingLevel(metrics)
	level := candidate
	if career.Rank(current) > career.Rank(candidate) {
		level = current
	}

	last, err := s.evaluations.LatestEvaluation(ctx, m.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return career.Evaluation{}, fmt.Errorf("load last evaluation: %w", err)
	}
	if err == nil && last.Level == level {
		return last, nil
	}

	ev, err := s.evaluations.CreateEvaluation(ctx, career.Evaluation{
		MemberID:      m.ID,
		Level:         level,
		Directs:       metrics.Directs,
		Indirects:     metrics.Indirects,
		CompanyVolume: metrics.CompanyVolume,
		QualifiedAt:   time.Now().UTC(),
	})
	if err != nil {
		return career.Evaluation{}, fmt.Errorf("record evaluation: %w", err)
	}

	if string(level) != m.CareerLevel {
		m.CareerLevel = string(level)
		if _, err := s.members.UpdateMember(ctx, m); err != nil {
			return career.Evaluation{}, fmt.Errorf("update member level: %w", err)
		}
		s.log.WithFields(map[string]interface{}{
			"member_id": m.ID,
			"level":     string(level),
			"directs":   metrics.Directs,
			"indirects": metrics.Indirects,
		}).Info("career level reached")
	}
	return ev, nil
}

// Status reports the member's current tier, live metrics, the requalification
// deadline and the distance to the next tier.
func (s *Service) Status(ctx context.Context, memberID string) (Status, error) {
	m, err := s.loadMember(ctx, memberID)
	if err != nil {
		return Status{}, err
	}
	metrics, err := s.metricsFor(ctx, m)
	if err != nil {
		return Status{}, err
	}

	st := Status{MemberID: m.ID, Level: career.Level(m.CareerLevel), Metrics: metrics}
	if st.Level == "" {
		st.Level = career.LevelNone
	}

	if last, err := s.evaluations.LatestEvaluation(ctx, m.ID); err == nil {
		st.QualifiedAt = last.QualifiedAt
		if req, ok := career.RequirementFor(last.Level); ok && req.RequalifyMonths > 0 {
			st.RequalifyBy = last.QualifiedAt.AddDate(0, req.RequalifyMonths, 0)
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Status{}, fmt.Errorf("load last evaluation: %w", err)
	}

	if rank := career.Rank(st.Level); rank < len(career.Ladder) {
		next := career.Ladder[rank]
		st.Next = &next
		if d := next.Directs - metrics.Directs; d > 0 {
			st.DirectsNeeded = d
		}
		if d := next.Indirects - metrics.Indirects; d > 0 {
			st.IndirectsNeed = d
		}
	}
	return st, nil
}

// Standings orders the members holding the given tier for capped reward
// slots.
func (s *Service) Standings(ctx context.Context, level career.Level) ([]career.Standing, error) {
	if _, ok := career.RequirementFor(level); !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown career level %q", level))
	}
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	standings := make([]career.Standing, 0)
	for _, m := range members {
		if career.Level(m.CareerLevel) != level {
			continue
		}
		st := career.Standing{MemberID: m.ID, Level: level}
		history, err := s.evaluations.ListEvaluations(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("history for %s: %w", m.ID, err)
		}
		// History is chronological. FirstQualifying is the earliest
		// qualifying evaluation ever; QualifiedSince is the start of the
		// current unbroken run of qualifying evaluations, so an evaluation
		// below the tier resets it.
		targetRank := career.Rank(level)
		for _, ev := range history {
			if career.Rank(ev.Level) < targetRank {
				st.QualifiedSince = time.Time{}
				continue
			}
			if st.FirstQualifying.IsZero() || ev.QualifiedAt.Before(st.FirstQualifying) {
				st.FirstQualifying = ev.QualifiedAt
			}
			if st.QualifiedSince.IsZero() {
				st.QualifiedSince = ev.QualifiedAt
			}
		}
		directs, err := s.members.ListDirects(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("directs for %s: %w", m.ID, err)
		}
		for _, d := range directs {
			if d.Active {
				st.ActiveDirects++
			}
		}
		standings = append(standings, st)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return career.Precedes(standings[i], standings[j])
	})
	return standings, nil
}

// EvaluateAll runs a qualification check for every member. It is the body of
// the scheduled batch run.
func (s *Service) EvaluateAll(ctx context.Context) (int, error) {
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list members: %w", err)
	}
	evaluated := 0
	for _, m := range members {
		if _, err := s.Evaluate(ctx, m.ID); err != nil {
			s.log.WithError(err).WithField("member_id", m.ID).Warn("evaluation failed")
			continue
		}
		evaluated++
	}
	return evaluated, nil
}

func (s *Service) loadMember(ctx context.Context, memberID string) (member.Member, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return member.Member{}, apperrors.InvalidInput("member id is required")
	}
	m, err := s.members.GetMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return member.Member{}, apperrors.NotFound("member", memberID)
		}
		return member.Member{}, fmt.Errorf("load member: %w", err)
	}
	return m, nil
}

// metricsFor combines the member's network counters with the payment volume
// attributed to their network. Each commission entry reconstructs the
// underlying payment from its percentage, so one subscription payment counts
// once per beneficiary.
func (s *Service) metricsFor(ctx context.Context, m member.Member) (Metrics, error) {
	metrics := Metrics{Directs: m.DirectCount, Indirects: m.IndirectCount}
	txs, err := s.commissions.ListCommissions(ctx, m.ID)
	if err != nil {
		return Metrics{}, fmt.Errorf("list commissions: %w", err)
	}
	for _, tx := range txs {
		if tx.Reversal || tx.Percentage <= 0 {
			continue
		}
		metrics.CompanyVolume += tx.Amount / tx.Percentage
	}
	return metrics, nil
}
