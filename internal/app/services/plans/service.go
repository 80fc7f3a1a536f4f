// Package plans generates fitness content for premium members through an
// external content provider and archives every generated artifact.
package plans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fitmova/platform/internal/app/domain/plan"
	"github.com/fitmova/platform/internal/app/storage"
	apperrors "github.com/fitmova/platform/internal/errors"
	"github.com/fitmova/platform/pkg/logger"
)

// Generator produces plan content for a member profile.
type Generator interface {
	Generate(ctx context.Context, kind plan.Kind, profile plan.Profile) (json.RawMessage, error)
}

// GenerateInput carries one plan request.
type GenerateInput struct {
	MemberID string
	Kind     plan.Kind
	Profile  plan.Profile
}

// Service gates plan generation behind an active subscription and stores the
// outcome.
type Service struct {
	members   storage.MemberStore
	store     storage.PlanStore
	generator Generator
	log       *logger.Logger
}

// New wires a plans service. A nil logger falls back to a default JSON
// logger.
func New(members storage.MemberStore, store storage.PlanStore, generator Generator, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("plans")
	}
	return &Service{members: members, store: store, generator: generator, log: log}
}

// Generate produces and archives one plan. Only active members may generate
// content.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (plan.Record, error) {
	memberID := strings.TrimSpace(in.MemberID)
	if memberID == "" {
		return plan.Record{}, apperrors.InvalidInput("member id is required")
	}
	if !validKind(in.Kind) {
		return plan.Record{}, apperrors.InvalidInput(fmt.Sprintf("unknown plan kind %q", in.Kind))
	}
	if s.generator == nil {
		return plan.Record{}, apperrors.UpstreamUnavailable("plans", fmt.Errorf("no generator configured"))
	}

	m, err := s.members.GetMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return plan.Record{}, apperrors.NotFound("member", memberID)
		}
		return plan.Record{}, fmt.Errorf("load member: %w", err)
	}
	if !m.Active {
		return plan.Record{}, apperrors.SubscriptionRequired(memberID)
	}
	if err := validateProfile(in.Profile); err != nil {
		return plan.Record{}, err
	}

	content, err := s.generator.Generate(ctx, in.Kind, in.Profile)
	if err != nil {
		var se *apperrors.ServiceError
		if errors.As(err, &se) {
			return plan.Record{}, err
		}
		return plan.Record{}, apperrors.UpstreamUnavailable("plans", err)
	}

	rec, err := s.store.CreatePlan(ctx, plan.Record{
		MemberID: memberID,
		Kind:     in.Kind,
		Content:  content,
	})
	if err != nil {
		return plan.Record{}, fmt.Errorf("store plan: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"member_id": memberID,
		"kind":      string(in.Kind),
		"plan_id":   rec.ID,
	}).Info("plan generated")
	return rec, nil
}

// History lists the member's generated plans, optionally filtered by kind.
func (s *Service) History(ctx context.Context, memberID string, kind plan.Kind) ([]plan.Record, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return nil, apperrors.InvalidInput("member id is required")
	}
	if kind != "" && !validKind(kind) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown plan kind %q", kind))
	}
	if _, err := s.members.GetMember(ctx, memberID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NotFound("member", memberID)
		}
		return nil, fmt.Errorf("load member: %w", err)
	}
	recs, err := s.store.ListPlans(ctx, memberID, kind)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return recs, nil
}

func validKind(kind plan.Kind) bool {
	switch kind {
	case plan.KindWorkout, plan.KindDiet, plan.KindGuide, plan.KindTips:
		return true
	}
	return false
}

func validateProfile(p plan.Profile) error {
	if p.Age <= 0 || p.Age > 120 {
		return apperrors.InvalidInput("age must be between 1 and 120")
	}
	if p.HeightCm <= 0 || p.WeightKg <= 0 {
		return apperrors.InvalidInput("height and weight are required")
	}
	if p.DaysPerWeek < 0 || p.DaysPerWeek > 7 {
		return apperrors.InvalidInput("days per week must be between 0 and 7")
	}
	return nil
}
