// Package members manages enrollment and the referral network graph. Each
// member holds at most one referrer, fixed at enrollment time.
package members

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/fitmova/platform/internal/app/domain/career"
	"github.com/fitmova/platform/internal/app/domain/commission"
	"github.com/fitmova/platform/internal/app/domain/member"
	"github.com/fitmova/platform/internal/app/storage"
	apperrors "github.com/fitmova/platform/internal/errors"
	"github.com/fitmova/platform/pkg/logger"
)

const codeAttempts = 8

// EnrollInput carries the fields accepted when registering a new member.
type EnrollInput struct {
	Name     string `json:"name"`
	WhatsApp string `json:"whatsapp"`
	// Referrer accepts either a member ID or a referral code.
	Referrer string `json:"referrer"`
}

// NetworkLevel groups the downline members found at one depth.
type NetworkLevel struct {
	Level   int             `json:"level"`
	Members []member.Member `json:"members"`
}

// Service implements member enrollment and network queries on top of the
// member store.
type Service struct {
	store storage.MemberStore
	log   *logger.Logger
}

// New wires a member service. A nil logger falls back to a default
// JSON logger.
func New(store storage.MemberStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("members")
	}
	return &Service{store: store, log: log}
}

// Enroll registers a new member under the given referrer. The referrer may be
// referenced by ID or by referral code and must already exist; an unknown
// reference is rejected. Enrollment also bumps the direct and indirect
// counters of the new member's upline.
func (s *Service) Enroll(ctx context.Context, in EnrollInput) (member.Member, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return member.Member{}, apperrors.InvalidInput("name is required")
	}

	referrerID := ""
	ref := strings.TrimSpace(in.Referrer)
	if ref != "" {
		referrer, err := s.resolveReferrer(ctx, ref)
		if err != nil {
			return member.Member{}, err
		}
		referrerID = referrer.ID
	}

	code, err := s.generateCode(ctx, name)
	if err != nil {
		return member.Member{}, err
	}

	now := time.Now().UTC()
	created, err := s.store.CreateMember(ctx, member.Member{
		Name:         name,
		WhatsApp:     strings.TrimSpace(in.WhatsApp),
		ReferralCode: code,
		ReferrerID:   referrerID,
		Active:       false,
		Plan:         member.PlanFree,
		CareerLevel:  string(career.LevelNone),
		EnrolledAt:   now,
	})
	if err != nil {
		return member.Member{}, fmt.Errorf("create member: %w", err)
	}

	if err := s.bumpUplineCounters(ctx, referrerID); err != nil {
		s.log.WithError(err).WithField("member_id", created.ID).
			Warn("failed to update upline counters")
	}

	s.log.WithFields(map[string]interface{}{
		"member_id":     created.ID,
		"referral_code": created.ReferralCode,
		"referrer_id":   referrerID,
	}).Info("member enrolled")
	return created, nil
}

func (s *Service) resolveReferrer(ctx context.Context, ref string) (member.Member, error) {
	if m, err := s.store.GetMember(ctx, ref); err == nil {
		return m, nil
	}
	m, err := s.store.GetMemberByCode(ctx, ref)
	if err != nil {
		return member.Member{}, apperrors.InvalidReferrer(ref)
	}
	return m, nil
}

// generateCode builds a referral code from the member's first name plus four
// random digits, retrying on collision.
func (s *Service) generateCode(ctx context.Context, name string) (string, error) {
	prefix := codePrefix(name)
	for i := 0; i < codeAttempts; i++ {
		code := fmt.Sprintf("%s%04d", prefix, rand.Intn(10000))
		if _, err := s.store.GetMemberByCode(ctx, code); err != nil {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not allocate a referral code for %q", name)
}

func codePrefix(name string) string {
	first := strings.Fields(name)[0]
	var b strings.Builder
	for _, r := range first {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	if b.Len() == 0 {
		return "MEMBER"
	}
	return b.String()
}

func (s *Service) bumpUplineCounters(ctx context.Context, referrerID string) error {
	for level := 1; level <= commission.MaxDepth && referrerID != ""; level++ {
		direct, indirect := 0, 1
		if level == 1 {
			direct, indirect = 1, 0
		}
		ancestor, err := s.store.IncrementReferralCounts(ctx, referrerID, direct, indirect)
		if err != nil {
			return fmt.Errorf("bump ancestor at level %d: %w", level, err)
		}
		referrerID = ancestor.ReferrerID
	}
	return nil
}

// Get returns one member by ID.
func (s *Service) Get(ctx context.Context, id string) (member.Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return member.Member{}, apperrors.InvalidInput("member id is required")
	}
	m, err := s.store.GetMember(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return member.Member{}, apperrors.NotFound("member", id)
		}
		return member.Member{}, fmt.Errorf("load member: %w", err)
	}
	return m, nil
}

// GetByCode returns one member by referral code.
func (s *Service) GetByCode(ctx context.Context, code string) (member.Member, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return member.Member{}, apperrors.InvalidInput("referral code is required")
	}
	m, err := s.store.GetMemberByCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return member.Member{}, apperrors.NotFound("member", code)
		}
		return member.Member{}, fmt.Errorf("load member by code: %w", err)
	}
	return m, nil
}

// Activate marks the member's subscription as paid for one billing cycle
// starting now, turning the member commission-eligible.
func (s *Service) Activate(ctx context.Context, id string, cycle member.BillingCycle) (member.Member, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return member.Member{}, err
	}
	now := time.Now().UTC()
	var paidThrough time.Time
	switch cycle {
	case member.CycleYearly:
		paidThrough = now.AddDate(1, 0, 0)
	case member.CycleMonthly:
		paidThrough = now.AddDate(0, 1, 0)
	default:
		return member.Member{}, apperrors.InvalidInput(fmt.Sprintf("unknown billing cycle %q", cycle))
	}
	m.Active = true
	m.Plan = member.PlanPremium
	m.BillingCycle = cycle
	m.PaidThrough = paidThrough

	updated, err := s.store.UpdateMember(ctx, m)
	if err != nil {
		return member.Member{}, fmt.Errorf("update member: %w", err)
	}
	s.log.WithFields(map[string]interface{}{
		"member_id":    updated.ID,
		"cycle":        string(cycle),
		"paid_through": paidThrough.Format(time.RFC3339),
	}).Info("member activated")
	return updated, nil
}

// Deactivate clears the member's active flag, typically after a failed
// renewal. The referral edge and earned balances are untouched.
func (s *Service) Deactivate(ctx context.Context, id string) (member.Member, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return member.Member{}, err
	}
	m.Active = false
	m.Plan = member.PlanFree
	updated, err := s.store.UpdateMember(ctx, m)
	if err != nil {
		return member.Member{}, fmt.Errorf("update member: %w", err)
	}
	s.log.WithField("member_id", updated.ID).Info("member deactivated")
	return updated, nil
}

// Network returns the member's downline grouped by level, up to the requested
// depth. Depth is clamped to the commission attribution window.
func (s *Service) Network(ctx context.Context, id string, depth int) ([]NetworkLevel, error) {
	if depth < 1 || depth > commission.MaxDepth {
		return nil, apperrors.InvalidInput(fmt.Sprintf("depth must be between 1 and %d", commission.MaxDepth))
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	levels := make([]NetworkLevel, 0, depth)
	frontier := []string{id}
	for level := 1; level <= depth; level++ {
		next := make([]member.Member, 0)
		for _, parentID := range frontier {
			directs, err := s.store.ListDirects(ctx, parentID)
			if err != nil {
				return nil, fmt.Errorf("list directs of %s: %w", parentID, err)
			}
			next = append(next, directs...)
		}
		levels = append(levels, NetworkLevel{Level: level, Members: next})
		frontier = frontier[:0]
		for _, m := range next {
			frontier = append(frontier, m.ID)
		}
	}
	return levels, nil
}
