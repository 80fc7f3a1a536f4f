// Package attribution resolves the paying member's upline for commission
// distribution. The referral edge is immutable, so the resolved chain for a
// member never changes after enrollment.
package attribution

import (
	"context"
	"fmt"
	"strings"

	"github.com/fitmova/platform/internal/app/domain/commission"
	"github.com/fitmova/platform/internal/app/domain/member"
	"github.com/fitmova/platform/internal/app/storage"
)

// Ancestor is one entry of a resolved upline chain. Level 1 is the direct
// referrer, level 2 the referrer's referrer, and so on.
type Ancestor struct {
	Level  int
	Member member.Member
}

// Resolver walks referral parent pointers up from a member.
type Resolver struct {
	members storage.MemberStore
}

// NewResolver wires a resolver against the member store.
func NewResolver(members storage.MemberStore) *Resolver {
	return &Resolver{members: members}
}

// Resolve returns up to commission.MaxDepth ancestors of the given member,
// nearest first. A root member yields an empty chain. The member itself is
// never part of the result.
func (r *Resolver) Resolve(ctx context.Context, memberID string) ([]Ancestor, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return nil, fmt.Errorf("member id is required")
	}
	current, err := r.members.GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("load member: %w", err)
	}

	chain := make([]Ancestor, 0, commission.MaxDepth)
	seen := map[string]struct{}{current.ID: {}}
	for level := 1; level <= commission.MaxDepth; level++ {
		if current.ReferrerID == "" {
			break
		}
		parent, err := r.members.GetMember(ctx, current.ReferrerID)
		if err != nil {
			return nil, fmt.Errorf("load ancestor at level %d: %w", level, err)
		}
		if _, ok := seen[parent.ID]; ok {
			return nil, fmt.Errorf("referral cycle detected at member %s", parent.ID)
		}
		seen[parent.ID] = struct{}{}
		chain = append(chain, Ancestor{Level: level, Member: parent})
		current = parent
	}
	return chain, nil
}
