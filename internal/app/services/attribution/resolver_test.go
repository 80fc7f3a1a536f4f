package attribution

import (
	"context"
	"testing"

	"github.com/fitmova/platform/internal/app/domain/member"
	"github.com/fitmova/platform/internal/app/storage/memory"
)

func seedChain(t *testing.T, store *memory.Store, depth int) []member.Member {
	t.Helper()
	ctx := context.Background()
	members := make([]member.Member, 0, depth)
	referrer := ""
	for i := 0; i < depth; i++ {
		m, err := store.CreateMember(ctx, member.Member{
			Name:         "Member",
			ReferralCode: code(i),
			ReferrerID:   referrer,
			Active:       true,
		})
		if err != nil {
			t.Fatalf("create member %d: %v", i, err)
		}
		members = append(members, m)
		referrer = m.ID
	}
	return members
}

func code(i int) string {
	return string(rune('A'+i)) + "1234"
}

func TestResolveNearestFirst(t *testing.T) {
	store := memory.New()
	chain := seedChain(t, store, 5)
	resolver := NewResolver(store)

	got, err := resolver.Resolve(context.Background(), chain[4].ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 ancestors, got %d", len(got))
	}
	for i, want := range []string{chain[3].ID, chain[2].ID, chain[1].ID} {
		if got[i].Member.ID != want {
			t.Fatalf("ancestor %d = %s, want %s", i, got[i].Member.ID, want)
		}
		if got[i].Level != i+1 {
			t.Fatalf("ancestor %d level = %d, want %d", i, got[i].Level, i+1)
		}
	}
}

func TestResolveShortChain(t *testing.T) {
	store := memory.New()
	chain := seedChain(t, store, 2)
	resolver := NewResolver(store)

	got, err := resolver.Resolve(context.Background(), chain[1].ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 ancestor, got %d", len(got))
	}
	if got[0].Member.ID != chain[0].ID {
		t.Fatalf("ancestor = %s, want %s", got[0].Member.ID, chain[0].ID)
	}
}

func TestResolveRootMember(t *testing.T) {
	store := memory.New()
	chain := seedChain(t, store, 1)
	resolver := NewResolver(store)

	got, err := resolver.Resolve(context.Background(), chain[0].ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty chain, got %d ancestors", len(got))
	}
}

func TestResolveUnknownMember(t *testing.T) {
	store := memory.New()
	resolver := NewResolver(store)

	if _, err := resolver.Resolve(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown member")
	}
}
