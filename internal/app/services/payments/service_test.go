package payments

import (
	"context"
	"testing"

	"github.com/fitmova/platform/internal/app/services/commission"
	"github.com/fitmova/platform/internal/app/services/members"
	"github.com/fitmova/platform/internal/app/storage/memory"
	apperrors "github.com/fitmova/platform/internal/errors"
)

func newFixture(t *testing.T) (*Service, *members.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	membersSvc := members.New(store, nil)
	commissionSvc := commission.New(store, store, store, nil, nil)
	return New(membersSvc, commissionSvc, nil), membersSvc, store
}

func TestProcessApprovedActivatesAndSettles(t *testing.T) {
	svc, membersSvc, store := newFixture(t)
	ctx := context.Background()

	parent, err := membersSvc.Enroll(ctx, members.EnrollInput{Name: "Parent"})
	if err != nil {
		t.Fatalf("enroll parent: %v", err)
	}
	if _, err := membersSvc.Activate(ctx, parent.ID, "monthly"); err != nil {
		t.Fatalf("activate parent: %v", err)
	}
	payer, err := membersSvc.Enroll(ctx, members.EnrollInput{Name: "Payer", Referrer: parent.ID})
	if err != nil {
		t.Fatalf("enroll payer: %v", err)
	}

	out, err := svc.Process(ctx, Event{MemberID: payer.ID, Status: "approved", Cycle: "monthly", Period: "2024-06"})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Status != "settled" || out.Settlement == nil || len(out.Settlement.Transactions) != 1 {
		t.Fatalf("outcome = %+v", out)
	}

	got, err := store.GetMember(ctx, payer.ID)
	if err != nil {
		t.Fatalf("get payer: %v", err)
	}
	if !got.Active {
		t.Fatal("payer not activated")
	}
	acct, err := store.GetLedgerAccount(ctx, parent.ID)
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	if acct.Available != 7.50 {
		t.Fatalf("parent available = %.2f, want 7.50", acct.Available)
	}
}

func TestProcessReplayAbsorbed(t *testing.T) {
	svc, membersSvc, _ := newFixture(t)
	ctx := context.Background()

	parent, _ := membersSvc.Enroll(ctx, members.EnrollInput{Name: "Parent"})
	if _, err := membersSvc.Activate(ctx, parent.ID, "monthly"); err != nil {
		t.Fatalf("activate parent: %v", err)
	}
	payer, _ := membersSvc.Enroll(ctx, members.EnrollInput{Name: "Payer", Referrer: parent.ID})

	ev := Event{MemberID: payer.ID, Status: "approved", Period: "2024-06"}
	if _, err := svc.Process(ctx, ev); err != nil {
		t.Fatalf("first process: %v", err)
	}
	out, err := svc.Process(ctx, ev)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if out.Status != "already_settled" {
		t.Fatalf("replay status = %s, want already_settled", out.Status)
	}
}

func TestProcessRefusedDeactivates(t *testing.T) {
	svc, membersSvc, store := newFixture(t)
	ctx := context.Background()

	m, _ := membersSvc.Enroll(ctx, members.EnrollInput{Name: "Ana"})
	if _, err := membersSvc.Activate(ctx, m.ID, "monthly"); err != nil {
		t.Fatalf("activate: %v", err)
	}

	out, err := svc.Process(ctx, Event{MemberID: m.ID, Status: "refused"})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Status != "deactivated" {
		t.Fatalf("status = %s, want deactivated", out.Status)
	}
	got, _ := store.GetMember(ctx, m.ID)
	if got.Active {
		t.Fatal("member still active")
	}
}

func TestProcessValidation(t *testing.T) {
	svc, _, _ := newFixture(t)
	ctx := context.Background()

	if _, err := svc.Process(ctx, Event{Status: "approved"}); err == nil {
		t.Fatal("expected error for missing member id")
	}
	_, err := svc.Process(ctx, Event{MemberID: "x", Status: "chargeback"})
	se := apperrors.GetServiceError(err)
	if se == nil || se.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
