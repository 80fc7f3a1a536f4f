package ledger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fitmova/platform/internal/app/domain/ledger"
	"github.com/fitmova/platform/internal/app/domain/member"
	"github.com/fitmova/platform/internal/app/storage/memory"
	apperrors "github.com/fitmova/platform/internal/errors"
)

func seedMember(t *testing.T, store *memory.Store, balance float64) member.Member {
	t.Helper()
	ctx := context.Background()
	m, err := store.CreateMember(ctx, member.Member{Name: "Ana", ReferralCode: "ANA0001", Active: true})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if balance > 0 {
		if _, err := store.CreditBalance(ctx, ledger.Entry{
			MemberID:  m.ID,
			Type:      ledger.EntryCredit,
			Amount:    balance,
			Reference: "seed:" + m.ID,
		}); err != nil {
			t.Fatalf("credit: %v", err)
		}
	}
	return m
}

func TestBalanceCreatesEmptyAccount(t *testing.T) {
	store := memory.New()
	m := seedMember(t, store, 0)
	svc := New(store, store, nil)

	acct, err := svc.Balance(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if acct.Available != 0 || acct.Pending != 0 {
		t.Fatalf("fresh account not empty: %+v", acct)
	}
}

func TestBalanceUnknownMember(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)

	_, err := svc.Balance(context.Background(), "missing")
	se := apperrors.GetServiceError(err)
	if se == nil || se.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRequestWithdrawalReservesFunds(t *testing.T) {
	store := memory.New()
	m := seedMember(t, store, 50)
	svc := New(store, store, nil)
	ctx := context.Background()

	wd, err := svc.RequestWithdrawal(ctx, WithdrawalInput{MemberID: m.ID, Amount: 20, PixKey: "ana@pix"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if wd.Status != ledger.WithdrawalPending {
		t.Fatalf("status = %s, want pending", wd.Status)
	}

	acct, err := svc.Balance(ctx, m.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if acct.Available != 30 || acct.Pending != 20 {
		t.Fatalf("balances = %.2f/%.2f, want 30/20", acct.Available, acct.Pending)
	}
}

func TestRequestWithdrawalInsufficientBalance(t *testing.T) {
	store := memory.New()
	m := seedMember(t, store, 10)
	svc := New(store, store, nil)

	_, err := svc.RequestWithdrawal(context.Background(), WithdrawalInput{MemberID: m.ID, Amount: 25, PixKey: "ana@pix"})
	se := apperrors.GetServiceError(err)
	if se == nil || se.Code != apperrors.CodeInsufficientBalance {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if se.HTTPStatus != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402", se.HTTPStatus)
	}

	acct, err := svc.Balance(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if acct.Available != 10 || acct.Pending != 0 {
		t.Fatalf("rejected request moved funds: %+v", acct)
	}
}

func TestCompleteWithdrawal(t *testing.T) {
	store := memory.New()
	m := seedMember(t, store, 50)
	svc := New(store, store, nil)
	ctx := context.Background()

	wd, err := svc.RequestWithdrawal(ctx, WithdrawalInput{MemberID: m.ID, Amount: 20, PixKey: "ana@pix"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	done, err := svc.CompleteWithdrawal(ctx, wd.ID, true, "paid")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != ledger.WithdrawalCompleted {
		t.Fatalf("status = %s, want completed", done.Status)
	}
	acct, _ := svc.Balance(ctx, m.ID)
	if acct.Available != 30 || acct.Pending != 0 {
		t.Fatalf("balances after success = %.2f/%.2f, want 30/0", acct.Available, acct.Pending)
	}

	// Completing again is a no-op.
	again, err := svc.CompleteWithdrawal(ctx, wd.ID, false, "late failure")
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if again.Status != ledger.WithdrawalCompleted {
		t.Fatalf("second complete changed status to %s", again.Status)
	}
}

func TestCompleteWithdrawalFailureRestoresFunds(t *testing.T) {
	store := memory.New()
	m := seedMember(t, store, 50)
	svc := New(store, store, nil)
	ctx := context.Background()

	wd, err := svc.RequestWithdrawal(ctx, WithdrawalInput{MemberID: m.ID, Amount: 20, PixKey: "ana@pix"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	done, err := svc.CompleteWithdrawal(ctx, wd.ID, false, "pix key rejected")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != ledger.WithdrawalFailed {
		t.Fatalf("status = %s, want failed", done.Status)
	}
	acct, _ := svc.Balance(ctx, m.ID)
	if acct.Available != 50 || acct.Pending != 0 {
		t.Fatalf("balances after failure = %.2f/%.2f, want 50/0", acct.Available, acct.Pending)
	}
}

type stubResolver struct {
	success bool
	message string
}

func (r *stubResolver) Resolve(ctx context.Context, wd ledger.Withdrawal) (bool, bool, string, time.Duration, error) {
	return true, r.success, r.message, 0, nil
}

func TestPayoutPollerSettlesPending(t *testing.T) {
	store := memory.New()
	m := seedMember(t, store, 50)
	svc := New(store, store, nil)
	ctx := context.Background()

	wd, err := svc.RequestWithdrawal(ctx, WithdrawalInput{MemberID: m.ID, Amount: 20, PixKey: "ana@pix"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	poller := NewPayoutPoller(store, svc, &stubResolver{success: true, message: "paid"}, nil)
	poller.tick(ctx)

	got, err := store.GetWithdrawal(ctx, wd.ID)
	if err != nil {
		t.Fatalf("get withdrawal: %v", err)
	}
	if got.Status != ledger.WithdrawalCompleted {
		t.Fatalf("status = %s, want completed", got.Status)
	}
}

func TestPayoutPollerStartStop(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	poller := NewPayoutPoller(store, svc, &stubResolver{}, nil)

	ctx := context.Background()
	if err := poller.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := poller.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestHTTPResolver(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("withdrawal_id") == "" {
			t.Errorf("missing withdrawal_id query parameter")
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"done":true,"success":true,"receipt":"e2e-123"}`))
	}))
	defer server.Close()

	resolver, err := NewHTTPResolver(server.Client(), server.URL, "secret", nil)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	done, success, message, _, err := resolver.Resolve(context.Background(), ledger.Withdrawal{ID: "wd-1", PixKey: "ana@pix"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !done || !success || message != "e2e-123" {
		t.Fatalf("resolve = (%t, %t, %q)", done, success, message)
	}
}

func TestHTTPResolverPendingAndFailure(t *testing.T) {
	responses := []string{
		`{"done":false,"retry_after_seconds":1}`,
		`{"done":true,"success":false,"error":"invalid pix key"}`,
	}
	idx := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(responses[idx]))
		idx++
	}))
	defer server.Close()

	resolver, err := NewHTTPResolver(server.Client(), server.URL, "", nil)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	done, _, _, retry, err := resolver.Resolve(context.Background(), ledger.Withdrawal{ID: "wd-1"})
	if err != nil || done {
		t.Fatalf("expected pending, got done=%t err=%v", done, err)
	}
	if retry != time.Second {
		t.Fatalf("retry = %s, want 1s", retry)
	}

	done, success, message, _, err := resolver.Resolve(context.Background(), ledger.Withdrawal{ID: "wd-1"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !done || success || message != "invalid pix key" {
		t.Fatalf("resolve = (%t, %t, %q)", done, success, message)
	}
}
