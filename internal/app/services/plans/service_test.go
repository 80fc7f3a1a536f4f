package plans

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fitmova/platform/internal/app/domain/member"
	"github.com/fitmova/platform/internal/app/domain/plan"
	"github.com/fitmova/platform/internal/app/storage/memory"
	apperrors "github.com/fitmova/platform/internal/errors"
)

type staticGenerator struct {
	content json.RawMessage
	err     error
	calls   int
}

func (g *staticGenerator) Generate(ctx context.Context, kind plan.Kind, profile plan.Profile) (json.RawMessage, error) {
	g.calls++
	return g.content, g.err
}

func seedMember(t *testing.T, store *memory.Store, active bool) member.Member {
	t.Helper()
	m, err := store.CreateMember(context.Background(), member.Member{
		Name:         "Ana",
		ReferralCode: "ANA0001",
		Active:       active,
	})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return m
}

func validProfile() plan.Profile {
	return plan.Profile{Age: 30, HeightCm: 170, WeightKg: 70, Goal: "hypertrophy", DaysPerWeek: 4}
}

func TestGenerateStoresPlan(t *testing.T) {
	store := memory.New()
	m := seedMember(t, store, true)
	gen := &staticGenerator{content: json.RawMessage(`{"days":[]}`)}
	svc := New(store, store, gen, nil)

	rec, err := svc.Generate(context.Background(), GenerateInput{MemberID: m.ID, Kind: plan.KindWorkout, Profile: validProfile()})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if rec.ID == "" || rec.Kind != plan.KindWorkout {
		t.Fatalf("unexpected record: %+v", rec)
	}

	history, err := svc.History(context.Background(), m.ID, plan.KindWorkout)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history size = %d, want 1", len(history))
	}
}

func TestGenerateRequiresActiveSubscription(t *testing.T) {
	store := memory.New()
	m := seedMember(t, store, false)
	gen := &staticGenerator{content: json.RawMessage(`{}`)}
	svc := New(store, store, gen, nil)

	_, err := svc.Generate(context.Background(), GenerateInput{MemberID: m.ID, Kind: plan.KindDiet, Profile: validProfile()})
	se := apperrors.GetServiceError(err)
	if se == nil || se.Code != apperrors.CodeSubscriptionRequired {
		t.Fatalf("expected subscription required, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator called %d times for inactive member", gen.calls)
	}
}

func TestGenerateValidation(t *testing.T) {
	store := memory.New()
	m := seedMember(t, store, true)
	svc := New(store, store, &staticGenerator{content: json.RawMessage(`{}`)}, nil)
	ctx := context.Background()

	if _, err := svc.Generate(ctx, GenerateInput{MemberID: m.ID, Kind: plan.Kind("yoga"), Profile: validProfile()}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	bad := validProfile()
	bad.Age = 0
	if _, err := svc.Generate(ctx, GenerateInput{MemberID: m.ID, Kind: plan.KindTips, Profile: bad}); err == nil {
		t.Fatal("expected error for missing age")
	}
	_, err := svc.Generate(ctx, GenerateInput{MemberID: "missing", Kind: plan.KindTips, Profile: validProfile()})
	se := apperrors.GetServiceError(err)
	if se == nil || se.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHTTPGeneratorCandidateEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		body := `{"candidates":[{"content":{"parts":[{"text":"` + "```json\\n{\\\"days\\\":[1,2,3]}\\n```" + `"}]}}]}`
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	gen, err := NewHTTPGenerator(server.Client(), server.URL, "k", nil)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	content, err := gen.Generate(context.Background(), plan.KindWorkout, validProfile())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var doc struct {
		Days []int `json:"days"`
	}
	if err := json.Unmarshal(content, &doc); err != nil {
		t.Fatalf("unmarshal content: %v", err)
	}
	if len(doc.Days) != 3 {
		t.Fatalf("days = %v, want 3 entries", doc.Days)
	}
}

func TestHTTPGeneratorProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	gen, err := NewHTTPGenerator(server.Client(), server.URL, "", nil)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	if _, err := gen.Generate(context.Background(), plan.KindDiet, validProfile()); err == nil {
		t.Fatal("expected error for provider failure")
	}
}

func TestBMICategories(t *testing.T) {
	cases := []struct {
		weight, height float64
		category       string
	}{
		{50, 170, "underweight"},
		{65, 170, "normal"},
		{80, 170, "overweight"},
		{95, 170, "obese"},
	}
	for _, tc := range cases {
		if _, got := plan.BMI(tc.weight, tc.height); got != tc.category {
			t.Fatalf("BMI(%v, %v) category = %s, want %s", tc.weight, tc.height, got, tc.category)
		}
	}
}
