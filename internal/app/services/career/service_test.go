package career

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fitmova/platform/internal/app/domain/career"
	"github.com/fitmova/platform/internal/app/domain/commission"
	"github.com/fitmova/platform/internal/app/domain/member"
	"github.com/fitmova/platform/internal/app/storage/memory"
)

func TestQualifyingLevel(t *testing.T) {
	cases := []struct {
		name    string
		metrics Metrics
		want    career.Level
	}{
		{"empty network", Metrics{}, career.LevelNone},
		{"just below start", Metrics{Directs: 19, Indirects: 40}, career.LevelNone},
		{"start threshold", Metrics{Directs: 20, Indirects: 40}, career.LevelStart},
		{"builder threshold", Metrics{Directs: 50, Indirects: 100}, career.LevelBuilder},
		{"leader threshold", Metrics{Directs: 80, Indirects: 160}, career.LevelLeader},
		{"elite counts without volume", Metrics{Directs: 120, Indirects: 250}, career.LevelLeader},
		{"elite with volume", Metrics{Directs: 120, Indirects: 250, CompanyVolume: 10000}, career.LevelElite},
		{"origin", Metrics{Directs: 600, Indirects: 2000, CompanyVolume: 70000}, career.LevelOrigin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := QualifyingLevel(tc.metrics); got != tc.want {
				t.Fatalf("QualifyingLevel(%+v) = %s, want %s", tc.metrics, got, tc.want)
			}
		})
	}
}

func seedMember(t *testing.T, store *memory.Store, directs, indirects int, level career.Level) member.Member {
	t.Helper()
	m, err := store.CreateMember(context.Background(), member.Member{
		Name:          "Ana",
		ReferralCode:  fmt.Sprintf("ANA%04d", directs),
		Active:        true,
		CareerLevel:   string(level),
		DirectCount:   directs,
		IndirectCount: indirects,
	})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return m
}

func TestEvaluatePromotes(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	m := seedMember(t, store, 20, 40, career.LevelNone)
	ev, err := svc.Evaluate(ctx, m.ID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.Level != career.LevelStart {
		t.Fatalf("level = %s, want START", ev.Level)
	}
	got, err := store.GetMember(ctx, m.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if got.CareerLevel != string(career.LevelStart) {
		t.Fatalf("member level = %s, want START", got.CareerLevel)
	}
}

func TestEvaluateNeverDemotes(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	m := seedMember(t, store, 5, 10, career.LevelBuilder)
	ev, err := svc.Evaluate(ctx, m.ID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.Level != career.LevelBuilder {
		t.Fatalf("level = %s, want BUILDER retained", ev.Level)
	}
}

func TestEvaluateIsQuietWhenUnchanged(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	m := seedMember(t, store, 20, 40, career.LevelNone)
	if _, err := svc.Evaluate(ctx, m.ID); err != nil {
		t.Fatalf("first evaluate: %v", err)
	}
	if _, err := svc.Evaluate(ctx, m.ID); err != nil {
		t.Fatalf("second evaluate: %v", err)
	}
	history, err := store.ListEvaluations(ctx, m.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 record, got %d", len(history))
	}
}

func TestEvaluateUsesAttributedVolume(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	m := seedMember(t, store, 120, 250, career.LevelNone)
	// Four level 1 credits of 625 at 25% reconstruct 10000 of payment volume.
	for i := 0; i < 4; i++ {
		_, err := store.CreateCommission(ctx, commission.Transaction{
			BeneficiaryID: m.ID,
			SourceID:      fmt.Sprintf("src-%d", i),
			Level:         1,
			Percentage:    0.25,
			Amount:        625,
			Period:        "2024-06",
			Key:           fmt.Sprintf("src-%d:2024-06:1", i),
		})
		if err != nil {
			t.Fatalf("create commission: %v", err)
		}
	}

	ev, err := svc.Evaluate(ctx, m.ID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.Level != career.LevelElite {
		t.Fatalf("level = %s, want ELITE", ev.Level)
	}
	if ev.CompanyVolume != 10000 {
		t.Fatalf("volume = %.2f, want 10000", ev.CompanyVolume)
	}
}

func TestStatusNextTier(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	m := seedMember(t, store, 25, 60, career.LevelStart)
	st, err := svc.Status(ctx, m.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Level != career.LevelStart {
		t.Fatalf("level = %s, want START", st.Level)
	}
	if st.Next == nil || st.Next.Level != career.LevelBuilder {
		t.Fatalf("next = %+v, want BUILDER", st.Next)
	}
	if st.DirectsNeeded != 25 || st.IndirectsNeed != 40 {
		t.Fatalf("needed = %d/%d, want 25/40", st.DirectsNeeded, st.IndirectsNeed)
	}
}

func TestStatusRequalifyWindow(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	m := seedMember(t, store, 50, 100, career.LevelNone)
	ev, err := svc.Evaluate(ctx, m.ID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.Level != career.LevelBuilder {
		t.Fatalf("level = %s, want BUILDER", ev.Level)
	}

	st, err := svc.Status(ctx, m.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	want := ev.QualifiedAt.AddDate(0, 2, 0)
	if !st.RequalifyBy.Equal(want) {
		t.Fatalf("requalify by = %s, want %s", st.RequalifyBy, want)
	}
}

func TestLapsedRequalifyWindowDoesNotDemote(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	m := seedMember(t, store, 3, 1, career.LevelBuilder)
	qualifiedAt := time.Now().UTC().AddDate(0, -6, 0)
	if _, err := store.CreateEvaluation(ctx, career.Evaluation{
		MemberID:    m.ID,
		Level:       career.LevelBuilder,
		QualifiedAt: qualifiedAt,
	}); err != nil {
		t.Fatalf("create evaluation: %v", err)
	}

	// The tier is granted the moment thresholds are met and kept once the
	// window lapses. The deadline is reported, not enforced.
	ev, err := svc.Evaluate(ctx, m.ID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.Level != career.LevelBuilder {
		t.Fatalf("level = %s, want BUILDER", ev.Level)
	}

	st, err := svc.Status(ctx, m.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Level != career.LevelBuilder {
		t.Fatalf("status level = %s, want BUILDER", st.Level)
	}
	if !st.RequalifyBy.Before(time.Now()) {
		t.Fatalf("requalify by = %s, want a lapsed deadline", st.RequalifyBy)
	}
}

func TestStandingsOrdering(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	early := seedMember(t, store, 50, 100, career.LevelBuilder)
	late := seedMember(t, store, 60, 120, career.LevelBuilder)

	base := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	for _, rec := range []struct {
		id string
		at time.Time
	}{
		{early.ID, base},
		{late.ID, base.AddDate(0, 3, 0)},
	} {
		_, err := store.CreateEvaluation(ctx, career.Evaluation{
			MemberID:    rec.id,
			Level:       career.LevelBuilder,
			QualifiedAt: rec.at,
		})
		if err != nil {
			t.Fatalf("create evaluation: %v", err)
		}
	}

	standings, err := svc.Standings(ctx, career.LevelBuilder)
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if len(standings) != 2 {
		t.Fatalf("expected 2 standings, got %d", len(standings))
	}
	if standings[0].MemberID != early.ID {
		t.Fatalf("first standing = %s, want the longer qualified member %s", standings[0].MemberID, early.ID)
	}
}

func TestStandingsStreakResetsQualifiedSince(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	m := seedMember(t, store, 50, 100, career.LevelBuilder)

	base := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	for _, rec := range []struct {
		level career.Level
		at    time.Time
	}{
		{career.LevelBuilder, base},
		{career.LevelStart, base.AddDate(0, 1, 0)},
		{career.LevelBuilder, base.AddDate(0, 2, 0)},
	} {
		_, err := store.CreateEvaluation(ctx, career.Evaluation{
			MemberID:    m.ID,
			Level:       rec.level,
			QualifiedAt: rec.at,
		})
		if err != nil {
			t.Fatalf("create evaluation: %v", err)
		}
	}

	standings, err := svc.Standings(ctx, career.LevelBuilder)
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if len(standings) != 1 {
		t.Fatalf("expected 1 standing, got %d", len(standings))
	}
	st := standings[0]
	if !st.FirstQualifying.Equal(base) {
		t.Fatalf("first qualifying = %s, want %s", st.FirstQualifying, base)
	}
	if want := base.AddDate(0, 2, 0); !st.QualifiedSince.Equal(want) {
		t.Fatalf("qualified since = %s, want streak start %s", st.QualifiedSince, want)
	}
}

func TestEvaluateAll(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	seedMember(t, store, 20, 40, career.LevelNone)
	seedMember(t, store, 3, 1, career.LevelNone)

	evaluated, err := svc.EvaluateAll(ctx)
	if err != nil {
		t.Fatalf("evaluate all: %v", err)
	}
	if evaluated != 2 {
		t.Fatalf("evaluated = %d, want 2", evaluated)
	}
}

func TestRunnerStartStop(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	runner := NewRunner(svc, "@every 1h", nil)

	ctx := context.Background()
	if err := runner.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := runner.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestRunnerRejectsBadSchedule(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	runner := NewRunner(svc, "not a schedule", nil)

	if err := runner.Start(context.Background()); err == nil {
		t.Fatal("expected error for malformed schedule")
	}
}
