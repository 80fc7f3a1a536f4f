//go:build integration && postgres

package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	app "github.com/fitmova/platform/internal/app"
	"github.com/fitmova/platform/internal/app/storage/postgres"
	"github.com/fitmova/platform/internal/platform/database"
	"github.com/fitmova/platform/internal/platform/migrations"
	"github.com/fitmova/platform/pkg/logger"
	"github.com/joho/godotenv"
)

// Integration test against Postgres to ensure migrations and the core
// referral flow work with persistence.
func TestIntegrationPostgres(t *testing.T) {
	_ = godotenv.Load() // allow .env for local runs
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration")
	}

	ctx := context.Background()
	db, err := database.Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := migrations.Apply(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	store := postgres.New(db)
	application, err := app.New(app.Stores{
		Members:     store,
		Commissions: store,
		Ledger:      store,
		Career:      store,
		Plans:       store,
	}, logger.NewDefault("integration"))
	if err != nil {
		t.Fatalf("build application: %v", err)
	}

	server := httptest.NewServer(NewHandler(application, nil))
	defer server.Close()

	parent := enrollMember(t, server, "Integration Parent", "")
	payer := enrollMember(t, server, "Integration Payer", parent.ReferralCode)
	activateMember(t, server, parent.ID)

	resp := doJSON(t, http.MethodPost, server.URL+"/referrals/"+payer.ID+"/settle-period", map[string]interface{}{
		"amount": 30.0,
		"period": "2031-01",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("settle: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, server.URL+"/referrals/"+payer.ID+"/settle-period", map[string]interface{}{
		"amount": 30.0,
		"period": "2031-01",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("replay: status %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, server.URL+"/members/"+parent.ID+"/balance", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("balance: status %d", resp.StatusCode)
	}
	resp.Body.Close()
}
