// Package migrations applies the schema required by the PostgreSQL store.
// Statements are idempotent so Apply can run on every boot.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS fit_members (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		whatsapp TEXT NOT NULL DEFAULT '',
		referral_code TEXT NOT NULL,
		referrer_id TEXT REFERENCES fit_members(id),
		active BOOLEAN NOT NULL DEFAULT FALSE,
		plan TEXT NOT NULL DEFAULT 'free',
		billing_cycle TEXT NOT NULL DEFAULT '',
		paid_through TIMESTAMPTZ,
		career_level TEXT NOT NULL DEFAULT 'NONE',
		direct_count INTEGER NOT NULL DEFAULT 0,
		indirect_count INTEGER NOT NULL DEFAULT 0,
		enrolled_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS fit_members_referral_code_idx
		ON fit_members (UPPER(referral_code))`,
	`CREATE INDEX IF NOT EXISTS fit_members_referrer_idx
		ON fit_members (referrer_id)`,
	`CREATE TABLE IF NOT EXISTS fit_commissions (
		id TEXT PRIMARY KEY,
		beneficiary_id TEXT NOT NULL REFERENCES fit_members(id),
		source_id TEXT NOT NULL REFERENCES fit_members(id),
		level INTEGER NOT NULL,
		percentage DOUBLE PRECISION NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		period TEXT NOT NULL,
		idempotency_key TEXT NOT NULL UNIQUE,
		reversal BOOLEAN NOT NULL DEFAULT FALSE,
		reversal_of TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS fit_commissions_beneficiary_idx
		ON fit_commissions (beneficiary_id)`,
	`CREATE TABLE IF NOT EXISTS fit_ledger_accounts (
		member_id TEXT PRIMARY KEY,
		available DOUBLE PRECISION NOT NULL DEFAULT 0,
		pending DOUBLE PRECISION NOT NULL DEFAULT 0,
		lifetime_earned DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS fit_ledger_entries (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		entry_type TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		reference TEXT NOT NULL UNIQUE,
		memo TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS fit_withdrawals (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL REFERENCES fit_members(id),
		amount DOUBLE PRECISION NOT NULL,
		pix_key TEXT NOT NULL,
		status TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS fit_career_evaluations (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL REFERENCES fit_members(id),
		level TEXT NOT NULL,
		directs INTEGER NOT NULL,
		indirects INTEGER NOT NULL,
		company_volume DOUBLE PRECISION NOT NULL DEFAULT 0,
		qualified_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS fit_plans (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL REFERENCES fit_members(id),
		kind TEXT NOT NULL,
		content JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// Apply runs all schema statements in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
