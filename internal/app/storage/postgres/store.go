package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/fitmova/platform/internal/app/domain/career"
	"github.com/fitmova/platform/internal/app/domain/commission"
	"github.com/fitmova/platform/internal/app/domain/ledger"
	"github.com/fitmova/platform/internal/app/domain/member"
	"github.com/fitmova/platform/internal/app/domain/plan"
	"github.com/fitmova/platform/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.MemberStore = (*Store)(nil)
var _ storage.CommissionStore = (*Store)(nil)
var _ storage.LedgerStore = (*Store)(nil)
var _ storage.CareerStore = (*Store)(nil)
var _ storage.PlanStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func translateNoRows(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
	}
	return err
}

// --- MemberStore ------------------------------------------------------------

func (s *Store) CreateMember(ctx context.Context, m member.Member) (member.Member, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.EnrolledAt.IsZero() {
		m.EnrolledAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fit_members (
			id, name, whatsapp, referral_code, referrer_id, active,
			plan, billing_cycle, paid_through, career_level,
			direct_count, indirect_count, enrolled_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, m.ID, m.Name, m.WhatsApp, m.ReferralCode, toNullString(m.ReferrerID), m.Active,
		string(m.Plan), string(m.BillingCycle), toNullTime(m.PaidThrough), m.CareerLevel,
		m.DirectCount, m.IndirectCount, m.EnrolledAt, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return member.Member{}, fmt.Errorf("referral code %s already assigned", m.ReferralCode)
		}
		return member.Member{}, err
	}
	return m, nil
}

func (s *Store) UpdateMember(ctx context.Context, m member.Member) (member.Member, error) {
	existing, err := s.GetMember(ctx, m.ID)
	if err != nil {
		return member.Member{}, err
	}

	// The referral edge and code are immutable, and referral counters move
	// only through IncrementReferralCounts.
	m.ReferrerID = existing.ReferrerID
	m.ReferralCode = existing.ReferralCode
	m.EnrolledAt = existing.EnrolledAt
	m.CreatedAt = existing.CreatedAt
	m.DirectCount = existing.DirectCount
	m.IndirectCount = existing.IndirectCount
	m.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE fit_members
		SET name = $2, whatsapp = $3, active = $4, plan = $5, billing_cycle = $6,
			paid_through = $7, career_level = $8, updated_at = $9
		WHERE id = $1
	`, m.ID, m.Name, m.WhatsApp, m.Active, string(m.Plan), string(m.BillingCycle),
		toNullTime(m.PaidThrough), m.CareerLevel, m.UpdatedAt)
	if err != nil {
		return member.Member{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return member.Member{}, fmt.Errorf("member %s: %w", m.ID, storage.ErrNotFound)
	}
	return m, nil
}

func (s *Store) IncrementReferralCounts(ctx context.Context, memberID string, direct, indirect int) (member.Member, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE fit_members
		SET direct_count = direct_count + $2, indirect_count = indirect_count + $3,
			updated_at = $4
		WHERE id = $1
		RETURNING `+memberColumns+`
	`, memberID, direct, indirect, time.Now().UTC())
	m, err := scanMember(row)
	if err != nil {
		return member.Member{}, translateNoRows(err, "member", memberID)
	}
	return m, nil
}

const memberColumns = `
	id, name, whatsapp, referral_code, referrer_id, active,
	plan, billing_cycle, paid_through, career_level,
	direct_count, indirect_count, enrolled_at, created_at, updated_at`

func (s *Store) GetMember(ctx context.Context, id string) (member.Member, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+`
		FROM fit_members
		WHERE id = $1
	`, id)
	m, err := scanMember(row)
	if err != nil {
		return member.Member{}, translateNoRows(err, "member", id)
	}
	return m, nil
}

func (s *Store) GetMemberByCode(ctx context.Context, code string) (member.Member, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+`
		FROM fit_members
		WHERE UPPER(referral_code) = UPPER($1)
	`, strings.TrimSpace(code))
	m, err := scanMember(row)
	if err != nil {
		return member.Member{}, translateNoRows(err, "referral code", code)
	}
	return m, nil
}

func (s *Store) ListMembers(ctx context.Context) ([]member.Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+memberColumns+`
		FROM fit_members
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMembers(rows)
}

func (s *Store) ListDirects(ctx context.Context, referrerID string) ([]member.Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+memberColumns+`
		FROM fit_members
		WHERE referrer_id = $1
		ORDER BY enrolled_at
	`, referrerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMembers(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMember(row rowScanner) (member.Member, error) {
	var (
		m            member.Member
		referrerID   sql.NullString
		planName     string
		billingCycle string
		paidThrough  sql.NullTime
	)
	err := row.Scan(
		&m.ID, &m.Name, &m.WhatsApp, &m.ReferralCode, &referrerID, &m.Active,
		&planName, &billingCycle, &paidThrough, &m.CareerLevel,
		&m.DirectCount, &m.IndirectCount, &m.EnrolledAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return member.Member{}, err
	}
	m.ReferrerID = referrerID.String
	m.Plan = member.SubscriptionPlan(planName)
	m.BillingCycle = member.BillingCycle(billingCycle)
	if paidThrough.Valid {
		m.PaidThrough = paidThrough.Time
	}
	return m, nil
}

func collectMembers(rows *sql.Rows) ([]member.Member, error) {
	var result []member.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// --- CommissionStore --------------------------------------------------------

func (s *Store) CreateCommission(ctx context.Context, tx commission.Transaction) (commission.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fit_commissions (
			id, beneficiary_id, source_id, level, percentage, amount,
			period, idempotency_key, reversal, reversal_of, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, tx.ID, tx.BeneficiaryID, tx.SourceID, tx.Level, tx.Percentage, tx.Amount,
		tx.Period, tx.Key, tx.Reversal, toNullString(tx.ReversalOf), tx.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return commission.Transaction{}, fmt.Errorf("commission %s: %w", tx.Key, storage.ErrDuplicateTransaction)
		}
		return commission.Transaction{}, err
	}
	return tx, nil
}

const commissionColumns = `
	id, beneficiary_id, source_id, level, percentage, amount,
	period, idempotency_key, reversal, reversal_of, created_at`

func (s *Store) GetCommission(ctx context.Context, id string) (commission.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+commissionColumns+`
		FROM fit_commissions
		WHERE id = $1
	`, id)
	tx, err := scanCommission(row)
	if err != nil {
		return commission.Transaction{}, translateNoRows(err, "commission", id)
	}
	return tx, nil
}

func (s *Store) ListCommissions(ctx context.Context, beneficiaryID string) ([]commission.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commissionColumns+`
		FROM fit_commissions
		WHERE beneficiary_id = $1
		ORDER BY created_at
	`, beneficiaryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCommissions(rows)
}

func (s *Store) ListCommissionsBySource(ctx context.Context, sourceID, period string) ([]commission.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commissionColumns+`
		FROM fit_commissions
		WHERE source_id = $1 AND ($2 = '' OR period = $2)
		ORDER BY level
	`, sourceID, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCommissions(rows)
}

func scanCommission(row rowScanner) (commission.Transaction, error) {
	var (
		tx         commission.Transaction
		reversalOf sql.NullString
	)
	err := row.Scan(
		&tx.ID, &tx.BeneficiaryID, &tx.SourceID, &tx.Level, &tx.Percentage, &tx.Amount,
		&tx.Period, &tx.Key, &tx.Reversal, &reversalOf, &tx.CreatedAt,
	)
	if err != nil {
		return commission.Transaction{}, err
	}
	tx.ReversalOf = reversalOf.String
	return tx, nil
}

func collectCommissions(rows *sql.Rows) ([]commission.Transaction, error) {
	var result []commission.Transaction
	for rows.Next() {
		tx, err := scanCommission(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

// --- LedgerStore ------------------------------------------------------------

func (s *Store) EnsureLedgerAccount(ctx context.Context, memberID string) (ledger.Account, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fit_ledger_accounts (member_id, available, pending, lifetime_earned, created_at, updated_at)
		VALUES ($1, 0, 0, 0, $2, $2)
		ON CONFLICT (member_id) DO NOTHING
	`, memberID, now)
	if err != nil {
		return ledger.Account{}, err
	}
	return s.GetLedgerAccount(ctx, memberID)
}

func (s *Store) GetLedgerAccount(ctx context.Context, memberID string) (ledger.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT member_id, available, pending, lifetime_earned, created_at, updated_at
		FROM fit_ledger_accounts
		WHERE member_id = $1
	`, memberID)

	var acct ledger.Account
	err := row.Scan(&acct.MemberID, &acct.Available, &acct.Pending, &acct.LifetimeEarned, &acct.CreatedAt, &acct.UpdatedAt)
	if err != nil {
		return ledger.Account{}, translateNoRows(err, "ledger account", memberID)
	}
	return acct, nil
}

func (s *Store) CreditBalance(ctx context.Context, entry ledger.Entry) (ledger.Account, error) {
	if entry.Reference == "" {
		return ledger.Account{}, fmt.Errorf("ledger entry reference required")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.Type = ledger.EntryCredit
	entry.CreatedAt = time.Now().UTC()

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Account{}, err
	}
	defer func() { _ = dbTx.Rollback() }()

	// The unique index on reference makes a replayed credit fail here,
	// before the balance moves.
	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO fit_ledger_entries (id, member_id, entry_type, amount, reference, memo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.MemberID, string(entry.Type), entry.Amount, entry.Reference, entry.Memo, entry.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ledger.Account{}, fmt.Errorf("ledger entry %s: %w", entry.Reference, storage.ErrDuplicateTransaction)
		}
		return ledger.Account{}, err
	}

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO fit_ledger_accounts (member_id, available, pending, lifetime_earned, created_at, updated_at)
		VALUES ($1, $2, 0, $2, $3, $3)
		ON CONFLICT (member_id) DO UPDATE
		SET available = fit_ledger_accounts.available + $2,
			lifetime_earned = fit_ledger_accounts.lifetime_earned + $2,
			updated_at = $3
	`, entry.MemberID, entry.Amount, entry.CreatedAt)
	if err != nil {
		return ledger.Account{}, err
	}

	if err := dbTx.Commit(); err != nil {
		return ledger.Account{}, err
	}
	return s.GetLedgerAccount(ctx, entry.MemberID)
}

func (s *Store) ReserveWithdrawal(ctx context.Context, memberID string, amount float64) (ledger.Account, error) {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE fit_ledger_accounts
		SET available = available - $2, pending = pending + $2, updated_at = $3
		WHERE member_id = $1 AND available >= $2
	`, memberID, amount, now)
	if err != nil {
		return ledger.Account{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		acct, getErr := s.GetLedgerAccount(ctx, memberID)
		if getErr != nil {
			return ledger.Account{}, getErr
		}
		return acct, fmt.Errorf("reserve %.2f for %s: %w", amount, memberID, storage.ErrInsufficientFunds)
	}
	return s.GetLedgerAccount(ctx, memberID)
}

func (s *Store) SettleWithdrawal(ctx context.Context, memberID string, amount float64, success bool) (ledger.Account, error) {
	now := time.Now().UTC()
	var err error
	if success {
		_, err = s.db.ExecContext(ctx, `
			UPDATE fit_ledger_accounts
			SET pending = GREATEST(pending - $2, 0), updated_at = $3
			WHERE member_id = $1
		`, memberID, amount, now)
	} else {
		_, err = s.db.ExecContext(ctx, `
			UPDATE fit_ledger_accounts
			SET pending = GREATEST(pending - $2, 0), available = available + $2, updated_at = $3
			WHERE member_id = $1
		`, memberID, amount, now)
	}
	if err != nil {
		return ledger.Account{}, err
	}
	return s.GetLedgerAccount(ctx, memberID)
}

func (s *Store) ListLedgerEntries(ctx context.Context, memberID string) ([]ledger.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, member_id, entry_type, amount, reference, memo, created_at
		FROM fit_ledger_entries
		WHERE member_id = $1
		ORDER BY created_at
	`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ledger.Entry
	for rows.Next() {
		var (
			entry     ledger.Entry
			entryType string
		)
		if err := rows.Scan(&entry.ID, &entry.MemberID, &entryType, &entry.Amount, &entry.Reference, &entry.Memo, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Type = ledger.EntryType(entryType)
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (s *Store) CreateWithdrawal(ctx context.Context, wd ledger.Withdrawal) (ledger.Withdrawal, error) {
	if wd.ID == "" {
		wd.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	wd.CreatedAt = now
	wd.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fit_withdrawals (id, member_id, amount, pix_key, status, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, wd.ID, wd.MemberID, wd.Amount, wd.PixKey, string(wd.Status), wd.Message, wd.CreatedAt, wd.UpdatedAt)
	if err != nil {
		return ledger.Withdrawal{}, err
	}
	return wd, nil
}

func (s *Store) UpdateWithdrawal(ctx context.Context, wd ledger.Withdrawal) (ledger.Withdrawal, error) {
	existing, err := s.GetWithdrawal(ctx, wd.ID)
	if err != nil {
		return ledger.Withdrawal{}, err
	}

	wd.MemberID = existing.MemberID
	wd.CreatedAt = existing.CreatedAt
	wd.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE fit_withdrawals
		SET amount = $2, pix_key = $3, status = $4, message = $5, updated_at = $6
		WHERE id = $1
	`, wd.ID, wd.Amount, wd.PixKey, string(wd.Status), wd.Message, wd.UpdatedAt)
	if err != nil {
		return ledger.Withdrawal{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ledger.Withdrawal{}, fmt.Errorf("withdrawal %s: %w", wd.ID, storage.ErrNotFound)
	}
	return wd, nil
}

const withdrawalColumns = `id, member_id, amount, pix_key, status, message, created_at, updated_at`

func (s *Store) GetWithdrawal(ctx context.Context, id string) (ledger.Withdrawal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+withdrawalColumns+`
		FROM fit_withdrawals
		WHERE id = $1
	`, id)
	wd, err := scanWithdrawal(row)
	if err != nil {
		return ledger.Withdrawal{}, translateNoRows(err, "withdrawal", id)
	}
	return wd, nil
}

func (s *Store) ListWithdrawals(ctx context.Context, memberID string) ([]ledger.Withdrawal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+withdrawalColumns+`
		FROM fit_withdrawals
		WHERE member_id = $1
		ORDER BY created_at
	`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWithdrawals(rows)
}

func (s *Store) ListPendingWithdrawals(ctx context.Context) ([]ledger.Withdrawal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+withdrawalColumns+`
		FROM fit_withdrawals
		WHERE status = $1
		ORDER BY created_at
	`, string(ledger.WithdrawalPending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWithdrawals(rows)
}

func scanWithdrawal(row rowScanner) (ledger.Withdrawal, error) {
	var (
		wd     ledger.Withdrawal
		status string
	)
	err := row.Scan(&wd.ID, &wd.MemberID, &wd.Amount, &wd.PixKey, &status, &wd.Message, &wd.CreatedAt, &wd.UpdatedAt)
	if err != nil {
		return ledger.Withdrawal{}, err
	}
	wd.Status = ledger.WithdrawalStatus(status)
	return wd, nil
}

func collectWithdrawals(rows *sql.Rows) ([]ledger.Withdrawal, error) {
	var result []ledger.Withdrawal
	for rows.Next() {
		wd, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, wd)
	}
	return result, rows.Err()
}

// --- CareerStore ------------------------------------------------------------

func (s *Store) CreateEvaluation(ctx context.Context, ev career.Evaluation) (career.Evaluation, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ev.CreatedAt = time.Now().UTC()
	if ev.QualifiedAt.IsZero() {
		ev.QualifiedAt = ev.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fit_career_evaluations (id, member_id, level, directs, indirects, company_volume, qualified_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, ev.ID, ev.MemberID, string(ev.Level), ev.Directs, ev.Indirects, ev.CompanyVolume, ev.QualifiedAt, ev.CreatedAt)
	if err != nil {
		return career.Evaluation{}, err
	}
	return ev, nil
}

func (s *Store) LatestEvaluation(ctx context.Context, memberID string) (career.Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, member_id, level, directs, indirects, company_volume, qualified_at, created_at
		FROM fit_career_evaluations
		WHERE member_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, memberID)
	ev, err := scanEvaluation(row)
	if err != nil {
		return career.Evaluation{}, translateNoRows(err, "evaluation for", memberID)
	}
	return ev, nil
}

func (s *Store) ListEvaluations(ctx context.Context, memberID string) ([]career.Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, member_id, level, directs, indirects, company_volume, qualified_at, created_at
		FROM fit_career_evaluations
		WHERE member_id = $1
		ORDER BY created_at
	`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []career.Evaluation
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, ev)
	}
	return result, rows.Err()
}

func scanEvaluation(row rowScanner) (career.Evaluation, error) {
	var (
		ev    career.Evaluation
		level string
	)
	err := row.Scan(&ev.ID, &ev.MemberID, &level, &ev.Directs, &ev.Indirects, &ev.CompanyVolume, &ev.QualifiedAt, &ev.CreatedAt)
	if err != nil {
		return career.Evaluation{}, err
	}
	ev.Level = career.Level(level)
	return ev, nil
}

// --- PlanStore --------------------------------------------------------------

func (s *Store) CreatePlan(ctx context.Context, rec plan.Record) (plan.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fit_plans (id, member_id, kind, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ID, rec.MemberID, string(rec.Kind), []byte(rec.Content), rec.CreatedAt)
	if err != nil {
		return plan.Record{}, err
	}
	return rec, nil
}

func (s *Store) ListPlans(ctx context.Context, memberID string, kind plan.Kind) ([]plan.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, member_id, kind, content, created_at
		FROM fit_plans
		WHERE member_id = $1 AND ($2 = '' OR kind = $2)
		ORDER BY created_at
	`, memberID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []plan.Record
	for rows.Next() {
		var (
			rec     plan.Record
			kindRaw string
			content []byte
		)
		if err := rows.Scan(&rec.ID, &rec.MemberID, &kindRaw, &content, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Kind = plan.Kind(kindRaw)
		rec.Content = content
		result = append(result, rec)
	}
	return result, rows.Err()
}

// --- helpers ----------------------------------------------------------------

func toNullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func toNullTime(value time.Time) sql.NullTime {
	if value.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: value, Valid: true}
}
