/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists the bill list, the pay-cycle settings and the interest-free
  billing periods for a single user. The cycle generator never touches the
  database: callers load bills and settings, project, and render.

INTERFACES IMPLEMENTED:
  planner.BillStore:     Master bill list
  planner.SettingsStore: Pay-cycle singleton
  interestfree.Store:    Billing periods and their transactions

KEY TABLES:
  bills:           One row per bill; position keeps insertion order
  settings:        Single pay_cycle row (id = 1)
  billing_periods: Statement windows with interest-free days
  transactions:    Expenses and repayments, cascade-deleted with their period

STORAGE FORMAT:
  Dates are TEXT in YYYY-MM-DD. Amounts are TEXT decimals so that no value
  passes through a float. The custom recurrence rule is a JSON column,
  NULL for every other frequency.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. WAL mode lets readers proceed while
  a write is in progress.

USAGE:
  store, err := sqlite.New("./planner.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := planner.NewService(store, planner.Options{})

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - planner/store.go: Bill and settings interfaces
  - interestfree/store.go: Billing period interface
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/interestfree"
	"github.com/Fezbot3000/Interestfree-tracker/money"
	"github.com/Fezbot3000/Interestfree-tracker/planner"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Master bill list
	CREATE TABLE IF NOT EXISTS bills (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		amount TEXT NOT NULL,
		anchor_date TEXT NOT NULL,
		frequency TEXT NOT NULL,
		custom_json TEXT,
		bill_group TEXT NOT NULL,
		date_category TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bills_position
		ON bills(position);

	-- Pay-cycle settings (single row)
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		pay_cycle_start TEXT NOT NULL,
		pay_cycle_frequency TEXT NOT NULL,
		pay_cycle_income TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Interest-free billing periods
	CREATE TABLE IF NOT EXISTS billing_periods (
		id TEXT PRIMARY KEY,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		interest_free_days INTEGER NOT NULL,
		interest_free_end TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_billing_periods_start
		ON billing_periods(start_date DESC);

	-- Expenses and repayments
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		period_id TEXT NOT NULL REFERENCES billing_periods(id) ON DELETE CASCADE,
		tx_date TEXT NOT NULL,
		description TEXT NOT NULL,
		amount TEXT NOT NULL,
		tx_type TEXT NOT NULL CHECK (tx_type IN ('expense', 'repayment')),
		seq INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_period
		ON transactions(period_id, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// BILL STORE
// =============================================================================

// customRecord is the JSON shape of the custom_json column.
type customRecord struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
	Days  []int  `json:"days,omitempty"`
}

// SaveBill inserts or replaces a bill. An existing bill keeps its position.
func (s *Store) SaveBill(ctx context.Context, b planner.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveBill(ctx, s.db, b)
}

func saveBill(ctx context.Context, db execer, b planner.Bill) error {
	custom, err := encodeCustom(b.Frequency.Custom)
	if err != nil {
		return fmt.Errorf("failed to encode custom frequency: %w", err)
	}

	query := `
		INSERT INTO bills (id, position, name, amount, anchor_date, frequency, custom_json,
			bill_group, date_category, created_at, updated_at)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM bills), ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			amount = excluded.amount,
			anchor_date = excluded.anchor_date,
			frequency = excluded.frequency,
			custom_json = excluded.custom_json,
			bill_group = excluded.bill_group,
			date_category = excluded.date_category,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = db.ExecContext(ctx, query,
		string(b.ID), b.Name, b.Amount.Exact(), b.Date, b.Frequency.Label(), custom,
		b.Group, nullString(string(b.DateCategory)), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save bill: %w", err)
	}
	return nil
}

const billColumns = "id, name, amount, anchor_date, frequency, custom_json, bill_group, date_category"

// GetBill retrieves a bill by ID.
func (s *Store) GetBill(ctx context.Context, id planner.BillID) (*planner.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+billColumns+" FROM bills WHERE id = ?", string(id))
	b, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, planner.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBills returns all bills in insertion order.
func (s *Store) ListBills(ctx context.Context) ([]planner.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+billColumns+" FROM bills ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	bills := []planner.Bill{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// DeleteBill removes a bill.
func (s *Store) DeleteBill(ctx context.Context, id planner.BillID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return planner.ErrNotFound
	}
	return nil
}

// ReplaceBills swaps the whole bill list in one transaction.
func (s *Store) ReplaceBills(ctx context.Context, bills []planner.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM bills"); err != nil {
			return err
		}
		for _, b := range bills {
			if err := saveBill(ctx, tx, b); err != nil {
				return err
			}
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (planner.Bill, error) {
	var (
		b                 planner.Bill
		id, amount, label string
		custom, category  sql.NullString
	)
	if err := row.Scan(&id, &b.Name, &amount, &b.Date, &label, &custom, &b.Group, &category); err != nil {
		return planner.Bill{}, err
	}

	parsed, err := money.Parse(amount)
	if err != nil {
		return planner.Bill{}, fmt.Errorf("bill %s: %w", id, err)
	}
	rule, err := decodeCustom(custom)
	if err != nil {
		return planner.Bill{}, fmt.Errorf("bill %s: %w", id, err)
	}

	b.ID = planner.BillID(id)
	b.Amount = parsed
	b.Frequency = planner.ParseFrequency(label, rule)
	b.DateCategory = calendar.DateCategory(category.String)
	return b, nil
}

func encodeCustom(rule *planner.CustomRule) (sql.NullString, error) {
	if rule == nil {
		return sql.NullString{}, nil
	}
	rec := customRecord{Value: rule.Value, Unit: string(rule.Unit)}
	for _, d := range rule.Weekdays {
		rec.Days = append(rec.Days, int(d))
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeCustom(col sql.NullString) (*planner.CustomRule, error) {
	if !col.Valid || col.String == "" {
		return nil, nil
	}
	var rec customRecord
	if err := json.Unmarshal([]byte(col.String), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode custom frequency: %w", err)
	}
	rule := &planner.CustomRule{Value: rec.Value, Unit: planner.Unit(rec.Unit)}
	for _, d := range rec.Days {
		rule.Weekdays = append(rule.Weekdays, time.Weekday(d))
	}
	return rule, nil
}

// =============================================================================
// SETTINGS STORE
// =============================================================================

// PayCycle returns the stored pay-cycle settings, ok=false if none.
func (s *Store) PayCycle(ctx context.Context) (planner.PayCycle, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var start, freq, income string
	err := s.db.QueryRowContext(ctx,
		"SELECT pay_cycle_start, pay_cycle_frequency, pay_cycle_income FROM settings WHERE id = 1",
	).Scan(&start, &freq, &income)
	if errors.Is(err, sql.ErrNoRows) {
		return planner.PayCycle{}, false, nil
	}
	if err != nil {
		return planner.PayCycle{}, false, fmt.Errorf("failed to load pay cycle: %w", err)
	}

	pc := planner.PayCycle{Frequency: planner.PayFrequency(freq)}
	if pc.Start, err = calendar.ParseDate(start); err != nil {
		return planner.PayCycle{}, false, err
	}
	if pc.Income, err = money.Parse(income); err != nil {
		return planner.PayCycle{}, false, err
	}
	return pc, true, nil
}

// SavePayCycle replaces the pay-cycle settings.
func (s *Store) SavePayCycle(ctx context.Context, pc planner.PayCycle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO settings (id, pay_cycle_start, pay_cycle_frequency, pay_cycle_income, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pay_cycle_start = excluded.pay_cycle_start,
			pay_cycle_frequency = excluded.pay_cycle_frequency,
			pay_cycle_income = excluded.pay_cycle_income,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		pc.Start.String(), string(pc.Frequency), pc.Income.Exact(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save pay cycle: %w", err)
	}
	return nil
}

// =============================================================================
// BILLING PERIOD STORE
// =============================================================================

// SavePeriod inserts or updates a period's own columns. Existing
// transactions are untouched; a new period's transactions are inserted.
func (s *Store) SavePeriod(ctx context.Context, p interestfree.BillingPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM billing_periods WHERE id = ?", string(p.ID)).Scan(&exists); err != nil {
			return err
		}
		if err := savePeriod(ctx, tx, p); err != nil {
			return err
		}
		if exists > 0 {
			return nil
		}
		return insertTransactions(ctx, tx, p.ID, p.Transactions)
	})
}

func savePeriod(ctx context.Context, db execer, p interestfree.BillingPeriod) error {
	query := `
		INSERT INTO billing_periods (id, start_date, end_date, interest_free_days, interest_free_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			interest_free_days = excluded.interest_free_days,
			interest_free_end = excluded.interest_free_end
	`
	var end sql.NullString
	if !p.InterestFreeEnd.IsZero() {
		end = nullString(p.InterestFreeEnd.String())
	}
	_, err := db.ExecContext(ctx, query,
		string(p.ID), p.Start.String(), p.End.String(), p.InterestFreeDays, end,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save billing period: %w", err)
	}
	return nil
}

func insertTransactions(ctx context.Context, db execer, id interestfree.PeriodID, txs []interestfree.Transaction) error {
	for _, t := range txs {
		if err := insertTransaction(ctx, db, id, t); err != nil {
			return err
		}
	}
	return nil
}

func insertTransaction(ctx context.Context, db execer, id interestfree.PeriodID, t interestfree.Transaction) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO transactions (id, period_id, tx_date, description, amount, tx_type, seq)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM transactions WHERE period_id = ?))`,
		string(t.ID), string(id), t.Date.String(), t.Description, t.Amount.Exact(), string(t.Type), string(id),
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

const periodColumns = "id, start_date, end_date, interest_free_days, interest_free_end"

// GetPeriod retrieves a billing period with its transactions.
func (s *Store) GetPeriod(ctx context.Context, id interestfree.PeriodID) (*interestfree.BillingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanPeriod(s.db.QueryRowContext(ctx, "SELECT "+periodColumns+" FROM billing_periods WHERE id = ?", string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interestfree.ErrPeriodNotFound
	}
	if err != nil {
		return nil, err
	}

	byPeriod, err := s.loadTransactions(ctx, "WHERE period_id = ?", string(id))
	if err != nil {
		return nil, err
	}
	p.Transactions = byPeriod[p.ID]
	if p.Transactions == nil {
		p.Transactions = []interestfree.Transaction{}
	}
	return &p, nil
}

// ListPeriods returns all billing periods in creation order.
func (s *Store) ListPeriods(ctx context.Context) ([]interestfree.BillingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+periodColumns+" FROM billing_periods ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list billing periods: %w", err)
	}
	defer rows.Close()

	periods := []interestfree.BillingPeriod{}
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byPeriod, err := s.loadTransactions(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range periods {
		periods[i].Transactions = byPeriod[periods[i].ID]
		if periods[i].Transactions == nil {
			periods[i].Transactions = []interestfree.Transaction{}
		}
	}
	return periods, nil
}

func (s *Store) loadTransactions(ctx context.Context, where string, args ...any) (map[interestfree.PeriodID][]interestfree.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT period_id, id, tx_date, description, amount, tx_type FROM transactions "+where+" ORDER BY period_id, seq",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	defer rows.Close()

	result := make(map[interestfree.PeriodID][]interestfree.Transaction)
	for rows.Next() {
		var periodID, id, txDate, amount, txType string
		var t interestfree.Transaction
		if err := rows.Scan(&periodID, &id, &txDate, &t.Description, &amount, &txType); err != nil {
			return nil, err
		}
		if t.Date, err = calendar.ParseDate(txDate); err != nil {
			return nil, err
		}
		if t.Amount, err = money.Parse(amount); err != nil {
			return nil, err
		}
		t.ID = interestfree.TransactionID(id)
		t.Type = interestfree.TransactionType(txType)
		result[interestfree.PeriodID(periodID)] = append(result[interestfree.PeriodID(periodID)], t)
	}
	return result, rows.Err()
}

func scanPeriod(row rowScanner) (interestfree.BillingPeriod, error) {
	var (
		p               interestfree.BillingPeriod
		id, start, end  string
		interestFreeEnd sql.NullString
	)
	if err := row.Scan(&id, &start, &end, &p.InterestFreeDays, &interestFreeEnd); err != nil {
		return p, err
	}

	var err error
	if p.Start, err = calendar.ParseDate(start); err != nil {
		return p, err
	}
	if p.End, err = calendar.ParseDate(end); err != nil {
		return p, err
	}
	if interestFreeEnd.Valid {
		if p.InterestFreeEnd, err = calendar.ParseDate(interestFreeEnd.String); err != nil {
			return p, err
		}
	}
	p.ID = interestfree.PeriodID(id)
	return p, nil
}

// DeletePeriod removes a period and, through the cascade, its transactions.
func (s *Store) DeletePeriod(ctx context.Context, id interestfree.PeriodID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM billing_periods WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete billing period: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return interestfree.ErrPeriodNotFound
	}
	return nil
}

// AddTransaction appends a transaction to a period.
func (s *Store) AddTransaction(ctx context.Context, id interestfree.PeriodID, t interestfree.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM billing_periods WHERE id = ?", string(id)).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return interestfree.ErrPeriodNotFound
	}
	return insertTransaction(ctx, s.db, id, t)
}

// DeleteTransaction removes one transaction from a period.
func (s *Store) DeleteTransaction(ctx context.Context, id interestfree.PeriodID, txID interestfree.TransactionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ? AND period_id = ?", string(txID), string(id))
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return interestfree.ErrTransactionNotFound
	}
	return nil
}

// ReplacePeriods swaps every period and transaction in one transaction.
func (s *Store) ReplacePeriods(ctx context.Context, periods []interestfree.BillingPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM billing_periods"); err != nil {
			return err
		}
		for _, p := range periods {
			if err := savePeriod(ctx, tx, p); err != nil {
				return err
			}
			if err := insertTransactions(ctx, tx, p.ID, p.Transactions); err != nil {
				return err
			}
		}
		return nil
	})
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"transactions", "billing_periods", "bills", "settings"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var (
	_ planner.Store      = (*Store)(nil)
	_ interestfree.Store = (*Store)(nil)
)
