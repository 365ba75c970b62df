/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists the two things the salary service keeps: the city tax table the
  engine reads professional tax from, and the history of calculations.
  In production the same patterns apply to PostgreSQL with minor SQL dialect
  differences.

INTERFACES IMPLEMENTED:
  salary.CityTaxTable: LookupCity

KEY TABLES:
  city_tax:      one row per city (professional tax per month, state)
  calculations:  append-only history of breakdowns, newest first on read

MONEY:
  Amounts are stored as decimal strings (TEXT) so no precision is lost.
  Breakdowns are stored as a JSON document alongside the indexed columns.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

USAGE:
  store, err := sqlite.New("./data/salary.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  calc := salary.NewCalculator(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - salary/city.go: CityTaxTable contract
  - store/cache/citytax.go: Redis cache in front of this store
  - salary/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/salary-engine/money"
	"github.com/warp/salary-engine/salary"
)

// MaxHistoryLimit bounds a single history listing.
const MaxHistoryLimit = 100

// createdAtLayout is fixed-width so created_at sorts lexically.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

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
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// NewWithDB wraps an already-open, already-migrated database.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- City professional tax (read by the engine, written by admin tooling)
	CREATE TABLE IF NOT EXISTS city_tax (
		city TEXT PRIMARY KEY,
		state TEXT NOT NULL DEFAULT '',
		professional_tax TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Calculation history (append-only)
	CREATE TABLE IF NOT EXISTS calculations (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		city TEXT NOT NULL,
		ctc TEXT NOT NULL,
		variable_pay TEXT NOT NULL,
		insurance TEXT NOT NULL,
		in_hand_salary TEXT NOT NULL,
		breakdown_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_calculations_created
		ON calculations(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_calculations_user
		ON calculations(user_id, created_at DESC) WHERE user_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_calculations_city
		ON calculations(city);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CITY TAX STORE (salary.CityTaxTable interface)
// =============================================================================

// LookupCity returns the record for city, or (nil, nil) if there is none.
func (s *Store) LookupCity(ctx context.Context, city string) (*salary.CityTaxRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT city, state, professional_tax, updated_at FROM city_tax WHERE city = ?",
		city,
	)
	rec, err := scanCityTax(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up city tax for %q: %w", city, err)
	}
	return &rec, nil
}

// SaveCityTax creates or replaces a city record.
func (s *Store) SaveCityTax(ctx context.Context, rec salary.CityTaxRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveCityTax(ctx, s.db, rec)
}

// SaveCityTaxBatch creates or replaces many records atomically.
func (s *Store) SaveCityTaxBatch(ctx context.Context, recs []salary.CityTaxRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range recs {
		if err := s.saveCityTax(ctx, tx, rec); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) saveCityTax(ctx context.Context, db interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, rec salary.CityTaxRecord) error {
	query := `
		INSERT INTO city_tax (city, state, professional_tax, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(city) DO UPDATE SET
			state = excluded.state,
			professional_tax = excluded.professional_tax,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.ExecContext(ctx, query,
		rec.City, rec.State, rec.MonthlyProfessionalTax().Value.String(), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save city tax for %q: %w", rec.City, err)
	}
	return nil
}

// UpdateCityTax replaces an existing record. Returns salary.ErrCityNotFound if
// the city has no record.
func (s *Store) UpdateCityTax(ctx context.Context, rec salary.CityTaxRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE city_tax SET state = ?, professional_tax = ?, updated_at = ? WHERE city = ?",
		rec.State, rec.MonthlyProfessionalTax().Value.String(),
		time.Now().UTC().Format(time.RFC3339), rec.City,
	)
	if err != nil {
		return fmt.Errorf("failed to update city tax for %q: %w", rec.City, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", salary.ErrCityNotFound, rec.City)
	}
	return nil
}

// ListCityTax returns all records ordered by city.
func (s *Store) ListCityTax(ctx context.Context) ([]salary.CityTaxRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT city, state, professional_tax, updated_at FROM city_tax ORDER BY city",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list city tax: %w", err)
	}
	defer rows.Close()

	var records []salary.CityTaxRecord
	for rows.Next() {
		rec, err := scanCityTax(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteCityTax removes a record. Returns false if there was none.
func (s *Store) DeleteCityTax(ctx context.Context, city string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM city_tax WHERE city = ?", city)
	if err != nil {
		return false, fmt.Errorf("failed to delete city tax for %q: %w", city, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCityTax(row scanner) (salary.CityTaxRecord, error) {
	var (
		rec       salary.CityTaxRecord
		ptax      string
		updatedAt string
	)
	if err := row.Scan(&rec.City, &rec.State, &ptax, &updatedAt); err != nil {
		return rec, err
	}

	amount, err := money.Parse(ptax, money.Monthly)
	if err != nil {
		return rec, fmt.Errorf("bad professional tax %q for %s: %w", ptax, rec.City, err)
	}
	rec.ProfessionalTax = amount
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return rec, nil
}

// =============================================================================
// CALCULATION HISTORY
// =============================================================================

// CalculationRecord is one persisted calculation.
type CalculationRecord struct {
	ID        string
	UserID    string
	Request   salary.CalculationRequest
	Breakdown salary.SalaryBreakdown
	CreatedAt time.Time
}

// CalculationFilter narrows a history listing.
type CalculationFilter struct {
	UserID string // empty = all users
	Limit  int    // <= 0 or > MaxHistoryLimit means MaxHistoryLimit
}

// SaveCalculation appends a calculation to the history.
func (s *Store) SaveCalculation(ctx context.Context, rec CalculationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	breakdownJSON, err := json.Marshal(toStoredBreakdown(rec.Breakdown))
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query, args, err := sq.Insert("calculations").
		Columns("id", "user_id", "city", "ctc", "variable_pay", "insurance",
			"in_hand_salary", "breakdown_json", "created_at").
		Values(rec.ID, nullString(rec.UserID), rec.Request.City,
			rec.Request.CTC.String(), rec.Request.VariablePay.String(), rec.Request.Insurance.String(),
			rec.Breakdown.InHandSalary.Value.String(), string(breakdownJSON),
			rec.CreatedAt.UTC().Format(createdAtLayout)).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("calculation %s already recorded: %w", rec.ID, err)
		}
		return fmt.Errorf("failed to save calculation: %w", err)
	}
	return nil
}

// ListCalculations returns history newest first.
func (s *Store) ListCalculations(ctx context.Context, filter CalculationFilter) ([]CalculationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 || limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	builder := sq.Select("id", "user_id", "city", "ctc", "variable_pay", "insurance",
		"breakdown_json", "created_at").
		From("calculations").
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit))
	if filter.UserID != "" {
		builder = builder.Where(sq.Eq{"user_id": filter.UserID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calculations: %w", err)
	}
	defer rows.Close()

	var records []CalculationRecord
	for rows.Next() {
		rec, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanCalculation(rows *sql.Rows) (CalculationRecord, error) {
	var (
		rec           CalculationRecord
		userID        sql.NullString
		ctc           string
		variablePay   string
		insurance     string
		breakdownJSON string
		createdAt     string
	)

	err := rows.Scan(&rec.ID, &userID, &rec.Request.City, &ctc, &variablePay, &insurance,
		&breakdownJSON, &createdAt)
	if err != nil {
		return rec, fmt.Errorf("failed to scan calculation: %w", err)
	}

	rec.UserID = userID.String
	rec.CreatedAt, _ = time.Parse(createdAtLayout, createdAt)
	for _, f := range []struct {
		raw string
		dst *decimal.Decimal
	}{
		{ctc, &rec.Request.CTC},
		{variablePay, &rec.Request.VariablePay},
		{insurance, &rec.Request.Insurance},
	} {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return rec, fmt.Errorf("bad amount %q in calculation %s: %w", f.raw, rec.ID, err)
		}
		*f.dst = d
	}

	var stored storedBreakdown
	if err := json.Unmarshal([]byte(breakdownJSON), &stored); err != nil {
		return rec, fmt.Errorf("failed to decode breakdown %s: %w", rec.ID, err)
	}
	rec.Breakdown = stored.toBreakdown()
	return rec, nil
}

// =============================================================================
// STATISTICS
// =============================================================================

// CityUsage counts calculations per city.
type CityUsage struct {
	City         string
	Calculations int
}

// CountCalculations returns the total number of stored calculations.
func (s *Store) CountCalculations(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM calculations").Scan(&count)
	return count, err
}

// CityUsage returns calculation counts per city, most used first.
func (s *Store) CityUsage(ctx context.Context) ([]CityUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args, err := sq.Select("city", "COUNT(*) AS n").
		From("calculations").
		GroupBy("city").
		OrderBy("n DESC", "city").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query city usage: %w", err)
	}
	defer rows.Close()

	var usage []CityUsage
	for rows.Next() {
		var u CityUsage
		if err := rows.Scan(&u.City, &u.Calculations); err != nil {
			return nil, err
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"calculations", "city_tax"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
