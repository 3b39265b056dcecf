// Package store provides a SQLite-backed history of plan runs.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/payoff/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrRunNotFound is returned when a run ID is not in the history.
var ErrRunNotFound = errors.New("run not found")

// History provides SQLite-backed run history.
type History struct {
	db *sql.DB
}

// Open opens or creates the history database at the given path.
func Open(dbPath string) (*History, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &History{db: db}, nil
}

// Close closes the history database.
func (h *History) Close() error {
	return h.db.Close()
}

// SaveRun stores a run and its per-debt rows. A missing ID or timestamp is
// filled in; the stored run is returned.
func (h *History) SaveRun(r model.Run) (model.Run, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	tx, err := h.db.Begin()
	if err != nil {
		return r, err
	}
	defer func() { _ = tx.Rollback() }()

	fellBack := 0
	if r.FellBack {
		fellBack = 1
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO runs
		(run_id, input_hash, created_at, source, strategy, requested_strategy, fell_back,
		 monthly_budget, months, total_interest, total_paid, payoff_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.InputHash, formatTime(r.CreatedAt), r.Source, r.Strategy, r.RequestedStrategy, fellBack,
		r.MonthlyBudget.String(), monthsValue(r.Months), r.TotalInterest.String(), r.TotalPaid.String(),
		formatTime(r.PayoffDate),
	)
	if err != nil {
		return r, fmt.Errorf("inserting run: %w", err)
	}

	_, err = tx.Exec("DELETE FROM run_debts WHERE run_id = ?", r.ID)
	if err != nil {
		return r, err
	}

	for _, d := range r.Debts {
		_, err = tx.Exec(`INSERT INTO run_debts
			(run_id, debt_id, months, total_interest, total_paid, payoff_date, outcome)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, d.DebtID, monthsValue(d.Months), d.TotalInterest.String(), d.TotalPaid.String(),
			formatTime(d.PayoffDate), d.Outcome,
		)
		if err != nil {
			return r, fmt.Errorf("inserting run debt %q: %w", d.DebtID, err)
		}
	}

	return r, tx.Commit()
}

const runColumns = `run_id, input_hash, created_at, source, strategy, requested_strategy, fell_back,
	monthly_budget, months, total_interest, total_paid, payoff_date`

// ListRuns returns up to limit runs, newest first, without per-debt rows.
// limit <= 0 returns every run.
func (h *History) ListRuns(limit int) ([]model.Run, error) {
	q := "SELECT " + runColumns + " FROM runs ORDER BY created_at DESC, run_id"
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun loads one run with its per-debt rows.
func (h *History) GetRun(id string) (model.Run, error) {
	row := h.db.QueryRow("SELECT "+runColumns+" FROM runs WHERE run_id = ?", id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return r, err
	}

	rows, err := h.db.Query(`SELECT debt_id, months, total_interest, total_paid, payoff_date, outcome
		FROM run_debts WHERE run_id = ? ORDER BY rowid`, id)
	if err != nil {
		return r, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var d model.RunDebt
		var months sql.NullInt64
		var interest, paid string
		var payoff sql.NullString
		if err := rows.Scan(&d.DebtID, &months, &interest, &paid, &payoff, &d.Outcome); err != nil {
			return r, err
		}
		d.Months = parseMonths(months)
		d.TotalInterest = parseDecimal(interest)
		d.TotalPaid = parseDecimal(paid)
		d.PayoffDate = parseTime(payoff)
		r.Debts = append(r.Debts, d)
	}
	return r, rows.Err()
}

// LatestByHash returns the newest run recorded for an input hash.
func (h *History) LatestByHash(hash string) (model.Run, bool, error) {
	row := h.db.QueryRow("SELECT "+runColumns+` FROM runs WHERE input_hash = ?
		ORDER BY created_at DESC LIMIT 1`, hash)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return r, false, nil
	}
	if err != nil {
		return r, false, err
	}
	return r, true, nil
}

// DeleteRun removes a run and its per-debt rows.
func (h *History) DeleteRun(id string) error {
	res, err := h.db.Exec("DELETE FROM runs WHERE run_id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// Prune keeps the newest keep runs and deletes the rest.
func (h *History) Prune(keep int) (int64, error) {
	res, err := h.db.Exec(`DELETE FROM runs WHERE run_id NOT IN
		(SELECT run_id FROM runs ORDER BY created_at DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RunCount returns the number of recorded runs.
func (h *History) RunCount() (int, error) {
	var count int
	err := h.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}

// Fixed-width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (model.Run, error) {
	var r model.Run
	var created string
	var requested, payoff sql.NullString
	var fellBack int
	var months sql.NullInt64
	var budget, interest, paid string

	err := s.Scan(&r.ID, &r.InputHash, &created, &r.Source, &r.Strategy, &requested, &fellBack,
		&budget, &months, &interest, &paid, &payoff)
	if err != nil {
		return r, err
	}

	r.CreatedAt, _ = time.Parse(timeLayout, created)
	r.RequestedStrategy = requested.String
	r.FellBack = fellBack != 0
	r.MonthlyBudget = parseDecimal(budget)
	r.Months = parseMonths(months)
	r.TotalInterest = parseDecimal(interest)
	r.TotalPaid = parseDecimal(paid)
	r.PayoffDate = parseTime(payoff)
	return r, nil
}

func monthsValue(m model.Months) any {
	if m.IsNever() {
		return nil
	}
	return int64(m)
}

func parseMonths(v sql.NullInt64) model.Months {
	if !v.Valid {
		return model.Never
	}
	return model.Months(v.Int64)
}

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(v sql.NullString) time.Time {
	if !v.Valid || v.String == "" {
		return time.Time{}
	}
	t, _ := time.Parse(timeLayout, v.String)
	return t
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
