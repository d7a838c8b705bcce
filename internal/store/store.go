// Package store provides SQLite persistence for the screener service.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/abelbrown/screener/internal/query"
	"github.com/abelbrown/screener/internal/stock"

	_ "modernc.org/sqlite"
)

// columns maps each numeric field to its column, indexed by stock.Field.
var columns = [...]string{
	stock.MarketCap:     "market_cap",
	stock.PERatio:       "pe_ratio",
	stock.ROE:           "roe",
	stock.DebtEquity:    "debt_equity",
	stock.DividendYield: "dividend_yield",
	stock.RevenueGrowth: "revenue_growth",
	stock.EPSGrowth:     "eps_growth",
	stock.CurrentRatio:  "current_ratio",
	stock.GrossMargin:   "gross_margin",
}

// selectCols is the column list shared by every read, in scan order.
var selectCols = "name, " + strings.Join(columns[:], ", ")

// memSeq names each in-memory database so separate Stores never share one.
var memSeq atomic.Int64

// Store holds the current stock snapshot. Concrete type, safe for
// concurrent use via mu.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (or creates) the database at dbPath. "" and ":memory:" give a
// private in-memory database. File databases use WAL mode.
func Open(dbPath string) (*Store, error) {
	memory := dbPath == "" || dbPath == ":memory:"

	connStr := dbPath
	if memory {
		// Shared cache keeps every pooled connection on the same database.
		connStr = fmt.Sprintf("file:screener-%d?mode=memory&cache=shared", memSeq.Add(1))
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if !memory {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS stocks (\n")
	b.WriteString("\tposition INTEGER PRIMARY KEY,\n")
	b.WriteString("\tname TEXT NOT NULL")
	for _, col := range columns {
		fmt.Fprintf(&b, ",\n\t%s REAL", col)
	}
	b.WriteString("\n);")

	if _, err := s.db.Exec(b.String()); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database. Waits for in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// ReplaceAll swaps the snapshot for records in one transaction.
// Delivery order is kept as the row position.
func (s *Store) ReplaceAll(ctx context.Context, records []stock.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM stocks"); err != nil {
		return fmt.Errorf("clear stocks: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)+2), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO stocks (position, %s) VALUES (%s)", selectCols, placeholders))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		args := make([]any, 0, len(columns)+2)
		args = append(args, i, r.Name)
		for _, f := range stock.Fields {
			args = append(args, nullable(r.Ptr(f)))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %q: %w", r.Name, err)
		}
	}

	return tx.Commit()
}

// List returns the whole snapshot in position order. Never nil.
func (s *Store) List(ctx context.Context) ([]stock.Record, error) {
	return s.Select(ctx, query.Query{})
}

// Select returns the records satisfying every condition of q, in position
// order. Unknown (NULL) values never satisfy a comparison. Never nil.
func (s *Store) Select(ctx context.Context, q query.Query) ([]stock.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sqlText := "SELECT " + selectCols + " FROM stocks"
	var args []any
	if len(q.Conditions) > 0 {
		where := make([]string, len(q.Conditions))
		for i, c := range q.Conditions {
			where[i] = fmt.Sprintf("%s %s ?", columns[c.Field], c.Op)
			args = append(args, c.Value)
		}
		sqlText += " WHERE " + strings.Join(where, " AND ")
	}
	sqlText += " ORDER BY position"

	return s.queryStocks(ctx, sqlText, args...)
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stocks").Scan(&n)
	return n, err
}

// queryStocks scans rows into records. Caller holds s.mu.
func (s *Store) queryStocks(ctx context.Context, sqlText string, args ...any) ([]stock.Record, error) {
	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []stock.Record{}
	for rows.Next() {
		var r stock.Record
		vals := make([]sql.NullFloat64, len(columns))
		dest := make([]any, 0, len(columns)+1)
		dest = append(dest, &r.Name)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, f := range stock.Fields {
			if vals[i].Valid {
				r.Set(f, vals[i].Float64)
			}
		}
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullable(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
