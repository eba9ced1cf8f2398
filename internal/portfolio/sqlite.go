package portfolio

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"portfolio-advisor/internal/interfaces"
	"portfolio-advisor/internal/logger"
	"portfolio-advisor/internal/types"
)

// SQLiteStore persists holdings per upload session.
type SQLiteStore struct {
	db *sql.DB
}

var _ interfaces.HoldingsStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path and runs migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps writes serialised
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info(context.Background(), "sqlite holdings store opened", "path", path)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS portfolio_holdings (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id     TEXT NOT NULL,
			ticker_symbol  TEXT NOT NULL,
			quantity       INTEGER NOT NULL,
			purchase_price REAL,
			purchase_date  TEXT,
			uploaded_at    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_holdings_session ON portfolio_holdings(session_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Replace deletes the session's previous holdings and inserts the new batch in one transaction.
func (s *SQLiteStore) Replace(ctx context.Context, sessionID string, holdings []types.Holding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM portfolio_holdings WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO portfolio_holdings
		(session_id, ticker_symbol, quantity, purchase_price, purchase_date, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, h := range holdings {
		var price sql.NullFloat64
		if h.PurchasePrice != nil {
			price = sql.NullFloat64{Float64: *h.PurchasePrice, Valid: true}
		}
		var date sql.NullString
		if h.PurchaseDate != nil {
			date = sql.NullString{String: h.PurchaseDate.Format("2006-01-02"), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, sessionID, h.Ticker, h.Quantity, price, date, now); err != nil {
			return fmt.Errorf("insert %s: %w", h.Ticker, err)
		}
	}
	return tx.Commit()
}

// List returns the session's holdings in upload order.
func (s *SQLiteStore) List(ctx context.Context, sessionID string) ([]types.Holding, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ticker_symbol, quantity, purchase_price, purchase_date
		FROM portfolio_holdings WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query holdings: %w", err)
	}
	defer rows.Close()

	var out []types.Holding
	for rows.Next() {
		var (
			h     types.Holding
			price sql.NullFloat64
			date  sql.NullString
		)
		if err := rows.Scan(&h.Ticker, &h.Quantity, &price, &date); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		if price.Valid {
			v := price.Float64
			h.PurchasePrice = &v
		}
		if date.Valid {
			if t, err := time.Parse("2006-01-02", date.String); err == nil {
				h.PurchaseDate = &t
			}
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrSessionNotFound
	}
	return out, nil
}

func (s *SQLiteStore) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id FROM portfolio_holdings
		GROUP BY session_id ORDER BY MAX(uploaded_at) DESC, session_id`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
