package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"ScalpDeck/internal/model"
)

// SQLiteRecorder persists session history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// DecisionRow is a journaled decision as read back from the database.
type DecisionRow struct {
	Timestamp  time.Time    `json:"timestamp"`
	Symbol     string       `json:"symbol"`
	Action     model.Action `json:"action"`
	Confidence float64      `json:"confidence"`
	Reasoning  string       `json:"reasoning"`
	PassID     string       `json:"pass_id,omitempty"`
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets readers inspect the journal while the deck writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS decisions (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp          INTEGER NOT NULL,
			symbol             TEXT NOT NULL,
			action             TEXT NOT NULL,
			confidence         REAL,
			reasoning          TEXT,
			suggested_quantity INTEGER,
			pass_id            TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_symbol_ts ON decisions(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS status_history (
			id                    INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp             INTEGER NOT NULL,
			current_balance       TEXT,
			holdings_value        TEXT,
			total_portfolio_value TEXT,
			total_return          TEXT,
			return_percentage     TEXT,
			total_trades          INTEGER,
			positions             INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_status_ts ON status_history(timestamp)`,

		`CREATE TABLE IF NOT EXISTS passes (
			id          TEXT PRIMARY KEY,
			kind        TEXT NOT NULL,
			started     INTEGER NOT NULL,
			duration_ms INTEGER,
			ok          TEXT,
			failed      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_passes_started ON passes(started)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordDecision(evt *DecisionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := evt.Decision
	var qty sql.NullInt64
	if d.SuggestedQuantity != nil {
		qty = sql.NullInt64{Int64: int64(*d.SuggestedQuantity), Valid: true}
	}
	ts := d.DecidedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO decisions
		(timestamp, symbol, action, confidence, reasoning, suggested_quantity, pass_id)
		VALUES (?,?,?,?,?,?,?)`,
		ts.UnixMilli(), d.Symbol, string(d.Action), d.Confidence, d.Reasoning, qty, evt.PassID,
	)
	return err
}

func (r *SQLiteRecorder) RecordStatus(evt *StatusEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := evt.Status
	_, err := r.db.Exec(`INSERT INTO status_history
		(timestamp, current_balance, holdings_value, total_portfolio_value, total_return, return_percentage, total_trades, positions)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().UnixMilli(),
		st.CurrentBalance.String(), st.HoldingsValue.String(), st.TotalPortfolioValue.String(),
		st.TotalReturn.String(), st.ReturnPercentage.String(),
		st.TotalTrades, len(st.Holdings),
	)
	return err
}

func (r *SQLiteRecorder) RecordPass(evt *PassEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep := evt.Report
	_, err := r.db.Exec(`INSERT INTO passes
		(id, kind, started, duration_ms, ok, failed)
		VALUES (?,?,?,?,?,?)`,
		rep.ID, rep.Kind, rep.Started.UnixMilli(), rep.Duration.Milliseconds(),
		strings.Join(rep.Ok, ","), strings.Join(rep.Failed, ","),
	)
	return err
}

// RecentDecisions returns up to limit journaled decisions, newest first.
// An empty symbol matches every symbol.
func (r *SQLiteRecorder) RecentDecisions(symbol string, limit int) ([]DecisionRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, symbol, action, confidence, reasoning, pass_id
		FROM decisions
		WHERE (? = '' OR symbol = ?)
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, symbol, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []DecisionRow
	for rows.Next() {
		var (
			row    DecisionRow
			ts     int64
			action string
			passID sql.NullString
		)
		if err := rows.Scan(&ts, &row.Symbol, &action, &row.Confidence, &row.Reasoning, &passID); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		row.Timestamp = time.UnixMilli(ts)
		row.Action = model.Action(action)
		row.PassID = passID.String
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
