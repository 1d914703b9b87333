package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"DCAPilot/internal/model"
)

// SQLiteRecorder persists decisions and trades to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read
	// while the bot writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS decisions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			action     TEXT,
			multiplier REAL,
			composite  REAL,
			reasoning  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_ts ON decisions(timestamp)`,

		`CREATE TABLE IF NOT EXISTS signals (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			decision_id INTEGER NOT NULL,
			source      TEXT,
			score       REAL,
			confidence  REAL,
			reasoning   TEXT,
			FOREIGN KEY (decision_id) REFERENCES decisions(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_decision ON signals(decision_id)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			action     TEXT,
			multiplier REAL,
			composite  REAL,
			amount_usd REAL,
			amount_btc REAL,
			price      REAL,
			leverage   INTEGER,
			executed   INTEGER,
			simulated  INTEGER,
			order_id   TEXT,
			reason     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordDecision(d model.Decision) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`INSERT INTO decisions
		(timestamp, action, multiplier, composite, reasoning)
		VALUES (?,?,?,?,?)`,
		d.CreatedAt.Unix(), string(d.Action), d.Multiplier, d.Composite, d.Reasoning,
	)
	if err != nil {
		return err
	}
	decisionID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, sig := range d.Signals {
		if _, err := r.db.Exec(`INSERT INTO signals
			(decision_id, source, score, confidence, reasoning)
			VALUES (?,?,?,?,?)`,
			decisionID, sig.Source, sig.Score, sig.Confidence, sig.Reasoning,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTrade(snap *TradeSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := snap.Decision
	res := snap.Result
	_, err := r.db.Exec(`INSERT INTO trades
		(timestamp, action, multiplier, composite,
		 amount_usd, amount_btc, price, leverage,
		 executed, simulated, order_id, reason)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), string(d.Action), d.Multiplier, d.Composite,
		res.AmountUSD, res.AmountBTC, res.Price, res.Leverage,
		boolInt(res.Executed), boolInt(res.Simulated), res.OrderID, res.Reason,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
