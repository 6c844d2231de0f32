package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"SignalSentinel/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			tickers     INTEGER,
			signals     INTEGER,
			failures    INTEGER,
			persisted   INTEGER,
			persist_err TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS evaluations (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			symbol      TEXT NOT NULL,
			price       REAL,
			ema_fast    REAL,
			ema_slow    REAL,
			macd        REAL,
			macd_signal REAL,
			support     REAL,
			resistance  REAL,
			signal      TEXT,
			call_before INTEGER,
			put_before  INTEGER,
			call_after  INTEGER,
			put_after   INTEGER,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_eval_run ON evaluations(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_eval_symbol ON evaluations(symbol)`,

		`CREATE TABLE IF NOT EXISTS resets (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			source    TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// RecordRun writes the run row and one evaluation row per ticker in a single transaction.
func (r *SQLiteRecorder) RecordRun(report *model.RunReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	persistErr := ""
	if report.PersistErr != nil {
		persistErr = report.PersistErr.Error()
	}
	if _, err := tx.Exec(`INSERT INTO runs
		(id, started_at, finished_at, tickers, signals, failures, persisted, persist_err)
		VALUES (?,?,?,?,?,?,?,?)`,
		report.ID, report.StartedAt.Unix(), report.FinishedAt.Unix(),
		len(report.Tickers), report.Signals(), report.Failed(),
		report.Persisted, persistErr,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, t := range report.Tickers {
		var (
			snap         model.IndicatorSnapshot
			support, res sql.NullFloat64
			errText      string
		)
		if t.Analysis != nil {
			snap = t.Analysis.Snapshot
			support = nullable(t.Analysis.Support)
			res = nullable(t.Analysis.Resistance)
		}
		if t.Err != nil {
			errText = t.Err.Error()
		}
		if _, err := tx.Exec(`INSERT INTO evaluations
			(run_id, symbol, price, ema_fast, ema_slow, macd, macd_signal,
			 support, resistance, signal,
			 call_before, put_before, call_after, put_after, error)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			report.ID, t.Symbol, snap.Price, snap.EMAFast, snap.EMASlow, snap.MACD, snap.MACDSignal,
			support, res, string(t.Decision.Signal),
			t.Before.Call, t.Before.Put, t.Decision.Next.Call, t.Decision.Next.Put, errText,
		); err != nil {
			return fmt.Errorf("insert evaluation %s: %w", t.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordReset(source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO resets (timestamp, source) VALUES (?,?)`,
		time.Now().Unix(), source,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
