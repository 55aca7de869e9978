// Package journal persists backtest runs to SQLite so results can be
// compared across strategy revisions.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/cryptobot/config"
	"github.com/rustyeddy/cryptobot/perf"
	"github.com/rustyeddy/cryptobot/pkg/id"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// RecordRun stores the run's config echo, report scalars, and PnL events.
// It returns the assigned run id (a ULID, so rows sort by creation time).
func (j *SQLite) RecordRun(cfg *config.Config, report perf.Report) (string, error) {
	runID := id.New()

	tx, err := j.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs
		(run_id, created, strategy, symbol, interval, start_time, end_time,
		 balance, taker_fee, maker_fee,
		 pnl, gross_profit, gross_loss, win, loss, commission_paid,
		 percent_profitable, buy_hold)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC(), cfg.Strategy, cfg.Symbol, cfg.Interval,
		cfg.StartTime, cfg.EndTime, cfg.Balance, cfg.TakerFee, cfg.MakerFee,
		report.PnL, report.GrossProfit, report.GrossLoss, report.Win,
		report.Loss, report.CommissionPaid, report.PercentProfitable,
		report.BuyHold,
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	for i, p := range report.PnLHistory {
		_, err = tx.Exec(`
			INSERT INTO pnl_events (run_id, timestamp, pnl, cum_pnl)
			VALUES (?, ?, ?, ?)`,
			runID, p.Timestamp, p.Value, report.CumPnLHistory[i].Value,
		)
		if err != nil {
			return "", fmt.Errorf("record pnl event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// PnLEvents reads back a run's realized PnL series in timestamp order.
func (j *SQLite) PnLEvents(runID string) ([]perf.Point, error) {
	rows, err := j.db.Query(`
		SELECT timestamp, pnl FROM pnl_events
		WHERE run_id = ? ORDER BY timestamp`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []perf.Point
	for rows.Next() {
		var p perf.Point
		if err := rows.Scan(&p.Timestamp, &p.Value); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
