package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	strategy TEXT NOT NULL,
	symbol TEXT NOT NULL,
	interval TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	balance REAL NOT NULL,
	taker_fee REAL NOT NULL,
	maker_fee REAL NOT NULL,
	pnl REAL NOT NULL,
	gross_profit REAL NOT NULL,
	gross_loss REAL NOT NULL,
	win INTEGER NOT NULL,
	loss INTEGER NOT NULL,
	commission_paid REAL NOT NULL,
	percent_profitable REAL NOT NULL,
	buy_hold REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS pnl_events (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	timestamp INTEGER NOT NULL,
	pnl REAL NOT NULL,
	cum_pnl REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pnl_events_run ON pnl_events(run_id, timestamp);
`
