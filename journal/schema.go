package journal

const Schema = `
CREATE TABLE IF NOT EXISTS calculations (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	account_currency TEXT NOT NULL,
	instrument TEXT NOT NULL,
	balance REAL NOT NULL,
	risk_percent REAL NOT NULL,
	stop_loss_pips REAL NOT NULL,
	mode TEXT NOT NULL,
	target_pips REAL NOT NULL,
	side TEXT NOT NULL,
	quote_rate REAL NOT NULL,
	units REAL NOT NULL,
	lots REAL NOT NULL,
	risk_amount REAL NOT NULL,
	pip_value REAL NOT NULL,
	margin REAL NOT NULL,
	profit REAL NOT NULL,
	commission REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_calculations_time ON calculations(time);

CREATE TABLE IF NOT EXISTS rates (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	base TEXT NOT NULL,
	rates TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rates_time ON rates(time);
`
