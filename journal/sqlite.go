package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
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
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordCalculation(r Record) error {
	_, err := j.db.Exec(`
		INSERT INTO calculations
		(id, time, account_currency, instrument, balance, risk_percent, stop_loss_pips, mode, target_pips,
		 side, quote_rate, units, lots, risk_amount, pip_value, margin, profit, commission)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Time.UTC(), r.AccountCurrency, r.Instrument, r.Balance, r.RiskPercent, r.StopLossPips,
		r.Mode, r.TargetPips, r.Side, r.QuoteRate, r.Units, r.Lots, r.RiskAmount, r.PipValue,
		r.Margin, r.Profit, r.Commission,
	)
	return err
}

func (j *SQLite) RecordRates(s RateSnapshot) error {
	values, err := json.Marshal(s.Rates)
	if err != nil {
		return fmt.Errorf("encode rates: %w", err)
	}
	_, err = j.db.Exec(`
		INSERT INTO rates (id, time, base, rates)
		VALUES (?, ?, ?, ?)`,
		s.ID, s.Time.UTC(), s.Base, string(values),
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
