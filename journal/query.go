package journal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

const calculationColumns = `id, time, account_currency, instrument, balance, risk_percent, stop_loss_pips,
	mode, target_pips, side, quote_rate, units, lots, risk_amount, pip_value, margin, profit, commission`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var r Record
	err := s.Scan(
		&r.ID, &r.Time, &r.AccountCurrency, &r.Instrument, &r.Balance, &r.RiskPercent, &r.StopLossPips,
		&r.Mode, &r.TargetPips, &r.Side, &r.QuoteRate, &r.Units, &r.Lots, &r.RiskAmount, &r.PipValue,
		&r.Margin, &r.Profit, &r.Commission,
	)
	r.Time = r.Time.UTC()
	return r, err
}

// GetCalculation returns a single calculation by ID.
func (j *SQLite) GetCalculation(id string) (Record, error) {
	row := j.db.QueryRow(`SELECT `+calculationColumns+` FROM calculations WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("calculation %q: %w", id, ErrNotFound)
		}
		return Record{}, err
	}
	return rec, nil
}

// ListCalculationsBetween returns calculations made within [start, end), oldest first.
func (j *SQLite) ListCalculationsBetween(start, end time.Time) ([]Record, error) {
	rows, err := j.db.Query(`SELECT `+calculationColumns+` FROM calculations
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, id ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestRates returns the most recent snapshot for base.
func (j *SQLite) LatestRates(base string) (RateSnapshot, error) {
	var s RateSnapshot
	var values string

	row := j.db.QueryRow(`
		SELECT id, time, base, rates
		FROM rates
		WHERE base = ?
		ORDER BY time DESC, id DESC
		LIMIT 1`, base)

	if err := row.Scan(&s.ID, &s.Time, &s.Base, &values); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RateSnapshot{}, fmt.Errorf("rates for %q: %w", base, ErrNotFound)
		}
		return RateSnapshot{}, err
	}
	if err := json.Unmarshal([]byte(values), &s.Rates); err != nil {
		return RateSnapshot{}, fmt.Errorf("decode rates: %w", err)
	}
	s.Time = s.Time.UTC()
	return s, nil
}
