package journal

import (
	"encoding/csv"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	calculationHeader = []string{
		"id", "time", "account_currency", "instrument", "balance", "risk_percent", "stop_loss_pips",
		"mode", "target_pips", "side", "quote_rate", "units", "lots", "risk_amount", "pip_value",
		"margin", "profit", "commission",
	}
	ratesHeader = []string{"id", "time", "base", "rates"}
)

// CSV appends to two files. Headers are written when a file is new or empty.
type CSV struct {
	calcs  *csv.Writer
	rates  *csv.Writer
	cf, rf *os.File
}

func NewCSV(calculationsPath, ratesPath string) (*CSV, error) {
	cf, cw, err := openCSV(calculationsPath, calculationHeader)
	if err != nil {
		return nil, err
	}
	rf, rw, err := openCSV(ratesPath, ratesHeader)
	if err != nil {
		_ = cf.Close()
		return nil, err
	}
	return &CSV{calcs: cw, rates: rw, cf: cf, rf: rf}, nil
}

func openCSV(path string, header []string) (*os.File, *csv.Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			_ = f.Close()
			return nil, nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return nil, nil, err
		}
	}
	return f, w, nil
}

func (j *CSV) RecordCalculation(r Record) error {
	err := j.calcs.Write([]string{
		r.ID,
		r.Time.UTC().Format(time.RFC3339),
		r.AccountCurrency,
		r.Instrument,
		f(r.Balance),
		f(r.RiskPercent),
		f(r.StopLossPips),
		r.Mode,
		f(r.TargetPips),
		r.Side,
		f(r.QuoteRate),
		f(r.Units),
		f(r.Lots),
		f(r.RiskAmount),
		f(r.PipValue),
		f(r.Margin),
		f(r.Profit),
		f(r.Commission),
	})
	if err != nil {
		return err
	}
	j.calcs.Flush()
	return j.calcs.Error()
}

func (j *CSV) RecordRates(s RateSnapshot) error {
	err := j.rates.Write([]string{
		s.ID,
		s.Time.UTC().Format(time.RFC3339),
		s.Base,
		encodeRates(s.Rates),
	})
	if err != nil {
		return err
	}
	j.rates.Flush()
	return j.rates.Error()
}

func (j *CSV) Close() error {
	j.calcs.Flush()
	if err := j.calcs.Error(); err != nil {
		return err
	}
	j.rates.Flush()
	if err := j.rates.Error(); err != nil {
		return err
	}

	if err := j.cf.Close(); err != nil {
		return err
	}
	return j.rf.Close()
}

// encodeRates renders USD=1.1;JPY=160 in code order.
func encodeRates(m map[string]float64) string {
	codes := make([]string, 0, len(m))
	for k := range m {
		codes = append(codes, k)
	}
	sort.Strings(codes)

	parts := make([]string, len(codes))
	for i, k := range codes {
		parts[i] = k + "=" + strconv.FormatFloat(m[k], 'f', -1, 64)
	}
	return strings.Join(parts, ";")
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
