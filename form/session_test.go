package form

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rustyeddy/poscalc/fixer"
	"github.com/rustyeddy/poscalc/journal"
	"github.com/rustyeddy/poscalc/market"
	"github.com/rustyeddy/poscalc/risk"
	"github.com/rustyeddy/poscalc/settings"
)

type stubSource struct {
	mu    sync.Mutex
	bases []string
	rates map[string]float64
	err   error
}

func (s *stubSource) Latest(ctx context.Context, base string, symbols ...string) (market.Rates, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bases = append(s.bases, base)
	if s.err != nil {
		return market.Rates{}, s.err
	}
	r := market.NewRates(base)
	for k, v := range s.rates {
		r.Values[k] = v
	}
	return r, nil
}

type memJournal struct {
	calcs []journal.Record
	rates []journal.RateSnapshot
	err   error
}

func (m *memJournal) RecordCalculation(r journal.Record) error {
	m.calcs = append(m.calcs, r)
	return m.err
}

func (m *memJournal) RecordRates(s journal.RateSnapshot) error {
	m.rates = append(m.rates, s)
	return m.err
}

func (m *memJournal) Close() error { return nil }

func filledSettings() *settings.Settings {
	s := settings.Default()
	s.Balance = "10000"
	s.Risk = "1"
	s.SLPips = "50"
	s.Base = "EUR"
	s.Rates = map[string]float64{"USD": 1.10, "JPY": 160}
	return s
}

func newSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestRecalculate(t *testing.T) {
	t.Parallel()

	j := &memJournal{}
	s := newSession(t, Options{Settings: filledSettings(), Journal: j})

	out, err := s.Recalculate()
	require.NoError(t, err)
	require.True(t, out.Computed)

	assert.Equal(t, "22000", out.Display.Units)
	assert.Equal(t, "0.22", out.Display.Lots)
	assert.Equal(t, "100.00 EUR", out.Display.RiskAmount)
	assert.Empty(t, out.Display.Margin)
	assert.Empty(t, out.Warnings)

	require.Len(t, j.calcs, 1)
	assert.Equal(t, "EURUSD", j.calcs[0].Instrument)
	assert.Equal(t, out, s.Last())
}

func TestRecalculate_IncompleteIsQuiet(t *testing.T) {
	t.Parallel()

	j := &memJournal{}
	s := newSession(t, Options{Journal: j})

	out, err := s.Recalculate()
	require.NoError(t, err)
	assert.False(t, out.Computed)
	assert.Empty(t, j.calcs)
}

func TestRecalculate_InvalidKeepsLastOutcome(t *testing.T) {
	t.Parallel()

	s := newSession(t, Options{Settings: filledSettings()})
	good, err := s.Recalculate()
	require.NoError(t, err)

	_, err = s.Set("balance", "lots")
	require.Error(t, err)
	assert.True(t, errors.Is(err, risk.ErrNotNumeric))
	assert.Equal(t, good, s.Last())
}

func TestRecalculate_ZeroStopLoss(t *testing.T) {
	t.Parallel()

	s := newSession(t, Options{Settings: filledSettings()})
	good, err := s.Recalculate()
	require.NoError(t, err)

	_, err = s.Set("slpips", "0")
	assert.True(t, errors.Is(err, risk.ErrInvalidStopLoss))
	assert.Equal(t, good, s.Last())
}

func TestRecalculate_Policy(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	s := newSession(t, Options{
		Settings: filledSettings(),
		Policy:   risk.Policy{MaxRiskPct: 0.5},
		Logger:   zap.New(core),
	})
	out, err := s.Recalculate()
	require.NoError(t, err)
	require.Len(t, out.Violations, 1)
	assert.Equal(t, "RISK_TOO_HIGH", out.Violations[0].Code)
	assert.Equal(t, "22000", out.Display.Units, "position still reported")
	assert.Equal(t, 1, logs.FilterMessage("policy_exceeded").Len())

	_, err = s.Set("risk", "0.5")
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("policy_exceeded").Len(), "within limits")
}

func TestSet(t *testing.T) {
	t.Parallel()

	s := newSession(t, Options{Settings: filledSettings()})

	out, err := s.Set("marginratio", "30")
	require.NoError(t, err)
	assert.False(t, out.NeedsRefresh)
	assert.Equal(t, "733.33 EUR", out.Display.Margin)

	out, err = s.Set("currency", "usd")
	require.NoError(t, err)
	assert.True(t, out.NeedsRefresh)
	assert.Equal(t, "none", out.Display.Side)

	_, err = s.Set("leverage", "50")
	assert.Error(t, err)
}

func TestSet_UnlistedWarnings(t *testing.T) {
	t.Parallel()

	s := newSession(t, Options{Settings: filledSettings()})

	out, err := s.Set("instrument", "eur/usd")
	require.NoError(t, err)
	assert.Empty(t, out.Warnings)

	out, err = s.Set("instrument", "EURTRY")
	require.NoError(t, err)
	assert.Contains(t, out.Warnings, "EURTRY is not a listed instrument")

	out, _ = s.Set("currency", "SEK")
	assert.Contains(t, out.Warnings, "SEK is not a listed account currency")
}

func TestEdit_SingleJournalRow(t *testing.T) {
	t.Parallel()

	j := &memJournal{}
	s := newSession(t, Options{Settings: filledSettings(), Journal: j})

	for field, value := range map[string]string{"balance": "20000", "risk": "2", "slpips": "40"} {
		refresh, warning, err := s.Edit(field, value)
		require.NoError(t, err)
		assert.False(t, refresh)
		assert.Empty(t, warning)
	}
	assert.Empty(t, j.calcs)

	out, err := s.Recalculate()
	require.NoError(t, err)
	assert.Equal(t, "110000", out.Display.Units)
	require.Len(t, j.calcs, 1)
	assert.Equal(t, 20000.0, j.calcs[0].Balance)

	_, _, err = s.Edit("leverage", "50")
	assert.Error(t, err)
}

func TestEdit_CurrencyThenUpdateRates(t *testing.T) {
	t.Parallel()

	src := &stubSource{rates: map[string]float64{"EUR": 0.90909, "JPY": 145.45}}
	j := &memJournal{}
	s := newSession(t, Options{Settings: filledSettings(), Source: src, Journal: j})

	refresh, warning, err := s.Edit("currency", "usd")
	require.NoError(t, err)
	assert.True(t, refresh)
	assert.Empty(t, warning)

	_, warning, err = s.Edit("instrument", "EURTRY")
	require.NoError(t, err)
	assert.Equal(t, "EURTRY is not a listed instrument", warning)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.UpdateRates(ctx))
	assert.Equal(t, []string{"USD"}, src.bases)
	require.Len(t, j.rates, 1)
	assert.Empty(t, j.calcs)

	_, rates := s.Snapshot()
	assert.Equal(t, "USD", rates.Base)
	assert.Equal(t, 145.45, rates.Values["JPY"])
}

func TestPreview_NoSideEffects(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	j := &memJournal{}
	s := newSession(t, Options{SettingsPath: path, Settings: filledSettings(), Journal: j})

	out, err := s.Preview()
	require.NoError(t, err)
	assert.Equal(t, "22000", out.Display.Units)
	assert.Equal(t, out, s.Last())
	assert.Empty(t, j.calcs)

	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRecalculatePersists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, settings.Save(path, filledSettings()))

	s := newSession(t, Options{SettingsPath: path})
	_, err := s.Set("risk", "2")
	require.NoError(t, err)

	saved, warnings, err := settings.Load(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "2", saved.Risk)
	assert.Equal(t, "EUR", saved.Base)
	assert.Equal(t, 1.10, saved.Rates["USD"])
}

func TestNew_MissingSettingsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	s := newSession(t, Options{SettingsPath: path})

	form, rates := s.Snapshot()
	assert.Equal(t, "EUR", form.Currency)
	assert.Equal(t, "EUR", rates.Base)
	assert.Equal(t, 0, rates.Len())

	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "nothing written until a recalculation")
}

func TestNew_LegacyRatesWithoutBase(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	body := `{"currency":"EUR","instrument":"EURJPY","balance":"10000","risk":"1","slpips":"50","rates":[{"JPY":160}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	s := newSession(t, Options{SettingsPath: path})
	out, err := s.Recalculate()
	require.NoError(t, err)
	assert.Empty(t, out.Warnings)
	assert.InDelta(t, 160.0, out.Result.QuoteRate, 1e-9)
}

func TestRefreshAndWait(t *testing.T) {
	t.Parallel()

	src := &stubSource{rates: map[string]float64{"USD": 1.25, "CHF": 0.95}}
	j := &memJournal{}
	s := newSession(t, Options{Settings: filledSettings(), Source: src, Journal: j})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, err := s.RefreshAndWait(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"EUR"}, src.bases)
	assert.Equal(t, "1.25000", out.Display.QuoteRate)

	_, rates := s.Snapshot()
	assert.Equal(t, 1.25, rates.Values["USD"], "updated in place")
	assert.Equal(t, 160.0, rates.Values["JPY"], "kept")
	assert.Equal(t, 0.95, rates.Values["CHF"], "added")
	require.Len(t, j.rates, 1)
	assert.Equal(t, "EUR", j.rates[0].Base)
}

func TestApply_ErrorLeavesRatesAlone(t *testing.T) {
	t.Parallel()

	src := &stubSource{err: fixer.ErrAPIError}
	s := newSession(t, Options{Settings: filledSettings(), Source: src})
	_, before := s.Snapshot()

	_, err := s.RefreshAndWait(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fixer.ErrAPIError))

	_, after := s.Snapshot()
	assert.Equal(t, before, after)
}

func TestApply_StaleIsDiscarded(t *testing.T) {
	t.Parallel()

	src := &stubSource{rates: map[string]float64{"USD": 9}}
	s := newSession(t, Options{Settings: filledSettings(), Source: src})

	first, err := s.Refresh(context.Background())
	require.NoError(t, err)
	old := <-first

	second, err := s.Refresh(context.Background())
	require.NoError(t, err)

	_, err = s.Apply(old)
	assert.True(t, errors.Is(err, ErrStale))
	_, rates := s.Snapshot()
	assert.Equal(t, 1.10, rates.Values["USD"])

	_, err = s.Apply(<-second)
	require.NoError(t, err)
	_, rates = s.Snapshot()
	assert.Equal(t, 9.0, rates.Values["USD"])
}

func TestRefresh_NoSource(t *testing.T) {
	t.Parallel()

	s := newSession(t, Options{Settings: filledSettings()})
	_, err := s.Refresh(context.Background())
	assert.Error(t, err)
}

func TestJournalFailureDoesNotFailCalculation(t *testing.T) {
	t.Parallel()

	s := newSession(t, Options{Settings: filledSettings(), Journal: &memJournal{err: errors.New("disk full")}})
	out, err := s.Recalculate()
	require.NoError(t, err)
	assert.True(t, out.Computed)
}

func TestReset(t *testing.T) {
	t.Parallel()

	s := newSession(t, Options{Settings: filledSettings()})
	out, err := s.Reset()
	require.NoError(t, err)
	assert.False(t, out.Computed)

	form, rates := s.Snapshot()
	assert.Equal(t, settings.Default().Balance, form.Balance)
	assert.Equal(t, 0, rates.Len())
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	s := newSession(t, Options{Settings: filledSettings()})
	form, rates := s.Snapshot()
	form.Balance = "1"
	rates.Values["USD"] = 99

	form2, rates2 := s.Snapshot()
	assert.Equal(t, "10000", form2.Balance)
	assert.Equal(t, 1.10, rates2.Values["USD"])
}
