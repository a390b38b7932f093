// Package form ties the calculator together: field edits, rate refreshes,
// recalculation, persistence and the journal.
package form

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/poscalc/fixer"
	"github.com/rustyeddy/poscalc/journal"
	"github.com/rustyeddy/poscalc/market"
	"github.com/rustyeddy/poscalc/risk"
	"github.com/rustyeddy/poscalc/settings"
)

// ErrStale is returned by Apply for a fetch result superseded by a newer
// request. The rate map is left alone.
var ErrStale = errors.New("stale rate result")

type Options struct {
	// SettingsPath is loaded by New and rewritten on every recalculation.
	// Empty disables persistence.
	SettingsPath string
	// Settings, when set, is used instead of loading SettingsPath.
	Settings *settings.Settings

	Source     fixer.RateSource
	Journal    journal.Journal
	Priorities market.Priorities
	Policy     risk.Policy
	Logger     *zap.Logger
	Now        func() time.Time
}

// Outcome is what the user sees after a recalculation. Computed is false
// when the form is still missing a required field.
type Outcome struct {
	Computed     bool
	Display      risk.Display
	Result       risk.Result
	Warnings     []string
	Violations   []risk.Violation
	NeedsRefresh bool
}

// Session owns the form text and the rate map. Its methods must be called
// from a single goroutine.
type Session struct {
	path     string
	settings *settings.Settings
	rates    market.Rates
	prio     market.Priorities
	policy   risk.Policy

	fetcher *fixer.Fetcher
	journal journal.Journal
	log     *zap.Logger
	now     func() time.Time

	last Outcome
}

// New loads the settings and seeds the rate map from them. A missing or
// unreadable settings file is logged and the defaults are used.
func New(opts Options) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		path:    opts.SettingsPath,
		prio:    opts.Priorities,
		policy:  opts.Policy,
		journal: opts.Journal,
		log:     log,
		now:     opts.Now,
	}
	if s.prio.Len() == 0 {
		s.prio = market.DefaultPriorities()
	}
	if s.journal == nil {
		s.journal = journal.Nop{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.Source != nil {
		s.fetcher = fixer.NewFetcher(opts.Source, log)
	}

	switch {
	case opts.Settings != nil:
		s.settings = opts.Settings.Clone()
	case s.path != "":
		loaded, warnings, err := settings.Load(s.path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Info("settings_missing", zap.String("path", s.path))
		case err != nil:
			log.Warn("settings_unreadable", zap.String("path", s.path), zap.Error(err))
		}
		for _, w := range warnings {
			log.Warn("settings_key_skipped", zap.String("path", s.path), zap.String("detail", w))
		}
		s.settings = loaded
	default:
		s.settings = settings.Default()
	}

	s.rates = s.settings.MarketRates()
	if s.rates.Base == "" {
		// Older files stored rates without their base; they were always
		// fetched for the account currency.
		s.rates.Base = strings.ToUpper(s.settings.Currency)
	}
	return s, nil
}

// Set edits one field and recalculates. Changing the account currency
// sets NeedsRefresh since the rate map is keyed on it.
func (s *Session) Set(field, value string) (Outcome, error) {
	refresh, warning, err := s.Edit(field, value)
	if err != nil {
		return Outcome{}, err
	}

	out, err := s.Recalculate()
	out.NeedsRefresh = refresh
	if warning != "" {
		out.Warnings = append(out.Warnings, warning)
	}
	return out, err
}

// Edit changes one field without recalculating, so several edits can be
// followed by a single Recalculate. It reports whether the account
// currency changed and any unlisted-value warning.
func (s *Session) Edit(field, value string) (needsRefresh bool, warning string, err error) {
	before := s.settings.Currency
	if err := s.settings.Set(field, value); err != nil {
		return false, "", err
	}
	return !strings.EqualFold(before, s.settings.Currency), unlisted(field, value), nil
}

// unlisted flags an instrument or account currency outside the usual lists.
func unlisted(field, value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "instrument":
		if value != "" && !market.IsKnownInstrument(value) {
			return fmt.Sprintf("%s is not a listed instrument", value)
		}
	case "currency":
		if value != "" && !slices.Contains(market.AccountCurrencies, value) {
			return fmt.Sprintf("%s is not a listed account currency", value)
		}
	}
	return ""
}

// Recalculate persists the settings, then parses and computes the form.
// Each computed result is written to the journal. An incomplete form
// yields an empty Outcome and no error. Any other validation error is
// returned and the previous Outcome is kept.
func (s *Session) Recalculate() (Outcome, error) {
	var saveWarning string
	if err := s.persist(); err != nil {
		s.log.Warn("settings_save_failed", zap.String("path", s.path), zap.Error(err))
		saveWarning = fmt.Sprintf("settings not saved: %v", err)
	}

	out, in, err := s.compute()
	if saveWarning != "" {
		out.Warnings = append(out.Warnings, saveWarning)
	}
	if err != nil || !out.Computed {
		if err == nil {
			s.last = out
		}
		return out, err
	}

	rec := journal.NewRecord(in, out.Result, s.now())
	if err := s.journal.RecordCalculation(rec); err != nil {
		s.log.Warn("journal_write_failed", zap.String("id", rec.ID), zap.Error(err))
	}
	s.log.Debug("calculated",
		zap.String("id", rec.ID),
		zap.String("instrument", out.Result.Pair.String()),
		zap.String("currency", out.Result.AccountCurrency),
		zap.String("side", out.Result.Side.String()),
		zap.Float64("units", out.Result.Units),
		zap.Float64("lots", out.Result.Lots),
		zap.Int("warnings", len(out.Warnings)),
		zap.Int("violations", len(out.Violations)),
	)

	s.last = out
	return out, nil
}

// Preview computes the form as it stands. Nothing is saved or journaled.
func (s *Session) Preview() (Outcome, error) {
	out, _, err := s.compute()
	if err == nil {
		s.last = out
	}
	return out, err
}

func (s *Session) compute() (Outcome, risk.Inputs, error) {
	in, warnings, err := risk.ParseForm(s.settings.Form(), s.rates, s.prio)
	if errors.Is(err, risk.ErrIncomplete) {
		return Outcome{Warnings: warnings}, in, nil
	}
	if err != nil {
		return Outcome{Warnings: warnings}, in, err
	}

	res, err := risk.Calculate(in)
	if err != nil {
		return Outcome{Warnings: warnings}, in, err
	}

	out := Outcome{
		Computed: true,
		Display:  risk.Format(res),
		Result:   res,
		Warnings: append(warnings, res.Warnings...),
	}
	if s.policy.Enabled() {
		d := risk.Evaluate(s.policy, in, res)
		out.Violations = d.Violations
		if !d.Allowed {
			s.log.Info("policy_exceeded",
				zap.String("instrument", res.Pair.String()),
				zap.Int("violations", len(d.Violations)),
			)
		}
	}
	return out, in, nil
}

func (s *Session) persist() error {
	if s.path == "" {
		return nil
	}
	s.settings.SetRates(s.rates)
	return settings.Save(s.path, s.settings)
}

// Refresh starts a rate fetch for the account currency. Feed the result
// to Apply.
func (s *Session) Refresh(ctx context.Context) (<-chan fixer.Result, error) {
	if s.fetcher == nil {
		return nil, errors.New("no rate source configured")
	}
	base := strings.ToUpper(strings.TrimSpace(s.settings.Currency))
	if len(base) != 3 {
		return nil, &risk.FieldError{Field: "currency", Value: s.settings.Currency, Err: risk.ErrInvalidCurrency}
	}
	return s.fetcher.FetchLatest(ctx, base), nil
}

// Apply merges a fetch result into the rate map and recalculates. Stale
// results return ErrStale and failed ones their error; neither touches
// the rate map.
func (s *Session) Apply(r fixer.Result) (Outcome, error) {
	if err := s.merge(r); err != nil {
		return Outcome{}, err
	}
	return s.Recalculate()
}

func (s *Session) merge(r fixer.Result) error {
	if s.fetcher != nil && s.fetcher.IsStale(r) {
		s.log.Debug("rates_stale_discarded", zap.Uint64("seq", r.Seq), zap.String("base", r.Base))
		return ErrStale
	}
	if r.Err != nil {
		return fmt.Errorf("refresh rates for %s: %w", r.Base, r.Err)
	}

	s.rates.Merge(r.Rates)
	snap := journal.NewRateSnapshot(s.rates, s.now())
	if err := s.journal.RecordRates(snap); err != nil {
		s.log.Warn("journal_write_failed", zap.String("id", snap.ID), zap.Error(err))
	}
	s.log.Info("rates_applied",
		zap.Uint64("seq", r.Seq),
		zap.String("base", s.rates.Base),
		zap.Int("count", s.rates.Len()),
	)
	return nil
}

// UpdateRates fetches rates for the account currency and merges them
// without recalculating.
func (s *Session) UpdateRates(ctx context.Context) error {
	ch, err := s.Refresh(ctx)
	if err != nil {
		return err
	}
	select {
	case r, ok := <-ch:
		if !ok {
			return errors.New("rate fetch ended without a result")
		}
		return s.merge(r)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RefreshAndWait is UpdateRates followed by Recalculate.
func (s *Session) RefreshAndWait(ctx context.Context) (Outcome, error) {
	if err := s.UpdateRates(ctx); err != nil {
		return Outcome{}, err
	}
	return s.Recalculate()
}

// Reset restores the default form and clears the rate map.
func (s *Session) Reset() (Outcome, error) {
	s.settings = settings.Default()
	s.rates = market.NewRates(s.settings.Currency)
	return s.Recalculate()
}

// Snapshot returns copies of the form state and the rate map.
func (s *Session) Snapshot() (*settings.Settings, market.Rates) {
	c := s.settings.Clone()
	c.SetRates(s.rates)
	return c, s.rates.Clone()
}

// Last is the most recent Outcome.
func (s *Session) Last() Outcome {
	return s.last
}

// Path is the settings file, empty when not persisted.
func (s *Session) Path() string {
	return s.path
}

// Close cancels any fetch in flight.
func (s *Session) Close() {
	if s.fetcher != nil {
		s.fetcher.Close()
	}
}
