package journal

import (
	"testing"
	"time"

	"github.com/rustyeddy/poscalc/market"
	"github.com/rustyeddy/poscalc/pkg/id"
	"github.com/rustyeddy/poscalc/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(at time.Time) Record {
	return Record{
		ID:              id.At(at),
		Time:            at,
		AccountCurrency: "EUR",
		Instrument:      "EURUSD",
		Balance:         10000,
		RiskPercent:     2,
		StopLossPips:    10,
		Mode:            "tppips",
		TargetPips:      20,
		Side:            "ask",
		QuoteRate:       1.1,
		Units:           220000,
		Lots:            2.2,
		RiskAmount:      200,
		PipValue:        20,
		Margin:          7333.33,
		Profit:          400,
		Commission:      15.4,
	}
}

func TestNewRecord(t *testing.T) {
	t.Parallel()

	rates := market.NewRates("EUR")
	rates.Values["USD"] = 1.1

	in := risk.Inputs{
		AccountCurrency: "EUR",
		Pair:            market.Pair{Base: "EUR", Quote: "USD"},
		Balance:         10000,
		RiskPercent:     2,
		StopLossPips:    10,
		Target:          risk.TargetAtPips(20),
		Rates:           rates,
		Priorities:      market.DefaultPriorities(),
	}
	res, err := risk.Calculate(in)
	require.NoError(t, err)

	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.FixedZone("CET", 3600))
	rec := NewRecord(in, res, now)

	assert.Len(t, rec.ID, 26)
	assert.Equal(t, time.UTC, rec.Time.Location())
	assert.True(t, now.Equal(rec.Time))
	assert.Equal(t, "EURUSD", rec.Instrument)
	assert.Equal(t, "tppips", rec.Mode)
	assert.Equal(t, "ask", rec.Side)
	assert.InDelta(t, res.Units, rec.Units, 1e-9)
	assert.InDelta(t, 20.0, rec.TargetPips, 1e-9)
}

func TestNewRateSnapshotCopies(t *testing.T) {
	t.Parallel()

	rates := market.NewRates("EUR")
	rates.Values["USD"] = 1.1

	snap := NewRateSnapshot(rates, time.Now())
	rates.Values["USD"] = 2

	assert.Equal(t, "EUR", snap.Base)
	assert.Equal(t, 1.1, snap.Rates["USD"])
}

func TestNop(t *testing.T) {
	t.Parallel()

	var j Journal = Nop{}
	assert.NoError(t, j.RecordCalculation(Record{}))
	assert.NoError(t, j.RecordRates(RateSnapshot{}))
	assert.NoError(t, j.Close())
}
