package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCalculationOrg(t *testing.T) {
	t.Parallel()

	rec := sampleRecord(time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC))
	rec.ID = "01HSABCDEFGHJKMNPQRSTVWXYZ"

	result := FormatCalculationOrg(rec)

	assert.True(t, strings.HasPrefix(result, "** Calc: EURUSD EUR (01HSABCD)\n"))
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":ID: 01HSABCDEFGHJKMNPQRSTVWXYZ")
	assert.Contains(t, result, ":TIME: 2024-03-15T10:30:45Z")
	assert.Contains(t, result, ":UNITS: 220000")
	assert.Contains(t, result, ":LOTS: 2.20")
	assert.Contains(t, result, ":TARGET_PIPS: 20")
	assert.Contains(t, result, ":MARGIN: 7333.33")
	assert.Contains(t, result, ":PROFIT: 400.00")
	assert.Contains(t, result, ":END:")
	assert.Contains(t, result, "*** Notes")
}

func TestFormatCalculationOrgOmitsUnsetFields(t *testing.T) {
	t.Parallel()

	rec := sampleRecord(time.Now())
	rec.ID = "short"
	rec.TargetPips = 0
	rec.Margin = 0
	rec.Profit = 0

	result := FormatCalculationOrg(rec)
	assert.Contains(t, result, "(short)")
	assert.NotContains(t, result, ":TARGET_PIPS:")
	assert.NotContains(t, result, ":MARGIN:")
	assert.NotContains(t, result, ":PROFIT:")
}

func TestFormatCalculationsOrg(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FormatCalculationsOrg(nil))

	a := sampleRecord(time.Now())
	b := sampleRecord(time.Now())
	out := FormatCalculationsOrg([]Record{a, b})
	assert.Equal(t, 2, strings.Count(out, "** Calc:"))
	assert.Contains(t, out, ":END:\n\n*** Notes\n- \n\n\n** Calc:")
}
