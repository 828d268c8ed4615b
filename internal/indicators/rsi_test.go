package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braxtondiggs/chansey-go/internal/errors"
)

func TestRSI_Calculate_RangeAndWarmup(t *testing.T) {
	rsi := NewRSI()

	values := []float64{100, 102, 101, 103, 105, 104, 106, 108, 107, 109, 111, 110, 112, 114, 113, 115, 117, 116, 118, 120}
	res, err := rsi.Calculate(Options{Values: values, Period: 14})
	require.NoError(t, err)

	for i := 0; i < 14; i++ {
		assert.True(t, math.IsNaN(res.Values[i]), "index %d should be warming up", i)
	}
	for i := 14; i < len(values); i++ {
		assert.GreaterOrEqual(t, res.Values[i], 0.0)
		assert.LessOrEqual(t, res.Values[i], 100.0)
	}
	assert.Equal(t, len(values)-14, res.ValidCount)
}

func TestRSI_AllGainsIsHundred(t *testing.T) {
	rsi := NewRSI()

	res, err := rsi.Calculate(Options{Values: rampValues(20), Period: 14})
	require.NoError(t, err)

	// Monotonic gains leave the average loss at zero.
	assert.InDelta(t, 100.0, res.Values[19], 1e-9)
}

func TestRSI_FlatSeriesIsHundred(t *testing.T) {
	rsi := NewRSI()

	res, err := rsi.Calculate(Options{Values: flatValues(20, 100), Period: 14})
	require.NoError(t, err)

	// No change means zero loss, which resolves to 100 instead of 0/0.
	assert.InDelta(t, 100.0, res.Values[14], 1e-9)
}

func TestRSI_DecliningSeriesIsLow(t *testing.T) {
	rsi := NewRSI()

	values := make([]float64, 20)
	for i := range values {
		values[i] = 200 - float64(i)*2
	}
	res, err := rsi.Calculate(Options{Values: values, Period: 14})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, res.Values[19], 1e-9)
}

func TestRSI_Validate_NeedsPeriodPlusOne(t *testing.T) {
	rsi := NewRSI()

	err := rsi.Validate(Options{Values: rampValues(14), Period: 14})
	assert.Error(t, err)
	assert.True(t, errors.IsInsufficientData(err))

	assert.NoError(t, rsi.Validate(Options{Values: rampValues(15), Period: 14}))
}

func TestRSI_WarmupPeriod(t *testing.T) {
	rsi := NewRSI()
	assert.Equal(t, 14, rsi.WarmupPeriod(Options{Period: 14}))
}
