package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braxtondiggs/chansey-go/internal/errors"
)

func TestSMA_Calculate(t *testing.T) {
	sma := NewSMA()

	res, err := sma.Calculate(Options{Values: []float64{1, 2, 3, 4, 5}, Period: 3})
	require.NoError(t, err)

	assert.True(t, math.IsNaN(res.Values[0]))
	assert.True(t, math.IsNaN(res.Values[1]))
	assert.InDelta(t, 2.0, res.Values[2], 1e-9)
	assert.InDelta(t, 3.0, res.Values[3], 1e-9)
	assert.InDelta(t, 4.0, res.Values[4], 1e-9)
	assert.Equal(t, 3, res.ValidCount)
}

func TestSMA_WarmupPeriod(t *testing.T) {
	sma := NewSMA()
	assert.Equal(t, 13, sma.WarmupPeriod(Options{Period: 14}))
}

func TestSMA_Validate_InsufficientData(t *testing.T) {
	sma := NewSMA()

	_, err := sma.Calculate(Options{Values: []float64{1, 2}, Period: 3})
	assert.Error(t, err)
	assert.True(t, errors.IsInsufficientData(err))
}

func TestSMA_Validate_BadPeriod(t *testing.T) {
	sma := NewSMA()

	err := sma.Validate(Options{Values: []float64{1, 2, 3}, Period: 0})
	assert.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestSMA_Validate_NonFiniteInput(t *testing.T) {
	sma := NewSMA()

	err := sma.Validate(Options{Values: []float64{1, math.NaN(), 3}, Period: 2})
	assert.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestEMA_Calculate_FlatSeries(t *testing.T) {
	ema := NewEMA()

	res, err := ema.Calculate(Options{Values: flatValues(10, 50), Period: 3})
	require.NoError(t, err)

	assert.True(t, math.IsNaN(res.Values[1]))
	for i := 2; i < 10; i++ {
		assert.InDelta(t, 50.0, res.Values[i], 1e-9)
	}
	assert.Equal(t, 8, res.ValidCount)
}

func TestEMA_Calculate_SeededWithSMA(t *testing.T) {
	ema := NewEMA()

	res, err := ema.Calculate(Options{Values: []float64{1, 2, 3, 4}, Period: 3})
	require.NoError(t, err)

	// Seed at index 2 is the plain average of the first three entries.
	assert.InDelta(t, 2.0, res.Values[2], 1e-9)
	// k = 2/(3+1) = 0.5, so next = 4*0.5 + 2*0.5.
	assert.InDelta(t, 3.0, res.Values[3], 1e-9)
}

func TestStdDev_Calculate(t *testing.T) {
	sd := NewStdDev()

	res, err := sd.Calculate(Options{Values: []float64{2, 4, 4, 4, 5, 5, 7, 9}, Period: 8})
	require.NoError(t, err)

	// Known population standard deviation of this series is exactly 2.
	assert.InDelta(t, 2.0, res.Values[7], 1e-9)
	assert.Equal(t, 1, res.ValidCount)
}

func TestStdDev_FlatSeriesIsZero(t *testing.T) {
	sd := NewStdDev()

	res, err := sd.Calculate(Options{Values: flatValues(6, 10), Period: 3})
	require.NoError(t, err)

	for i := 2; i < 6; i++ {
		assert.InDelta(t, 0.0, res.Values[i], 1e-9)
	}
}
