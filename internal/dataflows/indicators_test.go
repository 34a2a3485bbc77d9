package dataflows

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candlesFromCloses(closes ...float64) []*MarketData {
	out := make([]*MarketData, len(closes))
	day := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = &MarketData{
			Symbol: "TEST",
			Date:   day.AddDate(0, 0, i),
			Open:   decimal.NewFromFloat(c),
			High:   decimal.NewFromFloat(c + 1),
			Low:    decimal.NewFromFloat(c - 1),
			Close:  decimal.NewFromFloat(c),
			Volume: 1000,
		}
	}
	return out
}

func TestComputeIndicatorRejectsUnknownName(t *testing.T) {
	_, err := ComputeIndicator("close_42_sma", candlesFromCloses(1, 2, 3))
	assert.Error(t, err)
}

func TestSMA(t *testing.T) {
	got := sma([]float64{1, 2, 3, 4, 5}, 3)
	require.Len(t, got, 5)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 2.0, got[2], 1e-9)
	assert.InDelta(t, 3.0, got[3], 1e-9)
	assert.InDelta(t, 4.0, got[4], 1e-9)
}

func TestEMAConvergesTowardLatest(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 10
	}
	values[49] = 20

	got := ema(values, 10)
	require.Len(t, got, 50)
	assert.InDelta(t, 10.0, got[48], 1e-9)
	assert.Greater(t, got[49], 10.0)
	assert.Less(t, got[49], 20.0)
}

func TestRSIBounds(t *testing.T) {
	// Strictly rising closes push RSI to the top of its range.
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i + 1)
	}
	got := rsi(values, 14)
	last := got[len(got)-1]
	require.False(t, math.IsNaN(last))
	assert.Greater(t, last, 70.0)
	assert.LessOrEqual(t, last, 100.0)
}

func TestBollingerBandsOrdering(t *testing.T) {
	values := []float64{10, 11, 12, 11, 10, 11, 12, 13, 12, 11, 10, 11, 12, 13, 14, 13, 12, 11, 12, 13, 14}
	mid, ub, lb := bollinger(values, 20, 2)

	last := len(values) - 1
	require.False(t, math.IsNaN(mid[last]))
	assert.Greater(t, ub[last], mid[last])
	assert.Less(t, lb[last], mid[last])
}

func TestVWMAFlatVolumeMatchesSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}
	volumes := []float64{100, 100, 100, 100, 100, 100}

	v := vwma(closes, volumes, 3)
	s := sma(closes, 3)
	for i := range closes {
		if math.IsNaN(s[i]) {
			assert.True(t, math.IsNaN(v[i]))
			continue
		}
		assert.InDelta(t, s[i], v[i], 1e-9)
	}
}

func TestIndicatorReportHandlesShortSeries(t *testing.T) {
	report := IndicatorReport("TEST", candlesFromCloses(1, 2, 3), []string{"close_50_sma", "bogus"})

	assert.Contains(t, report, "insufficient data")
	assert.Contains(t, report, "bogus")
	assert.Contains(t, report, "unsupported indicator")
}

func TestIndicatorReportIncludesDescription(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	report := IndicatorReport("TEST", candlesFromCloses(closes...), []string{"close_50_sma"})

	assert.Contains(t, report, "close_50_sma")
	assert.Contains(t, report, "50 SMA")
}
