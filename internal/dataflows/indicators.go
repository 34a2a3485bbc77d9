package dataflows

import (
	"fmt"
	"math"
	"strings"
)

// IndicatorDescriptions documents every supported technical indicator; the
// market analyst prompt references these exact names when calling tools.
var IndicatorDescriptions = map[string]string{
	"close_50_sma":  "50 SMA: A medium-term trend indicator. Usage: Identify trend direction and serve as dynamic support/resistance. Tips: It lags price; combine with faster indicators for timely signals.",
	"close_200_sma": "200 SMA: A long-term trend benchmark. Usage: Confirm overall market trend and identify golden/death cross setups. Tips: It reacts slowly; best for strategic trend confirmation rather than frequent trading entries.",
	"close_10_ema":  "10 EMA: A responsive short-term average. Usage: Capture quick shifts in momentum and potential entry points. Tips: Prone to noise in choppy markets; use alongside longer averages for filtering false signals.",
	"vwma":          "VWMA: A moving average weighted by volume. Usage: Confirm trends by integrating price action with volume data. Tips: Watch for skewed results from volume spikes; use in combination with other volume analyses.",
	"macd":          "MACD: Computes momentum via differences of EMAs. Usage: Look for crossovers and divergence as signals of trend changes. Tips: Confirm with other indicators in low-volatility or sideways markets.",
	"macds":         "MACD Signal: An EMA smoothing of the MACD line. Usage: Use crossovers with the MACD line to trigger trades. Tips: Should be part of a broader strategy to avoid false positives.",
	"macdh":         "MACD Histogram: Shows the gap between the MACD line and its signal. Usage: Visualize momentum strength and spot divergence early. Tips: Can be volatile; complement with additional filters in fast-moving markets.",
	"rsi":           "RSI: Measures momentum to flag overbought/oversold conditions. Usage: Apply 70/30 thresholds and watch for divergence to signal reversals. Tips: In strong trends, RSI may remain extreme; always cross-check with trend analysis.",
	"boll":          "Bollinger Middle: A 20 SMA serving as the basis for Bollinger Bands. Usage: Acts as a dynamic benchmark for price movement. Tips: Combine with the upper and lower bands to effectively spot breakouts or reversals.",
	"boll_ub":       "Bollinger Upper Band: Typically 2 standard deviations above the middle line. Usage: Signals potential overbought conditions and breakout zones. Tips: Confirm signals with other tools; prices may ride the band in strong trends.",
	"boll_lb":       "Bollinger Lower Band: Typically 2 standard deviations below the middle line. Usage: Indicates potential oversold conditions. Tips: Use additional analysis to avoid false reversal signals.",
	"atr":           "ATR: Averages true range to measure volatility. Usage: Set stop-loss levels and adjust position sizes based on current market volatility. Tips: It's a reactive measure, so use it as part of a broader risk management strategy.",
}

// ComputeIndicator evaluates the named indicator on the candle series and
// returns its most recent values, newest last. Unknown names error so the
// tool surface stays a closed set.
func ComputeIndicator(name string, candles []*MarketData) ([]float64, error) {
	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i], _ = c.Close.Float64()
		highs[i], _ = c.High.Float64()
		lows[i], _ = c.Low.Float64()
		volumes[i] = float64(c.Volume)
	}

	switch name {
	case "close_50_sma":
		return sma(closes, 50), nil
	case "close_200_sma":
		return sma(closes, 200), nil
	case "close_10_ema":
		return ema(closes, 10), nil
	case "vwma":
		return vwma(closes, volumes, 20), nil
	case "macd":
		m, _, _ := macd(closes)
		return m, nil
	case "macds":
		_, s, _ := macd(closes)
		return s, nil
	case "macdh":
		_, _, h := macd(closes)
		return h, nil
	case "rsi":
		return rsi(closes, 14), nil
	case "boll":
		mid, _, _ := bollinger(closes, 20, 2)
		return mid, nil
	case "boll_ub":
		_, ub, _ := bollinger(closes, 20, 2)
		return ub, nil
	case "boll_lb":
		_, _, lb := bollinger(closes, 20, 2)
		return lb, nil
	case "atr":
		return atr(highs, lows, closes, 14), nil
	default:
		return nil, fmt.Errorf("unsupported indicator %q", name)
	}
}

// IndicatorReport renders the requested indicators as a markdown section.
func IndicatorReport(symbol string, candles []*MarketData, indicators []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s technical indicators (%d bars)\n\n", symbol, len(candles))
	for _, name := range indicators {
		values, err := ComputeIndicator(name, candles)
		if err != nil {
			fmt.Fprintf(&b, "- %s: %v\n", name, err)
			continue
		}
		latest := math.NaN()
		for i := len(values) - 1; i >= 0; i-- {
			if !math.IsNaN(values[i]) {
				latest = values[i]
				break
			}
		}
		if math.IsNaN(latest) {
			fmt.Fprintf(&b, "- %s: insufficient data (%d bars)\n", name, len(candles))
			continue
		}
		fmt.Fprintf(&b, "- %s: %.4f\n  %s\n", name, latest, IndicatorDescriptions[name])
	}
	return b.String()
}

// sma returns the n-period simple moving average, NaN where undefined.
func sma(values []float64, n int) []float64 {
	out := nanSlice(len(values))
	if n <= 0 || len(values) < n {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= n {
			sum -= values[i-n]
		}
		if i >= n-1 {
			out[i] = sum / float64(n)
		}
	}
	return out
}

func ema(values []float64, n int) []float64 {
	out := nanSlice(len(values))
	if n <= 0 || len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(n) + 1.0)
	prev := values[0]
	out[0] = prev
	for i := 1; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

func macd(closes []float64) (line, signal, hist []float64) {
	fast := ema(closes, 12)
	slow := ema(closes, 26)
	line = make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal = ema(line, 9)
	hist = make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - signal[i]
	}
	return line, signal, hist
}

func rsi(closes []float64, n int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) <= n {
		return out
	}
	var avgGain, avgLoss float64
	for i := 1; i <= n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(n)
	avgLoss /= float64(n)
	out[n] = rsiValue(avgGain, avgLoss)
	for i := n + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(n-1) + gain) / float64(n)
		avgLoss = (avgLoss*float64(n-1) + loss) / float64(n)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

func bollinger(closes []float64, n int, k float64) (mid, ub, lb []float64) {
	mid = sma(closes, n)
	ub = nanSlice(len(closes))
	lb = nanSlice(len(closes))
	for i := n - 1; i < len(closes); i++ {
		var variance float64
		for j := i - n + 1; j <= i; j++ {
			d := closes[j] - mid[i]
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(n))
		ub[i] = mid[i] + k*sd
		lb[i] = mid[i] - k*sd
	}
	return mid, ub, lb
}

func atr(highs, lows, closes []float64, n int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) <= n {
		return out
	}
	trs := make([]float64, len(closes))
	trs[0] = highs[0] - lows[0]
	for i := 1; i < len(closes); i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		trs[i] = math.Max(hl, math.Max(hc, lc))
	}
	var sum float64
	for i := 0; i <= n; i++ {
		sum += trs[i]
	}
	prev := sum / float64(n+1)
	out[n] = prev
	for i := n + 1; i < len(closes); i++ {
		prev = (prev*float64(n-1) + trs[i]) / float64(n)
		out[i] = prev
	}
	return out
}

func vwma(closes, volumes []float64, n int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) < n {
		return out
	}
	for i := n - 1; i < len(closes); i++ {
		var pv, v float64
		for j := i - n + 1; j <= i; j++ {
			pv += closes[j] * volumes[j]
			v += volumes[j]
		}
		if v > 0 {
			out[i] = pv / v
		}
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
