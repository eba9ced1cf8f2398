package ta

import "math"

// Indicators return NaN when the series is too short to compute them.

func SMA(closes []float64, n int) float64 {
	if len(closes) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}

// RSI uses simple averages of gains and losses over the last period deltas.
// A flat window (no losses) reads 100 when there were gains and 50 otherwise.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	gain /= float64(period)
	loss /= float64(period)
	if loss == 0 {
		if gain > 0 {
			return 100.0
		}
		return 50.0
	}
	rs := gain / loss
	return 100.0 - (100.0 / (1.0 + rs))
}

// EMA returns the full exponential moving average series, seeded with the first value.
func EMA(vals []float64, span int) []float64 {
	if len(vals) == 0 || span <= 0 {
		return nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(vals))
	out[0] = vals[0]
	for i := 1; i < len(vals); i++ {
		out[i] = vals[i]*alpha + out[i-1]*(1-alpha)
	}
	return out
}

// MACD returns the latest MACD line, signal line and histogram.
func MACD(closes []float64, short, long, signal int) (line, sig, hist float64) {
	nan := math.NaN()
	if short <= 0 || long <= 0 || signal <= 0 || len(closes) < long {
		return nan, nan, nan
	}
	fast := EMA(closes, short)
	slow := EMA(closes, long)
	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = fast[i] - slow[i]
	}
	sigs := EMA(macd, signal)
	line = macd[len(macd)-1]
	sig = sigs[len(sigs)-1]
	return line, sig, line - sig
}
