// Package chart projects market snapshots into display series.
package chart

import (
	"iter"
	"strings"

	"ScalpDeck/internal/calculator"
	"ScalpDeck/internal/model"
)

// DefaultWindow is the number of trailing points shown.
const DefaultWindow = 100

// Points yields every historical row of snap in timestamp order. The
// sequence reads the snapshot on each iteration and may be ranged over
// any number of times.
func Points(snap *model.MarketSnapshot) iter.Seq[model.ChartPoint] {
	return func(yield func(model.ChartPoint) bool) {
		if snap == nil {
			return
		}
		h := snap.History
		for i := range h.Len() {
			if !yield(point(h.Bar(i))) {
				return
			}
		}
	}
}

// Window returns the last n points of snap in original order. A nil
// snapshot yields an empty, non-nil slice.
func Window(snap *model.MarketSnapshot, n int) []model.ChartPoint {
	if n <= 0 {
		n = DefaultWindow
	}
	if snap == nil {
		return []model.ChartPoint{}
	}
	skip := snap.History.Len() - n
	out := make([]model.ChartPoint, 0, min(n, snap.History.Len()))
	i := 0
	for p := range Points(snap) {
		if i >= skip {
			out = append(out, p)
		}
		i++
	}
	return out
}

func point(b model.OHLCV) model.ChartPoint {
	return model.ChartPoint{
		Label:  Label(b.Time),
		Time:   b.Time,
		Open:   b.Open,
		High:   b.High,
		Low:    b.Low,
		Price:  b.Close,
		Volume: b.Volume,
	}
}

// Label shortens an intraday timestamp to its time of day. Daily dates
// are returned unchanged.
func Label(ts string) string {
	if _, clock, ok := strings.Cut(ts, " "); ok {
		return clock
	}
	return ts
}

// Summary describes a chart window.
type Summary struct {
	Points   int     `json:"points"`
	Last     float64 `json:"last"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Position float64 `json:"position"`
	SMA20    float64 `json:"sma20,omitempty"`
	RSI14    float64 `json:"rsi14"`
}

// Summarize computes window statistics; ok is false for an empty window.
func Summarize(points []model.ChartPoint) (s Summary, ok bool) {
	if len(points) == 0 {
		return Summary{}, false
	}
	high, low, err := calculator.Range(points)
	if err != nil {
		return Summary{}, false
	}
	closes := calculator.Closes(points)
	s = Summary{
		Points: len(points),
		Last:   closes[len(closes)-1],
		High:   high,
		Low:    low,
	}
	s.Position, _ = calculator.Position(s.Last, high, low)
	if sma, err := calculator.SMA(closes, 20); err == nil {
		s.SMA20 = sma
	}
	s.RSI14, _ = calculator.RSI(closes, 14)
	return s, true
}
