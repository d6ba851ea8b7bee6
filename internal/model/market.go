package model

import "strings"

// DataSourceSimulated tags snapshots generated by the agent when no live feed answered.
const DataSourceSimulated = "simulated"

// NormalizeSymbol returns the canonical form of a ticker: trimmed and uppercase.
func NormalizeSymbol(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// HistoricalSeries is the column-oriented price history as served by the agent.
type HistoricalSeries struct {
	Date   []string  `json:"Date"`
	Open   []float64 `json:"Open"`
	High   []float64 `json:"High"`
	Low    []float64 `json:"Low"`
	Close  []float64 `json:"Close"`
	Volume []float64 `json:"Volume"`
}

// Len returns the number of complete rows, i.e. the length of the shortest column.
func (h HistoricalSeries) Len() int {
	n := len(h.Date)
	for _, l := range []int{len(h.Open), len(h.High), len(h.Low), len(h.Close), len(h.Volume)} {
		if l < n {
			n = l
		}
	}
	return n
}

// Bar returns row i as a bar. The caller must keep i below Len().
func (h HistoricalSeries) Bar(i int) OHLCV {
	return OHLCV{
		Time:   h.Date[i],
		Open:   h.Open[i],
		High:   h.High[i],
		Low:    h.Low[i],
		Close:  h.Close[i],
		Volume: h.Volume[i],
	}
}

// MarketSnapshot is the latest known market-data record for one symbol.
type MarketSnapshot struct {
	Symbol        string           `json:"symbol"`
	CurrentPrice  float64          `json:"current_price"`
	PreviousClose float64          `json:"previous_close"`
	ChangePercent float64          `json:"change_percent"`
	Volume        float64          `json:"volume"`
	High52w       float64          `json:"high_52w"`
	Low52w        float64          `json:"low_52w"`
	CompanyName   string           `json:"company_name"`
	Sector        string           `json:"sector"`
	History       HistoricalSeries `json:"historical_data"`
	DataSource    string           `json:"data_source,omitempty"`
}

// IsSimulated reports whether the agent fell back to generated data.
func (s *MarketSnapshot) IsSimulated() bool {
	return s.DataSource == DataSourceSimulated
}

// Bars zips the historical columns into rows.
func (s *MarketSnapshot) Bars() []OHLCV {
	n := s.History.Len()
	bars := make([]OHLCV, n)
	for i := 0; i < n; i++ {
		bars[i] = s.History.Bar(i)
	}
	return bars
}

// ChartPoint is one row of a chart window.
type ChartPoint struct {
	Label  string  `json:"label"`
	Time   string  `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}
