package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Metric is a numeric value that may be explicitly unavailable. A zero
// value with Valid set is a real zero; Valid false means the source had
// no value. Unavailable metrics serialize as JSON null.
type Metric struct {
	Value float64
	Valid bool
}

// Num creates an available metric
func Num(value float64) Metric {
	return Metric{Value: value, Valid: true}
}

// Unavailable creates an explicitly missing metric
func Unavailable() Metric {
	return Metric{}
}

// Float returns the value and whether it is available
func (m Metric) Float() (float64, bool) {
	return m.Value, m.Valid
}

// String renders the value for prompts and reports; missing values
// render as "N/A".
func (m Metric) String() string {
	if !m.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

// MarshalJSON emits the value, or null when unavailable.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts a number, a numeric string, "N/A", or null.
// Market data feeds mix all four freely.
func (m *Metric) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*m = Metric{}
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*m = Num(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("metric must be a number, string or null: %s", trimmed)
	}

	str = strings.TrimSpace(str)
	if str == "" || strings.EqualFold(str, "n/a") || strings.EqualFold(str, "na") || str == "-" {
		*m = Metric{}
		return nil
	}

	num, err := strconv.ParseFloat(str, 64)
	if err != nil {
		*m = Metric{}
		return nil
	}
	*m = Num(num)
	return nil
}

// PriceBar is one day of OHLCV price data.
type PriceBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close,omitempty"`
	Volume   int64     `json:"volume"`
}

// AnalystRatings holds broker recommendation counts and price targets.
type AnalystRatings struct {
	StrongBuy  int    `json:"strong_buy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strong_sell"`
	TargetHigh Metric `json:"target_high,omitempty"`
	TargetLow  Metric `json:"target_low,omitempty"`
	TargetMean Metric `json:"target_mean,omitempty"`
}

// Total returns the number of ratings across all buckets. Nil-safe.
func (r *AnalystRatings) Total() int {
	if r == nil {
		return 0
	}
	return r.StrongBuy + r.Buy + r.Hold + r.Sell + r.StrongSell
}

// NewsItem is one news article about a ticker.
type NewsItem struct {
	Headline    string    `json:"headline"`
	Summary     string    `json:"summary,omitempty"`
	Source      string    `json:"source,omitempty"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// DataSet is the complete input for one report run: everything fetched
// about a ticker over the analysis window. It is never modified after
// retrieval; any slice may be empty when a feed was unavailable.
type DataSet struct {
	Ticker       string            `json:"ticker"`
	Name         string            `json:"name,omitempty"`
	Sector       string            `json:"sector,omitempty"`
	Industry     string            `json:"industry,omitempty"`
	PriceHistory []PriceBar        `json:"price_history,omitempty"`
	Fundamentals map[string]Metric `json:"fundamentals,omitempty"`
	Ratings      *AnalystRatings   `json:"ratings,omitempty"`
	News         []NewsItem        `json:"news,omitempty"`
	Benchmarks   map[string]Metric `json:"benchmarks,omitempty"`
	WindowStart  time.Time         `json:"window_start,omitempty"`
	WindowEnd    time.Time         `json:"window_end,omitempty"`
	FetchedAt    time.Time         `json:"fetched_at"`
}

// Empty reports whether the dataset carries no usable data at all.
// Nil-safe.
func (d *DataSet) Empty() bool {
	if d == nil {
		return true
	}
	return len(d.PriceHistory) == 0 &&
		len(d.Fundamentals) == 0 &&
		d.Ratings.Total() == 0 &&
		len(d.News) == 0
}

// Validate checks structural invariants: a ticker is present and price
// history is strictly ascending by date.
func (d *DataSet) Validate() error {
	if d == nil {
		return fmt.Errorf("dataset is nil")
	}
	if d.Ticker == "" {
		return fmt.Errorf("dataset has no ticker")
	}
	for i := 1; i < len(d.PriceHistory); i++ {
		prev, curr := d.PriceHistory[i-1].Date, d.PriceHistory[i].Date
		if !curr.After(prev) {
			return fmt.Errorf("price history not strictly ascending at index %d (%s then %s)",
				i, prev.Format("2006-01-02"), curr.Format("2006-01-02"))
		}
	}
	return nil
}

// Fundamental returns the named fundamental, unavailable when absent.
func (d *DataSet) Fundamental(name string) Metric {
	if d == nil {
		return Metric{}
	}
	return d.Fundamentals[name]
}

// Benchmark returns the named sector benchmark, unavailable when absent.
func (d *DataSet) Benchmark(name string) Metric {
	if d == nil {
		return Metric{}
	}
	return d.Benchmarks[name]
}
