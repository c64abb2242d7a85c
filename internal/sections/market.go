package sections

import (
	"fmt"
	"math"

	"github.com/quantfold/vantage/internal/interfaces"
	"github.com/quantfold/vantage/internal/models"
)

const tradingDaysPerYear = 252

// MarketAnalyzer derives price, volume and volatility metrics from the
// dataset's price history.
type MarketAnalyzer struct{}

// NewMarketAnalyzer creates a market section analyzer
func NewMarketAnalyzer() *MarketAnalyzer {
	return &MarketAnalyzer{}
}

func (a *MarketAnalyzer) Kind() models.SectionKind {
	return models.SectionMarket
}

func (a *MarketAnalyzer) Analyze(dataset *models.DataSet) (models.SectionMetrics, error) {
	metrics := models.NewSectionMetrics(a.Kind())

	if dataset == nil || len(dataset.PriceHistory) == 0 {
		return metrics, fmt.Errorf("no price history for %s: %w",
			tickerOf(dataset), models.ErrSectionDataMissing)
	}

	bars := dataset.PriceHistory
	first := bars[0]
	last := bars[len(bars)-1]

	metrics.Values["current_price"] = models.Num(last.Close)
	metrics.Values["average_price"] = models.Num(mean(closes(bars)))

	if first.Close != 0 {
		metrics.Values["price_change_pct"] = models.Num((last.Close - first.Close) / first.Close * 100)
	}

	// Realized volatility: std deviation of daily returns over the window
	returns := dailyReturns(bars)
	if len(returns) >= 2 {
		daily := stdDev(returns)
		metrics.Values["volatility_pct"] = models.Num(daily * 100)
		metrics.Values["annualized_volatility_pct"] = models.Num(daily * math.Sqrt(tradingDaysPerYear) * 100)
	}

	high, low := bars[0].High, bars[0].Low
	var volumeSum, maxVolume int64
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low && b.Low > 0 {
			low = b.Low
		}
		volumeSum += b.Volume
		if b.Volume > maxVolume {
			maxVolume = b.Volume
		}
	}

	avgClose := mean(closes(bars))
	if avgClose != 0 {
		metrics.Values["high_low_spread_pct"] = models.Num((high - low) / avgClose * 100)
	}
	metrics.Values["average_volume"] = models.Num(float64(volumeSum) / float64(len(bars)))
	metrics.Values["max_volume"] = models.Num(float64(maxVolume))

	// Prefer source-reported 52-week levels; fall back to the window
	if m := dataset.Fundamental("week52_high"); m.Valid {
		metrics.Values["week52_high"] = m
	} else {
		metrics.Values["week52_high"] = models.Num(high)
	}
	if m := dataset.Fundamental("week52_low"); m.Valid {
		metrics.Values["week52_low"] = m
	} else {
		metrics.Values["week52_low"] = models.Num(low)
	}

	// Beta proxy: the source-reported beta when available, otherwise the
	// ratio of the stock's volatility to the benchmark's
	if m := dataset.Fundamental("beta"); m.Valid {
		metrics.Values["beta"] = m
	} else if bench, ok := dataset.Benchmark("volatility_pct").Float(); ok && bench != 0 {
		if vol, ok := metrics.Values["volatility_pct"].Float(); ok {
			metrics.Values["beta"] = models.Num(vol / bench)
		}
	}

	return metrics, nil
}

var _ interfaces.SectionAnalyzer = (*MarketAnalyzer)(nil)
