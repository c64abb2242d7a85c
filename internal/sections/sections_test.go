package sections

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/vantage/internal/models"
)

func testDataSet() *models.DataSet {
	bars := make([]models.PriceBar, 0, 60)
	price := 100.0
	for i := 0; i < 60; i++ {
		// Alternate small moves around a gentle uptrend
		if i%2 == 0 {
			price *= 1.01
		} else {
			price *= 0.995
		}
		bars = append(bars, models.PriceBar{
			Date:   time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   price * 0.99,
			High:   price * 1.02,
			Low:    price * 0.98,
			Close:  price,
			Volume: 1_000_000 + int64(i)*10_000,
		})
	}

	return &models.DataSet{
		Ticker:       "AAPL",
		Name:         "Apple Inc",
		Sector:       "Technology",
		Industry:     "Consumer Electronics",
		PriceHistory: bars,
		Fundamentals: map[string]models.Metric{
			"revenue":             models.Num(94_930_000_000),
			"net_income":          models.Num(14_736_000_000),
			"operating_cash_flow": models.Num(26_811_000_000),
			"pe_ratio":            models.Num(31.2),
			"dividend_yield":      models.Num(0.0044),
			"return_on_equity":    models.Num(1.57),
			"beta":                models.Num(1.24),
			"debt_to_equity":      models.Num(1.87),
		},
		Ratings: &models.AnalystRatings{
			StrongBuy:  8,
			Buy:        21,
			Hold:       14,
			Sell:       2,
			StrongSell: 1,
			TargetHigh: models.Num(300),
			TargetLow:  models.Num(180),
		},
		News: []models.NewsItem{
			{Headline: "Apple unveils new chip", Source: "Reuters", PublishedAt: time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC)},
			{Headline: "iPhone sales beat estimates", Source: "Bloomberg", PublishedAt: time.Date(2024, 11, 25, 9, 0, 0, 0, time.UTC)},
			{Headline: "Services revenue hits record", PublishedAt: time.Date(2024, 11, 10, 8, 0, 0, 0, time.UTC)},
		},
		Benchmarks: map[string]models.Metric{
			"sector_pe":            models.Num(26.0),
			"sector_profit_margin": models.Num(0.11),
		},
		FetchedAt: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAllCoversEverySectionInOrder(t *testing.T) {
	analyzers := All(5)
	require.Len(t, analyzers, 5)

	order := models.SectionOrder()
	for i, a := range analyzers {
		assert.Equal(t, order[i], a.Kind())
	}
}

func TestFinancialAnalyzer(t *testing.T) {
	metrics, err := NewFinancialAnalyzer().Analyze(testDataSet())
	require.NoError(t, err)

	assert.Equal(t, models.SectionFinancial, metrics.Kind)
	assert.True(t, metrics.Values["revenue"].Valid)
	assert.True(t, metrics.Values["pe_ratio"].Valid)

	// Net margin derived from revenue and net income
	margin, ok := metrics.Values["profit_margin"].Float()
	require.True(t, ok)
	assert.InDelta(t, 14_736_000_000.0/94_930_000_000.0, margin, 1e-9)

	// Absent fundamentals stay absent rather than appearing as zero
	_, present := metrics.Values["quick_ratio"]
	assert.False(t, present)
}

func TestFinancialAnalyzerNoFundamentals(t *testing.T) {
	ds := testDataSet()
	ds.Fundamentals = nil

	_, err := NewFinancialAnalyzer().Analyze(ds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSectionDataMissing))
}

func TestMarketAnalyzer(t *testing.T) {
	ds := testDataSet()
	metrics, err := NewMarketAnalyzer().Analyze(ds)
	require.NoError(t, err)

	last := ds.PriceHistory[len(ds.PriceHistory)-1]
	current, ok := metrics.Values["current_price"].Float()
	require.True(t, ok)
	assert.InDelta(t, last.Close, current, 1e-9)

	vol, ok := metrics.Values["volatility_pct"].Float()
	require.True(t, ok)
	assert.Greater(t, vol, 0.0)

	// Source-reported beta passes through as the beta proxy
	beta, ok := metrics.Values["beta"].Float()
	require.True(t, ok)
	assert.InDelta(t, 1.24, beta, 1e-9)

	assert.True(t, metrics.Values["week52_high"].Valid)
	assert.True(t, metrics.Values["average_volume"].Valid)
}

func TestMarketAnalyzerNoPriceHistory(t *testing.T) {
	ds := testDataSet()
	ds.PriceHistory = nil

	_, err := NewMarketAnalyzer().Analyze(ds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSectionDataMissing))
}

func TestSectorAnalyzer(t *testing.T) {
	metrics, err := NewSectorAnalyzer().Analyze(testDataSet())
	require.NoError(t, err)

	avail, ok := metrics.Values["benchmark_available"].Float()
	require.True(t, ok)
	assert.Equal(t, 1.0, avail)

	rel, ok := metrics.Values["pe_ratio_vs_sector"].Float()
	require.True(t, ok)
	assert.InDelta(t, 31.2/26.0, rel, 1e-9)

	assert.Contains(t, metrics.Notes, "Sector: Technology")
}

func TestSectorAnalyzerWithoutBenchmarks(t *testing.T) {
	ds := testDataSet()
	ds.Benchmarks = nil

	// Missing benchmarks are flagged, not an error
	metrics, err := NewSectorAnalyzer().Analyze(ds)
	require.NoError(t, err)

	avail, ok := metrics.Values["benchmark_available"].Float()
	require.True(t, ok)
	assert.Equal(t, 0.0, avail)
}

func TestSectorAnalyzerNoSectorData(t *testing.T) {
	ds := testDataSet()
	ds.Sector = ""
	ds.Fundamentals = nil

	_, err := NewSectorAnalyzer().Analyze(ds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSectionDataMissing))
}

func TestConsensusAnalyzer(t *testing.T) {
	metrics, err := NewConsensusAnalyzer().Analyze(testDataSet())
	require.NoError(t, err)

	total, ok := metrics.Values["total_ratings"].Float()
	require.True(t, ok)
	assert.Equal(t, 46.0, total)

	bullish, ok := metrics.Values["bullish_ratio"].Float()
	require.True(t, ok)
	assert.InDelta(t, 29.0/46.0, bullish, 1e-9)

	midpoint, ok := metrics.Values["target_midpoint"].Float()
	require.True(t, ok)
	assert.InDelta(t, 240.0, midpoint, 1e-9)

	score, ok := metrics.Values["consensus_score"].Float()
	require.True(t, ok)
	assert.InDelta(t, (2*8.0+21-2-2*1)/46.0, score, 1e-9)
}

func TestConsensusAnalyzerNoRatings(t *testing.T) {
	ds := testDataSet()
	ds.Ratings = nil

	_, err := NewConsensusAnalyzer().Analyze(ds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSectionDataMissing))
}

func TestNewsAnalyzer(t *testing.T) {
	metrics, err := NewNewsAnalyzer(2).Analyze(testDataSet())
	require.NoError(t, err)

	count, ok := metrics.Values["news_count"].Float()
	require.True(t, ok)
	assert.Equal(t, 3.0, count)

	digest, ok := metrics.Values["digest_count"].Float()
	require.True(t, ok)
	assert.Equal(t, 2.0, digest)

	// Digest is most recent first
	require.Len(t, metrics.Notes, 2)
	assert.Contains(t, metrics.Notes[0], "iPhone sales beat estimates")
	assert.Contains(t, metrics.Notes[1], "Apple unveils new chip")
}

func TestNewsAnalyzerNoNews(t *testing.T) {
	ds := testDataSet()
	ds.News = nil

	_, err := NewNewsAnalyzer(5).Analyze(ds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSectionDataMissing))
}
