package assembler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/vantage/internal/common"
	"github.com/quantfold/vantage/internal/interfaces"
	"github.com/quantfold/vantage/internal/models"
	"github.com/quantfold/vantage/internal/sections"
	"github.com/quantfold/vantage/internal/services/insight"
)

// fixedInsights answers every section with a scripted signal.
type fixedInsights struct {
	mu       sync.Mutex
	signals  map[models.SectionKind]models.Signal
	failures map[models.SectionKind]error
	summary  string
	sumErr   error
	calls    []models.SectionKind
}

func (g *fixedInsights) Generate(ctx context.Context, kind models.SectionKind, metrics models.SectionMetrics) (string, models.Signal, error) {
	g.mu.Lock()
	g.calls = append(g.calls, kind)
	g.mu.Unlock()

	if err, ok := g.failures[kind]; ok {
		return "", models.Hold, err
	}
	signal, ok := g.signals[kind]
	if !ok {
		signal = models.Hold
	}
	return fmt.Sprintf("Insight for %s.", kind), signal, nil
}

func (g *fixedInsights) Summarize(ctx context.Context, ticker string, results []models.SectionResult, overall models.Signal) (string, error) {
	if g.sumErr != nil {
		return "", g.sumErr
	}
	if g.summary != "" {
		return g.summary, nil
	}
	return "Scripted summary.", nil
}

func testDataSet() *models.DataSet {
	bars := make([]models.PriceBar, 0, 40)
	price := 50.0
	for i := 0; i < 40; i++ {
		price *= 1.002
		bars = append(bars, models.PriceBar{
			Date:   time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   price * 0.995,
			High:   price * 1.01,
			Low:    price * 0.99,
			Close:  price,
			Volume: 800_000,
		})
	}

	return &models.DataSet{
		Ticker:       "BHP.AU",
		Name:         "BHP Group",
		Sector:       "Basic Materials",
		Industry:     "Industrial Metals & Mining",
		PriceHistory: bars,
		Fundamentals: map[string]models.Metric{
			"revenue":    models.Num(55_000_000_000),
			"net_income": models.Num(12_000_000_000),
			"pe_ratio":   models.Num(11.5),
			"beta":       models.Num(0.9),
		},
		Ratings: &models.AnalystRatings{
			StrongBuy: 3, Buy: 7, Hold: 5, Sell: 1,
			TargetHigh: models.Num(52), TargetLow: models.Num(38),
		},
		News: []models.NewsItem{
			{Headline: "Iron ore shipments rise", Source: "AFR", PublishedAt: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)},
		},
		FetchedAt: time.Now(),
	}
}

func newAssembler(insights interfaces.InsightGenerator) *Service {
	return NewService(sections.All(sections.DefaultNewsDigest), insights, common.NewSilentLogger())
}

func TestRunProducesEverySectionInOrder(t *testing.T) {
	insights := &fixedInsights{signals: map[models.SectionKind]models.Signal{
		models.SectionFinancial: models.Buy,
		models.SectionMarket:    models.Buy,
		models.SectionIndustry:  models.Hold,
		models.SectionConsensus: models.Buy,
		models.SectionNews:      models.Hold,
	}}

	doc, err := newAssembler(insights).Run(context.Background(), testDataSet())
	require.NoError(t, err)

	require.Len(t, doc.Sections, 5)
	for i, kind := range models.SectionOrder() {
		assert.Equal(t, kind, doc.Sections[i].Kind)
	}

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "BHP.AU", doc.Ticker)
	assert.Equal(t, models.Buy, doc.OverallSignal)
	assert.Equal(t, "Scripted summary.", doc.OverallSummary)
	assert.False(t, doc.GeneratedAt.IsZero())
}

func TestRunIsDeterministicForFixedInsights(t *testing.T) {
	script := map[models.SectionKind]models.Signal{
		models.SectionFinancial: models.StrongBuy,
		models.SectionMarket:    models.Buy,
		models.SectionIndustry:  models.Buy,
		models.SectionConsensus: models.Hold,
		models.SectionNews:      models.Sell,
	}

	first, err := newAssembler(&fixedInsights{signals: script}).Run(context.Background(), testDataSet())
	require.NoError(t, err)
	second, err := newAssembler(&fixedInsights{signals: script}).Run(context.Background(), testDataSet())
	require.NoError(t, err)

	require.Len(t, second.Sections, len(first.Sections))
	for i := range first.Sections {
		assert.Equal(t, first.Sections[i].Kind, second.Sections[i].Kind)
		assert.Equal(t, first.Sections[i].Signal, second.Sections[i].Signal)
		assert.Equal(t, first.Sections[i].Status, second.Sections[i].Status)
	}
	assert.Equal(t, first.OverallSignal, second.OverallSignal)
}

func TestRunSectionDataMissing(t *testing.T) {
	ds := testDataSet()
	ds.Ratings = nil // consensus section has nothing to work with

	insights := &fixedInsights{signals: map[models.SectionKind]models.Signal{
		models.SectionFinancial: models.Buy,
		models.SectionMarket:    models.Buy,
		models.SectionIndustry:  models.Buy,
		models.SectionNews:      models.Buy,
	}}

	doc, err := newAssembler(insights).Run(context.Background(), ds)
	require.NoError(t, err)
	require.Len(t, doc.Sections, 5)

	failed := doc.Section(models.SectionConsensus)
	require.NotNil(t, failed)
	assert.Equal(t, models.StatusFailed, failed.Status)
	assert.Equal(t, models.Hold, failed.Signal)
	assert.Equal(t, FailedInsight, failed.Insight)
	assert.NotEmpty(t, failed.Reason)

	// The failed section does not drag the rest down
	assert.Equal(t, models.StatusOk, doc.Section(models.SectionFinancial).Status)
	assert.Equal(t, models.Buy, doc.OverallSignal)
}

func TestRunSectionDegraded(t *testing.T) {
	insights := &fixedInsights{
		signals: map[models.SectionKind]models.Signal{
			models.SectionFinancial: models.Sell,
			models.SectionIndustry:  models.Sell,
			models.SectionConsensus: models.Hold,
			models.SectionNews:      models.Sell,
		},
		failures: map[models.SectionKind]error{
			models.SectionMarket: insight.ErrBackendUnavailable,
		},
	}

	doc, err := newAssembler(insights).Run(context.Background(), testDataSet())
	require.NoError(t, err)

	degraded := doc.Section(models.SectionMarket)
	require.NotNil(t, degraded)
	assert.Equal(t, models.StatusDegraded, degraded.Status)
	assert.Equal(t, models.Hold, degraded.Signal)
	assert.Equal(t, DegradedInsight, degraded.Insight)

	// Metrics computed before the insight failure are preserved
	assert.NotEmpty(t, degraded.Metrics.Values)
	assert.True(t, degraded.Metrics.Values["current_price"].Valid)

	assert.Equal(t, []models.SectionKind{models.SectionMarket}, doc.DegradedSections())
	assert.Equal(t, models.Sell, doc.OverallSignal)
}

func TestRunEmptyDataSet(t *testing.T) {
	svc := newAssembler(&fixedInsights{})

	for _, ds := range []*models.DataSet{
		nil,
		{},
		{Ticker: "ZZZZ"},
	} {
		doc, err := svc.Run(context.Background(), ds)
		require.Error(t, err)
		assert.Nil(t, doc)
		assert.True(t, errors.Is(err, models.ErrDataUnavailable))
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc, err := newAssembler(&fixedInsights{}).Run(ctx, testDataSet())
	require.Error(t, err)
	assert.Nil(t, doc)
	assert.True(t, errors.Is(err, ErrRunCancelled))
}

func TestRunSummaryFallback(t *testing.T) {
	insights := &fixedInsights{
		signals: map[models.SectionKind]models.Signal{
			models.SectionFinancial: models.Buy,
			models.SectionMarket:    models.Buy,
			models.SectionIndustry:  models.Buy,
			models.SectionConsensus: models.Buy,
			models.SectionNews:      models.Buy,
		},
		sumErr: insight.ErrBackendUnavailable,
	}

	doc, err := newAssembler(insights).Run(context.Background(), testDataSet())
	require.NoError(t, err)

	assert.Contains(t, doc.OverallSummary, "BHP.AU")
	assert.Contains(t, doc.OverallSummary, "Buy")
}
