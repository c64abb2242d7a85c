package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/vantage/internal/common"
	"github.com/quantfold/vantage/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleReport(ticker string) *models.ReportDocument {
	metrics := models.NewSectionMetrics(models.SectionFinancial)
	metrics.Values["revenue"] = models.Num(1_000_000)
	metrics.Values["dividend_yield"] = models.Unavailable()

	return &models.ReportDocument{
		ID:          "run-" + ticker,
		Ticker:      ticker,
		Name:        ticker + " Corp",
		GeneratedAt: time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC),
		Sections: []models.SectionResult{
			{Kind: models.SectionFinancial, Metrics: metrics, Insight: "Solid.", Signal: models.Buy, Status: models.StatusOk},
		},
		OverallSignal:  models.Buy,
		OverallSummary: "A good quarter.",
	}
}

func TestReportStorageRoundTrip(t *testing.T) {
	storage := NewReportStorage(newTestStore(t), common.NewSilentLogger())
	ctx := context.Background()

	require.NoError(t, storage.SaveReport(ctx, sampleReport("AAPL")))

	got, err := storage.GetReport(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "run-AAPL", got.ID)
	assert.Equal(t, models.Buy, got.OverallSignal)

	require.Len(t, got.Sections, 1)
	section := got.Sections[0]
	assert.Equal(t, models.StatusOk, section.Status)

	// Metric availability survives the round trip
	revenue, ok := section.Metrics.Values["revenue"].Float()
	require.True(t, ok)
	assert.Equal(t, 1_000_000.0, revenue)
	assert.False(t, section.Metrics.Values["dividend_yield"].Valid)
}

func TestReportStorageUpsert(t *testing.T) {
	storage := NewReportStorage(newTestStore(t), common.NewSilentLogger())
	ctx := context.Background()

	first := sampleReport("AAPL")
	require.NoError(t, storage.SaveReport(ctx, first))

	second := sampleReport("AAPL")
	second.ID = "run-AAPL-2"
	second.OverallSignal = models.Hold
	require.NoError(t, storage.SaveReport(ctx, second))

	got, err := storage.GetReport(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "run-AAPL-2", got.ID)
	assert.Equal(t, models.Hold, got.OverallSignal)

	tickers, err := storage.ListReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, tickers)
}

func TestReportStorageList(t *testing.T) {
	storage := NewReportStorage(newTestStore(t), common.NewSilentLogger())
	ctx := context.Background()

	for _, ticker := range []string{"MSFT", "AAPL", "BHP.AU"} {
		require.NoError(t, storage.SaveReport(ctx, sampleReport(ticker)))
	}

	tickers, err := storage.ListReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "BHP.AU", "MSFT"}, tickers)
}

func TestReportStorageNotFound(t *testing.T) {
	storage := NewReportStorage(newTestStore(t), common.NewSilentLogger())

	_, err := storage.GetReport(context.Background(), "MISSING")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReportStorageDelete(t *testing.T) {
	storage := NewReportStorage(newTestStore(t), common.NewSilentLogger())
	ctx := context.Background()

	require.NoError(t, storage.SaveReport(ctx, sampleReport("AAPL")))
	require.NoError(t, storage.DeleteReport(ctx, "AAPL"))

	_, err := storage.GetReport(ctx, "AAPL")
	assert.Error(t, err)

	// Deleting an absent report is not an error
	assert.NoError(t, storage.DeleteReport(ctx, "AAPL"))
}

func TestReportStorageRejectsEmptyTicker(t *testing.T) {
	storage := NewReportStorage(newTestStore(t), common.NewSilentLogger())

	assert.Error(t, storage.SaveReport(context.Background(), &models.ReportDocument{}))
	assert.Error(t, storage.SaveReport(context.Background(), nil))
}
