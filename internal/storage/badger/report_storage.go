package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/quantfold/vantage/internal/common"
	"github.com/quantfold/vantage/internal/interfaces"
	"github.com/quantfold/vantage/internal/models"
)

type reportStorage struct {
	store  *Store
	logger *common.Logger
}

// NewReportStorage creates a new ReportStorage backed by BadgerHold.
// One report is kept per ticker; a new run replaces the previous one.
func NewReportStorage(store *Store, logger *common.Logger) interfaces.ReportStorage {
	return &reportStorage{store: store, logger: logger}
}

func (s *reportStorage) SaveReport(_ context.Context, report *models.ReportDocument) error {
	if report == nil || report.Ticker == "" {
		return fmt.Errorf("report must have a ticker")
	}
	if err := s.store.db.Upsert(report.Ticker, report); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	s.logger.Debug().Str("ticker", report.Ticker).Str("id", report.ID).Msg("Report saved")
	return nil
}

func (s *reportStorage) GetReport(_ context.Context, ticker string) (*models.ReportDocument, error) {
	var report models.ReportDocument
	err := s.store.db.Get(ticker, &report)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("report for '%s' not found", ticker)
		}
		return nil, fmt.Errorf("failed to get report for '%s': %w", ticker, err)
	}
	return &report, nil
}

func (s *reportStorage) ListReports(_ context.Context) ([]string, error) {
	var reports []models.ReportDocument
	if err := s.store.db.Find(&reports, nil); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	tickers := make([]string, len(reports))
	for i, r := range reports {
		tickers[i] = r.Ticker
	}
	sort.Strings(tickers)
	return tickers, nil
}

func (s *reportStorage) DeleteReport(_ context.Context, ticker string) error {
	err := s.store.db.Delete(ticker, models.ReportDocument{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete report for '%s': %w", ticker, err)
	}
	s.logger.Debug().Str("ticker", ticker).Msg("Report deleted")
	return nil
}

var _ interfaces.ReportStorage = (*reportStorage)(nil)
