package interfaces

import (
	"context"

	"github.com/quantfold/vantage/internal/models"
)

// ReportStorage persists finalized report documents
type ReportStorage interface {
	// SaveReport stores a report, replacing any previous report for the
	// same ticker
	SaveReport(ctx context.Context, report *models.ReportDocument) error

	// GetReport retrieves the stored report for a ticker
	GetReport(ctx context.Context, ticker string) (*models.ReportDocument, error)

	// ListReports returns the tickers with stored reports
	ListReports(ctx context.Context) ([]string, error)

	// DeleteReport removes the stored report for a ticker
	DeleteReport(ctx context.Context, ticker string) error
}

// StorageManager provides access to the storage areas
type StorageManager interface {
	ReportStorage() ReportStorage
	Close() error
}
