// Package interfaces defines service contracts for Vantage
package interfaces

import (
	"context"
	"time"

	"github.com/quantfold/vantage/internal/models"
)

// MarketDataClient retrieves raw market data and assembles a DataSet.
// Absent fields in the returned DataSet are explicit unavailable metrics,
// never zeros.
type MarketDataClient interface {
	// GetDataSet fetches all available data for a ticker. A partially
	// populated DataSet is a valid result; an error means no data could
	// be obtained at all.
	GetDataSet(ctx context.Context, ticker string, opts ...DataSetOption) (*models.DataSet, error)
}

// DataSetOption configures dataset retrieval
type DataSetOption func(*DataSetParams)

// DataSetParams holds dataset query parameters
type DataSetParams struct {
	From      time.Time
	To        time.Time
	NewsLimit int
}

// WithDateRange sets the price history window
func WithDateRange(from, to time.Time) DataSetOption {
	return func(p *DataSetParams) {
		p.From = from
		p.To = to
	}
}

// WithNewsLimit caps the number of news items fetched
func WithNewsLimit(limit int) DataSetOption {
	return func(p *DataSetParams) {
		p.NewsLimit = limit
	}
}

// ModelClient provides access to a language-model inference backend.
// Implementations must surface timeouts and unavailability as errors,
// never as an empty string.
type ModelClient interface {
	// GenerateContent generates text from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// ModelName returns the configured model identifier
	ModelName() string
}
