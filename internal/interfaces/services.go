package interfaces

import (
	"context"

	"github.com/quantfold/vantage/internal/models"
)

// SectionAnalyzer derives section-local metrics from a DataSet. Analyzers
// are pure: they share no mutable state and never modify the DataSet.
type SectionAnalyzer interface {
	// Kind identifies the section this analyzer produces
	Kind() models.SectionKind

	// Analyze derives metrics from the relevant DataSet slice. Missing
	// individual fields are tolerated; the error is
	// models.ErrSectionDataMissing only when the whole slice is absent.
	Analyze(dataset *models.DataSet) (models.SectionMetrics, error)
}

// InsightGenerator drives the model backend to produce per-section
// insights and the overall report summary.
type InsightGenerator interface {
	// Generate produces free-text insight plus a discrete signal for one
	// section. Fails with insight.ErrMalformedResponse or
	// insight.ErrBackendUnavailable; it never guesses a signal.
	Generate(ctx context.Context, kind models.SectionKind, metrics models.SectionMetrics) (string, models.Signal, error)

	// Summarize synthesizes an overall summary from the section results
	// and the aggregate signal.
	Summarize(ctx context.Context, ticker string, results []models.SectionResult, overall models.Signal) (string, error)
}

// ReportAssembler orchestrates the full per-ticker pipeline and owns the
// resulting ReportDocument until it is handed to renderers.
type ReportAssembler interface {
	// Run executes the pipeline for one dataset. It returns
	// models.ErrDataUnavailable when the dataset is absent or empty, and
	// a wrapped context error when the run is cancelled; otherwise the
	// document always contains one SectionResult per SectionKind.
	Run(ctx context.Context, dataset *models.DataSet) (*models.ReportDocument, error)
}

// ReportRenderer writes a finalized ReportDocument to a file. Rendering
// failures are reported to the caller and never affect the document.
type ReportRenderer interface {
	Render(doc *models.ReportDocument, path string) error
}
