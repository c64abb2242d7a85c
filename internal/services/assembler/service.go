// Package assembler orchestrates the per-ticker report pipeline: section
// analyzers fan out concurrently, each feeds the insight generator, and
// the results are folded into a single ReportDocument.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quantfold/vantage/internal/common"
	"github.com/quantfold/vantage/internal/interfaces"
	"github.com/quantfold/vantage/internal/models"
)

// ErrRunCancelled means the run's context was cancelled before the
// document could be finalized. No partial document is ever returned.
var ErrRunCancelled = errors.New("report run cancelled")

// Placeholder insights for sections that did not complete Ok. The
// document always shows every section, so a reader sees what went wrong
// instead of a silent gap.
const (
	FailedInsight   = "No data was available for this section."
	DegradedInsight = "Metrics were computed but AI analysis was unavailable."
)

// sectionState tracks a section through the pipeline, for audit logging.
type sectionState string

const (
	statePending   sectionState = "pending"
	stateAnalyzing sectionState = "analyzing"
	stateInsight   sectionState = "insighting"
	stateDone      sectionState = "done"
	stateFailed    sectionState = "failed"
)

// Service implements the ReportAssembler interface
type Service struct {
	analyzers []interfaces.SectionAnalyzer
	insights  interfaces.InsightGenerator
	logger    *common.Logger
}

// NewService creates a report assembler over the given analyzers and
// insight generator. Analyzer order determines document order.
func NewService(analyzers []interfaces.SectionAnalyzer, insights interfaces.InsightGenerator, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		analyzers: analyzers,
		insights:  insights,
		logger:    logger,
	}
}

// Run executes the full pipeline for one dataset and returns the
// finalized document. Every configured section appears in the result
// exactly once, whatever its status.
func (s *Service) Run(ctx context.Context, dataset *models.DataSet) (*models.ReportDocument, error) {
	if dataset == nil || dataset.Ticker == "" || dataset.Empty() {
		return nil, fmt.Errorf("cannot assemble report: %w", models.ErrDataUnavailable)
	}

	runID := uuid.New().String()
	started := time.Now()

	s.logger.Info().
		Str("run_id", runID).
		Str("ticker", dataset.Ticker).
		Int("sections", len(s.analyzers)).
		Msg("Report run started")

	// Fan out one goroutine per section. Each writes only its own slot,
	// so the barrier is the only synchronization needed.
	results := make([]models.SectionResult, len(s.analyzers))
	var wg sync.WaitGroup

	for i, analyzer := range s.analyzers {
		wg.Add(1)
		go func(slot int, analyzer interfaces.SectionAnalyzer) {
			defer wg.Done()
			results[slot] = s.runSection(ctx, runID, analyzer, dataset)
		}(i, analyzer)
	}

	wg.Wait()

	if ctx.Err() != nil {
		s.logger.Warn().
			Str("run_id", runID).
			Str("ticker", dataset.Ticker).
			Msg("Report run cancelled")
		return nil, fmt.Errorf("%w: %v", ErrRunCancelled, ctx.Err())
	}

	doc := &models.ReportDocument{
		ID:          runID,
		Ticker:      dataset.Ticker,
		Name:        dataset.Name,
		GeneratedAt: time.Now(),
		WindowStart: dataset.WindowStart,
		WindowEnd:   dataset.WindowEnd,
		Sections:    results,
	}

	signals := make([]models.Signal, len(results))
	for i, r := range results {
		signals[i] = r.Signal
	}
	doc.OverallSignal = models.MajoritySignal(signals)
	doc.OverallSummary = s.summarize(ctx, doc)

	s.logger.Info().
		Str("run_id", runID).
		Str("ticker", dataset.Ticker).
		Str("signal", doc.OverallSignal.String()).
		Int("degraded", len(doc.DegradedSections())).
		Dur("elapsed", time.Since(started)).
		Msg("Report run complete")

	return doc, nil
}

// runSection walks one section through analyze and insight. Failures are
// absorbed into the result's status; a section never aborts the run.
func (s *Service) runSection(ctx context.Context, runID string, analyzer interfaces.SectionAnalyzer, dataset *models.DataSet) models.SectionResult {
	kind := analyzer.Kind()
	audit := s.logger.With().Str("run_id", runID).Str("section", string(kind)).Logger()

	audit.Debug().Str("state", string(stateAnalyzing)).Msg("Section state")

	metrics, err := analyzer.Analyze(dataset)
	if err != nil {
		audit.Warn().Str("state", string(stateFailed)).Err(err).Msg("Section analysis failed")
		return models.SectionResult{
			Kind:    kind,
			Metrics: metrics,
			Insight: FailedInsight,
			Signal:  models.Hold,
			Status:  models.StatusFailed,
			Reason:  err.Error(),
		}
	}

	audit.Debug().Str("state", string(stateInsight)).Int("metrics", len(metrics.Values)).Msg("Section state")

	insightText, signal, err := s.insights.Generate(ctx, kind, metrics)
	if err != nil {
		// Metrics survive; only the commentary and signal are lost.
		audit.Warn().Str("state", string(stateDone)).Err(err).Msg("Section degraded")
		return models.SectionResult{
			Kind:    kind,
			Metrics: metrics,
			Insight: DegradedInsight,
			Signal:  models.Hold,
			Status:  models.StatusDegraded,
			Reason:  err.Error(),
		}
	}

	audit.Debug().Str("state", string(stateDone)).Str("signal", signal.String()).Msg("Section state")

	return models.SectionResult{
		Kind:    kind,
		Metrics: metrics,
		Insight: insightText,
		Signal:  signal,
		Status:  models.StatusOk,
	}
}

// summarize asks the insight generator for the executive summary and
// falls back to a templated one so the document is never left without.
func (s *Service) summarize(ctx context.Context, doc *models.ReportDocument) string {
	summary, err := s.insights.Summarize(ctx, doc.Ticker, doc.Sections, doc.OverallSignal)
	if err == nil && summary != "" {
		return summary
	}

	if err != nil {
		s.logger.Warn().Str("ticker", doc.Ticker).Err(err).Msg("Summary generation failed, using fallback")
	}

	return fallbackSummary(doc)
}

// fallbackSummary builds a deterministic summary from the section
// signals when the model backend cannot.
func fallbackSummary(doc *models.ReportDocument) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Overall assessment for %s: %s.", doc.Ticker, doc.OverallSignal)

	var parts []string
	for _, r := range doc.Sections {
		if r.Status == models.StatusOk {
			parts = append(parts, fmt.Sprintf("%s indicates %s", r.Kind.Title(), r.Signal))
		}
	}
	if len(parts) > 0 {
		sb.WriteString(" ")
		sb.WriteString(strings.Join(parts, "; "))
		sb.WriteString(".")
	}

	if degraded := doc.DegradedSections(); len(degraded) > 0 {
		names := make([]string, len(degraded))
		for i, k := range degraded {
			names[i] = k.Title()
		}
		fmt.Fprintf(&sb, " Incomplete sections: %s.", strings.Join(names, ", "))
	}

	return sb.String()
}

// Ensure Service implements ReportAssembler
var _ interfaces.ReportAssembler = (*Service)(nil)
