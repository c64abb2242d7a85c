package render

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/quantfold/vantage/internal/common"
	"github.com/quantfold/vantage/internal/interfaces"
	"github.com/quantfold/vantage/internal/models"
)

// CSVRenderer writes a ReportDocument as a single flattened CSV row,
// suitable for collecting many runs into a spreadsheet. Column order is
// deterministic: document fields first, then per-section signal, status
// and metrics in canonical section order with lexically sorted keys.
type CSVRenderer struct {
	logger *common.Logger
}

// NewCSVRenderer creates a CSV renderer
func NewCSVRenderer(logger *common.Logger) *CSVRenderer {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &CSVRenderer{logger: logger}
}

// Render writes the document to path.
func (r *CSVRenderer) Render(doc *models.ReportDocument, path string) error {
	if doc == nil {
		return fmt.Errorf("nil report document")
	}

	header, row := flattenReport(doc)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.Write(row); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	r.logger.Info().Str("ticker", doc.Ticker).Str("path", path).Msg("CSV report written")
	return nil
}

func flattenReport(doc *models.ReportDocument) ([]string, []string) {
	header := []string{"ticker", "name", "generated_at", "window_start", "window_end", "overall_signal", "overall_summary"}
	row := []string{
		doc.Ticker,
		doc.Name,
		doc.GeneratedAt.Format(time.RFC3339),
		formatDate(doc.WindowStart),
		formatDate(doc.WindowEnd),
		doc.OverallSignal.String(),
		doc.OverallSummary,
	}

	for _, kind := range models.SectionOrder() {
		section := doc.Section(kind)
		if section == nil {
			continue
		}

		prefix := string(kind)
		header = append(header, prefix+"_signal", prefix+"_status")
		row = append(row, section.Signal.String(), string(section.Status))

		for _, key := range section.Metrics.SortedKeys() {
			header = append(header, prefix+"_"+key)
			row = append(row, section.Metrics.Values[key].String())
		}
	}

	return header, row
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// Ensure CSVRenderer implements ReportRenderer
var _ interfaces.ReportRenderer = (*CSVRenderer)(nil)
