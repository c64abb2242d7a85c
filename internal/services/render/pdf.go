// Package render writes finalized report documents to PDF and CSV files.
package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/quantfold/vantage/internal/common"
	"github.com/quantfold/vantage/internal/interfaces"
	"github.com/quantfold/vantage/internal/models"
)

const disclaimer = "This report was generated by an AI system from third-party market data. " +
	"It is provided for informational purposes only and does not constitute financial advice, " +
	"an offer, or a recommendation to buy or sell any security. Data may be incomplete or " +
	"delayed. Always do your own research before making investment decisions."

// PDFRenderer writes a ReportDocument as a formatted PDF.
type PDFRenderer struct {
	logger *common.Logger
}

// NewPDFRenderer creates a PDF renderer
func NewPDFRenderer(logger *common.Logger) *PDFRenderer {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &PDFRenderer{logger: logger}
}

// Render writes the document to path.
func (r *PDFRenderer) Render(doc *models.ReportDocument, path string) error {
	return r.RenderWithChart(doc, nil, path)
}

// RenderWithChart writes the document to path with a closing-price chart
// on the first page. A chart failure downgrades to a chartless report
// rather than failing the render.
func (r *PDFRenderer) RenderWithChart(doc *models.ReportDocument, bars []models.PriceBar, path string) error {
	if doc == nil {
		return fmt.Errorf("nil report document")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Equity Research Report: %s", doc.Ticker), false)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 7)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 5, "AI-generated report - not financial advice", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	r.writeHeader(pdf, doc)

	if len(bars) >= 2 {
		if png, err := RenderPriceChart(doc.Ticker, bars); err != nil {
			r.logger.Warn().Str("ticker", doc.Ticker).Err(err).Msg("Price chart unavailable")
		} else {
			r.writeChart(pdf, png)
		}
	}

	r.writeSummary(pdf, doc)

	for _, kind := range models.SectionOrder() {
		if section := doc.Section(kind); section != nil {
			r.writeSection(pdf, section)
		}
	}

	r.writeDisclaimerPage(pdf)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	r.logger.Info().Str("ticker", doc.Ticker).Str("path", path).Msg("PDF report written")
	return nil
}

func (r *PDFRenderer) writeHeader(pdf *fpdf.Fpdf, doc *models.ReportDocument) {
	pdf.SetFont("Arial", "B", 18)
	title := doc.Ticker
	if doc.Name != "" {
		title = fmt.Sprintf("%s (%s)", doc.Name, doc.Ticker)
	}
	pdf.CellFormat(0, 10, fmt.Sprintf("Equity Research Report: %s", title), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(96, 96, 96)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", doc.GeneratedAt.Format("2 January 2006 15:04 MST")), "", 1, "L", false, 0, "")
	if !doc.WindowStart.IsZero() && !doc.WindowEnd.IsZero() {
		pdf.CellFormat(0, 5, fmt.Sprintf("Analysis window: %s to %s",
			doc.WindowStart.Format("2006-01-02"), doc.WindowEnd.Format("2006-01-02")), "", 1, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(3)

	r.writeSignalTag(pdf, "Overall Signal", doc.OverallSignal)
	pdf.Ln(4)
}

func (r *PDFRenderer) writeChart(pdf *fpdf.Fpdf, png []byte) {
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("price-chart", opts, bytes.NewReader(png))
	pdf.ImageOptions("price-chart", 15, pdf.GetY(), 180, 0, true, opts, 0, "")
	pdf.Ln(3)
}

func (r *PDFRenderer) writeSummary(pdf *fpdf.Fpdf, doc *models.ReportDocument) {
	r.writeChapterTitle(pdf, "Executive Summary")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 5, doc.OverallSummary, "", "L", false)
	pdf.Ln(3)
}

func (r *PDFRenderer) writeSection(pdf *fpdf.Fpdf, section *models.SectionResult) {
	r.writeChapterTitle(pdf, section.Kind.Title())

	switch section.Status {
	case models.StatusFailed:
		r.writeStatusFlag(pdf, "DATA UNAVAILABLE", 220, 53, 69)
	case models.StatusDegraded:
		r.writeStatusFlag(pdf, "AI ANALYSIS UNAVAILABLE", 255, 153, 0)
	}

	if len(section.Metrics.Values) > 0 {
		pdf.SetFont("Arial", "", 9)
		for _, key := range section.Metrics.SortedKeys() {
			pdf.SetTextColor(96, 96, 96)
			pdf.CellFormat(60, 5, metricLabel(key), "", 0, "L", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
			pdf.CellFormat(0, 5, formatMetric(section.Metrics.Values[key]), "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}

	if len(section.Metrics.Notes) > 0 {
		pdf.SetFont("Arial", "", 9)
		for _, note := range section.Metrics.Notes {
			pdf.SetX(18)
			pdf.MultiCell(0, 4.5, "- "+note, "", "L", false)
		}
		pdf.Ln(2)
	}

	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 5, section.Insight, "", "L", false)
	pdf.Ln(2)

	r.writeSignalTag(pdf, "Signal", section.Signal)
	pdf.Ln(5)
}

func (r *PDFRenderer) writeChapterTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(230, 236, 245)
	pdf.CellFormat(0, 8, "  "+title, "", 1, "L", true, 0, "")
	pdf.SetFillColor(255, 255, 255)
	pdf.Ln(2)
}

func (r *PDFRenderer) writeStatusFlag(pdf *fpdf.Fpdf, label string, red, green, blue int) {
	pdf.SetFont("Arial", "B", 8)
	pdf.SetTextColor(red, green, blue)
	pdf.CellFormat(0, 5, label, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(1)
}

func (r *PDFRenderer) writeSignalTag(pdf *fpdf.Fpdf, label string, signal models.Signal) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 7, label+":", "", 0, "L", false, 0, "")

	red, green, blue := signalColor(signal)
	pdf.SetFillColor(red, green, blue)
	pdf.SetTextColor(255, 255, 255)
	width := pdf.GetStringWidth(signal.String()) + 8
	pdf.CellFormat(width, 7, signal.String(), "", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(255, 255, 255)
}

func (r *PDFRenderer) writeDisclaimerPage(pdf *fpdf.Fpdf) {
	pdf.AddPage()
	r.writeChapterTitle(pdf, "Disclaimer")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 5, disclaimer, "", "L", false)
}

func signalColor(signal models.Signal) (int, int, int) {
	switch signal {
	case models.StrongBuy:
		return 22, 128, 57
	case models.Buy:
		return 40, 167, 69
	case models.Hold:
		return 108, 117, 125
	case models.Sell:
		return 220, 53, 69
	case models.StrongSell:
		return 160, 30, 45
	default:
		return 108, 117, 125
	}
}

// metricLabel turns snake_case metric names into readable labels.
func metricLabel(key string) string {
	out := make([]byte, 0, len(key))
	upper := true
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '_' {
			out = append(out, ' ')
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		out = append(out, c)
	}
	return string(out)
}

// formatMetric renders a metric with thousands-friendly precision.
func formatMetric(m models.Metric) string {
	value, ok := m.Float()
	if !ok {
		return "N/A"
	}

	abs := value
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", value/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", value/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", value/1e6)
	case abs >= 1000:
		return fmt.Sprintf("%.0f", value)
	default:
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
}

// Ensure PDFRenderer implements ReportRenderer
var _ interfaces.ReportRenderer = (*PDFRenderer)(nil)
