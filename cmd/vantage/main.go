// Command vantage generates AI equity research reports from the command
// line: one PDF and one CSV per ticker, stored for later retrieval.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/quantfold/vantage/internal/app"
	"github.com/quantfold/vantage/internal/common"
	"github.com/quantfold/vantage/internal/interfaces"
	"github.com/quantfold/vantage/internal/models"
	"github.com/quantfold/vantage/internal/services/assembler"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (default: alongside binary, then config/vantage.toml)")
		outputDir  = flag.String("output", "", "report output directory (default: from config)")
		windowDays = flag.Int("window", 0, "analysis window in days of price history (default: from config)")
		newsLimit  = flag.Int("news", 0, "maximum news items in the digest (default: from config)")
		model      = flag.String("model", "", "model name override (default: from config)")
		noPDF      = flag.Bool("no-pdf", false, "skip PDF output")
		noCSV      = flag.Bool("no-csv", false, "skip CSV output")
		version    = flag.Bool("version", false, "print version and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] TICKER [TICKER...]\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Printf("vantage %s (build %s, commit %s)\n", common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return
	}

	tickers := flag.Args()
	if len(tickers) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if *model != "" {
		os.Setenv("VANTAGE_GEMINI_MODEL", *model)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApp(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if a.MarketClient == nil {
		fmt.Fprintln(os.Stderr, "No market data client configured - set EODHD_API_KEY")
		os.Exit(1)
	}

	dir := a.Config.Reports.OutputDir
	if *outputDir != "" {
		dir = *outputDir
	}
	window := a.Config.Reports.WindowDays
	if *windowDays > 0 {
		window = *windowDays
	}
	news := a.Config.Reports.NewsDigest
	if *newsLimit > 0 {
		news = *newsLimit
	}

	failed := 0
	for _, ticker := range tickers {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if err := runTicker(ctx, a, ticker, dir, window, news, !*noPDF, !*noCSV); err != nil {
			a.Logger.Error().Err(err).Str("ticker", ticker).Msg("Report failed")
			if errors.Is(err, models.ErrDataUnavailable) {
				fmt.Fprintf(os.Stderr, "%s: no data available - check the ticker symbol\n", ticker)
			}
			failed++
			if errors.Is(err, assembler.ErrRunCancelled) || ctx.Err() != nil {
				break
			}
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func runTicker(ctx context.Context, a *app.App, ticker, dir string, windowDays, newsLimit int, writePDF, writeCSV bool) error {
	to := time.Now()
	from := to.AddDate(0, 0, -windowDays)

	dataset, err := a.MarketClient.GetDataSet(ctx, ticker,
		interfaces.WithDateRange(from, to),
		interfaces.WithNewsLimit(newsLimit),
	)
	if err != nil {
		return fmt.Errorf("data retrieval: %w", err)
	}

	doc, err := a.Assembler.Run(ctx, dataset)
	if err != nil {
		return fmt.Errorf("report run: %w", err)
	}

	if err := a.Storage.ReportStorage().SaveReport(ctx, doc); err != nil {
		a.Logger.Warn().Err(err).Str("ticker", ticker).Msg("Report not persisted")
	}

	stem := reportStem(ticker, doc.GeneratedAt)

	if writePDF {
		pdfPath := filepath.Join(dir, stem+".pdf")
		if err := a.PDFRenderer.RenderWithChart(doc, dataset.PriceHistory, pdfPath); err != nil {
			return fmt.Errorf("pdf render: %w", err)
		}
		fmt.Printf("%s: %s\n", ticker, pdfPath)
	}

	if writeCSV {
		csvPath := filepath.Join(dir, stem+".csv")
		if err := a.CSVRenderer.Render(doc, csvPath); err != nil {
			return fmt.Errorf("csv render: %w", err)
		}
		fmt.Printf("%s: %s\n", ticker, csvPath)
	}

	if degraded := doc.DegradedSections(); len(degraded) > 0 {
		names := make([]string, len(degraded))
		for i, k := range degraded {
			names[i] = string(k)
		}
		fmt.Printf("%s: incomplete sections: %s\n", ticker, strings.Join(names, ", "))
	}
	fmt.Printf("%s: overall signal %s\n", ticker, doc.OverallSignal)

	return nil
}

// reportStem builds the output file name stem for a report, with
// filesystem-unfriendly ticker characters replaced.
func reportStem(ticker string, generatedAt time.Time) string {
	safe := strings.NewReplacer(".", "_", "/", "_", ":", "_").Replace(ticker)
	return fmt.Sprintf("EquityResearch_%s_%s", safe, generatedAt.Format("20060102"))
}
