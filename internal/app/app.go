// Package app wires configuration, clients, services and the MCP server
// into a single runnable application core shared by the binaries.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/quantfold/vantage/internal/clients/eodhd"
	"github.com/quantfold/vantage/internal/clients/gemini"
	"github.com/quantfold/vantage/internal/common"
	"github.com/quantfold/vantage/internal/interfaces"
	"github.com/quantfold/vantage/internal/sections"
	mcphandlers "github.com/quantfold/vantage/internal/server"
	"github.com/quantfold/vantage/internal/services/assembler"
	"github.com/quantfold/vantage/internal/services/insight"
	"github.com/quantfold/vantage/internal/services/render"
	"github.com/quantfold/vantage/internal/storage"
)

// App holds all initialized services, clients, and the MCP server.
// It is the shared core used by cmd/vantage and cmd/vantage-server.
type App struct {
	Config       *common.Config
	Logger       *common.Logger
	Storage      interfaces.StorageManager
	MarketClient interfaces.MarketDataClient
	ModelClient  interfaces.ModelClient
	Insights     interfaces.InsightGenerator
	Assembler    interfaces.ReportAssembler
	PDFRenderer  *render.PDFRenderer
	CSVRenderer  *render.CSVRenderer
	MCPServer    *server.MCPServer
	StartupTime  time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, the pipeline and
// the MCP server. configPath may be empty, in which case the default
// resolution logic is used.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Config resolution: explicit path, VANTAGE_CONFIG, binary dir, then
	// development fallback
	if configPath == "" {
		configPath = os.Getenv("VANTAGE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "vantage.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/vantage.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	eodhdKey, err := common.ResolveAPIKey("eodhd_api_key", config.Clients.EODHD.APIKey)
	if err != nil {
		logger.Warn().Msg("EODHD API key not configured - report generation will be unavailable")
	}

	geminiKey, err := common.ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - reports will carry metrics without AI analysis")
	}

	var marketClient interfaces.MarketDataClient
	if eodhdKey != "" {
		marketClient = eodhd.NewClient(eodhdKey,
			eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
			eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		)
	}

	var modelClient interfaces.ModelClient
	if geminiKey != "" {
		geminiClient, err := gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			modelClient = geminiClient
		}
	}

	insights := insight.NewService(modelClient,
		insight.WithLogger(logger),
		insight.WithRetries(config.Clients.Gemini.Retries),
		insight.WithCallTimeout(config.Clients.Gemini.GetTimeout()),
	)

	analyzers := sections.All(config.Reports.NewsDigest)
	reportAssembler := assembler.NewService(analyzers, insights, logger)

	mcpServer := server.NewMCPServer(
		"vantage",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:       config,
		Logger:       logger,
		Storage:      storageManager,
		MarketClient: marketClient,
		ModelClient:  modelClient,
		Insights:     insights,
		Assembler:    reportAssembler,
		PDFRenderer:  render.NewPDFRenderer(logger),
		CSVRenderer:  render.NewCSVRenderer(logger),
		MCPServer:    mcpServer,
		StartupTime:  startupStart,
	}

	mcphandlers.RegisterTools(mcpServer, marketClient, reportAssembler, storageManager.ReportStorage(), config, logger)

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
