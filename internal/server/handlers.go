// Package server exposes the report pipeline over MCP and HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/quantfold/vantage/internal/common"
	"github.com/quantfold/vantage/internal/interfaces"
	"github.com/quantfold/vantage/internal/models"
	"github.com/quantfold/vantage/internal/services/assembler"
)

// RegisterTools registers all MCP tools on the given server.
func RegisterTools(s *mcpserver.MCPServer, market interfaces.MarketDataClient, reports interfaces.ReportAssembler, store interfaces.ReportStorage, config *common.Config, logger *common.Logger) {
	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createGenerateReportTool(), handleGenerateReport(market, reports, store, config, logger))
	s.AddTool(createGetReportTool(), handleGetReport(store, logger))
	s.AddTool(createListReportsTool(), handleListReports(store, logger))
	s.AddTool(createDeleteReportTool(), handleDeleteReport(store, logger))
}

// handleGetVersion implements the get_version tool
func handleGetVersion() mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("Vantage MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleGenerateReport implements the generate_report tool
func handleGenerateReport(market interfaces.MarketDataClient, reports interfaces.ReportAssembler, store interfaces.ReportStorage, config *common.Config, logger *common.Logger) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if market == nil {
			return errorResult("Error: no market data client configured - set EODHD_API_KEY"), nil
		}

		ticker, err := request.RequireString("ticker")
		if err != nil || ticker == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}
		ticker = strings.ToUpper(strings.TrimSpace(ticker))

		windowDays := request.GetInt("window_days", config.Reports.WindowDays)
		newsLimit := request.GetInt("news_limit", config.Reports.NewsDigest)

		to := time.Now()
		from := to.AddDate(0, 0, -windowDays)

		dataset, err := market.GetDataSet(ctx, ticker,
			interfaces.WithDateRange(from, to),
			interfaces.WithNewsLimit(newsLimit),
		)
		if err != nil {
			logger.Error().Err(err).Str("ticker", ticker).Msg("Data retrieval failed")
			if errors.Is(err, models.ErrDataUnavailable) {
				return errorResult(fmt.Sprintf("No data available for %s - check the ticker symbol", ticker)), nil
			}
			return errorResult(fmt.Sprintf("Data error: %v", err)), nil
		}

		doc, err := reports.Run(ctx, dataset)
		if err != nil {
			logger.Error().Err(err).Str("ticker", ticker).Msg("Report run failed")
			if errors.Is(err, assembler.ErrRunCancelled) {
				return errorResult("Report run was cancelled"), nil
			}
			return errorResult(fmt.Sprintf("Report error: %v", err)), nil
		}

		if err := store.SaveReport(ctx, doc); err != nil {
			logger.Warn().Err(err).Str("ticker", ticker).Msg("Report not persisted")
		}

		return textResult(formatReport(doc)), nil
	}
}

// handleGetReport implements the get_report tool
func handleGetReport(store interfaces.ReportStorage, logger *common.Logger) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || ticker == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}
		ticker = strings.ToUpper(strings.TrimSpace(ticker))

		doc, err := store.GetReport(ctx, ticker)
		if err != nil {
			logger.Debug().Err(err).Str("ticker", ticker).Msg("Stored report lookup failed")
			return errorResult(fmt.Sprintf("No stored report for %s - run generate_report first", ticker)), nil
		}

		return textResult(formatReport(doc)), nil
	}
}

// handleListReports implements the list_reports tool
func handleListReports(store interfaces.ReportStorage, logger *common.Logger) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tickers, err := store.ListReports(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Report listing failed")
			return errorResult(fmt.Sprintf("List error: %v", err)), nil
		}

		if len(tickers) == 0 {
			return textResult("No stored reports."), nil
		}

		var sb strings.Builder
		sb.WriteString("# Stored Reports\n\n")
		for _, ticker := range tickers {
			sb.WriteString("- ")
			sb.WriteString(ticker)
			sb.WriteString("\n")
		}
		return textResult(sb.String()), nil
	}
}

// handleDeleteReport implements the delete_report tool
func handleDeleteReport(store interfaces.ReportStorage, logger *common.Logger) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || ticker == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}
		ticker = strings.ToUpper(strings.TrimSpace(ticker))

		if err := store.DeleteReport(ctx, ticker); err != nil {
			logger.Error().Err(err).Str("ticker", ticker).Msg("Report deletion failed")
			return errorResult(fmt.Sprintf("Delete error: %v", err)), nil
		}

		return textResult(fmt.Sprintf("Deleted stored report for %s", ticker)), nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
