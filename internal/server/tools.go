package server

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the Vantage MCP server version and status. Use this to verify connectivity."),
	)
}

// createGenerateReportTool returns the generate_report tool definition
func createGenerateReportTool() mcp.Tool {
	return mcp.NewTool("generate_report",
		mcp.WithDescription("Generate a full AI equity research report for a ticker: financial, market, industry, analyst consensus and news sections with an overall signal. The report is stored and returned as markdown."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Stock ticker with exchange suffix (e.g., 'AAPL.US', 'BHP.AU')"),
		),
		mcp.WithNumber("window_days",
			mcp.Description("Analysis window in days of price history (default: 90)"),
		),
		mcp.WithNumber("news_limit",
			mcp.Description("Maximum news items in the news digest (default: 5)"),
		),
	)
}

// createGetReportTool returns the get_report tool definition
func createGetReportTool() mcp.Tool {
	return mcp.NewTool("get_report",
		mcp.WithDescription("Get the most recent stored research report for a ticker as markdown."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Stock ticker with exchange suffix (e.g., 'AAPL.US')"),
		),
	)
}

// createListReportsTool returns the list_reports tool definition
func createListReportsTool() mcp.Tool {
	return mcp.NewTool("list_reports",
		mcp.WithDescription("List tickers that have a stored research report."),
	)
}

// createDeleteReportTool returns the delete_report tool definition
func createDeleteReportTool() mcp.Tool {
	return mcp.NewTool("delete_report",
		mcp.WithDescription("Delete the stored research report for a ticker."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Stock ticker whose stored report should be removed"),
		),
	)
}
