package mcp

import "github.com/mark3labs/mcp-go/mcp"

// runScanTool defines the run_scan MCP tool.
var runScanTool = mcp.NewTool("run_scan",
	mcp.WithDescription("Capture live traffic, run anomaly detection and return the scan result: anomaly count, packets over time and the anomaly distribution."),
)

// scanHistoryTool defines the scan_history MCP tool.
var scanHistoryTool = mcp.NewTool("scan_history",
	mcp.WithDescription("List recent scans, newest first."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of scans to return (default 10)"),
	),
	mcp.WithString("status",
		mcp.Description("Only return scans with this status"),
		mcp.Enum("success", "error"),
	),
)
