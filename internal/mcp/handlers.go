package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/netsentry/internal/history"
	"github.com/ziadkadry99/netsentry/internal/log"
)

// handleRunScan runs a scan and returns the result as JSON.
func (s *Server) handleRunScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.scanner.Scan(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	if s.history != nil {
		if _, err := s.history.Record(ctx, res); err != nil {
			log.Warn("recording scan history", "error", err)
		}
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	if !res.Succeeded() {
		return mcp.NewToolResultError(string(data)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleScanHistory lists recent scans as a markdown table.
func (s *Server) handleScanHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	records, err := s.history.List(ctx, history.Filter{
		Status: request.GetString("status", ""),
		Limit:  limit,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing history failed: %v", err)), nil
	}

	if len(records) == 0 {
		return mcp.NewToolResultText("No scans recorded yet. Run `run_scan` or open the dashboard to scan."), nil
	}

	return mcp.NewToolResultText(formatHistory(records)), nil
}

func formatHistory(records []history.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Recent scans (%d)\n\n", len(records))
	b.WriteString("| Time | Status | Anomalies | Details |\n")
	b.WriteString("|------|--------|-----------|---------|\n")
	for _, r := range records {
		details := r.Message
		if r.Succeeded() {
			var parts []string
			for _, e := range r.Distribution.Entries() {
				parts = append(parts, fmt.Sprintf("%s %d", e.Label, e.Count))
			}
			details = strings.Join(parts, ", ")
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s |\n",
			r.Timestamp.UTC().Format(time.DateTime), r.Status, r.Anomalies, details)
	}
	return b.String()
}
