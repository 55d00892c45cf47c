// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/solarlab/pvcompare/internal/contract"
)

// NewMCPServer initializes and configures the pvcompare MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"PV Comparison Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	s.AddTool(mcp.NewTool("normalize_samples",
		mcp.WithDescription("Reduce a raw sample CSV to one mean per (series, month, hour)."),
		mcp.WithString("input_file", mcp.Description("Path to the raw sample CSV (long or wide layout)."), mcp.Required()),
		mcp.WithString("timezone", mcp.Description("IANA timezone used to derive month and hour. Defaults to the configured timezone.")),
		mcp.WithBoolean("resample_hourly", mcp.Description("Average sub-hourly samples per hour before the monthly mean.")),
	), h.handleNormalizeSamples)

	s.AddTool(mcp.NewTool("compare_buckets",
		mcp.WithDescription("Align two bucket tables on (month, hour) and report variant minus reference deviations."),
		mcp.WithString("reference", mcp.Description("Path to the reference bucket CSV."), mcp.Required()),
		mcp.WithString("variant", mcp.Description("Path to the variant bucket CSV."), mcp.Required()),
		mcp.WithString("reference_series", mcp.Description("Only compare this reference series id.")),
		mcp.WithString("variant_series", mcp.Description("Compare every reference series against this variant series id.")),
		mcp.WithBoolean("combine_variant", mcp.Description("Sum all variant series into one before comparing.")),
		mcp.WithBoolean("scale_to_reference", mcp.Description("Scale the variant so its peak matches the reference peak.")),
	), h.handleCompareBuckets)

	s.AddTool(mcp.NewTool("threshold_counts",
		mcp.WithDescription("Count buckets at or above fractions of the peak value."),
		mcp.WithString("input_file", mcp.Description("Path to the bucket CSV."), mcp.Required()),
		mcp.WithString("fractions", mcp.Description("Comma separated peak fractions in (0, 1], e.g. '0.5,0.65,0.8'.")),
		mcp.WithBoolean("by_month", mcp.Description("Count per month against the monthly peak.")),
		mcp.WithString("peak_reference", mcp.Description("Bucket CSV whose monthly peaks set the thresholds. Requires by_month.")),
	), h.handleThresholdCounts)

	s.AddTool(mcp.NewTool("deviation_profile",
		mcp.WithDescription("Summarize measured minus modeled deviations per hour of day."),
		mcp.WithString("measured", mcp.Description("Path to the measured bucket CSV."), mcp.Required()),
		mcp.WithString("modeled", mcp.Description("Path to the modeled bucket CSV."), mcp.Required()),
		mcp.WithNumber("min_deviation", mcp.Description("Drop deviations whose magnitude is at or below this value.")),
	), h.handleDeviationProfile)

	s.AddTool(mcp.NewTool("fleet_distribution",
		mcp.WithDescription("Group system metadata by orientation and tilt band."),
		mcp.WithString("systems_file", mcp.Description("Path to the system metadata CSV."), mcp.Required()),
	), h.handleFleetDistribution)

	return s
}

// StartMCPServer starts the pvcompare MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
