package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/solarlab/pvcompare/core"
	"github.com/solarlab/pvcompare/internal/contract"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// jsonResult encodes a stage result, keeping an empty alignment as a normal result.
func jsonResult(result any, err error, failure string) *mcp.CallToolResult {
	if err != nil && !contract.IsEmptyAlignment(err) {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", failure, err))
	}
	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleNormalizeSamples(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.InputFile = request.GetString("input_file", "")
	cfg.ResampleHourly = request.GetBool("resample_hourly", cfg.ResampleHourly)
	if tz := request.GetString("timezone", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid timezone: %v", err)), nil
		}
		cfg.Location = loc
	}
	if cfg.InputFile == "" {
		return mcp.NewToolResultError("input_file is required"), nil
	}

	buckets, err := core.GetNormalizeResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	return jsonResult(buckets, err, "normalization failed"), nil
}

func (h *toolHandler) handleCompareBuckets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.ReferenceFile = request.GetString("reference", "")
	cfg.VariantFile = request.GetString("variant", "")
	cfg.ReferenceSeries = request.GetString("reference_series", "")
	cfg.VariantSeries = request.GetString("variant_series", "")
	cfg.CombineVariant = request.GetBool("combine_variant", false)
	cfg.ScaleToReference = request.GetBool("scale_to_reference", false)

	if cfg.CombineVariant && cfg.VariantSeries != "" {
		return mcp.NewToolResultError("combine_variant and variant_series are mutually exclusive"), nil
	}

	result, err := core.GetCompareResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	return jsonResult(result, err, "comparison failed"), nil
}

func (h *toolHandler) handleThresholdCounts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.InputFile = request.GetString("input_file", "")
	cfg.ByMonth = request.GetBool("by_month", false)
	cfg.PeakReferenceFile = request.GetString("peak_reference", "")
	if f := request.GetString("fractions", ""); f != "" {
		fractions, err := contract.ParseFractions(f)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid threshold parameters: %v", err)), nil
		}
		cfg.Fractions = fractions
	}
	if len(cfg.Fractions) == 0 {
		cfg.Fractions = contract.DefaultFractions
	}

	result, err := core.GetThresholdResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	return jsonResult(result, err, "threshold analysis failed"), nil
}

func (h *toolHandler) handleDeviationProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.MeasuredFile = request.GetString("measured", "")
	cfg.ModeledFile = request.GetString("modeled", "")
	cfg.MinDeviation = request.GetFloat("min_deviation", cfg.MinDeviation)
	if cfg.MinDeviation < 0 {
		return mcp.NewToolResultError("min_deviation must not be negative"), nil
	}

	profile, err := core.GetDeviationResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	return jsonResult(profile, err, "deviation profiling failed"), nil
}

func (h *toolHandler) handleFleetDistribution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.InputFile = ""
	cfg.SystemsFile = request.GetString("systems_file", "")

	dist, err := core.GetFleetResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	return jsonResult(dist, err, "fleet analysis failed"), nil
}
