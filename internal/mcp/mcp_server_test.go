package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/solarlab/pvcompare/internal/contract"
	mcp_internal "github.com/solarlab/pvcompare/internal/mcp"
	"github.com/solarlab/pvcompare/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *contract.Config {
	return &contract.Config{
		Location:     time.UTC,
		Fractions:    contract.DefaultFractions,
		MinDeviation: contract.DefaultMinDeviation,
		Style:        schema.DefaultChartStyle(),
	}
}

func callTool(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	// No manager: run tracking stays off
	var mgr contract.CacheManager
	s := mcp_internal.NewMCPServer(baseConfig(), mgr)

	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	t.Run("normalize_samples missing input", func(t *testing.T) {
		res := callTool(t, "normalize_samples", map[string]any{})
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, text(res), "input_file is required")
	})

	t.Run("normalize_samples invalid timezone", func(t *testing.T) {
		res := callTool(t, "normalize_samples", map[string]any{"input_file": "raw.csv", "timezone": "Mars/Olympus"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "invalid timezone")
	})

	t.Run("compare_buckets conflicting variant options", func(t *testing.T) {
		res := callTool(t, "compare_buckets", map[string]any{
			"reference":       "a.csv",
			"variant":         "b.csv",
			"variant_series":  "x",
			"combine_variant": true,
		})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "mutually exclusive")
	})

	t.Run("threshold_counts invalid fractions", func(t *testing.T) {
		res := callTool(t, "threshold_counts", map[string]any{"input_file": "b.csv", "fractions": "0.5,1.5"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "invalid threshold parameters")
	})

	t.Run("deviation_profile negative minimum", func(t *testing.T) {
		res := callTool(t, "deviation_profile", map[string]any{"measured": "m.csv", "modeled": "g.csv", "min_deviation": -1.0})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "must not be negative")
	})

	t.Run("compare_buckets missing file", func(t *testing.T) {
		res := callTool(t, "compare_buckets", map[string]any{"reference": "/nonexistent/a.csv", "variant": "/nonexistent/b.csv"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "comparison failed")
	})
}

func TestMCPServerHandlers_Results(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "ref.csv", "id,month,hour,mean_value\na,1,0,10\na,1,1,100\n")
	variant := writeFile(t, dir, "var.csv", "id,month,hour,mean_value\na,1,1,120\na,1,2,5\n")

	t.Run("compare_buckets aligns shared keys", func(t *testing.T) {
		res := callTool(t, "compare_buckets", map[string]any{"reference": ref, "variant": variant})
		require.False(t, res.IsError, text(res))

		var result schema.ComparisonResult
		require.NoError(t, json.Unmarshal([]byte(text(res)), &result))
		require.Len(t, result.Rows, 1)
		assert.Equal(t, 1, result.Rows[0].Hour)
		assert.InDelta(t, 20, result.Rows[0].Deviation, 1e-9)
	})

	t.Run("threshold_counts", func(t *testing.T) {
		res := callTool(t, "threshold_counts", map[string]any{"input_file": ref, "fractions": "0.5"})
		require.False(t, res.IsError, text(res))

		var result schema.ThresholdResult
		require.NoError(t, json.Unmarshal([]byte(text(res)), &result))
		require.Len(t, result.Counts, 1)
		assert.Equal(t, 1, result.Counts[0].Count)
		assert.Equal(t, 100.0, result.Counts[0].Peak)
	})

	t.Run("deviation_profile with no overlap is not an error", func(t *testing.T) {
		other := writeFile(t, dir, "other.csv", "id,month,hour,mean_value\na,6,12,1\n")
		res := callTool(t, "deviation_profile", map[string]any{"measured": ref, "modeled": other})
		assert.False(t, res.IsError, text(res))
		assert.Contains(t, text(res), `"hours": []`)
	})

	t.Run("fleet_distribution", func(t *testing.T) {
		systems := writeFile(t, dir, "systems.csv", "id;azimuth;tilt;capacity\n1;180;30;5000\n2;90;10;3000\n")
		res := callTool(t, "fleet_distribution", map[string]any{"systems_file": systems})
		require.False(t, res.IsError, text(res))

		var dist schema.FleetDistribution
		require.NoError(t, json.Unmarshal([]byte(text(res)), &dist))
		assert.Equal(t, 2, dist.Total)
		assert.InDelta(t, 4000, dist.MeanCapacity, 1e-9)
	})
}
