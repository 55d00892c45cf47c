package cmd

import (
	"github.com/solarlab/pvcompare/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the pvcompare MCP server",
	Long:  `Launch an MCP server on stdio that lets AI agents run the normalize, compare, threshold, deviation and fleet stages as tools.`,
	Args:  cobra.NoArgs,
	// Stage headers are suppressed per tool call so stdio carries only the protocol.
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
