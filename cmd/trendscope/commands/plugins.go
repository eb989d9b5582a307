package commands

import (
	"fmt"
	"strings"

	"TrendScope/internal/plugins"
	"TrendScope/internal/registry"

	"github.com/spf13/cobra"
)

// pluginsCmd lists the registered component keys.
var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List the registered indicators, strategies, visualizers and data sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := registry.New()
		plugins.Register(reg, plugins.Deps{})
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-12s %s\n", reg.Indicators.Kind()+"s", strings.Join(reg.Indicators.Keys(), ", "))
		fmt.Fprintf(out, "%-12s %s\n", "strategies", strings.Join(reg.Strategies.Keys(), ", "))
		fmt.Fprintf(out, "%-12s %s\n", reg.Visualizers.Kind()+"s", strings.Join(reg.Visualizers.Keys(), ", "))
		fmt.Fprintf(out, "%-12s %s\n", "sources", strings.Join(reg.DataSources.Keys(), ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}
