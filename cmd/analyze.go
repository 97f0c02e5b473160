package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/storefront-insights/internal/insight"
)

var (
	analyzeRefresh bool
	analyzeFormat  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze a single storefront and print its insights",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(analyzeFormat); err != nil {
			return err
		}
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		in, err := env.Assembler.Analyze(ctx, args[0], insight.AnalyzeOptions{Refresh: analyzeRefresh})
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), analyzeFormat, in)
	},
}

var competitorsCmd = &cobra.Command{
	Use:   "competitors <url>",
	Short: "Analyze a storefront and its competitors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(analyzeFormat); err != nil {
			return err
		}
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Comparator.Compare(ctx, args[0], insight.AnalyzeOptions{Refresh: analyzeRefresh})
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), analyzeFormat, report)
	},
}

func init() {
	for _, c := range []*cobra.Command{analyzeCmd, competitorsCmd} {
		c.Flags().BoolVar(&analyzeRefresh, "refresh", false, "re-analyze even when a completed record exists")
		c.Flags().StringVar(&analyzeFormat, "format", formatJSON, "output format (json|yaml)")
		rootCmd.AddCommand(c)
	}
}
