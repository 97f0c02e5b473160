package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/storefront-insights/internal/export"
	"github.com/sells-group/storefront-insights/internal/store"
)

var (
	historyLimit  int
	historyXLSX   string
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently analyzed storefronts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(historyFormat); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		list, err := st.ListRecentInsights(ctx, historyLimit)
		if err != nil {
			return err
		}
		for i := range list {
			list[i].Normalize()
		}

		if historyXLSX != "" {
			if err := export.SaveXLSX(historyXLSX, list); err != nil {
				return err
			}
			zap.L().Info("history exported", zap.String("path", historyXLSX), zap.Int("insights", len(list)))
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %d insights to %s\n", len(list), historyXLSX)
			return err
		}
		return writeOutput(cmd.OutOrStdout(), historyFormat, list)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", store.DefaultListLimit, "number of insights to list (max 100)")
	historyCmd.Flags().StringVar(&historyXLSX, "xlsx", "", "write the history to this spreadsheet instead of stdout")
	historyCmd.Flags().StringVar(&historyFormat, "format", formatJSON, "output format (json|yaml)")
	rootCmd.AddCommand(historyCmd)
}
