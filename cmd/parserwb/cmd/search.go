package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func searchCmd() *cobra.Command {
	var (
		limit     int
		threshold string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run one Wildberries search and print the priced items",
		Long: "Queries the search API directly, without a running daemon, and prints\n" +
			"every item with an extractable price. Nothing is notified or persisted.",
		Example: `  parserwb search "Iphone 16"
  parserwb search "Айфон 16" --threshold 50000 --limit 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var below decimal.Decimal
			if threshold != "" {
				d, err := decimal.NewFromString(threshold)
				if err != nil {
					return fmt.Errorf("parsing --threshold: %w", err)
				}
				below = d
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if limit > 0 {
				cfg.Wildberries.Limit = limit
			}

			searcher := newSearcher(&cfg.Wildberries, nil, newLogger(cfg))
			items, err := searcher.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No priced items found.")
				return nil
			}
			return printItemsTable(cmd.OutOrStdout(), items, below)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (default from config)")
	cmd.Flags().StringVar(&threshold, "threshold", "", "mark items priced at or below this value")

	return cmd
}
