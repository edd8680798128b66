package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	apiclient "github.com/Nikitosik2311/parserwb/internal/api/client"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Ask a running daemon to run a cycle now",
		Long:  "Triggers one watch cycle on the daemon at --server and prints its report.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := newClient().TriggerCheck(cmd.Context())
			if errors.Is(err, apiclient.ErrCheckRunning) {
				fmt.Fprintln(cmd.OutOrStdout(), "A cycle is already running; try again shortly.")
				return nil
			}
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), report)
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}
}

func notifiedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notified",
		Short: "List identifiers already alerted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := newClient().ListNotified(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), list)
			}
			for _, id := range list.IDs {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d notified\n", list.Count)
			return nil
		},
	}
}

func watchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watches",
		Short: "List the daemon's configured watches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			watches, err := newClient().ListWatches(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), watches)
			}
			return printWatchesTable(cmd.OutOrStdout(), watches)
		},
	}
}

func quotaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show the daemon's daily search quota",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := newClient().GetQuota(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), q)
			}
			return printQuota(cmd.OutOrStdout(), q)
		},
	}
}
