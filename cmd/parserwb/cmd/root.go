// Package cmd implements the parserwb CLI commands.
package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/Nikitosik2311/parserwb/internal/api/client"
	"github.com/Nikitosik2311/parserwb/internal/config"
	"github.com/Nikitosik2311/parserwb/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "parserwb",
	Short: "Watch Wildberries for low prices and alert on Telegram",
	Long: "parserwb polls the Wildberries search API for a list of queries and\n" +
		"sends a Telegram message the first time an item appears at or below\n" +
		"its query's price threshold.",
	SilenceUsage: true,
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML config file (optional; environment alone is enough)")
	flags.String("log-level", "", "log level override (debug, info, warn, error)")
	flags.String("log-format", "", "log format override (text, json)")
	flags.String("server", "http://localhost:8080", "operational API URL of a running daemon")
	flags.String("output", "table", "output format (table, json)")

	for _, name := range []string{"config", "log-level", "log-format", "server", "output"} {
		cobra.CheckErr(viper.BindPFlag(name, flags.Lookup(name)))
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(notifiedCmd())
	rootCmd.AddCommand(watchesCmd())
	rootCmd.AddCommand(quotaCmd())
	rootCmd.AddCommand(versionCmd())
}

func initConfig() {
	viper.SetEnvPrefix("PARSERWB")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadConfig reads the application config and applies the log flag
// overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, err
	}
	if v := viper.GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v := viper.GetString("log-format"); v != "" {
		cfg.Logging.Format = v
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
