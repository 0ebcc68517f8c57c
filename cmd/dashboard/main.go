// Command dashboard runs the homelab dashboard.
//
//	dashboard serve -c dashboard.yaml   # start the web UI (default)
//	dashboard migrate -c dashboard.yaml # apply database migrations and exit
//	dashboard config -c dashboard.yaml  # print the effective configuration
//	dashboard version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	config "github.com/NordCoder/homelab/internal/config/dashboard"
)

// Set at build time: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Multi-user homelab dashboard",
	Long: `A small dashboard for homelab services.

Users log in with a username, register links to their services and every
dashboard view checks whether each service answers.

Every setting can be overridden from the environment, e.g. DB_DSN or PROBE_TIMEOUT.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dashboard %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config and stamps the build version unless one is configured.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.App.Version == "" || cfg.App.Version == "dev" {
		cfg.App.Version = version
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
