package cmd

import (
	"fmt"
	"os"

	"github.com/moviecollections/apiserver/config"
	"github.com/moviecollections/apiserver/internal/logging"
	"github.com/spf13/cobra"
)

var cfg config.Config

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "moviecollections",
	Short: "Movie collections API server",
	Long: `moviecollections serves the movie collections API: accounts, JWT
tokens, the external movie catalog and user collections.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.LoadConfig()
		logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	},
}

// SetVersion sets the version reported by --version.
func SetVersion(version, buildTime string) {
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
