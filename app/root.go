// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/Luizsilva-repros/intranet/internal/config"
	"github.com/Luizsilva-repros/intranet/internal/logger"
)

var (
	configPath string // Path to the configuration directory
	devMode    bool

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "intranet",
	Short: "Intranet portal with Active Directory and local authentication",
	Long: `Intranet is the company portal. It authenticates users against the
Active Directory with a local credential store as fallback, maps directory
groups to portal groups and lists the internal systems each user may open.`,
	Args:         cobra.OnlyValidArgs,
	SilenceUsage: true,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/",
		"Directory holding main.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the configuration and initializes logging.
func loadConfig(_ *cobra.Command, _ []string) error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	if devMode {
		cfg.DevMode = true
	}

	return logger.Init(cfg.Log)
}
