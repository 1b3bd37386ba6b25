package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/rider-sim/internal/config"
)

type rootFlags struct {
	configPath string
	envFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	rootCmd := &cobra.Command{
		Use:          "ridersim",
		Short:        "Two-wheeler traffic micro-simulation on a city grid",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "dotenv file (default ./.env)")

	rootCmd.AddCommand(runCmd(&flags))
	rootCmd.AddCommand(pathCmd(&flags))
	rootCmd.AddCommand(hazardsCmd(&flags))
	return rootCmd
}

// loadConfig reads the layered config and applies the logging settings.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	var envFiles []string
	if flags.envFile != "" {
		envFiles = append(envFiles, flags.envFile)
	}
	cfg, err := config.Load(flags.configPath, envFiles...)
	if err != nil {
		return nil, err
	}
	if err := cfg.ConfigureLogger(log.StandardLogger()); err != nil {
		return nil, err
	}
	return cfg, nil
}
