// Package cmd wires the release CLI. Commands stay thin: they load
// configuration, assemble the collaborators and delegate to the internal
// packages doing the actual work.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/traincut/traincut/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "traincut",
	Short: "Release-train orchestration for npm package suites",
	Long: `Traincut drives releases across the active release trains of a
repository: it determines which release actions are currently applicable,
stages the chosen cut as a pull request, waits for a human to approve it by
merging, and then verifies, tags and publishes the release.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/traincut/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/traincut")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("TRAINCUT")
	// Replace dots with underscores for nested keys in env vars
	// e.g., TRAINCUT_NPM_PUBLISH_REGISTRY for npm.publish_registry
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
