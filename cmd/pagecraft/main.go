// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pagecraft CLI: split, merge and
// extract pages of PDF documents and convert Word documents to PDF, all
// locally.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pagecraft/internal/secrets"
	"github.com/pdiddy/pagecraft/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds PDF passwords loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the pagecraft CLI.
var rootCmd = &cobra.Command{
	Use:   "pagecraft",
	Short: "Split, merge and convert documents locally",
	Long: `pagecraft recombines and partitions PDF documents and converts Word
documents to PDF without sending anything over the network.

Each operation is a subcommand: split, merge, convert, and ranges. Every
command that writes files accepts --plan to print what it would do as YAML
instead.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pagecraft.yaml or ~/.config/pagecraft/pagecraft.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory holding pdf-user-password and pdf-owner-password")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress bars")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("limits.max_file_size", types.DefaultMaxFileSize)
	v.SetDefault("limits.memory_factor", types.DefaultMemoryFactor)
	v.SetDefault("limits.memory_budget", types.DefaultMemoryBudget)
	v.SetDefault("split.output_dir", ".")
	v.SetDefault("merge.output_dir", ".")
	v.SetDefault("conversion.backend", string(types.BackendNative))
	v.SetDefault("conversion.output_dir", ".")
	v.SetDefault("cache.path", "")
}

func initConfig() {
	setDefaults(viper.GetViper())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pagecraft")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pagecraft"))
		}
	}

	viper.SetEnvPrefix("PAGECRAFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged configuration (defaults, file,
// environment) into a types.Config.
func loadConfig() (types.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.Limits = cfg.Limits.WithDefaults()
	if cfg.Conversion.Backend == "" {
		cfg.Conversion.Backend = types.BackendNative
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
