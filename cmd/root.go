package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"colony/internal/log"
	"colony/internal/registry"
)

var (
	version = "dev"
	cfgFile string
	cfg     Config
)

// Config holds the tool-level settings read from the config file and flags.
type Config struct {
	Registry    string `mapstructure:"registry"`
	RecipesDir  string `mapstructure:"recipes_dir"`
	TemplatesDB string `mapstructure:"templates_db"`
	LogFile     string `mapstructure:"log_file"`
}

var rootCmd = &cobra.Command{
	Use:     "colony",
	Short:   "Planetary production layout engine",
	Long:    `Parses compact planetary layout records into navigable graphs, generates layouts from requested production sets, and manages the identifier registry and template library behind both.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg.LogFile != "" {
			if err := log.SetFileOutput(cfg.LogFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not log to %s: %v\n", cfg.LogFile, err)
			}
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .colony/config.yaml, then ~/.config/colony/config.yaml)")
	rootCmd.PersistentFlags().String("registry", "",
		"path to the identifier registry store")
	_ = viper.BindPFlag("registry", rootCmd.PersistentFlags().Lookup("registry"))
}

func initConfig() {
	viper.SetDefault("registry", filepath.Join(".colony", "registry.json"))
	viper.SetDefault("recipes_dir", filepath.Join(".colony", "recipes"))
	viper.SetDefault("templates_db", filepath.Join(".colony", "templates.db"))
	viper.SetDefault("log_file", "colony.log")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .colony/config.yaml (current directory)
		// 2. ~/.config/colony/config.yaml (user config)
		if _, err := os.Stat(filepath.Join(".colony", "config.yaml")); err == nil {
			viper.SetConfigFile(filepath.Join(".colony", "config.yaml"))
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "colony"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// Defaults cover everything; a missing config file is fine.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Warning: could not read config %s: %v\n", cfgFile, err)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// openRegistry loads the registry store, starting a fresh one when the store
// file does not exist yet.
func openRegistry() (*registry.Registry, error) {
	reg, err := registry.Load(cfg.Registry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("Registry store not found, starting empty", "path", cfg.Registry)
			if err := os.MkdirAll(filepath.Dir(cfg.Registry), 0755); err != nil {
				return nil, fmt.Errorf("failed to create registry directory: %w", err)
			}
			return registry.New(cfg.Registry), nil
		}
		return nil, err
	}
	return reg, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
