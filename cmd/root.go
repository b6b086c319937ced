package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/arcprompt/internal/application"
	"github.com/bnema/arcprompt/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "ARCPROMPT"
	configName = "config"
	configType = "toml"
	configDir  = ".arcprompt"

	keyConfig       = "config"
	keyLibraryPaths = "library.paths"
	keyLogLevel     = "logging.level"
	keyLogFormat    = "logging.format"
)

func Execute() error {
	return newRootCmd().Execute()
}

type rootOptions struct {
	cfg       *viper.Viper
	noMemoize bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{cfg: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "arcprompt",
		Short:         "arcprompt: annotated prompt headers from genre and story-arc patterns",
		Long:          "arcprompt resolves a (tone, language, genre) preference and a (scene, arc, character) context into a deterministic annotated header, falling back through tiered pattern lookups and recording every fallback.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.readConfig()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file path (default ~/.arcprompt/config.toml)")
	flags.StringSlice("library", nil, "Pattern library to layer over the built-in patterns (.yaml, .toml, .db or directory); repeatable")
	flags.String("log-level", logging.DefaultLevel, "Log level: debug, info, warn, error")
	flags.String("log-format", logging.DefaultFormat, "Log format: console or json")
	flags.Bool("debug", false, "Log a warning the first time each pattern fallback happens")
	flags.BoolVar(&opts.noMemoize, "no-memoize", false, "Disable header memoization")
	flags.Int("max-cache-entries", application.DefaultMaxCacheEntries, "Maximum memoized headers")
	flags.Int("max-diagnostics-entries", application.DefaultMaxDiagnosticsEntries, "Maximum retained fallback records")

	bindings := map[string]string{
		keyConfig:                            "config",
		keyLibraryPaths:                      "library",
		keyLogLevel:                          "log-level",
		keyLogFormat:                         "log-format",
		application.KeyDebug:                 "debug",
		application.KeyMaxCacheEntries:       "max-cache-entries",
		application.KeyMaxDiagnosticsEntries: "max-diagnostics-entries",
	}
	for key, flag := range bindings {
		_ = opts.cfg.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newHeaderCmd(opts),
		newBatchCmd(opts),
		newPatternsCmd(opts),
		newSnapshotsCmd(),
	)

	return rootCmd
}

func (o *rootOptions) readConfig() error {
	cfg := o.cfg
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	cfg.AutomaticEnv()

	application.SetViperDefaults(cfg)
	cfg.SetDefault(keyLogLevel, logging.DefaultLevel)
	cfg.SetDefault(keyLogFormat, logging.DefaultFormat)

	if explicit := strings.TrimSpace(cfg.GetString(keyConfig)); explicit != "" {
		cfg.SetConfigFile(explicit)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		return nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	return nil
}

func (o *rootOptions) engineConfig() application.Config {
	engineCfg := application.ConfigFromViper(o.cfg)
	if o.noMemoize {
		engineCfg.Memoize = false
	}

	return engineCfg
}
