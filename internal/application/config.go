package application

import "github.com/spf13/viper"

const (
	DefaultMaxCacheEntries       = 100
	DefaultMaxDiagnosticsEntries = 500

	KeyDebug                 = "engine.debug"
	KeyMemoize               = "engine.memoize"
	KeyMaxCacheEntries       = "engine.max_cache_entries"
	KeyMaxDiagnosticsEntries = "engine.max_diagnostics_entries"
)

type Config struct {
	Debug                 bool
	Memoize               bool
	MaxCacheEntries       int
	MaxDiagnosticsEntries int
}

func DefaultConfig() Config {
	return Config{
		Memoize:               true,
		MaxCacheEntries:       DefaultMaxCacheEntries,
		MaxDiagnosticsEntries: DefaultMaxDiagnosticsEntries,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxCacheEntries <= 0 {
		c.MaxCacheEntries = DefaultMaxCacheEntries
	}
	if c.MaxDiagnosticsEntries <= 0 {
		c.MaxDiagnosticsEntries = DefaultMaxDiagnosticsEntries
	}
	return c
}

func SetViperDefaults(cfg *viper.Viper) {
	defaults := DefaultConfig()
	cfg.SetDefault(KeyDebug, defaults.Debug)
	cfg.SetDefault(KeyMemoize, defaults.Memoize)
	cfg.SetDefault(KeyMaxCacheEntries, defaults.MaxCacheEntries)
	cfg.SetDefault(KeyMaxDiagnosticsEntries, defaults.MaxDiagnosticsEntries)
}

func ConfigFromViper(cfg *viper.Viper) Config {
	if cfg == nil {
		return DefaultConfig()
	}

	SetViperDefaults(cfg)

	return Config{
		Debug:                 cfg.GetBool(KeyDebug),
		Memoize:               cfg.GetBool(KeyMemoize),
		MaxCacheEntries:       cfg.GetInt(KeyMaxCacheEntries),
		MaxDiagnosticsEntries: cfg.GetInt(KeyMaxDiagnosticsEntries),
	}.withDefaults()
}
