package config

import "github.com/spf13/pflag"

// Flags holds command-line overrides. Zero values leave the config alone.
type Flags struct {
	Config  string
	Base    string
	Home    string
	Cache   string
	NoCache bool
	Debug   bool
	LogFile string
}

// Bind registers the flags on fs.
func (f *Flags) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.StringVar(&f.Base, "base", "", "Base path (installed game data)")
	fs.StringVar(&f.Home, "home", "", "Home path (user data)")
	fs.StringVar(&f.Cache, "cache", "", "Path to asset cache file")
	fs.BoolVar(&f.NoCache, "no-cache", false, "Do not read or write the asset cache")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to this file as well")
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Base != "" {
		cfg.Paths.BasePath = f.Base
	}
	if f.Home != "" {
		cfg.Paths.HomePath = f.Home
	}
	if f.Cache != "" {
		cfg.Cache.Path = f.Cache
	}
	if f.NoCache {
		cfg.Cache.Disabled = true
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
