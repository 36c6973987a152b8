package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile  = flag.String("log-file", "", "Write logs to this file")
	flagTexDir   = flag.String("texture-dir", "", "Extra texture search directory")
	flagNoFlipUV = flag.Bool("no-flip-uv", false, "Keep the importer's native UV origin")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagTexDir != "" {
		cfg.Textures.SearchDirs = append(cfg.Textures.SearchDirs, *flagTexDir)
	}
	if *flagNoFlipUV {
		cfg.Import.FlipUV = false
	}
}
