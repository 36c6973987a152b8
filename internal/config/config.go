// Package config handles importer configuration loading and management.
package config

// Config holds all importer settings.
type Config struct {
	Import   ImportConfig  `yaml:"import"`
	Textures TextureConfig `yaml:"textures"`
	Logging  LoggingConfig `yaml:"logging"`
}

// ImportConfig holds scene import settings.
type ImportConfig struct {
	// FlipUV flips the V texture coordinate during import. glTF uses a
	// top-left UV origin while the engine samples from the bottom left.
	FlipUV bool `yaml:"flip_uv"`
}

// TextureConfig holds texture loading settings.
type TextureConfig struct {
	// SearchDirs are extra directories to try when a texture referenced by
	// a model is not found next to the model file.
	SearchDirs []string `yaml:"search_dirs"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			FlipUV: true,
		},
		Textures: TextureConfig{
			SearchDirs: nil,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
