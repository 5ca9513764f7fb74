package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging struct {
		Level       string `yaml:"level"`
		Format      string `yaml:"format"` // "json" or "console"
		Development bool   `yaml:"development"`
	} `yaml:"logging"`
	Resolve struct {
		// EnableFallback switches on the lower-precision substring
		// annotation linking. Deliberately off by default.
		EnableFallback bool `yaml:"enable_fallback"`
	} `yaml:"resolve"`
	Geometry struct {
		ExtractRoot bool `yaml:"extract_root"`
	} `yaml:"geometry"`
	Taxonomy struct {
		Dictionary string `yaml:"dictionary"` // path to the ECLASS CC dump
	} `yaml:"taxonomy"`
	Output struct {
		Path string `yaml:"path"`
	} `yaml:"output"`
	Model struct {
		Name string `yaml:"name"` // namespace for minted identifiers
	} `yaml:"model"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"
	cfg.Output.Path = "output/assembly.aasx"
	cfg.Model.Name = "Assembly"
	return cfg
}

// Load reads the YAML config at path, layered over defaults. A missing file
// is not an error. Environment variables override file values.
func Load(path string) (*Config, error) {
	// Load .env if present
	_ = godotenv.Load()

	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if level := os.Getenv("STEPAAS_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if dict := os.Getenv("STEPAAS_TAXONOMY_DICT"); dict != "" {
		cfg.Taxonomy.Dictionary = dict
	}
	if out := os.Getenv("STEPAAS_OUTPUT"); out != "" {
		cfg.Output.Path = out
	}

	return cfg, nil
}
