// Package config defines the JSON-serializable configuration model for the
// preprocessing application and loads it through viper. Field names in Go
// mirror the JSON structure used in config files under configs/*.json.
//
// Everything in the file is optional: a missing config file, or a missing
// section, falls back to defaults that produce a sensible cleaning run.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the top-level object decoded from a config file.
type Config struct {
	// Job names the run for logging, metrics labeling, and the run log.
	Job string `mapstructure:"job" json:"job"`

	Input     Input     `mapstructure:"input" json:"input"`
	Output    Output    `mapstructure:"output" json:"output"`
	Clean     Clean     `mapstructure:"clean" json:"clean"`
	Normalize Normalize `mapstructure:"normalize" json:"normalize"`
	History   History   `mapstructure:"history" json:"history"`
	Metrics   Metrics   `mapstructure:"metrics" json:"metrics"`
}

// Input configures where the dataset comes from and how it is parsed.
type Input struct {
	// Path is the local filesystem path to the input CSV. When empty, the
	// run command falls back to its positional argument and then to the
	// default dataset name resolved against the working directory.
	Path string `mapstructure:"path" json:"path"`

	// Comma is the field delimiter as a one-character string. Empty means ",".
	Comma string `mapstructure:"comma" json:"comma"`

	// TrimSpace trims leading/trailing spaces from each cell value.
	TrimSpace bool `mapstructure:"trim_space" json:"trim_space"`

	// NATokens overrides the parser's default missing-value tokens when
	// non-empty.
	NATokens []string `mapstructure:"na_tokens" json:"na_tokens"`
}

// CommaRune returns the configured delimiter as a rune, or ',' when unset.
func (i Input) CommaRune() rune {
	if i.Comma == "" {
		return ','
	}
	return []rune(i.Comma)[0]
}

// Output configures where results are written. Empty paths disable the
// corresponding artifact.
type Output struct {
	// Path is where the cleaned CSV is written.
	Path string `mapstructure:"path" json:"path"`

	// MetadataPath is where the run metadata JSON (including the fitted
	// scaling parameters) is written.
	MetadataPath string `mapstructure:"metadata_path" json:"metadata_path"`
}

// Clean configures the cleaning stages.
type Clean struct {
	// DropColumns lists columns removed before normalization. Names that do
	// not exist in the dataset are ignored.
	DropColumns []string `mapstructure:"drop_columns" json:"drop_columns"`
}

// Normalize configures min-max scaling.
type Normalize struct {
	// Columns restricts scaling to the listed columns. Empty means all
	// numeric columns.
	Columns []string `mapstructure:"columns" json:"columns"`
}

// History configures the SQLite run log.
type History struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	DSN     string `mapstructure:"dsn" json:"dsn"`
}

// Metrics configures the metrics backend.
type Metrics struct {
	// Backend selects the implementation: "none" or "prometheus".
	Backend string `mapstructure:"backend" json:"backend"`

	// PushgatewayURL is the Prometheus Pushgateway base URL, required when
	// Backend is "prometheus".
	PushgatewayURL string `mapstructure:"pushgateway_url" json:"pushgateway_url"`
}

// Load reads configuration from the given file, or searches the usual
// locations ("./nutriprep.json", "./configs/nutriprep.json") when path is
// empty. A missing config file is not an error when searching; the returned
// Config then carries defaults only. An explicit path that cannot be read is
// an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("nutriprep")
		v.SetConfigType("json")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs/")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("job", "clean")
	v.SetDefault("input.comma", ",")
	v.SetDefault("input.trim_space", true)
	v.SetDefault("history.dsn", "nutriprep.db")
	v.SetDefault("metrics.backend", "none")
}
