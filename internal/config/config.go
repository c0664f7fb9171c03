// Package config defines the YAML configuration shared by the linse
// binaries.
package config

import (
	"github.com/sirupsen/logrus"
)

// LogFormat selects the logrus formatter.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// IsValid reports whether f is a known format. The empty string selects text.
func (f LogFormat) IsValid() bool {
	switch f {
	case "", LogFormatText, LogFormatJSON:
		return true
	}
	return false
}

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Data     DataConfig     `yaml:"data"`
	Segment  SegmentConfig  `yaml:"segment"`
	Classify ClassifyConfig `yaml:"classify"`
	Batch    BatchConfig    `yaml:"batch"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address of the HTTP server, e.g. ":8080".
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel is a logrus level name: trace, debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	LogFormat LogFormat `yaml:"log_format"`

	// CORSOrigins lists the origins allowed to call the API. Empty allows all.
	CORSOrigins []string `yaml:"cors_origins"`

	// Metrics enables the /metrics endpoint.
	Metrics bool `yaml:"metrics"`
}

// DataConfig locates the reference data.
type DataConfig struct {
	// Dir is a data directory on disk. Empty selects the embedded data.
	Dir string `yaml:"dir"`
}

// SegmentConfig holds tokenizer defaults.
type SegmentConfig struct {
	MergeVowels    *bool  `yaml:"merge_vowels"`
	MergeGeminates bool   `yaml:"merge_geminates"`
	ExpandNasals   bool   `yaml:"expand_nasals"`
	SemiDiacritics string `yaml:"semi_diacritics"`
}

// ClassifyConfig holds sound-class lookup defaults.
type ClassifyConfig struct {
	// Strictness is strict, warn or lenient.
	Strictness string `yaml:"strictness"`
	// Model is the default sound-class model.
	Model string `yaml:"model"`
}

// BatchConfig bounds batch annotation.
type BatchConfig struct {
	// Workers is the number of words annotated at once; 0 uses GOMAXPROCS.
	Workers int `yaml:"workers"`
	// MaxWords caps the size of one annotation request; 0 means no cap.
	MaxWords int `yaml:"max_words"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
			LogLevel:   "info",
			LogFormat:  LogFormatText,
			Metrics:    true,
		},
		Classify: ClassifyConfig{Strictness: "strict", Model: "sca"},
		Batch:    BatchConfig{MaxWords: 10000},
	}
}

// NewLogger builds a logrus logger from the server settings. The level and
// format are assumed to have passed Validate.
func (c ServerConfig) NewLogger() *logrus.Logger {
	l := logrus.New()
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		l.SetLevel(lvl)
	}
	if c.LogFormat == LogFormatJSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}
