package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/lingpy/linse"
)

// Load reads the YAML configuration file at path on top of Default and
// returns the validated result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults and
// validates it. Unknown keys are rejected. An empty document yields the
// defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" {
		if _, err := logrus.ParseLevel(cfg.Server.LogLevel); err != nil {
			errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: trace, debug, info, warn, error", cfg.Server.LogLevel))
		}
	}
	if !cfg.Server.LogFormat.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_format %q is invalid; valid values: text, json", cfg.Server.LogFormat))
	}

	if cfg.Data.Dir != "" {
		if fi, err := os.Stat(cfg.Data.Dir); err != nil {
			errs = append(errs, fmt.Errorf("data.dir: %w", err))
		} else if !fi.IsDir() {
			errs = append(errs, fmt.Errorf("data.dir %q is not a directory", cfg.Data.Dir))
		}
	}

	if _, err := linse.ParseStrictness(cfg.Classify.Strictness); err != nil {
		errs = append(errs, fmt.Errorf("classify.strictness %q is invalid; valid values: strict, warn, lenient", cfg.Classify.Strictness))
	}

	if cfg.Batch.Workers < 0 {
		errs = append(errs, fmt.Errorf("batch.workers %d must not be negative", cfg.Batch.Workers))
	}
	if cfg.Batch.MaxWords < 0 {
		errs = append(errs, fmt.Errorf("batch.max_words %d must not be negative", cfg.Batch.MaxWords))
	}

	return errors.Join(errs...)
}

// TokenizeOptions translates the segment section into tokenizer options.
func (c SegmentConfig) TokenizeOptions() []linse.TokenizeOption {
	var opts []linse.TokenizeOption
	if c.MergeVowels != nil {
		opts = append(opts, linse.WithMergeVowels(*c.MergeVowels))
	}
	if c.MergeGeminates {
		opts = append(opts, linse.WithMergeGeminates(true))
	}
	if c.ExpandNasals {
		opts = append(opts, linse.WithExpandNasals(linse.DefaultNasals, linse.DefaultNasalChar, linse.DefaultNasalPlaceholder))
	}
	if c.SemiDiacritics != "" {
		opts = append(opts, linse.WithSemiDiacritics(c.SemiDiacritics))
	}
	return opts
}

// ClassifyOptions translates the classify section into lookup options.
func (c ClassifyConfig) ClassifyOptions() []linse.ClassifyOption {
	s, err := linse.ParseStrictness(c.Strictness)
	if err != nil {
		return nil
	}
	return []linse.ClassifyOption{linse.WithStrictness(s)}
}

// OpenStore loads the reference data named by the data section.
func (c DataConfig) OpenStore(log logrus.FieldLogger) (*linse.Store, error) {
	if c.Dir == "" {
		return linse.Default()
	}
	return linse.New(c.Dir, linse.WithLogger(log))
}
