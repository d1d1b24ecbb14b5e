package engine

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBeamSize        = 1
	DefaultNormalize       = 1.0
	DefaultMaxLengthBreak  = 128
	DefaultMiniBatchWords  = 1024
	DefaultWorkspace       = 128
	DefaultMaxLengthFactor = 2.0
	DefaultGemmPrecision   = "int8shiftAll"
)

// ModelConfig is the option set a model is constructed with. Keys follow the
// engine's YAML option names.
type ModelConfig struct {
	BeamSize         int      `yaml:"beam-size"`
	Normalize        float64  `yaml:"normalize"`
	WordPenalty      float64  `yaml:"word-penalty"`
	MaxLengthBreak   int      `yaml:"max-length-break"`
	MiniBatchWords   int      `yaml:"mini-batch-words"`
	Workspace        int      `yaml:"workspace"`
	MaxLengthFactor  float64  `yaml:"max-length-factor"`
	SkipCost         bool     `yaml:"skip-cost"`
	Quiet            bool     `yaml:"quiet"`
	QuietTranslation bool     `yaml:"quiet-translation"`
	GemmPrecision    string   `yaml:"gemm-precision"`
	Models           []string `yaml:"models"`
	Vocabs           []string `yaml:"vocabs"`
	Shortlist        []string `yaml:"shortlist"`
}

// DefaultModelConfig returns the fixed decoding defaults used for every pair.
// File paths are left empty.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		BeamSize:         DefaultBeamSize,
		Normalize:        DefaultNormalize,
		WordPenalty:      0,
		MaxLengthBreak:   DefaultMaxLengthBreak,
		MiniBatchWords:   DefaultMiniBatchWords,
		Workspace:        DefaultWorkspace,
		MaxLengthFactor:  DefaultMaxLengthFactor,
		SkipCost:         true,
		Quiet:            true,
		QuietTranslation: true,
		GemmPrecision:    DefaultGemmPrecision,
	}
}

// WithFiles returns a copy of c carrying the given model files. An absent
// file stays an empty string, matching what the engine receives for it.
func (c ModelConfig) WithFiles(weights, sourceVocab, targetVocab, shortlist string) ModelConfig {
	c.Models = []string{weights}
	c.Vocabs = []string{sourceVocab, targetVocab}
	c.Shortlist = []string{shortlist, "false"}
	return c
}

// YAML renders the option set in the engine's configuration format.
func (c ModelConfig) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal model config: %w", err)
	}
	return string(out), nil
}
