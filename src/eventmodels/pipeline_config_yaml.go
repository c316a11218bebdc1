package eventmodels

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMinDte       = 28
	DefaultMaxDte       = 118
	DefaultWindowWidth  = 50
	DefaultSlidingStep  = 1
	DefaultEmbeddingDim = 2
	DefaultWorkers      = 1
)

type SkewnessConfigYAML struct {
	MinDte int `yaml:"minDte"`
	MaxDte int `yaml:"maxDte"`
}

type EntropyConfigYAML struct {
	WindowWidth  int      `yaml:"windowWidth"`
	SlidingStep  int      `yaml:"slidingStep"`
	EmbeddingDim int      `yaml:"embeddingDim"`
	Tolerance    *float64 `yaml:"tolerance,omitempty"`
	Workers      int      `yaml:"workers"`
}

type LogConfigYAML struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

type PipelineConfigYAML struct {
	Skewness SkewnessConfigYAML `yaml:"skewness"`
	Entropy  EntropyConfigYAML  `yaml:"entropy"`
	Log      LogConfigYAML      `yaml:"log"`
}

func NewDefaultPipelineConfig() *PipelineConfigYAML {
	return &PipelineConfigYAML{
		Skewness: SkewnessConfigYAML{
			MinDte: DefaultMinDte,
			MaxDte: DefaultMaxDte,
		},
		Entropy: EntropyConfigYAML{
			WindowWidth:  DefaultWindowWidth,
			SlidingStep:  DefaultSlidingStep,
			EmbeddingDim: DefaultEmbeddingDim,
			Workers:      DefaultWorkers,
		},
		Log: LogConfigYAML{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadPipelineConfig reads a YAML file on top of the defaults. Keys missing
// from the file keep their default value.
func LoadPipelineConfig(path string) (*PipelineConfigYAML, error) {
	config := NewDefaultPipelineConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadPipelineConfig: failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("LoadPipelineConfig: failed to unmarshal %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("LoadPipelineConfig: %w", err)
	}

	return config, nil
}

func (c *PipelineConfigYAML) Validate() error {
	if c.Skewness.MinDte < 0 {
		return &InvalidParameterError{Name: "minDte", Value: c.Skewness.MinDte}
	}

	if c.Skewness.MaxDte <= c.Skewness.MinDte+1 {
		return &InvalidParameterError{Name: "maxDte", Value: c.Skewness.MaxDte}
	}

	if c.Entropy.EmbeddingDim < 1 {
		return &InvalidParameterError{Name: "embeddingDim", Value: c.Entropy.EmbeddingDim}
	}

	if c.Entropy.WindowWidth < c.Entropy.EmbeddingDim+1 {
		return &InvalidParameterError{Name: "windowWidth", Value: c.Entropy.WindowWidth}
	}

	if c.Entropy.SlidingStep < 1 {
		return &InvalidParameterError{Name: "slidingStep", Value: c.Entropy.SlidingStep}
	}

	if c.Entropy.Tolerance != nil && *c.Entropy.Tolerance < 0 {
		return &InvalidParameterError{Name: "tolerance", Value: *c.Entropy.Tolerance}
	}

	if c.Entropy.Workers < 1 {
		return &InvalidParameterError{Name: "workers", Value: c.Entropy.Workers}
	}

	return nil
}
