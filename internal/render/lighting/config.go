package lighting

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Config holds the pipeline's tuned parameters. The defaults reproduce the
// original hand-tuned look; a JSON file can override them.
type Config struct {
	// DarkenLevel is subtracted from each color channel of the
	// illumination buffer inside every occluder footprint.
	DarkenLevel float64 `json:"darken_level"`

	// BlurKernel holds the 7 weights of the separable blur. The weights
	// deliberately sum to slightly under 1 (truncated Gaussian).
	BlurKernel []float32 `json:"blur_kernel"`

	// CompositeScale multiplies illumination before it modulates the
	// world. At 2, mid-gray illumination reproduces the world unchanged
	// and white doubles it.
	CompositeScale float64 `json:"composite_scale"`

	// RotationRate is the angular speed of rotating lights, in radians
	// per second.
	RotationRate float64 `json:"rotation_rate"`
}

// DefaultConfig returns the behavior-preserving defaults.
func DefaultConfig() *Config {
	return &Config{
		DarkenLevel:    0.45,
		BlurKernel:     []float32{0.00598, 0.06062, 0.24184, 0.38310, 0.24184, 0.06062, 0.00598},
		CompositeScale: 2,
		RotationRate:   math.Pi,
	}
}

// LoadConfig loads pipeline config from a JSON file. A missing file yields
// defaults; a malformed one is an error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read lighting config: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse lighting config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the config against the pipeline's requirements.
func (c *Config) Validate() error {
	if len(c.BlurKernel) != blurTaps {
		return fmt.Errorf("lighting: blur kernel must have %d weights, got %d", blurTaps, len(c.BlurKernel))
	}
	if c.DarkenLevel < 0 || c.DarkenLevel > 1 {
		return fmt.Errorf("lighting: darken level %v outside [0, 1]", c.DarkenLevel)
	}
	if c.CompositeScale <= 0 {
		return fmt.Errorf("lighting: composite scale must be positive, got %v", c.CompositeScale)
	}
	return nil
}
