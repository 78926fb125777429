package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/menta2k/attention-analyzer/pkg/congestion"
	"github.com/menta2k/attention-analyzer/pkg/contrast"
	"github.com/menta2k/attention-analyzer/pkg/detection"
	"github.com/menta2k/attention-analyzer/pkg/metrics"
	"github.com/menta2k/attention-analyzer/pkg/palette"
	"github.com/menta2k/attention-analyzer/pkg/render"
	"github.com/menta2k/attention-analyzer/pkg/saliency"
	"github.com/menta2k/attention-analyzer/pkg/vision"
)

// Config holds the application configuration
type Config struct {
	Congestion congestion.Config `json:"congestion"`
	Saliency   saliency.Config   `json:"saliency"`
	Metrics    metrics.Config    `json:"metrics"`
	Contrast   ContrastConfig    `json:"contrast"`
	Render     render.Config     `json:"render"`
	Vision     VisionConfig      `json:"vision"`
	Output     OutputConfig      `json:"output"`
}

// ContrastConfig holds WCAG thresholds and palette extraction settings
type ContrastConfig struct {
	Thresholds contrast.Thresholds `json:"thresholds"`
	Palette    palette.Config      `json:"palette"`
}

// VisionConfig holds configuration for the base predictor and face backend
type VisionConfig struct {
	// Backend is one of none, ollama, llamacpp or gemini.
	Backend       string                 `json:"backend"`
	URL           string                 `json:"url,omitempty"`
	Model         string                 `json:"model"`
	SendSize      int                    `json:"send_size"`
	SendQuality   int                    `json:"send_quality"`
	MinConfidence float64                `json:"min_confidence"`
	Predictor     vision.PredictorConfig `json:"predictor"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	DefaultFormat string `json:"default_format"`
	OutputDir     string `json:"output_dir"`
	Quality       int    `json:"quality"`
	Lossless      bool   `json:"lossless"`
	HeatmapSuffix string `json:"heatmap_suffix"`
	DebugSuffix   string `json:"debug_suffix"`
}

// Backends lists the accepted values of vision.backend
var Backends = []string{"none", "ollama", "llamacpp", "gemini"}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Congestion: congestion.DefaultConfig(),
		Saliency:   saliency.DefaultConfig(),
		Metrics:    metrics.DefaultConfig(),
		Contrast: ContrastConfig{
			Thresholds: contrast.DefaultThresholds(),
			Palette:    palette.DefaultConfig(),
		},
		Render: render.DefaultConfig(),
		Vision: VisionConfig{
			Backend:       "none",
			Model:         "openbmb/minicpm-v4.5",
			SendSize:      1024,
			SendQuality:   85,
			MinConfidence: 0.3,
			Predictor:     vision.DefaultPredictorConfig(),
		},
		Output: OutputConfig{
			DefaultFormat: "png",
			OutputDir:     "./output",
			Quality:       90,
			HeatmapSuffix: "_heatmap",
			DebugSuffix:   "_debug",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Keys missing from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	cg := c.Congestion
	if cg.WindowSize < 1 {
		return fmt.Errorf("congestion.window_size must be positive")
	}
	if cg.ContrastWeight < 0 || cg.OrientationWeight < 0 || cg.ColorWeight < 0 {
		return fmt.Errorf("congestion weights must be non-negative")
	}
	if cg.LowPercentile < 0 || cg.HighPercentile > 100 || cg.LowPercentile >= cg.HighPercentile {
		return fmt.Errorf("congestion percentiles must satisfy 0 <= low < high <= 100")
	}
	if cg.Normalization != congestion.Percentile && cg.Normalization != congestion.ZScore {
		return fmt.Errorf("congestion.normalization must be %q or %q", congestion.Percentile, congestion.ZScore)
	}
	if !(cg.GradeA <= cg.GradeB && cg.GradeB <= cg.GradeC) {
		return fmt.Errorf("congestion grade bounds must be ascending")
	}

	s := c.Saliency
	if s.FaceWeight < 0 || s.TextWeight < 0 || s.BiasWeight < 0 {
		return fmt.Errorf("saliency weights must be non-negative")
	}
	if s.BiasSigmaDivisor < 1 {
		return fmt.Errorf("saliency.bias_sigma_divisor must be positive")
	}

	m := c.Metrics
	if m.FocusPercentile <= 0 || m.FocusPercentile >= 100 {
		return fmt.Errorf("metrics.focus_percentile must be between 0 and 100")
	}
	if m.HotspotThreshold < 0 || m.HotspotThreshold > 1 {
		return fmt.Errorf("metrics.hotspot_threshold must be between 0 and 1")
	}
	if m.HueBins < 1 {
		return fmt.Errorf("metrics.hue_bins must be positive")
	}
	if m.EdgeReference <= 0 || m.EntropyReference <= 0 {
		return fmt.Errorf("metrics reference values must be positive")
	}
	if m.CTA.MaxDetails < 0 {
		return fmt.Errorf("metrics.cta.max_details must not be negative")
	}

	t := c.Contrast.Thresholds
	if t.NormalAA < 1 || t.LargeAA < 1 || t.NormalAAA < t.NormalAA || t.LargeAAA < t.LargeAA {
		return fmt.Errorf("contrast thresholds must be >= 1 with AAA >= AA")
	}
	if c.Contrast.Palette.Colors < 1 {
		return fmt.Errorf("contrast.palette.colors must be positive")
	}
	if c.Contrast.Palette.MaxIterations < 1 {
		return fmt.Errorf("contrast.palette.max_iterations must be positive")
	}

	if c.Render.Alpha < 0 || c.Render.Alpha > 1 {
		return fmt.Errorf("render.alpha must be between 0 and 1")
	}

	if !contains(Backends, c.Vision.Backend) {
		return fmt.Errorf("vision.backend must be one of %s", strings.Join(Backends, ", "))
	}
	if c.Vision.SendQuality < 1 || c.Vision.SendQuality > 100 {
		return fmt.Errorf("vision.send_quality must be between 1 and 100")
	}
	if c.Vision.MinConfidence < 0 || c.Vision.MinConfidence > 1 {
		return fmt.Errorf("vision.min_confidence must be between 0 and 1")
	}

	if !contains([]string{"jpg", "jpeg", "png", "webp"}, strings.ToLower(c.Output.DefaultFormat)) {
		return fmt.Errorf("output.default_format must be jpg, png or webp")
	}
	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	return nil
}

// CongestionConfig returns the feature-congestion parameters
func (c *Config) CongestionConfig() congestion.Config { return c.Congestion }

// FusionConfig returns the saliency boost parameters
func (c *Config) FusionConfig() saliency.Config { return c.Saliency }

// MetricsConfig returns the UX metric thresholds
func (c *Config) MetricsConfig() metrics.Config { return c.Metrics }

// PaletteConfig returns the dominant-colour extraction parameters
func (c *Config) PaletteConfig() palette.Config { return c.Contrast.Palette }

// Thresholds returns the WCAG contrast thresholds
func (c *Config) Thresholds() contrast.Thresholds { return c.Contrast.Thresholds }

// RenderConfig returns the overlay parameters
func (c *Config) RenderConfig() render.Config { return c.Render }

// PredictorConfig returns the heuristic predictor weights
func (c *Config) PredictorConfig() vision.PredictorConfig { return c.Vision.Predictor }

// DetectionConfig returns the face locator settings
func (c *Config) DetectionConfig() detection.Config {
	d := detection.DefaultConfig()
	d.Model = c.Vision.Model
	d.MaxDim = c.Vision.SendSize
	d.Quality = c.Vision.SendQuality
	d.MinConfidence = c.Vision.MinConfidence
	return d
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "attention-analyzer", "config.json")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
