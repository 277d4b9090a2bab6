package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration structure.
// It defines the conversion input, playback parameters, and follow mode
// settings for the sequence panel.
type Config struct {
	Input struct {
		Path      string `yaml:"path"`       // Default conversion input (video file or frame directory)
		VideoMode bool   `yaml:"video_mode"` // true = video file, false = frame directory
		FrameGlob string `yaml:"frame_glob"` // Pattern matched against frame file names
	} `yaml:"input"`
	Processor struct {
		Command []string `yaml:"command"` // External converter command; {input} and {output} are substituted
		Probe   string   `yaml:"probe"`   // ffprobe binary used to read the source frame rate
	} `yaml:"processor"`
	Playback struct {
		FrameRate     float64 `yaml:"frame_rate"`     // Target playback rate in frames per second
		CacheCapacity int     `yaml:"cache_capacity"` // Maximum resident frames in the preload cache
		NodeName      string  `yaml:"node_name"`      // Stable scene node name for the displayed frame
	} `yaml:"playback"`
	Follow struct {
		Enabled bool `yaml:"enabled"` // Watch the conversion output directory while processing
	} `yaml:"follow"`
	Settings struct {
		Debug bool `yaml:"debug"` // Enable debug logging
	} `yaml:"settings"`
}

// LoadConfig loads configuration from the default location
// (~/.config/splay4d/config.yaml).
func LoadConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(home, ".config", "splay4d", "config.yaml")
	return LoadConfigFile(configPath)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	// Start with default configuration
	cfg := defaultConfig()

	// Try to read the config file
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal into a temporary config to preserve defaults for unset fields
	var tempCfg Config
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Merge the loaded config with defaults
	if tempCfg.Input.Path != "" {
		cfg.Input.Path = tempCfg.Input.Path
	}
	cfg.Input.VideoMode = tempCfg.Input.VideoMode
	if tempCfg.Input.FrameGlob != "" {
		cfg.Input.FrameGlob = tempCfg.Input.FrameGlob
	}

	if len(tempCfg.Processor.Command) > 0 {
		cfg.Processor.Command = tempCfg.Processor.Command
	}
	if tempCfg.Processor.Probe != "" {
		cfg.Processor.Probe = tempCfg.Processor.Probe
	}

	if tempCfg.Playback.FrameRate > 0 {
		cfg.Playback.FrameRate = tempCfg.Playback.FrameRate
	}
	if tempCfg.Playback.CacheCapacity > 0 {
		cfg.Playback.CacheCapacity = tempCfg.Playback.CacheCapacity
	}
	if tempCfg.Playback.NodeName != "" {
		cfg.Playback.NodeName = tempCfg.Playback.NodeName
	}

	cfg.Follow.Enabled = tempCfg.Follow.Enabled
	cfg.Settings.Debug = tempCfg.Settings.Debug

	// Validate the final configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// New returns a configuration populated with safe defaults.
func New() *Config {
	return defaultConfig()
}

// defaultConfig returns the default configuration with safe defaults.
func defaultConfig() *Config {
	cfg := &Config{}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	cfg.Input.Path = filepath.Join(home, "Videos")
	cfg.Input.VideoMode = true
	cfg.Input.FrameGlob = "*.ply"

	cfg.Processor.Command = []string{"sharp-processor", "--input", "{input}", "--output", "{output}"}
	cfg.Processor.Probe = "ffprobe"

	cfg.Playback.FrameRate = 30.0
	cfg.Playback.CacheCapacity = 150
	cfg.Playback.NodeName = "Splat4D"

	cfg.Follow.Enabled = false
	cfg.Settings.Debug = false

	return cfg
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	if c.Playback.FrameRate < 1.0 || c.Playback.FrameRate > 240.0 {
		return fmt.Errorf("playback frame_rate must be between 1 and 240, got %v", c.Playback.FrameRate)
	}
	if c.Playback.CacheCapacity < 1 {
		return fmt.Errorf("playback cache_capacity must be positive, got %d", c.Playback.CacheCapacity)
	}
	if c.Playback.NodeName == "" {
		return fmt.Errorf("playback node_name must not be empty")
	}
	if _, err := glob.Compile(c.Input.FrameGlob); err != nil {
		return fmt.Errorf("invalid input frame_glob %q: %w", c.Input.FrameGlob, err)
	}
	if len(c.Processor.Command) == 0 {
		return fmt.Errorf("processor command must not be empty")
	}
	return nil
}
