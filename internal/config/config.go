// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	AppName       = "sndgrep"
	ConfigType    = "yaml"
	DefaultConfig = `# sndgrep configuration

# Detection
threshold: 1.0          # Raw transform units a bin component must exceed
bin_mapping: "direct"   # direct = Hz used as bin index (exact for 1 s buffers)
                        # scaled = bin = Hz * N / 8000
transform: "gonum"      # gonum, gofft (power-of-two lengths only), godsp, goertzel

# Sample files
format: "raw"           # raw = headerless little-endian float64, wav = 16-bit mono WAV

# Playback of generated tones
playback: false
device_index: -1        # -1 for default device

# Output
verbose: false          # Dump DTMF bins for every chunk
debug: false            # Enable debug logging on stderr
`
)

// Recognised values for enumerated settings
var (
	BinMappings = []string{"direct", "scaled"}
	Transforms  = []string{"gonum", "gofft", "godsp", "goertzel"}
	Formats     = []string{"raw", "wav"}
)

// Settings holds all application configuration
type Settings struct {
	// Detection
	Threshold  float64 `mapstructure:"threshold"`
	BinMapping string  `mapstructure:"bin_mapping"`
	Transform  string  `mapstructure:"transform"`

	// Sample files
	Format string `mapstructure:"format"`

	// Playback
	Playback    bool `mapstructure:"playback"`
	DeviceIndex int  `mapstructure:"device_index"`

	// Output
	Verbose bool `mapstructure:"verbose"`
	Debug   bool `mapstructure:"debug"`
}

// SetDefaults registers every default with viper
func SetDefaults() {
	viper.SetDefault("threshold", 1.0)
	viper.SetDefault("bin_mapping", "direct")
	viper.SetDefault("transform", "gonum")
	viper.SetDefault("format", "raw")
	viper.SetDefault("playback", false)
	viper.SetDefault("device_index", -1)
	viper.SetDefault("verbose", false)
	viper.SetDefault("debug", false)
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/sndgrep/
func Init() error {
	SetDefaults()

	viper.SetConfigType(ConfigType)

	// Priority order: current directory first, then XDG config
	viper.AddConfigPath(".")

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	viper.AddConfigPath(filepath.Join(configDir, AppName))

	// Try .config.yaml first (hidden file), then config.yaml
	viper.SetConfigName(".config")
	if err = viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("read config: %w", err)
		}
		// No config found - create default in ~/.config/sndgrep/
		if err = ensureConfigExists(filepath.Join(configDir, AppName)); err != nil {
			return err
		}
		if err = viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	if !(s.Threshold > 0) {
		errs = append(errs, fmt.Errorf("threshold must be positive, got %v", s.Threshold))
	}
	if !oneOf(s.BinMapping, BinMappings) {
		errs = append(errs, fmt.Errorf("bin_mapping must be one of %v, got %q", BinMappings, s.BinMapping))
	}
	if !oneOf(s.Transform, Transforms) {
		errs = append(errs, fmt.Errorf("transform must be one of %v, got %q", Transforms, s.Transform))
	}
	if !oneOf(s.Format, Formats) {
		errs = append(errs, fmt.Errorf("format must be one of %v, got %q", Formats, s.Format))
	}
	if s.DeviceIndex < -1 {
		errs = append(errs, fmt.Errorf("device_index must be -1 or a device number, got %d", s.DeviceIndex))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
