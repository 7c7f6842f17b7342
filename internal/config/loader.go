package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "spreadscan"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "SPREADSCAN"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoaderWithViper creates a loader on v. Each command tree owns its viper
// instance so flag bindings never leak between runs.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load reads the first config file found on the search paths, then applies
// environment variables and defaults. A missing file is not an error.
func (l *Loader) Load() (*Config, error) {
	return l.LoadWithFile("")
}

// LoadWithFile loads configuration from a specific file path, or searches
// the standard locations when configFile is empty.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
	}
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	for _, p := range GetConfigSearchPaths() {
		l.v.AddConfigPath(p)
	}
}

// setupEnvironmentVariables maps vision.key to SPREADSCAN_VISION_KEY.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults registers every key so AutomaticEnv can find it on Unmarshal.
func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("verbose", d.Verbose)

	l.v.SetDefault("vision.endpoint", d.Vision.Endpoint)
	l.v.SetDefault("vision.key", d.Vision.Key)
	l.v.SetDefault("vision.api_version", d.Vision.APIVersion)
	l.v.SetDefault("vision.features", d.Vision.Features)
	l.v.SetDefault("vision.language", d.Vision.Language)
	l.v.SetDefault("vision.timeout", d.Vision.Timeout)

	l.v.SetDefault("pipeline.binder_width", d.Pipeline.BinderWidth)

	l.v.SetDefault("output.dir_name", d.Output.DirName)
	l.v.SetDefault("output.aggregator_file", d.Output.AggregatorFile)
	l.v.SetDefault("output.jpeg_quality", d.Output.JPEGQuality)
	l.v.SetDefault("output.save_images", d.Output.SaveImages)
	l.v.SetDefault("output.annotate_words", d.Output.AnnotateWords)
	l.v.SetDefault("output.annotate_lines", d.Output.AnnotateLines)
	l.v.SetDefault("output.stroke_width", d.Output.StrokeWidth)
	l.v.SetDefault("output.stroke_color", d.Output.StrokeColor)
	l.v.SetDefault("output.pdf", d.Output.PDF)
	l.v.SetDefault("output.metrics_file", d.Output.MetricsFile)
	l.v.SetDefault("output.normalize_text", d.Output.NormalizeText)

	l.v.SetDefault("metrics.pushgateway_url", d.Metrics.PushgatewayURL)
	l.v.SetDefault("metrics.job", d.Metrics.Job)
}

// GenerateDefaultConfigFile writes the defaults as YAML. It refuses to
// overwrite an existing file unless force is set.
func GenerateDefaultConfigFile(filename string, force bool) error {
	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}
	if !force {
		if _, err := os.Stat(filename); err == nil {
			return fmt.Errorf("config file already exists: %s", filename)
		}
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	return os.WriteFile(filename, data, 0o600)
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
		paths = append(paths, filepath.Join(home, ".config", ConfigFileName))
	}

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, ConfigFileName))
	}

	paths = append(paths, "/etc/"+ConfigFileName)

	return paths
}
