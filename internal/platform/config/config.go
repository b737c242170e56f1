package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultSchema   = "thermo-v1"
	DefaultEndpoint = "https://script.google.com/macros/s/AKfycbwLCETmaa3CmKYrBxHMZek7FB-WFFgQJNsio0FtUSAVV3kA4FvVHZgmzyIYuNcYDxEr/exec"
	EnvPrefix       = "THERMOLAB"
)

type Config struct {
	Form    FormConfig    `mapstructure:"form"`
	Submit  SubmitConfig  `mapstructure:"submit"`
	Export  ExportConfig  `mapstructure:"export"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// FormConfig selects which question schema drives the form.
type FormConfig struct {
	// Schema is a built-in schema id (thermo-v1, thermo-v2, thermo-v3) or the id
	// declared inside SchemaFile.
	Schema string `mapstructure:"schema"`
	// SchemaFile optionally points at a YAML file holding extra schemas.
	SchemaFile string `mapstructure:"schema_file"`
}

type SubmitConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	// Timeout bounds the single outbound call. Zero leaves the HTTP client
	// without a deadline.
	Timeout time.Duration `mapstructure:"timeout"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

type LoggingConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level"`
	// File receives JSON log lines; empty means stderr for CLI commands and
	// <ConfigDir>/thermolab.log for the terminal form.
	File string `mapstructure:"file"`
}

func Default() Config {
	return Config{
		Form:    FormConfig{Schema: DefaultSchema},
		Submit:  SubmitConfig{Endpoint: DefaultEndpoint},
		Export:  ExportConfig{Dir: "."},
		Logging: LoggingConfig{Level: "INFO"},
	}
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()
	v.SetDefault("form.schema", defaults.Form.Schema)
	v.SetDefault("form.schema_file", defaults.Form.SchemaFile)
	v.SetDefault("submit.endpoint", defaults.Submit.Endpoint)
	v.SetDefault("submit.timeout", defaults.Submit.Timeout)
	v.SetDefault("export.dir", defaults.Export.Dir)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.file", defaults.Logging.File)
}

// NewViper returns a viper instance with defaults, env binding and the config
// search path applied. An explicit file wins over the search path.
func NewViper(file string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		return v
	}
	v.SetConfigName("thermolab")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(ConfigDir())
	return v
}

// Load reads the config file (when present), unmarshals and validates it.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Form.Schema) == "" {
		errs = append(errs, fmt.Errorf("form.schema is required"))
	}
	if strings.TrimSpace(c.Submit.Endpoint) == "" {
		errs = append(errs, fmt.Errorf("submit.endpoint is required"))
	}
	if c.Submit.Timeout < 0 {
		errs = append(errs, fmt.Errorf("submit.timeout must not be negative"))
	}
	if !IsValidLogLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level %q is not one of DEBUG, INFO, WARN, ERROR", c.Logging.Level))
	}
	return errors.Join(errs...)
}

func IsValidLogLevel(level string) bool {
	switch strings.ToUpper(level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
		return true
	}
	return false
}

// ConfigDir returns the path to the user's config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "thermolab")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".thermolab"
	}
	return filepath.Join(home, ".config", "thermolab")
}

// LogFile returns where the terminal form writes its log when none is set.
func (c Config) LogFile() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(ConfigDir(), "thermolab.log")
}
