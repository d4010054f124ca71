// Package config loads runner configuration from defaults, an optional YAML
// config file, the legacy /etc/aami/config env file, and AAMI_* environment
// variables, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvFile is the legacy shell-style config file installed on nodes.
// It contains KEY=VALUE lines such as AAMI_CONFIG_SERVER_URL.
const DefaultEnvFile = "/etc/aami/config"

// Config is the complete runner configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Checks  ChecksConfig  `mapstructure:"checks"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig contains config-server connection settings.
type ServerConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ChecksConfig contains check execution settings.
type ChecksConfig struct {
	Hostname    string        `mapstructure:"hostname"`
	TextfileDir string        `mapstructure:"textfile_dir"`
	ScriptDir   string        `mapstructure:"script_dir"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile is an optional YAML config file path.
	ConfigFile string
	// EnvFile is the legacy env file; empty means DefaultEnvFile.
	EnvFile string
}

// Load builds the configuration. A missing config file or env file is not an
// error; unreadable content is.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	// Surface the legacy env file as process environment so viper's env
	// bindings pick it up. Real environment variables win.
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("reading env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Checks.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("detecting hostname: %w", err)
		}
		cfg.Checks.Hostname = hostname
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.url", "")
	v.SetDefault("server.timeout", 30*time.Second)

	v.SetDefault("checks.hostname", "")
	v.SetDefault("checks.textfile_dir", "/var/lib/node_exporter/textfile_collector")
	v.SetDefault("checks.script_dir", "/usr/local/lib/aami/checks")
	v.SetDefault("checks.timeout", 30*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "/var/log/aami/dynamic-check.log")
}

func bindEnv(v *viper.Viper) {
	// Legacy variable names take precedence over the prefixed scheme.
	_ = v.BindEnv("server.url", "AAMI_CONFIG_SERVER_URL", "AAMI_SERVER_URL")
	_ = v.BindEnv("server.timeout", "AAMI_SERVER_TIMEOUT")
	_ = v.BindEnv("checks.hostname", "AAMI_HOSTNAME")
	_ = v.BindEnv("checks.textfile_dir", "TEXTFILE_DIR", "AAMI_TEXTFILE_DIR")
	_ = v.BindEnv("checks.script_dir", "CHECK_SCRIPTS_DIR", "AAMI_CHECK_SCRIPTS_DIR")
	_ = v.BindEnv("checks.timeout", "AAMI_CHECK_TIMEOUT")
	_ = v.BindEnv("logging.level", "AAMI_LOG_LEVEL")
	_ = v.BindEnv("logging.format", "AAMI_LOG_FORMAT")
	_ = v.BindEnv("logging.file", "AAMI_LOG_FILE")
}
