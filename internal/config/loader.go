package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from file, environment, and defaults.
// Uses the global viper instance so a --config file set by the CLI applies.
func Load() (*Config, error) {
	return LoadWithViper(viper.GetViper())
}

// LoadWithViper loads configuration through v
func LoadWithViper(v *viper.Viper) (*Config, error) {
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// An explicit --config file takes precedence over the search paths
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Environment variables (SCAFFOLD_*)
	v.SetEnvPrefix("SCAFFOLD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// The template source is fixed per build
	cfg.Template = TemplateConfig{URL: DefaultTemplateURL}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	// Fetch defaults
	v.SetDefault("fetch.timeout", DefaultFetchTimeout)
	v.SetDefault("fetch.max_retries", DefaultMaxRetries)
	v.SetDefault("fetch.max_size", DefaultMaxSize)
	v.SetDefault("fetch.user_agent", "")

	// VCS defaults
	v.SetDefault("vcs.backend", DefaultVCSBackend)
	v.SetDefault("vcs.command", DefaultVCSCommand)
	v.SetDefault("vcs.args", DefaultVCSArgs)

	// Project defaults
	v.SetDefault("project.package_manager", DefaultPackageManager)

	// Progress defaults
	v.SetDefault("progress.style", DefaultProgressStyle)

	// Logging defaults
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}
