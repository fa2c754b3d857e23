package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/quantmind-br/scaffold-go/internal/utils"
)

// DefaultTemplateURL is the single template this tool installs
const DefaultTemplateURL = "https://github.com/vinaayakha/react-template/archive/refs/tags/v1.zip"

// VCS backends
const (
	VCSBackendExec  = "exec"
	VCSBackendGoGit = "go-git"
)

// Default values
const (
	// Fetch defaults
	DefaultFetchTimeout = time.Duration(0)
	DefaultMaxRetries   = 0
	MaxRetriesLimit     = 10
	DefaultMaxSize      = "100MB"

	// VCS defaults
	DefaultVCSBackend = VCSBackendExec
	DefaultVCSCommand = "git"

	// Project defaults
	DefaultPackageManager = "npm"

	// Progress defaults
	DefaultProgressStyle = utils.StyleSpinner

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// DefaultVCSArgs are the arguments passed to the VCS command
var DefaultVCSArgs = []string{"init"}

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scaffold"
	}
	return filepath.Join(home, ".scaffold")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Template: TemplateConfig{
			URL: DefaultTemplateURL,
		},
		Fetch: FetchConfig{
			Timeout:    DefaultFetchTimeout,
			MaxRetries: DefaultMaxRetries,
			MaxSize:    DefaultMaxSize,
		},
		VCS: VCSConfig{
			Backend: DefaultVCSBackend,
			Command: DefaultVCSCommand,
			Args:    append([]string(nil), DefaultVCSArgs...),
		},
		Project: ProjectConfig{
			PackageManager: DefaultPackageManager,
		},
		Progress: ProgressConfig{
			Style: DefaultProgressStyle,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
