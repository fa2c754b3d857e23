package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/quantmind-br/scaffold-go/internal/utils"
)

// Config represents the application configuration
type Config struct {
	Template TemplateConfig `mapstructure:"-" yaml:"-"`
	Fetch    FetchConfig    `mapstructure:"fetch" yaml:"fetch"`
	VCS      VCSConfig      `mapstructure:"vcs" yaml:"vcs"`
	Project  ProjectConfig  `mapstructure:"project" yaml:"project"`
	Progress ProgressConfig `mapstructure:"progress" yaml:"progress"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// TemplateConfig holds the template source. It is never read from
// files, flags or the environment.
type TemplateConfig struct {
	URL string
}

// FetchConfig contains download settings
type FetchConfig struct {
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"` // 0 disables the client timeout
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	MaxSize    string        `mapstructure:"max_size" yaml:"max_size"`
	UserAgent  string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// VCSConfig contains repository initialization settings
type VCSConfig struct {
	Backend string   `mapstructure:"backend" yaml:"backend"`
	Command string   `mapstructure:"command" yaml:"command"`
	Args    []string `mapstructure:"args" yaml:"args"`
}

// ProjectConfig describes conventions of the generated project
type ProjectConfig struct {
	PackageManager string `mapstructure:"package_manager" yaml:"package_manager"`
}

// ProgressConfig selects the progress reporter
type ProgressConfig struct {
	Style string `mapstructure:"style" yaml:"style"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MaxSizeBytes returns the parsed fetch size limit
func (c *Config) MaxSizeBytes() int64 {
	n, err := ParseSize(c.Fetch.MaxSize)
	if err != nil {
		n, _ = ParseSize(DefaultMaxSize)
	}
	return n
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Template.URL == "" {
		c.Template.URL = DefaultTemplateURL
	}
	if c.Fetch.Timeout < 0 {
		c.Fetch.Timeout = DefaultFetchTimeout
	}
	if c.Fetch.MaxRetries < 0 {
		c.Fetch.MaxRetries = DefaultMaxRetries
	}
	if c.Fetch.MaxRetries > MaxRetriesLimit {
		c.Fetch.MaxRetries = MaxRetriesLimit
	}
	if c.Fetch.MaxSize == "" {
		c.Fetch.MaxSize = DefaultMaxSize
	} else if n, err := ParseSize(c.Fetch.MaxSize); err != nil {
		return fmt.Errorf("invalid fetch.max_size: %w", err)
	} else if n == 0 {
		return fmt.Errorf("invalid fetch.max_size: must be greater than zero")
	}

	switch c.VCS.Backend {
	case "":
		c.VCS.Backend = DefaultVCSBackend
	case VCSBackendExec, VCSBackendGoGit:
	default:
		return fmt.Errorf("invalid vcs.backend %q: must be %q or %q", c.VCS.Backend, VCSBackendExec, VCSBackendGoGit)
	}
	if c.VCS.Command == "" {
		c.VCS.Command = DefaultVCSCommand
	}
	if len(c.VCS.Args) == 0 {
		c.VCS.Args = append([]string(nil), DefaultVCSArgs...)
	}

	if c.Project.PackageManager == "" {
		c.Project.PackageManager = DefaultPackageManager
	}

	switch c.Progress.Style {
	case "":
		c.Progress.Style = DefaultProgressStyle
	case utils.StyleSpinner, utils.StyleLog, utils.StyleNone:
	default:
		return fmt.Errorf("invalid progress.style %q", c.Progress.Style)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	return nil
}

func ParseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	var multiplier int64 = 1
	if strings.HasSuffix(s, "GB") {
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "GB")
	} else if strings.HasSuffix(s, "MB") {
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "MB")
	} else if strings.HasSuffix(s, "KB") {
		multiplier = 1024
		s = strings.TrimSuffix(s, "KB")
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("no numeric value in size string")
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value: %w", err)
	}

	if n < 0 {
		return 0, fmt.Errorf("negative size not allowed")
	}

	// one byte of headroom for the fetcher's over-limit read
	if n > (math.MaxInt64-1)/multiplier {
		return 0, fmt.Errorf("size %s out of range", s)
	}

	return n * multiplier, nil
}
