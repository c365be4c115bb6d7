package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"line-splicer/internal/logger"
)

// Config holds the runtime settings of the CLI. What to edit lives in a
// Descriptor, not here.
type Config struct {
	DescriptorPath string
	LogLevel       string
	LogFile        string
	MaxFileSizeMB  int
	LockTimeoutSec int
}

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		LockTimeoutSec: 30,
	}
}

// BindFlags registers the persistent CLI flags onto fs.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Append logs to this file instead of stderr")
	fs.IntVar(&c.MaxFileSizeMB, "max-file-size", c.MaxFileSizeMB, "Maximum target file size in MB (0 for no limit)")
	fs.IntVar(&c.LockTimeoutSec, "lock-timeout", c.LockTimeoutSec, "Seconds to wait for the advisory lock when a descriptor sets lock = true")
}

// LoggerConfig returns the logger settings carried by c.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{LogLevel: c.LogLevel, LogFilePath: c.LogFile}
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.DescriptorPath != "" {
		info, err := os.Stat(c.DescriptorPath)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("descriptor file does not exist: %s", c.DescriptorPath)
			}
			return fmt.Errorf("error accessing descriptor file: %v", err)
		}
		if info.IsDir() {
			return fmt.Errorf("descriptor path is a directory: %s", c.DescriptorPath)
		}
	}

	if c.MaxFileSizeMB < 0 {
		return fmt.Errorf("max file size must not be negative")
	}

	if c.LockTimeoutSec < 1 || c.LockTimeoutSec > 300 {
		return fmt.Errorf("lock timeout must be between 1 and 300 seconds")
	}

	return nil
}
