package config

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/bashhack/linklock/internal/constants"
	"github.com/bashhack/linklock/internal/errors"
	"github.com/bashhack/linklock/internal/owner"
)

// Config holds all linklock settings
type Config struct {
	// Lock configuration
	LockPath string
	Owner    string
	Timeout  time.Duration

	// Reader/writer exercise
	ContentPath string
	Count       int

	// User experience
	Verbose bool

	// Debugging
	Debug   bool
	LogFile string

	// Build metadata
	VersionInfo VersionInfo
}

// VersionInfo contains build-time version metadata
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// New creates a new Config with default values
func New() *Config {
	return &Config{
		LockPath:    constants.DefaultLockPath,
		ContentPath: constants.DefaultContentPath,
		Count:       constants.DefaultCount,
		Timeout:     constants.DefaultTimeout,
		Owner:       "",
		Verbose:     true,
		Debug:       false,
		LogFile:     "",

		// Default version info, will be overridden if provided
		VersionInfo: VersionInfo{
			Version: "dev",
			Commit:  "unknown",
			Date:    "unknown",
		},
	}
}

// LoadFromEnvironment updates config from LINKLOCK_* environment variables
func (c *Config) LoadFromEnvironment() {
	c.LockPath = getEnvString("LOCK_PATH", c.LockPath)
	c.ContentPath = getEnvString("CONTENT_PATH", c.ContentPath)
	c.Count = getEnvInt("COUNT", c.Count)
	c.Owner = getEnvString("OWNER", c.Owner)
	c.Timeout = getEnvDuration("TIMEOUT", c.Timeout)
	c.Verbose = getEnvBool("VERBOSE", c.Verbose)
	c.Debug = getEnvBool("DEBUG", c.Debug)
	c.LogFile = getEnvString("LOG_FILE", c.LogFile)
}

// quietFlag inverts Verbose so the flag reads naturally on the command line.
type quietFlag struct {
	verbose *bool
}

func (q quietFlag) String() string { return strconv.FormatBool(!*q.verbose) }
func (q quietFlag) Type() string   { return "bool" }

func (q quietFlag) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*q.verbose = !v
	return nil
}

// BindFlags registers command-line flags that override config values.
// Flags are bound directly to the config fields, so values loaded from the
// environment become the flag defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.LockPath, "lock-path", "l", c.LockPath, "Path to lock file")
	fs.StringVarP(&c.ContentPath, "content-path", "c", c.ContentPath, "Path to content file")
	fs.IntVarP(&c.Count, "count", "n", c.Count, "Number of values the writer produces and the reader waits for")
	fs.StringVar(&c.Owner, "owner", c.Owner, "Owner id for the lock marker (default: host_pid_nonce)")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "How long to wait for the lock (0 waits forever)")
	fs.BoolVarP(&c.Debug, "debug", "d", c.Debug, "Enable debug logging")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Path to log file (default: ~/.local/share/linklock/logs/linklock-{lock-hash}.log)")

	q := fs.VarPF(quietFlag{verbose: &c.Verbose}, "quiet", "q", "Hide informational messages")
	q.NoOptDefVal = "true"
}

// Finalize validates and finalizes the configuration
func (c *Config) Finalize() error {
	if c.Count < 1 {
		err := fmt.Errorf("invalid count: %d (must be at least 1)", c.Count)
		return errors.NewConfigError("count", c.Count, errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
	}

	if c.Timeout < 0 {
		err := fmt.Errorf("invalid timeout: %s (must not be negative)", c.Timeout)
		return errors.NewConfigError("timeout", c.Timeout, errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
	}

	if c.LockPath == "" {
		return errors.NewConfigError("lockPath", nil, errors.Wrap(errors.ErrInvalidConfiguration, "lock path must not be empty"))
	}

	var err error
	c.LockPath, err = filepath.Abs(c.LockPath)
	if err != nil {
		return errors.NewConfigError("lockPath", c.LockPath, errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to resolve absolute path: %v", err)))
	}

	if c.ContentPath != "" {
		c.ContentPath, err = filepath.Abs(c.ContentPath)
		if err != nil {
			return errors.NewConfigError("contentPath", c.ContentPath, errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to resolve absolute path: %v", err)))
		}
	}

	if c.ContentPath == c.LockPath {
		return errors.NewConfigError("contentPath", c.ContentPath, errors.Wrap(errors.ErrInvalidConfiguration, "content path must differ from lock path"))
	}

	if c.Owner == "" {
		c.Owner = owner.New().String()
	}
	if strings.ContainsRune(c.Owner, '/') || strings.ContainsRune(c.Owner, filepath.Separator) {
		return errors.NewConfigError("owner", c.Owner, errors.Wrap(errors.ErrInvalidConfiguration, "owner id must not contain a path separator"))
	}

	if c.LogFile == "" {
		// Follow XDG Base Directory Specification
		logDir := os.Getenv("XDG_DATA_HOME")
		if logDir == "" {
			homeDir, err := os.UserHomeDir()
			if err == nil {
				logDir = filepath.Join(homeDir, ".local", "share")
			} else {
				logDir = os.TempDir()
			}
		}

		// Processes sharing a lock share a log file
		lockHash := fmt.Sprintf("%x", sha256OfString(c.LockPath)[:8])
		c.LogFile = filepath.Join(logDir, "linklock", "logs", fmt.Sprintf("linklock-%s.log", lockHash))
	}

	return nil
}

// getEnvString returns an environment variable string or a default value
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(constants.EnvPrefix + key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as int or a default value
func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(constants.EnvPrefix + key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(constants.EnvPrefix + key); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
		if secs, err := strconv.ParseFloat(valueStr, 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return defaultValue
}

// getEnvBool returns an environment variable as bool or a default value
func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(constants.EnvPrefix + key); exists {
		valueLower := strings.ToLower(valueStr)
		if valueLower == "true" || valueLower == "1" || valueLower == "yes" {
			return true
		}
		if valueLower == "false" || valueLower == "0" || valueLower == "no" {
			return false
		}
		// For any other value, fall back to default
	}
	return defaultValue
}

// sha256OfString returns the SHA256 hash of a string
func sha256OfString(input string) []byte {
	hash := sha256.Sum256([]byte(input))
	return hash[:]
}
