package config

import (
	"fmt"
	"runtime"

	"github.com/spf13/viper"
)

// Config represents the scanner configuration
type Config struct {
	// Scan settings
	Mode       string   `mapstructure:"mode"`        // fast, full
	Policy     string   `mapstructure:"policy"`      // multiset, structural
	Dirs       bool     `mapstructure:"dirs"`        // also detect duplicate directories
	Workers    int      `mapstructure:"workers"`     // number of hashing goroutines
	BufferSize int      `mapstructure:"buffer_size"` // read buffer in bytes (performance only)
	MaxSize    string   `mapstructure:"max_size"`    // skip files larger than this ("" = no limit)
	Extensions []string `mapstructure:"extensions"`  // candidate extensions, overrides media defaults
	AllFiles   bool     `mapstructure:"all_files"`   // treat every regular file as a candidate
	Exclude    []string `mapstructure:"exclude"`     // directory names to skip

	// Report settings
	ReportFormat string `mapstructure:"report_format"` // text, json, csv, html
	OutputFile   string `mapstructure:"output_file"`

	// Web settings
	Listen string `mapstructure:"listen"` // serve address
}

// ScanMode selects how much hashing work the file engine does.
type ScanMode int

const (
	// ModeFast skips full-hashing for files whose size is unique in the
	// candidate set. Cheapest; file duplicates only.
	ModeFast ScanMode = iota

	// ModeFull hashes every candidate file. Required whenever directory
	// digests are computed, since those need every member's hash.
	ModeFull
)

// EqualityPolicy selects the directory equality definition.
type EqualityPolicy int

const (
	// PolicyMultiset compares directories by content only: the multiset
	// of (size, hash) of all candidate files beneath them.
	PolicyMultiset EqualityPolicy = iota

	// PolicyStructural additionally requires identical relative layout:
	// the identity tuple is (relative path, size, hash).
	PolicyStructural
)

// DefaultBufferSize is the read buffer used when none is configured.
const DefaultBufferSize = 1 << 20 // 1 MiB

// LoadConfig loads configuration from environment variables and defaults
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("mode", "fast")
	v.SetDefault("policy", "multiset")
	v.SetDefault("dirs", false)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("buffer_size", DefaultBufferSize)
	v.SetDefault("max_size", "")
	v.SetDefault("all_files", false)
	v.SetDefault("exclude", []string{".git", "node_modules", "vendor", ".svn", ".hg"})
	v.SetDefault("report_format", "")
	v.SetDefault("listen", "127.0.0.1:8080")

	v.SetEnvPrefix("DUPSCAN")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// GetScanMode returns the scan mode enum value
func (c *Config) GetScanMode() ScanMode {
	if c.Mode == "full" {
		return ModeFull
	}
	return ModeFast
}

// GetPolicy returns the equality policy enum value
func (c *Config) GetPolicy() EqualityPolicy {
	if c.Policy == "structural" {
		return PolicyStructural
	}
	return PolicyMultiset
}

// EnableDirs switches directory dedupe on and promotes the scan mode to
// full: directory digests need every candidate's hash.
func (c *Config) EnableDirs() {
	c.Dirs = true
	c.Mode = "full"
}

// Validate checks the configuration before a scan is started. Any error
// returned here surfaces as a fatal config_invalid scan error.
func (c *Config) Validate() error {
	switch c.Mode {
	case "", "fast", "full":
	default:
		return fmt.Errorf("unknown mode %q (want fast or full)", c.Mode)
	}

	switch c.Policy {
	case "", "multiset", "structural":
	default:
		return fmt.Errorf("unknown policy %q (want multiset or structural)", c.Policy)
	}

	// A directory digest needs every file hashed; fast mode cannot
	// provide that.
	if c.GetPolicy() == PolicyStructural && c.GetScanMode() != ModeFull {
		return fmt.Errorf("policy structural requires mode full")
	}

	if c.Dirs && c.GetScanMode() != ModeFull {
		return fmt.Errorf("directory dedupe requires mode full")
	}

	if c.BufferSize < 0 {
		return fmt.Errorf("buffer_size must be positive, got %d", c.BufferSize)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}

	switch c.ReportFormat {
	case "", "text", "txt", "json", "csv", "html":
	default:
		return fmt.Errorf("unknown report format %q", c.ReportFormat)
	}

	return nil
}
