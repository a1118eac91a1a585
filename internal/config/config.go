package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment override, e.g. ATTRITION_LISTEN_ADDR.
	EnvPrefix = "ATTRITION"
	appDir    = ".attrition"
)

// Global configuration structure.
type Global struct {
	SubmissionsDir string `mapstructure:"submissions_dir" yaml:"submissions_dir,omitempty"`
	PreviewRows    int    `mapstructure:"preview_rows" yaml:"preview_rows"`
	HistogramBins  int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat      string `mapstructure:"log_format" yaml:"log_format"`

	// HTTP surface
	ListenAddr  string `mapstructure:"listen_addr" yaml:"listen_addr"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

// Keys lists the settable configuration keys in display order.
func Keys() []string {
	return []string{"submissions_dir", "preview_rows", "histogram_bins", "log_level", "log_format", "listen_addr", "max_upload_mb"}
}

// MaxUploadBytes converts the configured upload limit to bytes.
func (c *Global) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) << 20 }

// Get returns the string form of a key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "submissions_dir":
		return c.SubmissionsDir, nil
	case "preview_rows":
		return strconv.Itoa(c.PreviewRows), nil
	case "histogram_bins":
		return strconv.Itoa(c.HistogramBins), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "max_upload_mb":
		return strconv.Itoa(c.MaxUploadMB), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses and assigns one key.
func (c *Global) Set(key, val string) error {
	positive := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return 0, fmt.Errorf("invalid positive int for %s: %v", key, val)
		}
		return i, nil
	}
	switch key {
	case "submissions_dir":
		c.SubmissionsDir = val
	case "preview_rows":
		i, err := positive()
		if err != nil {
			return err
		}
		c.PreviewRows = i
	case "histogram_bins":
		i, err := positive()
		if err != nil {
			return err
		}
		c.HistogramBins = i
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	case "listen_addr":
		c.ListenAddr = val
	case "max_upload_mb":
		i, err := positive()
		if err != nil {
			return err
		}
		c.MaxUploadMB = i
	default:
		known := Keys()
		sort.Strings(known)
		return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(known, ", "))
	}
	return nil
}

// DefaultPath returns ~/.attrition/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, appDir, "config.yaml"), nil
}

// DefaultSubmissionsDir returns ~/.attrition/submissions.
func DefaultSubmissionsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, appDir, "submissions"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.attrition/config.yaml, creating the directory if necessary.
// A submissions_dir equal to the default is left out so it keeps following HOME.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	out := *c
	if def, err := DefaultSubmissionsDir(); err == nil && filepath.Clean(out.SubmissionsDir) == def {
		out.SubmissionsDir = ""
	}
	b, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env") into
// the process environment. Variables already set win. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("submissions_dir", "")
	v.SetDefault("preview_rows", 20)
	v.SetDefault("histogram_bins", 20)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("listen_addr", "127.0.0.1:8080")
	v.SetDefault("max_upload_mb", 32)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, appDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.SubmissionsDir == "" {
		dir, err := DefaultSubmissionsDir()
		if err != nil {
			return nil, err
		}
		c.SubmissionsDir = dir
	}
	return &c, nil
}
