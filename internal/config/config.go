// Package config resolves where the todo file lives and the CLI defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFileName   = "todolist.txt"
	DefaultProject    = "General"
	DefaultLogLevel   = "warn"
	DefaultLogFormat  = "text"
	configDirName     = ".todo"
	yamlConfigName    = "config.yaml"
	tomlConfigName    = "config.toml"
	envConfig         = "TODO_CONFIG"
	envFile           = "TODO_FILE"
	envDefaultProject = "TODO_DEFAULT_PROJECT"
	envExportDir      = "TODO_EXPORT_DIR"
	envLogLevel       = "TODO_LOG_LEVEL"
	envLogFormat      = "TODO_LOG_FORMAT"
)

var ErrUnknownKey = errors.New("unknown config key")

type Config struct {
	File           string `yaml:"file,omitempty" toml:"file,omitempty"`
	DefaultProject string `yaml:"default_project,omitempty" toml:"default_project,omitempty"`
	ExportDir      string `yaml:"export_dir,omitempty" toml:"export_dir,omitempty"`
	LogLevel       string `yaml:"log_level,omitempty" toml:"log_level,omitempty"`
	LogFormat      string `yaml:"log_format,omitempty" toml:"log_format,omitempty"`
}

// Keys lists the settable keys in display order.
var Keys = []string{"file", "default_project", "export_dir", "log_level", "log_format"}

// Overrides carries values given on the command line.
type Overrides struct {
	ConfigPath string
	File       string
}

// Loaded is the resolved configuration plus where it came from.
type Loaded struct {
	Config
	Path   string
	Exists bool
}

// Load resolves configuration from, in increasing priority: defaults, the
// config file, environment variables and command line overrides.
func Load(o Overrides) (*Loaded, error) {
	cfg := Defaults()

	path := strings.TrimSpace(o.ConfigPath)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(envConfig))
	}
	if path == "" {
		path = findConfigFile()
	}
	path = expandHome(path)

	out := &Loaded{Path: path}
	fileCfg, exists, err := readConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}
	out.Exists = exists
	cfg.merge(fileCfg)

	loadFromEnv(&cfg)

	if f := strings.TrimSpace(o.File); f != "" {
		cfg.File = f
	}

	cfg.File = expandHome(cfg.File)
	cfg.ExportDir = expandHome(cfg.ExportDir)
	out.Config = cfg
	return out, nil
}

func Defaults() Config {
	return Config{
		File:           filepath.Join(homeDir(), DefaultFileName),
		DefaultProject: DefaultProject,
		ExportDir:      filepath.Join(homeDir(), configDirName, "exports"),
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
	}
}

func (c *Config) merge(o Config) {
	if o.File != "" {
		c.File = o.File
	}
	if o.DefaultProject != "" {
		c.DefaultProject = o.DefaultProject
	}
	if o.ExportDir != "" {
		c.ExportDir = o.ExportDir
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv(envFile); v != "" {
		cfg.File = v
	}
	if v := os.Getenv(envDefaultProject); v != "" {
		cfg.DefaultProject = v
	}
	if v := os.Getenv(envExportDir); v != "" {
		cfg.ExportDir = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(envLogFormat); v != "" {
		cfg.LogFormat = v
	}
}

// Get returns the value stored under key.
func (c Config) Get(key string) (string, error) {
	switch normalizeKey(key) {
	case "file":
		return c.File, nil
	case "default_project":
		return c.DefaultProject, nil
	case "export_dir":
		return c.ExportDir, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set validates and stores value under key. An empty value, "none" or
// "null" clears the key.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "none", "null":
		value = ""
	}
	switch normalizeKey(key) {
	case "file":
		c.File = value
	case "default_project":
		c.DefaultProject = value
	case "export_dir":
		c.ExportDir = value
	case "log_level":
		switch strings.ToLower(value) {
		case "", "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid value for log_level: %q (use debug|info|warn|error)", value)
		}
	case "log_format":
		switch strings.ToLower(value) {
		case "", "text", "json", "logfmt":
			c.LogFormat = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid value for log_format: %q (use text|json|logfmt)", value)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
}

// ReadFile returns only what the config file at path sets. A missing file
// yields a zero Config.
func ReadFile(path string) (Config, error) {
	cfg, _, err := readConfigFile(expandHome(path))
	return cfg, err
}

func readConfigFile(path string) (Config, bool, error) {
	var cfg Config
	if path == "" {
		return cfg, false, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, err
	}
	if isTOML(path) {
		if _, err := toml.Decode(string(b), &cfg); err != nil {
			return cfg, true, err
		}
		return cfg, true, nil
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, true, err
	}
	return cfg, true, nil
}

// Save writes cfg to path, as TOML when path ends in .toml and YAML
// otherwise.
func Save(path string, cfg Config) error {
	path = expandHome(path)
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is empty")
	}
	var buf bytes.Buffer
	if isTOML(path) {
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
	} else {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return err
	}
	return os.Chmod(path, 0o644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// findConfigFile returns the first existing default config file, or the
// default YAML path when neither exists.
func findConfigFile() string {
	dir := filepath.Join(homeDir(), configDirName)
	yamlPath := filepath.Join(dir, yamlConfigName)
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath
	}
	tomlPath := filepath.Join(dir, tomlConfigName)
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath
	}
	return yamlPath
}

func homeDir() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		return "."
	}
	return home
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~"+string(os.PathSeparator)) || path == "~" {
		return filepath.Join(homeDir(), strings.TrimPrefix(path, "~"))
	}
	return path
}
