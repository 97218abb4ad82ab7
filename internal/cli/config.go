package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/filesys/pkg/filesys"
)

// ConfigFileName is the project config file looked up in the work directory.
const ConfigFileName = ".fsx.json"

var (
	errConfigFileNotFound = errors.New("config file not found")
	errConfigFileRead     = errors.New("cannot read config file")
	errConfigInvalid      = errors.New("invalid config")
	errFlagRequiresArg    = errors.New("flag requires an argument")
	errUnknownFlag        = errors.New("unknown flag")
)

// Config holds all configuration options.
type Config struct {
	// Octal strings, e.g. "0755".
	DirMode  string `json:"dir_mode,omitempty"`
	FileMode string `json:"file_mode,omitempty"`

	// "lf" or "crlf".
	LineEnding string `json:"line_ending,omitempty"`

	Hash        string `json:"hash,omitempty"`
	LogLevel    string `json:"log_level,omitempty"`
	HistoryFile string `json:"history_file,omitempty"`

	// Resolved (not serialized)
	EffectiveCwd string        `json:"-"`
	Sources      ConfigSources `json:"-"`

	dirMode  os.FileMode
	fileMode os.FileMode
	eol      string
	hash     filesys.HashAlgo
	level    slog.Level
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string
	Project string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DirMode:    "0777",
		FileMode:   "0666",
		LineEnding: "lf",
		Hash:       string(filesys.DefaultHash),
		LogLevel:   "warn",
	}
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride string // -C/--cwd; if empty, os.Getwd() is used
	ConfigPath      string // -c/--config
	Env             map[string]string
}

// LoadConfig merges, lowest to highest precedence: defaults, the global
// config ($XDG_CONFIG_HOME/fsx/config.json or ~/.config/fsx/config.json),
// then the project config (.fsx.json in the work directory) or the file
// given with -c, which must exist.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return Config{}, fmt.Errorf("cannot resolve working directory: %w", err)
	}

	cfg := DefaultConfig()

	if path := globalConfigPath(input.Env); path != "" {
		global, loaded, err := loadConfigFile(path, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = mergeConfig(cfg, global)
			cfg.Sources.Global = path
		}
	}

	projectPath := filepath.Join(workDir, ConfigFileName)
	mustExist := false

	if input.ConfigPath != "" {
		projectPath = input.ConfigPath
		if !filepath.IsAbs(projectPath) {
			projectPath = filepath.Join(workDir, projectPath)
		}

		mustExist = true
	}

	project, loaded, err := loadConfigFile(projectPath, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg = mergeConfig(cfg, project)
		cfg.Sources.Project = projectPath
	}

	cfg.EffectiveCwd = workDir

	if err := cfg.resolve(); err != nil {
		source := cfg.Sources.Project
		if source == "" {
			source = cfg.Sources.Global
		}

		return Config{}, fmt.Errorf("%w %s: %w", errConfigInvalid, source, err)
	}

	return cfg, nil
}

func globalConfigPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "fsx", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "fsx", "config.json")
	}

	return ""
}

// loadConfigFile reads a JSONC config. Missing files are not an error
// unless mustExist is set.
func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !mustExist {
			return Config{}, false, nil
		}

		if os.IsNotExist(err) {
			return Config{}, false, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
		}

		return Config{}, false, fmt.Errorf("%w: %s: %w", errConfigFileRead, path, err)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parseConfig(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	dec := json.NewDecoder(strings.NewReader(string(standardized)))
	dec.DisallowUnknownFields()

	var cfg Config

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.DirMode != "" {
		base.DirMode = overlay.DirMode
	}

	if overlay.FileMode != "" {
		base.FileMode = overlay.FileMode
	}

	if overlay.LineEnding != "" {
		base.LineEnding = overlay.LineEnding
	}

	if overlay.Hash != "" {
		base.Hash = overlay.Hash
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	if overlay.HistoryFile != "" {
		base.HistoryFile = overlay.HistoryFile
	}

	return base
}

// resolve validates the serialized fields and fills the typed ones.
func (c *Config) resolve() error {
	var err error

	if c.dirMode, err = parseMode(c.DirMode); err != nil {
		return fmt.Errorf("dir_mode: %w", err)
	}

	if c.fileMode, err = parseMode(c.FileMode); err != nil {
		return fmt.Errorf("file_mode: %w", err)
	}

	switch strings.ToLower(c.LineEnding) {
	case "lf":
		c.eol = "\n"
	case "crlf":
		c.eol = "\r\n"
	default:
		return fmt.Errorf("line_ending: must be lf or crlf, got %q", c.LineEnding)
	}

	if c.hash, err = filesys.ParseHashAlgo(c.Hash); err != nil {
		return fmt.Errorf("hash: %w", err)
	}

	if err := c.level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	if c.HistoryFile != "" && !filepath.IsAbs(c.HistoryFile) {
		c.HistoryFile = filepath.Join(c.EffectiveCwd, c.HistoryFile)
	}

	return nil
}

func parseMode(s string) (os.FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid octal mode %q", s)
	}

	if v == 0 || v > 0o777 {
		return 0, fmt.Errorf("mode %q out of range", s)
	}

	return os.FileMode(v), nil
}

// Format renders the serialized fields as indented JSON.
func (c Config) Format() (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}
