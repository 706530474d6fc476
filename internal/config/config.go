package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL             = "http://127.0.0.1:7410"
	DefaultDBFileName         = ".provl.db"
	DefaultCASDirName         = ".provl-cas"
	DefaultAnchorsFileName    = ".provl-anchors.jsonl"
	DefaultLogLevel           = "info"
	DefaultMaxUploadBytes     = 256 * 1024 * 1024
	DefaultMultipartMaxMemory = 8 * 1024 * 1024

	configFileName = ".provl.toml"

	configDirEnvKey          = "PROVL_CONFIG_DIR"
	trustProjectConfigEnvKey = "PROVL_TRUST_PROJECT_CONFIG"
	apiURLEnvKey             = "PROVL_API_URL"
	dbPathEnvKey             = "PROVL_DB"
	casRootEnvKey            = "PROVL_CAS_ROOT"
	anchorsPathEnvKey        = "PROVL_ANCHORS"
	snapCommonEnvKey         = "SNAP_COMMON"

	snapCommonConfigRelativePath = "snap/provl/common/.provl.toml"
)

// UploadConfig limits the multipart ingest and verify endpoints.
type UploadConfig struct {
	MaxUploadBytes     int64 `toml:"max_upload_bytes"`
	MultipartMaxMemory int64 `toml:"multipart_max_memory"`
}

// Config defines runtime configuration for provl.
type Config struct {
	APIURL                   string       `toml:"api_url"`
	DBPath                   string       `toml:"db_path"`
	CASRoot                  string       `toml:"cas_root"`
	AnchorsPath              string       `toml:"anchors_path"`
	LogLevel                 string       `toml:"log_level"`
	Upload                   UploadConfig `toml:"upload"`
	TrustedProjectConfigPath string       `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		LogLevel: DefaultLogLevel,
		Upload: UploadConfig{
			MaxUploadBytes:     DefaultMaxUploadBytes,
			MultipartMaxMemory: DefaultMultipartMaxMemory,
		},
	}
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

var allowedKeys = []string{
	"api_url",
	"db_path",
	"cas_root",
	"anchors_path",
	"log_level",
	"upload.max_upload_bytes",
	"upload.multipart_max_memory",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "db_path":
		return c.DBPath, nil
	case "cas_root":
		return c.CASRoot, nil
	case "anchors_path":
		return c.AnchorsPath, nil
	case "log_level":
		return c.LogLevel, nil
	case "upload.max_upload_bytes":
		return strconv.FormatInt(c.Upload.MaxUploadBytes, 10), nil
	case "upload.multipart_max_memory":
		return strconv.FormatInt(c.Upload.MultipartMaxMemory, 10), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	homePath := filepath.Join(home, configFileName)
	if info, statErr := os.Stat(homePath); statErr == nil && !info.IsDir() {
		return homePath, nil
	} else if statErr != nil && !os.IsNotExist(statErr) {
		return "", statErr
	}

	for _, snapPath := range snapConfigPaths(home) {
		if info, statErr := os.Stat(snapPath); statErr == nil && !info.IsDir() {
			return snapPath, nil
		} else if statErr != nil && !os.IsNotExist(statErr) {
			return "", statErr
		}
	}

	return homePath, nil
}

// snapConfigPaths lists snap config fallbacks in preference order: the
// SNAP_COMMON directory when set, then the legacy path under home.
func snapConfigPaths(home string) []string {
	paths := []string{}
	if snapCommon := strings.TrimSpace(os.Getenv(snapCommonEnvKey)); snapCommon != "" {
		paths = append(paths, filepath.Join(snapCommon, configFileName))
	}
	paths = append(paths, filepath.Join(home, snapCommonConfigRelativePath))
	return paths
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, configFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads config from trusted files and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			homePath := filepath.Join(home, configFileName)
			homeLoaded, loadErr := loadFileIfExists(homePath, &cfg)
			if loadErr != nil {
				return nil, loadErr
			}
			if !homeLoaded {
				for _, snapPath := range snapConfigPaths(home) {
					loaded, loadErr := loadFileIfExists(snapPath, &cfg)
					if loadErr != nil {
						return nil, loadErr
					}
					if loaded {
						break
					}
				}
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, configFileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	if apiURL := os.Getenv(apiURLEnvKey); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if dbPath := os.Getenv(dbPathEnvKey); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if casRoot := os.Getenv(casRootEnvKey); casRoot != "" {
		cfg.CASRoot = casRoot
	}
	if anchorsPath := os.Getenv(anchorsPathEnvKey); anchorsPath != "" {
		cfg.AnchorsPath = anchorsPath
	}

	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	cfg.fillPathDefaults()
	cfg.normalizeUploadDefaults()

	return &cfg, nil
}

// fillPathDefaults anchors unset storage paths next to each other in the
// working directory, so one directory carries the DB, the CAS tree, and the
// anchors ledger together.
func (c *Config) fillPathDefaults() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(cwd, DefaultDBFileName)
	}
	base := filepath.Dir(c.DBPath)
	if c.CASRoot == "" {
		c.CASRoot = filepath.Join(base, DefaultCASDirName)
	}
	if c.AnchorsPath == "" {
		c.AnchorsPath = filepath.Join(base, DefaultAnchorsFileName)
	}
}

func (c *Config) normalizeUploadDefaults() {
	if c.Upload.MaxUploadBytes <= 0 {
		c.Upload.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.Upload.MultipartMaxMemory <= 0 {
		c.Upload.MultipartMaxMemory = DefaultMultipartMaxMemory
	}
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "upload.max_upload_bytes", "upload.multipart_max_memory":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}
