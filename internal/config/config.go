package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAPIURL             = "http://127.0.0.1:8000/api"
	defaultAPITimeout         = 10 * time.Second
	defaultStorage            = StorageFile
	defaultDataDirName        = ".taskmate"
	defaultLogLevel           = "info"
	defaultHost               = "0.0.0.0"
	defaultPort               = 2222
	defaultHostKeyPath        = ".data/host_ed25519"
	defaultIdleTimeout        = 120 * time.Second
	defaultMaxSessions        = 32
	defaultRateLimitPerMinute = 30
	defaultRateLimitBurst     = 5
	maximumRateLimitBurst     = 1000
	maximumConfiguredSessions = 1024

	envConfigFile = "TASKMATE_CONFIG"
)

// Storage backends for the persisted user blob.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config captures startup settings for the client and the SSH server.
type Config struct {
	APIURL     string
	APITimeout time.Duration
	Storage    string
	DataDir    string
	LogLevel   string
	SSH        SSHConfig
}

// SSHConfig holds the settings of the `serve` command.
type SSHConfig struct {
	Host               string
	Port               int
	HostKeyPath        string
	IdleTimeout        time.Duration
	MaxSessions        int
	RateLimitPerMinute int
	RateLimitBurst     int
}

// Address joins host and port.
func (c SSHConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// fileConfig mirrors Config for YAML decoding. Durations are strings so the
// file can say "15s".
type fileConfig struct {
	APIURL     string `yaml:"api_url"`
	APITimeout string `yaml:"api_timeout"`
	Storage    string `yaml:"storage"`
	DataDir    string `yaml:"data_dir"`
	LogLevel   string `yaml:"log_level"`
	SSH        struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		HostKeyPath        string `yaml:"host_key_path"`
		IdleTimeout        string `yaml:"idle_timeout"`
		MaxSessions        int    `yaml:"max_sessions"`
		RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
		RateLimitBurst     int    `yaml:"rate_limit_burst"`
	} `yaml:"ssh"`
}

// Default returns the built-in configuration.
func Default() Config {
	dataDir := defaultDataDirName
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, defaultDataDirName)
	}
	return Config{
		APIURL:     defaultAPIURL,
		APITimeout: defaultAPITimeout,
		Storage:    defaultStorage,
		DataDir:    dataDir,
		LogLevel:   defaultLogLevel,
		SSH: SSHConfig{
			Host:               defaultHost,
			Port:               defaultPort,
			HostKeyPath:        defaultHostKeyPath,
			IdleTimeout:        defaultIdleTimeout,
			MaxSessions:        defaultMaxSessions,
			RateLimitPerMinute: defaultRateLimitPerMinute,
			RateLimitBurst:     defaultRateLimitBurst,
		},
	}
}

// LoadFromEnv loads configuration from the file named by TASKMATE_CONFIG (if
// any) and then applies environment overrides.
func LoadFromEnv() (Config, error) {
	return Load(os.Getenv(envConfigFile))
}

// Load reads the YAML file at path (skipped when path is empty) on top of the
// defaults and then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		errs = append(errs, fmt.Errorf("api url must start with http:// or https://: %q", c.APIURL))
	}
	if c.APITimeout <= 0 {
		errs = append(errs, errors.New("api timeout must be greater than 0"))
	}
	switch c.Storage {
	case StorageFile, StorageSQLite, StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("storage must be one of file, sqlite, memory: %q", c.Storage))
	}
	if c.Storage != StorageMemory && filepath.Clean(c.DataDir) == "." {
		errs = append(errs, errors.New("data dir must not resolve to current directory"))
	}
	if c.SSH.Port < 1 || c.SSH.Port > 65535 {
		errs = append(errs, fmt.Errorf("ssh port must be between 1 and 65535"))
	}
	if filepath.Clean(c.SSH.HostKeyPath) == "." {
		errs = append(errs, errors.New("ssh host key path must not resolve to current directory"))
	}
	if c.SSH.IdleTimeout <= 0 {
		errs = append(errs, errors.New("ssh idle timeout must be greater than 0"))
	}
	if c.SSH.MaxSessions < 1 || c.SSH.MaxSessions > maximumConfiguredSessions {
		errs = append(errs, fmt.Errorf("ssh max sessions must be between 1 and %d", maximumConfiguredSessions))
	}
	if c.SSH.RateLimitPerMinute < 1 || c.SSH.RateLimitPerMinute > 10000 {
		errs = append(errs, errors.New("ssh rate limit must be between 1 and 10000"))
	}
	if c.SSH.RateLimitBurst < 1 || c.SSH.RateLimitBurst > maximumRateLimitBurst {
		errs = append(errs, fmt.Errorf("ssh rate limit burst must be between 1 and %d", maximumRateLimitBurst))
	}
	return errors.Join(errs...)
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.APIURL, fc.APIURL)
	setString(&cfg.Storage, fc.Storage)
	setString(&cfg.DataDir, fc.DataDir)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.SSH.Host, fc.SSH.Host)
	setString(&cfg.SSH.HostKeyPath, fc.SSH.HostKeyPath)
	if fc.SSH.Port != 0 {
		cfg.SSH.Port = fc.SSH.Port
	}
	if fc.SSH.MaxSessions != 0 {
		cfg.SSH.MaxSessions = fc.SSH.MaxSessions
	}
	if fc.SSH.RateLimitPerMinute != 0 {
		cfg.SSH.RateLimitPerMinute = fc.SSH.RateLimitPerMinute
	}
	if fc.SSH.RateLimitBurst != 0 {
		cfg.SSH.RateLimitBurst = fc.SSH.RateLimitBurst
	}
	if fc.APITimeout != "" {
		d, err := time.ParseDuration(fc.APITimeout)
		if err != nil {
			return fmt.Errorf("api_timeout must be a valid duration: %w", err)
		}
		cfg.APITimeout = d
	}
	if fc.SSH.IdleTimeout != "" {
		d, err := time.ParseDuration(fc.SSH.IdleTimeout)
		if err != nil {
			return fmt.Errorf("ssh.idle_timeout must be a valid duration: %w", err)
		}
		cfg.SSH.IdleTimeout = d
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var err error
	if cfg.APIURL, err = readRequiredOrDefault("TASKMATE_API_URL", cfg.APIURL); err != nil {
		return err
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.APITimeout, err = readDuration("TASKMATE_API_TIMEOUT", cfg.APITimeout); err != nil {
		return err
	}
	if cfg.Storage, err = readRequiredOrDefault("TASKMATE_STORAGE", cfg.Storage); err != nil {
		return err
	}
	cfg.Storage = strings.ToLower(cfg.Storage)
	if cfg.DataDir, err = readRequiredOrDefault("TASKMATE_DATA_DIR", cfg.DataDir); err != nil {
		return err
	}
	if cfg.LogLevel, err = readRequiredOrDefault("TASKMATE_LOG_LEVEL", cfg.LogLevel); err != nil {
		return err
	}
	if cfg.SSH.Host, err = readRequiredOrDefault("TASKMATE_SSH_HOST", cfg.SSH.Host); err != nil {
		return err
	}
	if cfg.SSH.Port, err = readInt("TASKMATE_SSH_PORT", cfg.SSH.Port, 1, 65535); err != nil {
		return err
	}
	if cfg.SSH.HostKeyPath, err = readRequiredOrDefault("TASKMATE_SSH_HOST_KEY_PATH", cfg.SSH.HostKeyPath); err != nil {
		return err
	}
	cfg.SSH.HostKeyPath = filepath.Clean(cfg.SSH.HostKeyPath)
	if cfg.SSH.IdleTimeout, err = readDuration("TASKMATE_SSH_IDLE_TIMEOUT", cfg.SSH.IdleTimeout); err != nil {
		return err
	}
	if cfg.SSH.MaxSessions, err = readInt("TASKMATE_SSH_MAX_SESSIONS", cfg.SSH.MaxSessions, 1, maximumConfiguredSessions); err != nil {
		return err
	}
	if cfg.SSH.RateLimitPerMinute, err = readInt("TASKMATE_SSH_RATE_LIMIT_PER_MINUTE", cfg.SSH.RateLimitPerMinute, 1, 10000); err != nil {
		return err
	}
	if cfg.SSH.RateLimitBurst, err = readInt("TASKMATE_SSH_RATE_LIMIT_BURST", cfg.SSH.RateLimitBurst, 1, maximumRateLimitBurst); err != nil {
		return err
	}
	return nil
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func readRequiredOrDefault(key, fallback string) (string, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%s must not be empty", key)
	}

	return raw, nil
}

func readInt(key string, fallback, min, max int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if parsed < min || parsed > max {
		return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
	}

	return parsed, nil
}

func readDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}
