package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CatalogConfig says where the catalog lives.
type CatalogConfig struct {
	// Source is what serve and browse load: an http(s) URL or a file path.
	Source string `yaml:"source"`
	// File is the catalog the pipeline commands read and write.
	File string `yaml:"file"`
}

// CacheConfig selects the persistent catalog cache.
type CacheConfig struct {
	Backend  string `yaml:"backend"` // file, sqlite or memory
	Path     string `yaml:"path"`
	MaxBytes int    `yaml:"max_bytes,omitempty"`
}

// BrowseConfig tunes the interactive front ends.
type BrowseConfig struct {
	PerPage    int `yaml:"per_page"`
	DebounceMS int `yaml:"debounce_ms"`
}

// ServerConfig configures skillcat serve.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	RequestTimeout string `yaml:"request_timeout,omitempty"`
	Watch          bool   `yaml:"watch,omitempty"`
}

// ImportConfig configures skillcat add.
type ImportConfig struct {
	URLTemplate string   `yaml:"url_template,omitempty"`
	Excludes    []string `yaml:"excludes,omitempty"`
}

// TranslateConfig configures skillcat translate. The API key is never
// stored here; it comes from the environment or the dotenv file.
type TranslateConfig struct {
	BaseURL       string `yaml:"base_url"`
	Model         string `yaml:"model"`
	MaxTokens     int    `yaml:"max_tokens"`
	BatchSize     int    `yaml:"batch_size"`
	SubBatchSize  int    `yaml:"sub_batch_size"`
	PauseMS       int    `yaml:"pause_ms"`
	RetryAttempts int    `yaml:"retry_attempts"`
	RetryDelayMS  int    `yaml:"retry_delay_ms"`
	ProgressFile  string `yaml:"progress_file,omitempty"`
}

// Config is the in-memory representation of ~/.skillcat/skillcat.yaml.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Cache     CacheConfig     `yaml:"cache"`
	Browse    BrowseConfig    `yaml:"browse"`
	Server    ServerConfig    `yaml:"server"`
	Import    ImportConfig    `yaml:"import,omitempty"`
	Translate TranslateConfig `yaml:"translate"`
}

// SkillcatDir returns the absolute path to ~/.skillcat/.
func SkillcatDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".skillcat"), nil
}

// ConfigPath returns the absolute path to ~/.skillcat/skillcat.yaml.
func ConfigPath() (string, error) {
	dir, err := SkillcatDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "skillcat.yaml"), nil
}

// StatePath is where the terminal browser keeps its last URL state.
func StatePath() (string, error) {
	dir, err := SkillcatDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the default Config written on first skillcat init.
func DefaultConfig() (*Config, error) {
	dir, err := SkillcatDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		Catalog: CatalogConfig{
			Source: filepath.Join("data", "skills.json"),
			File:   filepath.Join("data", "skills.json"),
		},
		Cache: CacheConfig{
			Backend:  "file",
			Path:     filepath.Join(dir, "cache"),
			MaxBytes: 5 << 20,
		},
		Browse: BrowseConfig{
			PerPage:    24,
			DebounceMS: 300,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			RequestTimeout: "30s",
		},
		Import: ImportConfig{
			Excludes: []string{".git", "node_modules", "*.tmp"},
		},
		Translate: TranslateConfig{
			BaseURL:       "https://api.moonshot.cn/v1",
			Model:         "kimi-k2.5",
			MaxTokens:     8192,
			BatchSize:     50,
			SubBatchSize:  10,
			PauseMS:       1000,
			RetryAttempts: 3,
			RetryDelayMS:  2000,
			ProgressFile:  filepath.Join("data", "translation-progress.json"),
		},
	}, nil
}

// Load reads and parses ~/.skillcat/skillcat.yaml. Keys missing from the
// file keep their defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	cfg.Cache.Path, err = ExpandPath(cfg.Cache.Path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, falling back to DefaultConfig when no config file
// exists yet. Environment overrides are applied either way.
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if cfg, err = DefaultConfig(); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from SKILLCAT_* variables, read from the process
// environment first and the dotenv file second.
func (c *Config) ApplyEnv() error {
	overrides := []struct {
		key string
		dst *string
	}{
		{"SKILLCAT_CATALOG_SOURCE", &c.Catalog.Source},
		{"SKILLCAT_CATALOG_FILE", &c.Catalog.File},
		{"SKILLCAT_CACHE_BACKEND", &c.Cache.Backend},
		{"SKILLCAT_CACHE_PATH", &c.Cache.Path},
		{"SKILLCAT_SERVER_ADDR", &c.Server.Addr},
		{"SKILLCAT_TRANSLATE_BASE_URL", &c.Translate.BaseURL},
		{"SKILLCAT_TRANSLATE_MODEL", &c.Translate.Model},
	}
	for _, o := range overrides {
		v, err := GetConfigValue(o.key)
		if err != nil {
			return err
		}
		if v != "" {
			*o.dst = v
		}
	}
	return nil
}

// Debounce returns the search debounce as a duration.
func (b BrowseConfig) Debounce() time.Duration {
	return time.Duration(b.DebounceMS) * time.Millisecond
}

// Timeout parses RequestTimeout, defaulting to 30s.
func (s ServerConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(s.RequestTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Save marshals cfg and writes it to ~/.skillcat/skillcat.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
