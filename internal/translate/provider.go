// Package translate fills in Chinese skill descriptions through an
// OpenAI-compatible chat completion API, in resumable batches.
package translate

import (
	"context"
	"fmt"
	"time"

	"github.com/kamusis/skillcat/internal/config"
)

// Translator turns a batch of English descriptions into Chinese. The result
// has exactly one entry per input, in order.
type Translator interface {
	ModelID() string
	Translate(ctx context.Context, descriptions []string) ([]string, error)
}

// Config contains the resolved translation client configuration.
type Config struct {
	Model         string
	APIKey        string
	BaseURL       string
	MaxTokens     int
	RetryAttempts int
	RetryDelay    time.Duration
}

// LoadConfig resolves the client config from the file settings plus the API
// key from the environment or dotenv files.
func LoadConfig(tc config.TranslateConfig) (*Config, error) {
	apiKey, err := config.TranslateAPIKey()
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Model:         tc.Model,
		APIKey:        apiKey,
		BaseURL:       tc.BaseURL,
		MaxTokens:     tc.MaxTokens,
		RetryAttempts: tc.RetryAttempts,
		RetryDelay:    time.Duration(tc.RetryDelayMS) * time.Millisecond,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.moonshot.cn/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "kimi-k2.5"
	}
	return cfg, nil
}

// NewFromConfig returns a translator.
func NewFromConfig(cfg *Config) (Translator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("translate config is nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("translation API key is not configured (set SKILLCAT_TRANSLATE_API_KEY or %s)", config.LegacyAPIKeyVar)
	}
	return NewOpenAI(cfg), nil
}
