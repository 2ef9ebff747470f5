package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LegacyAPIKeyVar is the variable older catalog checkouts keep the
// translation key under, in a .env next to the data directory.
const LegacyAPIKeyVar = "Kimi_API_Key"

// DotEnvPath returns the absolute path to skillcat's dotenv file (~/.skillcat/.env).
func DotEnvPath() (string, error) {
	dir, err := SkillcatDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".env"), nil
}

// LoadDotEnv reads ~/.skillcat/.env and returns key/value pairs. A missing
// file yields an empty map.
func LoadDotEnv() (map[string]string, error) {
	p, err := DotEnvPath()
	if err != nil {
		return nil, err
	}
	return readDotEnv(p)
}

func readDotEnv(p string) (map[string]string, error) {
	m, err := godotenv.Read(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("cannot read dotenv file %s: %w", p, err)
	}
	return m, nil
}

// GetConfigValue returns the effective value for key, using process environment variables
// first, then ~/.skillcat/.env, then a .env in the working directory.
func GetConfigValue(key string) (string, error) {
	if v := os.Getenv(key); v != "" {
		return v, nil
	}
	dotenv, err := LoadDotEnv()
	if err != nil {
		return "", err
	}
	if v := dotenv[key]; v != "" {
		return v, nil
	}
	local, err := readDotEnv(".env")
	if err != nil {
		return "", err
	}
	return local[key], nil
}

// TranslateAPIKey resolves the translation API key, accepting the legacy
// variable name when the new one is unset.
func TranslateAPIKey() (string, error) {
	for _, key := range []string{"SKILLCAT_TRANSLATE_API_KEY", LegacyAPIKeyVar} {
		v, err := GetConfigValue(key)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
	}
	return "", nil
}

// EnsureDotEnvTemplate creates ~/.skillcat/.env if it does not already exist.
//
// The template contains configuration keys with empty values so users can fill
// them in when they want to run the translation pipeline.
func EnsureDotEnvTemplate() error {
	p, err := DotEnvPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(p); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("cannot stat dotenv file %s: %w", p, err)
	}

	body := map[string]string{
		"SKILLCAT_TRANSLATE_API_KEY":  "",
		"SKILLCAT_TRANSLATE_BASE_URL": "",
		"SKILLCAT_TRANSLATE_MODEL":    "",
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(p), err)
	}
	if err := godotenv.Write(body, p); err != nil {
		return fmt.Errorf("cannot write dotenv template %s: %w", p, err)
	}
	return os.Chmod(p, 0o600)
}
