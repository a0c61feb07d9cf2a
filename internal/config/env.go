// Package config resolves platform credentials from an env file and maps
// dataset setting names to their input file locations.
package config

import (
	"log/slog"
	"strings"

	"github.com/joho/godotenv"

	"github.com/commercelab/shopbench/internal/platform"
)

// ScoringPlatformEnvKey selects the platform used for LLM-as-judge scoring.
const ScoringPlatformEnvKey = "SCORING_PLATFORM_ID"

// DefaultScoringPlatformID is used when the env file does not name one.
const DefaultScoringPlatformID = platform.ChatGPT

// Env holds the key/value pairs loaded from a credentials env file.
type Env map[string]string

// LoadEnvFile reads an env file. A missing file yields an empty Env so runs
// can proceed on whatever per-platform config is resolvable.
func LoadEnvFile(path string) Env {
	values, err := godotenv.Read(path)
	if err != nil {
		slog.Debug("env file not loaded", "path", path, "error", err)
		return Env{}
	}
	return Env(values)
}

// PlatformConfig resolves the config for a platform from <ID>_BASE_URL,
// <ID>_API_KEY and <ID>_MODEL keys. It returns false when the API key is
// missing, or the base URL is missing for a platform that requires one.
func (e Env) PlatformConfig(platformID string) (platform.Config, bool) {
	prefix := strings.ToUpper(strings.TrimSpace(platformID))
	cfg := platform.Config{
		BaseURL: cleanValue(e[prefix+"_BASE_URL"]),
		APIKey:  cleanValue(e[prefix+"_API_KEY"]),
		Model:   cleanValue(e[prefix+"_MODEL"]),
	}
	if cfg.APIKey == "" {
		return platform.Config{}, false
	}
	if requiresBaseURL(prefix) && cfg.BaseURL == "" {
		return platform.Config{}, false
	}
	cfg.APIKey = strings.TrimPrefix(cfg.APIKey, "Bearer ")
	return cfg, true
}

// ScoringPlatformID returns the configured scoring platform identifier.
func (e Env) ScoringPlatformID() string {
	value := strings.TrimSpace(e[ScoringPlatformEnvKey])
	if value == "" {
		return DefaultScoringPlatformID
	}
	return value
}

// BuildRegistry registers a client for every known platform whose config
// resolves from the env.
func (e Env) BuildRegistry() *platform.Registry {
	registry := platform.NewRegistry()
	for _, id := range platform.KnownPlatforms() {
		cfg, ok := e.PlatformConfig(id)
		if !ok {
			continue
		}
		client, err := platform.NewClient(id, cfg)
		if err != nil {
			slog.Warn("skipping platform", "platform_id", id, "error", err)
			continue
		}
		registry.Register(id, client)
	}
	return registry
}

// cleanValue strips whitespace and one layer of surrounding quotes.
func cleanValue(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 && value[0] == value[len(value)-1] && (value[0] == '\'' || value[0] == '"') {
		return strings.TrimSpace(value[1 : len(value)-1])
	}
	return value
}

// requiresBaseURL reports whether a platform needs an HTTP base URL.
// Gemini goes through the genai SDK and does not.
func requiresBaseURL(platformID string) bool {
	return platformID != platform.Gemini
}
