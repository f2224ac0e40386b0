package config

import (
	"errors"
	"os"
	"strings"
)

var (
	// ErrNoAPIKey is returned when neither ANTHROPIC_API_KEY nor
	// anthropic.api_key provides a key.
	ErrNoAPIKey = errors.New("no Anthropic API key: set ANTHROPIC_API_KEY or anthropic.api_key")

	// ErrNoEmbeddingKey is returned when FAQ reranking is enabled but neither
	// GEMINI_API_KEY, GOOGLE_API_KEY nor faq.embedding.api_key provides a key.
	ErrNoEmbeddingKey = errors.New("no Gemini API key: set GEMINI_API_KEY or faq.embedding.api_key")
)

// KeySource represents where an API key was loaded from.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config_file"
	KeySourceNone   KeySource = "none"
)

var (
	anthropicKeyEnv = []string{"ANTHROPIC_API_KEY"}
	embeddingKeyEnv = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
)

// resolveKey returns the first non-empty environment variable in envs, then
// the configured value with ${VAR} references expanded. An unresolved
// reference counts as unset.
func resolveKey(envs []string, configured string) (string, KeySource) {
	for _, env := range envs {
		if key := os.Getenv(env); key != "" {
			return key, KeySourceEnv
		}
	}
	if configured == "" {
		return "", KeySourceNone
	}
	key := os.ExpandEnv(configured)
	if key == "" || strings.HasPrefix(key, "${") {
		return "", KeySourceNone
	}
	return key, KeySourceConfig
}

func anthropicKey(cfg *Config) (string, KeySource) {
	configured := ""
	if cfg != nil {
		configured = cfg.Anthropic.APIKey
	}
	return resolveKey(anthropicKeyEnv, configured)
}

func embeddingKey(cfg *Config) (string, KeySource) {
	configured := ""
	if cfg != nil {
		configured = cfg.FAQ.Embedding.APIKey
	}
	return resolveKey(embeddingKeyEnv, configured)
}

// GetAPIKey returns the Anthropic key for the classifier, specialists and
// synthesizer: ANTHROPIC_API_KEY first, then anthropic.api_key.
func GetAPIKey(cfg *Config) (string, error) {
	key, src := anthropicKey(cfg)
	if src == KeySourceNone {
		return "", ErrNoAPIKey
	}
	return key, nil
}

// GetAPIKeySource reports where GetAPIKey would find the Anthropic key.
func GetAPIKeySource(cfg *Config) KeySource {
	_, src := anthropicKey(cfg)
	return src
}

// GetEmbeddingKey returns the Gemini key used for FAQ reranking:
// GEMINI_API_KEY, then GOOGLE_API_KEY, then faq.embedding.api_key.
func GetEmbeddingKey(cfg *Config) (string, error) {
	key, src := embeddingKey(cfg)
	if src == KeySourceNone {
		return "", ErrNoEmbeddingKey
	}
	return key, nil
}

// GetEmbeddingKeySource reports where GetEmbeddingKey would find the key.
func GetEmbeddingKeySource(cfg *Config) KeySource {
	_, src := embeddingKey(cfg)
	return src
}

// ValidateAPIKey checks the shape of an Anthropic key without calling the API.
func ValidateAPIKey(key string) error {
	switch {
	case key == "":
		return ErrNoAPIKey
	case !strings.HasPrefix(key, "sk-ant-"):
		return errors.New("anthropic.api_key: expected 'sk-ant-' prefix")
	case len(key) < 20:
		return errors.New("anthropic.api_key: key too short")
	}
	return nil
}

// MaskAPIKey hides all but the prefix and last four characters of a key for
// `coverdesk config` output.
func MaskAPIKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) <= 15:
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}
