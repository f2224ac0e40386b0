package config

import (
	"errors"
	"strings"
	"testing"
)

func TestGetAPIKey(t *testing.T) {
	t.Run("from environment variable", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test-key")

		key, err := GetAPIKey(&Config{Anthropic: AnthropicConfig{APIKey: "sk-ant-config-key"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key != "sk-ant-test-key" {
			t.Errorf("expected environment key to win, got %q", key)
		}
	})

	t.Run("from config", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")

		key, err := GetAPIKey(&Config{Anthropic: AnthropicConfig{APIKey: "sk-ant-config-key"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key != "sk-ant-config-key" {
			t.Errorf("expected 'sk-ant-config-key', got %q", key)
		}
	})

	t.Run("unresolved reference", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")

		_, err := GetAPIKey(&Config{Anthropic: AnthropicConfig{APIKey: "${COVERDESK_UNSET_KEY}"}})
		if err != ErrNoAPIKey {
			t.Errorf("expected ErrNoAPIKey, got %v", err)
		}
	})

	t.Run("no key configured", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")

		if _, err := GetAPIKey(nil); err != ErrNoAPIKey {
			t.Errorf("expected ErrNoAPIKey, got %v", err)
		}
	})
}

func TestGetEmbeddingKey(t *testing.T) {
	tests := []struct {
		name    string
		gemini  string
		google  string
		config  string
		want    string
		wantErr bool
	}{
		{"gemini env", "g-key", "o-key", "c-key", "g-key", false},
		{"google env", "", "o-key", "c-key", "o-key", false},
		{"config", "", "", "c-key", "c-key", false},
		{"none", "", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GEMINI_API_KEY", tt.gemini)
			t.Setenv("GOOGLE_API_KEY", tt.google)

			cfg := Default()
			cfg.FAQ.Embedding.APIKey = tt.config

			key, err := GetEmbeddingKey(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetEmbeddingKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if key != tt.want {
				t.Errorf("GetEmbeddingKey() = %q, want %q", key, tt.want)
			}
		})
	}
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid key", "sk-ant-REDACTED", false},
		{"empty key", "", true},
		{"wrong prefix", "sk-openai-12345678901234567890", true},
		{"too short", "sk-ant-abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateAPIKey(tt.key); (err != nil) != tt.wantErr {
				t.Errorf("ValidateAPIKey() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := map[string]string{
		"sk-ant-REDACTED": "sk-ant-...wxyz",
		"":                                  "(not set)",
		"short":                             "***",
	}

	for key, want := range tests {
		if got := MaskAPIKey(key); got != want {
			t.Errorf("MaskAPIKey(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestGetAPIKeySource(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	if source := GetAPIKeySource(&Config{}); source != KeySourceEnv {
		t.Errorf("expected KeySourceEnv, got %v", source)
	}

	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg := &Config{Anthropic: AnthropicConfig{APIKey: "sk-ant-config-key"}}
	if source := GetAPIKeySource(cfg); source != KeySourceConfig {
		t.Errorf("expected KeySourceConfig, got %v", source)
	}

	if source := GetAPIKeySource(&Config{}); source != KeySourceNone {
		t.Errorf("expected KeySourceNone, got %v", source)
	}
}

func TestGetEmbeddingKeySource(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "o-key")
	if source := GetEmbeddingKeySource(Default()); source != KeySourceEnv {
		t.Errorf("expected KeySourceEnv, got %v", source)
	}

	t.Setenv("GOOGLE_API_KEY", "")
	cfg := Default()
	cfg.FAQ.Embedding.APIKey = "${COVERDESK_TEST_GEMINI}"
	if source := GetEmbeddingKeySource(cfg); source != KeySourceNone {
		t.Errorf("unresolved reference: expected KeySourceNone, got %v", source)
	}

	t.Setenv("COVERDESK_TEST_GEMINI", "expanded")
	if source := GetEmbeddingKeySource(cfg); source != KeySourceConfig {
		t.Errorf("expected KeySourceConfig, got %v", source)
	}
	if key, _ := GetEmbeddingKey(cfg); key != "expanded" {
		t.Errorf("expected expanded key, got %q", key)
	}
}

func TestMissingKeyErrorsNameConfigKeys(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	_, err := GetAPIKey(Default())
	if !errors.Is(err, ErrNoAPIKey) || !strings.Contains(err.Error(), "anthropic.api_key") {
		t.Errorf("GetAPIKey() error = %v, want ErrNoAPIKey naming anthropic.api_key", err)
	}

	_, err = GetEmbeddingKey(Default())
	if !errors.Is(err, ErrNoEmbeddingKey) || !strings.Contains(err.Error(), "faq.embedding.api_key") {
		t.Errorf("GetEmbeddingKey() error = %v, want ErrNoEmbeddingKey naming faq.embedding.api_key", err)
	}
}
