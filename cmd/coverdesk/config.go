package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/coverdesk/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify coverdesk configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/coverdesk/config.yaml
Project-specific overrides can be placed in .coverdesk.yaml`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch len(args) {
		case 0:
			displayAllConfig(cfg)
			return nil
		case 1:
			value, err := getConfigValue(cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		default:
			if err := setConfigValue(cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Printf("Set %s = %s\n", args[0], args[1])
			return nil
		}
	},
}

// configKey reads and writes one dot-notation setting.
type configKey struct {
	get func(c *config.Config) string
	set func(c *config.Config, v string) error
}

func stringKey(field func(c *config.Config) *string) configKey {
	return configKey{
		get: func(c *config.Config) string { return *field(c) },
		set: func(c *config.Config, v string) error { *field(c) = v; return nil },
	}
}

func secretKey(field func(c *config.Config) *string) configKey {
	k := stringKey(field)
	k.get = func(c *config.Config) string { return config.MaskAPIKey(*field(c)) }
	return k
}

func intKey(field func(c *config.Config) *int) configKey {
	return configKey{
		get: func(c *config.Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer %q: %w", v, err)
			}
			*field(c) = n
			return nil
		},
	}
}

func boolKey(field func(c *config.Config) *bool) configKey {
	return configKey{
		get: func(c *config.Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *config.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean %q: %w", v, err)
			}
			*field(c) = b
			return nil
		},
	}
}

func durationKey(field func(c *config.Config) *time.Duration) configKey {
	return configKey{
		get: func(c *config.Config) string { return field(c).String() },
		set: func(c *config.Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", v, err)
			}
			*field(c) = d
			return nil
		},
	}
}

var configKeys = map[string]configKey{
	"anthropic.api_key":      secretKey(func(c *config.Config) *string { return &c.Anthropic.APIKey }),
	"anthropic.model":        stringKey(func(c *config.Config) *string { return &c.Anthropic.Model }),
	"anthropic.base_url":     stringKey(func(c *config.Config) *string { return &c.Anthropic.BaseURL }),
	"anthropic.max_retries":  intKey(func(c *config.Config) *int { return &c.Anthropic.MaxRetries }),
	"anthropic.bedrock":      boolKey(func(c *config.Config) *bool { return &c.Anthropic.Bedrock }),
	"anthropic.aws_region":   stringKey(func(c *config.Config) *string { return &c.Anthropic.AWSRegion }),
	"anthropic.aws_profile":  stringKey(func(c *config.Config) *string { return &c.Anthropic.AWSProfile }),
	"router.max_iterations":  intKey(func(c *config.Config) *int { return &c.Router.MaxIterations }),
	"timeouts.classify":      durationKey(func(c *config.Config) *time.Duration { return &c.Timeouts.Classify }),
	"timeouts.dispatch":      durationKey(func(c *config.Config) *time.Duration { return &c.Timeouts.Dispatch }),
	"timeouts.synthesize":    durationKey(func(c *config.Config) *time.Duration { return &c.Timeouts.Synthesize }),
	"timeouts.escalate":      durationKey(func(c *config.Config) *time.Duration { return &c.Timeouts.Escalate }),
	"database.path":          stringKey(func(c *config.Config) *string { return &c.Database.Path }),
	"database.driver":        stringKey(func(c *config.Config) *string { return &c.Database.Driver }),
	"faq.top_k":              intKey(func(c *config.Config) *int { return &c.FAQ.TopK }),
	"faq.path":               stringKey(func(c *config.Config) *string { return &c.FAQ.Path }),
	"faq.watch":              boolKey(func(c *config.Config) *bool { return &c.FAQ.Watch }),
	"faq.embedding.provider": stringKey(func(c *config.Config) *string { return &c.FAQ.Embedding.Provider }),
	"faq.embedding.api_key":  secretKey(func(c *config.Config) *string { return &c.FAQ.Embedding.APIKey }),
	"faq.embedding.model":    stringKey(func(c *config.Config) *string { return &c.FAQ.Embedding.Model }),
	"logging.level":          stringKey(func(c *config.Config) *string { return &c.Logging.Level }),
	"logging.format":         stringKey(func(c *config.Config) *string { return &c.Logging.Format }),
	"logging.file":           stringKey(func(c *config.Config) *string { return &c.Logging.File }),
}

// displayAllConfig prints all configuration values.
func displayAllConfig(c *config.Config) {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s: %s\n", k, configKeys[k].get(c))
	}
	fmt.Printf("\nanthropic key source: %s\n", config.GetAPIKeySource(c))
	fmt.Printf("gemini key source:    %s\n", config.GetEmbeddingKeySource(c))
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(c *config.Config, key string) (string, error) {
	k, ok := configKeys[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return k.get(c), nil
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(c *config.Config, key, value string) error {
	k, ok := configKeys[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	if err := k.set(c, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
