package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings hold process-wide configuration. The management token is the only
// secret: it stays server-side for the lifetime of the process and is never
// accepted from request payloads.
type Settings struct {
	Server struct {
		Host string `mapstructure:"host"`
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`

	Management struct {
		BaseURL string `mapstructure:"base_url"`
		Token   string `mapstructure:"token"`
	} `mapstructure:"management"`

	Assistant struct {
		BaseURL string `mapstructure:"base_url"`
		Model   string `mapstructure:"model"`
		APIKey  string `mapstructure:"api_key"`
	} `mapstructure:"assistant"`

	Audit struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"audit"`
}

// Load reads settings from an optional YAML file, with SECATLAS_* environment
// variables taking precedence (e.g. SECATLAS_MANAGEMENT_TOKEN).
func Load(path string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("management.base_url", "https://api.supabase.com")
	// secrets default to empty so their keys are known to the env override
	v.SetDefault("management.token", "")
	v.SetDefault("assistant.base_url", "https://api.openai.com")
	v.SetDefault("assistant.model", "gpt-4o-mini")
	v.SetDefault("assistant.api_key", "")
	v.SetDefault("audit.dir", "audit")

	v.SetEnvPrefix("SECATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Settings
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
