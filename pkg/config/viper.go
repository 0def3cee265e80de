package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found in the resolved config directory), and binds environment
// variables with the LECTERN_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (LECTERN_SERVER_LISTEN, CANVAS_API_KEY, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	target, err := resolveConfigDir(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: LECTERN_SERVER_LISTEN, LECTERN_BEDROCK_REGION, etc.
	v.SetEnvPrefix("LECTERN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The original workshop scripts export bare CANVAS_* and AWS_REGION
	// variables; honor them alongside the prefixed forms.
	_ = v.BindEnv("canvas.api_key", "LECTERN_CANVAS_API_KEY", "CANVAS_API_KEY")
	_ = v.BindEnv("canvas.domain", "LECTERN_CANVAS_DOMAIN", "CANVAS_DOMAIN")
	_ = v.BindEnv("bedrock.region", "LECTERN_BEDROCK_REGION", "AWS_REGION")

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Server
	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)

	// Bedrock
	v.SetDefault("bedrock.region", d.Bedrock.Region)
	v.SetDefault("bedrock.model_id", d.Bedrock.ModelID)
	v.SetDefault("bedrock.temperature", d.Bedrock.Temperature)
	v.SetDefault("bedrock.max_tokens", d.Bedrock.MaxTokens)

	// Canvas
	v.SetDefault("canvas.domain", d.Canvas.Domain)
	v.SetDefault("canvas.api_key", d.Canvas.APIKey)

	// Client
	v.SetDefault("client.target", d.Client.Target)
}

// FromViper materializes a Config from the viper precedence chain.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Server: ServerConfig{
			Listen:         v.GetString("server.listen"),
			RequestTimeout: v.GetUint("server.request_timeout"),
		},
		Bedrock: BedrockConfig{
			Region:      v.GetString("bedrock.region"),
			ModelID:     v.GetString("bedrock.model_id"),
			Temperature: v.GetFloat64("bedrock.temperature"),
			MaxTokens:   v.GetUint("bedrock.max_tokens"),
		},
		Canvas: CanvasConfig{
			Domain: v.GetString("canvas.domain"),
			APIKey: v.GetString("canvas.api_key"),
		},
		Client: ClientConfig{
			Target: v.GetString("client.target"),
		},
	}
}
