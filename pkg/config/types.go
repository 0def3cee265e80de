package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent lectern configuration stored as
// config.toml in the .lectern/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Server  ServerConfig  `toml:"server"`
	Bedrock BedrockConfig `toml:"bedrock"`
	Canvas  CanvasConfig  `toml:"canvas"`
	Client  ClientConfig  `toml:"client"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`

	// RequestTimeout bounds non-streaming Bedrock calls, in seconds.
	// Streaming calls rely on the vendor-side idle timeout instead.
	RequestTimeout uint `toml:"request_timeout,omitempty"`
}

// BedrockConfig holds the AWS Bedrock settings and model defaults.
type BedrockConfig struct {
	Region      string  `toml:"region,omitempty"`
	ModelID     string  `toml:"model_id,omitempty"`
	Temperature float64 `toml:"temperature,omitempty"`
	MaxTokens   uint    `toml:"max_tokens,omitempty"`
}

// CanvasConfig holds the Canvas LMS credentials. Both fields empty means
// Canvas integration is disabled.
type CanvasConfig struct {
	Domain string `toml:"domain,omitempty"`
	APIKey string `toml:"api_key,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// lectern server (e.g. lectern chat). Target is a full URL (scheme + host + port).
type ClientConfig struct {
	Target string `toml:"target,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"server.listen": {
		get: func(c *Config) string { return c.Server.Listen },
		set: func(c *Config, v string) error { c.Server.Listen = v; return nil },
	},
	"server.request_timeout": {
		get: func(c *Config) string {
			if c.Server.RequestTimeout == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Server.RequestTimeout), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for server.request_timeout: %w", err)
			}
			c.Server.RequestTimeout = uint(n)
			return nil
		},
	},
	"bedrock.region": {
		get: func(c *Config) string { return c.Bedrock.Region },
		set: func(c *Config, v string) error { c.Bedrock.Region = v; return nil },
	},
	"bedrock.model_id": {
		get: func(c *Config) string { return c.Bedrock.ModelID },
		set: func(c *Config, v string) error { c.Bedrock.ModelID = v; return nil },
	},
	"bedrock.temperature": {
		get: func(c *Config) string {
			if c.Bedrock.Temperature == 0 {
				return ""
			}
			return strconv.FormatFloat(c.Bedrock.Temperature, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for bedrock.temperature: %w", err)
			}
			c.Bedrock.Temperature = f
			return nil
		},
	},
	"bedrock.max_tokens": {
		get: func(c *Config) string {
			if c.Bedrock.MaxTokens == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Bedrock.MaxTokens), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for bedrock.max_tokens: %w", err)
			}
			c.Bedrock.MaxTokens = uint(n)
			return nil
		},
	},
	"canvas.domain": {
		get: func(c *Config) string { return c.Canvas.Domain },
		set: func(c *Config, v string) error { c.Canvas.Domain = v; return nil },
	},
	"canvas.api_key": {
		get: func(c *Config) string { return c.Canvas.APIKey },
		set: func(c *Config, v string) error { c.Canvas.APIKey = v; return nil },
	},
	"client.target": {
		get: func(c *Config) string { return c.Client.Target },
		set: func(c *Config, v string) error { c.Client.Target = v; return nil },
	},
}
