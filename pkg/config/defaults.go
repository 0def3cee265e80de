package config

const (
	defaultListen         = ":8000"
	defaultRequestTimeout = 30

	defaultRegion      = "us-east-1"
	defaultModelID     = "us.amazon.nova-pro-v1:0"
	defaultTemperature = 0.7
	defaultMaxTokens   = 512

	defaultClientTarget = "http://localhost:8000"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen:         defaultListen,
			RequestTimeout: defaultRequestTimeout,
		},
		Bedrock: BedrockConfig{
			Region:      defaultRegion,
			ModelID:     defaultModelID,
			Temperature: defaultTemperature,
			MaxTokens:   defaultMaxTokens,
		},
		Client: ClientConfig{
			Target: defaultClientTarget,
		},
	}
}
