package config

import "github.com/codeGROOVE-dev/shadowrecon/pkg/booster"

const (
	defaultOutputRoot     = "output"
	defaultTokenEnv       = "HF_TOKEN"
	defaultTimeoutSeconds = 30
	defaultCacheTTLHours  = 7 * 24
	defaultPolicy         = "last-writer-wins"
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputRoot: defaultOutputRoot,
		},
		Classifier: Classifier{
			Enabled:        true,
			Endpoint:       booster.DefaultEndpoint,
			TokenEnv:       defaultTokenEnv,
			TimeoutSeconds: defaultTimeoutSeconds,
			CacheTTLHours:  defaultCacheTTLHours,
		},
		Merge: Merge{
			Policy: defaultPolicy,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
