package config

import "time"

// Config holds settings shared by the relay server and the chat client.
type Config struct {
	// Relay HTTP server.
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// Logging.
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Hosted message store. Secrets come from the environment, never from
	// a committed config file.
	StoreURL     string `mapstructure:"store_url" yaml:"store_url"`
	StoreAnonKey string `mapstructure:"store_anon_key" yaml:"store_anon_key"`

	// Local sqlite backend used when no hosted store is configured.
	StoreBackend string `mapstructure:"store_backend" yaml:"store_backend"`
	StorePath    string `mapstructure:"store_path" yaml:"store_path"`

	// Push provider credentials for the relay.
	ProviderAppID    string        `mapstructure:"provider_app_id" yaml:"provider_app_id"`
	ProviderAPIKey   string        `mapstructure:"provider_api_key" yaml:"provider_api_key"`
	ProviderEndpoint string        `mapstructure:"provider_endpoint" yaml:"provider_endpoint"`
	SendTimeout      time.Duration `mapstructure:"send_timeout" yaml:"send_timeout"`
	SendsPerMinute   int           `mapstructure:"sends_per_minute" yaml:"sends_per_minute"`

	// Relay endpoint the chat client calls after a successful send.
	RelayURL string `mapstructure:"relay_url" yaml:"relay_url"`
}

// Store backends.
const (
	StoreBackendHosted = "hosted"
	StoreBackendLocal  = "local"
)

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		StoreBackend:      StoreBackendLocal,
		StorePath:         "pushchat.db",
		ProviderEndpoint:  "https://onesignal.com/api/v1/notifications",
		SendTimeout:       10 * time.Second,
		SendsPerMinute:    60,
		RelayURL:          "http://localhost:8080",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
// Every field participates, so any flag added later round-trips without
// touching this method. An explicit StoreBackend wins over the hosted
// switch implied by StoreURL.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.StoreURL != "" {
		c.StoreURL = other.StoreURL
		c.StoreBackend = StoreBackendHosted
	}
	if other.StoreAnonKey != "" {
		c.StoreAnonKey = other.StoreAnonKey
	}
	if other.StoreBackend != "" {
		c.StoreBackend = other.StoreBackend
	}
	if other.StorePath != "" {
		c.StorePath = other.StorePath
	}
	if other.ProviderAppID != "" {
		c.ProviderAppID = other.ProviderAppID
	}
	if other.ProviderAPIKey != "" {
		c.ProviderAPIKey = other.ProviderAPIKey
	}
	if other.ProviderEndpoint != "" {
		c.ProviderEndpoint = other.ProviderEndpoint
	}
	if other.SendTimeout != 0 {
		c.SendTimeout = other.SendTimeout
	}
	if other.SendsPerMinute != 0 {
		c.SendsPerMinute = other.SendsPerMinute
	}
	if other.RelayURL != "" {
		c.RelayURL = other.RelayURL
	}
}
