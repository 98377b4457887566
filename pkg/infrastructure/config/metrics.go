package config

// MetricsConfig holds metrics collection and exposure configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Listen address of the HTTP server exposing /metrics and /health
	Addr string `mapstructure:"addr" validate:"required"`

	Path string `mapstructure:"path" validate:"required,startswith=/"`
}

// AllocationConfig tunes the production write path
type AllocationConfig struct {
	// Attempts made when a stock write loses a version race
	MaxRetries int `mapstructure:"max_retries" validate:"min=1,max=100"`
}

// CodesConfig controls human-readable record codes
type CodesConfig struct {
	Width int `mapstructure:"width" validate:"min=1,max=10"`
}
