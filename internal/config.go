package internal

import "time"

// Config holds every tunable of the server, loaded from the environment
// with Netflix/go-env. Required fields fail fast at startup.
type Config struct {
	Host string `env:"HOST,default=localhost"`
	Port int    `env:"PORT,default=5000"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,required=true"`

	JWTSecret         string        `env:"JWT_SECRET"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	CorsAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`

	// ConnectionBufferSize is the per-connection outbound event buffer.
	// A full buffer drops events rather than blocking the broadcaster.
	ConnectionBufferSize int `env:"CONNECTION_BUFFER_SIZE,default=64"`

	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	GCInterval      time.Duration `env:"GC_INTERVAL,default=5m"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=30s"`

	LimitMessages *int `env:"LIMIT_MESSAGES"`
}
