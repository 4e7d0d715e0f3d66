package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/preston-bernstein/derby-clock-service/internal/clock"
	"github.com/preston-bernstein/derby-clock-service/internal/gamestate"
)

const (
	defaultTickInterval = 100 * time.Millisecond
	defaultPushInterval = 500 * time.Millisecond
)

// Config holds runtime configuration for the server.
type Config struct {
	Port         string        `env:"PORT"                     envDefault:"8000"`
	TickInterval time.Duration `env:"TICK_INTERVAL"            envDefault:"100ms"`
	PushInterval time.Duration `env:"SCOREBOARD_PUSH_INTERVAL" envDefault:"500ms"`
	RosterDir    string        `env:"ROSTER_DIR"               envDefault:"rosters"`
	Version      string        `env:"SERVICE_VERSION"`

	Log       LogConfig
	Bout      BoutConfig
	Metrics   MetricsConfig
	NATS      NATSConfig
	Snapshots SnapshotConfig
	CORS      CORSConfig
}

// LogConfig selects log level and handler format.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// BoutConfig holds clock timings and team allowances.
type BoutConfig struct {
	Jam          time.Duration `env:"JAM_DURATION"          envDefault:"2m"`
	Lineup       time.Duration `env:"LINEUP_DURATION"       envDefault:"30s"`
	TeamTimeout  time.Duration `env:"TEAM_TIMEOUT_DURATION" envDefault:"90s"`
	Intermission time.Duration `env:"INTERMISSION_DURATION" envDefault:"10m"`
	Period       time.Duration `env:"PERIOD_DURATION"       envDefault:"30m"`
	Timeouts     int           `env:"TEAM_TIMEOUTS"         envDefault:"3"`
	Reviews      int           `env:"TEAM_REVIEWS"          envDefault:"2"`
}

// GameConfig converts the bout settings for the game state. Non-positive
// values fall back to the standard timings.
func (b BoutConfig) GameConfig() gamestate.Config {
	return gamestate.Config{
		Policy: clock.Policy{
			Jam:          b.Jam,
			Lineup:       b.Lineup,
			TeamTimeout:  b.TeamTimeout,
			Intermission: b.Intermission,
			Period:       b.Period,
		},
		Timeouts: b.Timeouts,
		Reviews:  b.Reviews,
	}
}

// MetricsConfig controls telemetry export settings.
type MetricsConfig struct {
	Enabled      bool   `env:"METRICS_ENABLED"             envDefault:"true"`
	Port         string `env:"METRICS_PORT"                envDefault:"9090"`
	OtlpEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME"           envDefault:"derby-clock-service"`
	OtlpInsecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
}

// NATSConfig enables event publishing when URL is set.
type NATSConfig struct {
	URL           string `env:"NATS_URL"`
	SubjectPrefix string `env:"NATS_SUBJECT_PREFIX" envDefault:"derby.bout"`
}

// SnapshotConfig enables the SQLite bout archive when Path is set.
type SnapshotConfig struct {
	Path string `env:"SNAPSHOT_DB_PATH"`
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load reads a .env file when present, then parses the environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.TickInterval <= 0 {
		c.TickInterval = defaultTickInterval
	}
	if c.PushInterval <= 0 {
		c.PushInterval = defaultPushInterval
	}
	if c.Port == "" {
		c.Port = "8000"
	}
}
