package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/samirrijal/skyglobe/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Geocode   GeocodeConfig   `mapstructure:"geocode"`
	Globe     GlobeConfig     `mapstructure:"globe"`
	Camera    CameraConfig    `mapstructure:"camera"`
	Sessions  SessionsConfig  `mapstructure:"sessions"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

// Telemetry modes for the API process.
const (
	ModePoll      = "poll"      // fetch the feed in-process on a ticker
	ModeSubscribe = "subscribe" // rebuild from snapshots published by cmd/poller
)

// TelemetryConfig configures the balloon telemetry feed.
type TelemetryConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	ProxyPrefix  string        `mapstructure:"proxy_prefix"`
	Hour         int           `mapstructure:"hour"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	CacheTTL     int           `mapstructure:"cache_ttl"` // seconds
	Mode         string        `mapstructure:"mode"`
}

// GeocodeConfig configures the reverse-geocode service.
type GeocodeConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// GlobeConfig holds the marker placement constants.
type GlobeConfig struct {
	BaseRadius    float64 `mapstructure:"base_radius"`
	AltitudeScale float64 `mapstructure:"altitude_scale"`
	ColorFactor   float64 `mapstructure:"color_factor"`
	MarkerRadius  float64 `mapstructure:"marker_radius"`
}

// CameraConfig is the camera assumed when a request carries none.
type CameraConfig struct {
	FovY     float64   `mapstructure:"fov"`
	Near     float64   `mapstructure:"near"`
	Far      float64   `mapstructure:"far"`
	Position []float64 `mapstructure:"position"` // x, y, z; looks at the origin
}

// Camera returns the configured camera looking at the globe centre.
func (c CameraConfig) Camera() domain.Camera {
	cam := domain.DefaultCamera()
	if len(c.Position) == 3 {
		cam.Position = domain.Vec3{X: c.Position[0], Y: c.Position[1], Z: c.Position[2]}
	}
	if c.FovY > 0 {
		cam.FovY = c.FovY
	}
	if c.Near > 0 {
		cam.Near = c.Near
	}
	if c.Far > 0 {
		cam.Far = c.Far
	}
	return cam
}

type SessionsConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type TracingConfig struct {
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	Enabled     bool    `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SKYGLOBE_TELEMETRY_HOUR → telemetry.hour
	v.SetEnvPrefix("SKYGLOBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", true)

	v.SetDefault("telemetry.base_url", "https://a.windbornesystems.com/treasure")
	v.SetDefault("telemetry.proxy_prefix", "")
	v.SetDefault("telemetry.hour", 2)
	v.SetDefault("telemetry.poll_interval", 5*time.Minute)
	v.SetDefault("telemetry.timeout", 30*time.Second)
	v.SetDefault("telemetry.cache_ttl", 240)
	v.SetDefault("telemetry.mode", ModePoll)

	v.SetDefault("geocode.base_url", "https://api.bigdatacloud.net/data/reverse-geocode-client")
	v.SetDefault("geocode.language", "en")
	v.SetDefault("geocode.timeout", 10*time.Second)

	v.SetDefault("globe.base_radius", 1.0)
	v.SetDefault("globe.altitude_scale", 0.003)
	v.SetDefault("globe.color_factor", 0.05)
	v.SetDefault("globe.marker_radius", 0.045)

	v.SetDefault("camera.fov", 45.0)
	v.SetDefault("camera.near", 0.1)
	v.SetDefault("camera.far", 1000.0)
	v.SetDefault("camera.position", []float64{0, 1.5, 3})

	v.SetDefault("sessions.ttl", 30*time.Minute)
	v.SetDefault("sessions.sweep_interval", time.Minute)

	v.SetDefault("tracing.service_name", service)
	v.SetDefault("tracing.endpoint", "tempo:4317")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("tracing.enabled", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Telemetry.BaseURL == "" {
		errs = append(errs, "telemetry.base_url is required")
	}
	if c.Telemetry.Hour < 0 || c.Telemetry.Hour > 23 {
		errs = append(errs, fmt.Sprintf("telemetry.hour must be 0-23, got %d", c.Telemetry.Hour))
	}
	if c.Telemetry.PollInterval <= 0 {
		errs = append(errs, "telemetry.poll_interval must be positive")
	}
	switch c.Telemetry.Mode {
	case ModePoll:
	case ModeSubscribe:
		if !c.NATS.Enabled {
			errs = append(errs, "telemetry.mode subscribe requires nats.enabled")
		}
	default:
		errs = append(errs, fmt.Sprintf("telemetry.mode must be %q or %q, got %q", ModePoll, ModeSubscribe, c.Telemetry.Mode))
	}
	if c.Geocode.BaseURL == "" {
		errs = append(errs, "geocode.base_url is required")
	}
	if c.Globe.BaseRadius <= 0 {
		errs = append(errs, "globe.base_radius must be positive")
	}
	if c.Globe.MarkerRadius <= 0 {
		errs = append(errs, "globe.marker_radius must be positive")
	}
	if c.Camera.FovY <= 0 || c.Camera.FovY >= 180 {
		errs = append(errs, fmt.Sprintf("camera.fov must be in (0, 180), got %v", c.Camera.FovY))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, "camera.near must be positive and below camera.far")
	}
	if len(c.Camera.Position) != 3 {
		errs = append(errs, fmt.Sprintf("camera.position must have 3 components, got %d", len(c.Camera.Position)))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, "tracing.sample_ratio must be within [0, 1]")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
