// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Mempool   MempoolConfig   `mapstructure:"mempool"`
	Trigger   TriggerConfig   `mapstructure:"trigger"`
	Overlay   OverlayConfig   `mapstructure:"overlay"`
	SSH       SSHConfig       `mapstructure:"ssh"`
	Health    HealthConfig    `mapstructure:"health"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFile     string `mapstructure:"log_file"`
	TUIMode     bool   `mapstructure:"-"` // Set at runtime, not from config file
}

// MempoolConfig holds the mempool.space endpoints and feed cadence.
type MempoolConfig struct {
	HTTPURL         string        `mapstructure:"http_url"`
	WebSocketURL    string        `mapstructure:"websocket_url"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	InitialBackoff  time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff      time.Duration `mapstructure:"max_backoff"`
	MaxReconnects   int           `mapstructure:"max_reconnects"`
	RequestsPerMin  int           `mapstructure:"requests_per_minute"`
	MaxMessageBytes int64         `mapstructure:"max_message_bytes"`
}

// TriggerConfig holds keyword and swipe gesture thresholds.
type TriggerConfig struct {
	Keyword     string        `mapstructure:"keyword"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	Swipe       SwipeConfig   `mapstructure:"swipe"`
}

// SwipeConfig holds swipe thresholds in pixels and degrees.
type SwipeConfig struct {
	MinDistance      float64 `mapstructure:"min_distance"`
	AngleMin         float64 `mapstructure:"angle_min"`
	AngleMax         float64 `mapstructure:"angle_max"`
	ZoneExtend       float64 `mapstructure:"zone_extend"`
	SuppressMinDY    float64 `mapstructure:"suppress_min_dy"`
	MaxViewportWidth float64 `mapstructure:"max_viewport_width"`
	CellWidthPx      float64 `mapstructure:"cell_width_px"`
	CellHeightPx     float64 `mapstructure:"cell_height_px"`
}

// OverlayConfig holds the overlay geometry and animation timings.
type OverlayConfig struct {
	BlockWidth     int               `mapstructure:"block_width"`
	BlockHeight    int               `mapstructure:"block_height"`
	ShadowOpacity  float64           `mapstructure:"shadow_opacity"`
	FlyIn          time.Duration     `mapstructure:"fly_in"`
	FlyOut         time.Duration     `mapstructure:"fly_out"`
	PulsePeriod    time.Duration     `mapstructure:"pulse_period"`
	PulseDim       float64           `mapstructure:"pulse_dim"`
	StaggerStep    time.Duration     `mapstructure:"stagger_step"`
	StaggerLine    time.Duration     `mapstructure:"stagger_line"`
	Heartbeat      time.Duration     `mapstructure:"heartbeat"`
	FrameInterval  time.Duration     `mapstructure:"frame_interval"`
	Haptics        bool              `mapstructure:"haptics"`
	Celebration    CelebrationConfig `mapstructure:"celebration"`
}

// CelebrationConfig holds the new block choreography durations.
type CelebrationConfig struct {
	FadeOut  time.Duration `mapstructure:"fade_out"`
	Emphasis time.Duration `mapstructure:"emphasis"`
	Hold     time.Duration `mapstructure:"hold"`
	Nudge    time.Duration `mapstructure:"nudge"`
	SlideOff time.Duration `mapstructure:"slide_off"`
	Pause    time.Duration `mapstructure:"pause"`
	Reenter  time.Duration `mapstructure:"reenter"`
}

// SSHConfig holds the SSH serve mode settings.
type SSHConfig struct {
	Address     string `mapstructure:"address"`
	HostKeyPath string `mapstructure:"host_key_path"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceExporter  string `mapstructure:"trace_exporter"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("BLOCK")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "BLOCK_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "BLOCK_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "BLOCK_LOG_LEVEL", "LOG_LEVEL")
	v.BindEnv("app.log_file", "BLOCK_LOG_FILE")

	// Mempool
	v.BindEnv("mempool.http_url", "BLOCK_MEMPOOL_HTTP_URL", "MEMPOOL_HTTP_URL")
	v.BindEnv("mempool.websocket_url", "BLOCK_MEMPOOL_WS_URL", "MEMPOOL_WS_URL")
	v.BindEnv("mempool.poll_interval", "BLOCK_MEMPOOL_POLL_INTERVAL")

	// Trigger
	v.BindEnv("trigger.keyword", "BLOCK_TRIGGER_KEYWORD")

	// Overlay
	v.BindEnv("overlay.haptics", "BLOCK_HAPTICS")

	// SSH
	v.BindEnv("ssh.address", "BLOCK_SSH_ADDRESS", "SSH_ADDRESS")
	v.BindEnv("ssh.host_key_path", "BLOCK_SSH_HOST_KEY", "SSH_HOST_KEY_PATH")

	// Health
	v.BindEnv("health.enabled", "BLOCK_HEALTH_ENABLED")
	v.BindEnv("health.port", "BLOCK_HEALTH_PORT")

	// Telemetry
	v.BindEnv("telemetry.enabled", "BLOCK_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "BLOCK_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.trace_exporter", "BLOCK_OTEL_TRACE_EXPORTER")
	v.BindEnv("telemetry.otlp_endpoint", "BLOCK_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.otlp_headers", "BLOCK_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "mempool-block")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("mempool.http_url", "https://mempool.space")
	v.SetDefault("mempool.websocket_url", "wss://mempool.space/api/v1/ws")
	v.SetDefault("mempool.fetch_timeout", "5s")
	v.SetDefault("mempool.poll_interval", "10s")
	v.SetDefault("mempool.initial_backoff", "1s")
	v.SetDefault("mempool.max_backoff", "30s")
	v.SetDefault("mempool.max_reconnects", 0) // infinite
	v.SetDefault("mempool.requests_per_minute", 30)
	v.SetDefault("mempool.max_message_bytes", 4<<20)

	v.SetDefault("trigger.keyword", "block")
	v.SetDefault("trigger.idle_timeout", "1s")
	v.SetDefault("trigger.swipe.min_distance", 30)
	v.SetDefault("trigger.swipe.angle_min", 10)
	v.SetDefault("trigger.swipe.angle_max", 80)
	v.SetDefault("trigger.swipe.zone_extend", 60)
	v.SetDefault("trigger.swipe.suppress_min_dy", 5)
	v.SetDefault("trigger.swipe.max_viewport_width", 768)
	v.SetDefault("trigger.swipe.cell_width_px", 8)
	v.SetDefault("trigger.swipe.cell_height_px", 16)

	v.SetDefault("overlay.block_width", 30)
	v.SetDefault("overlay.block_height", 13)
	v.SetDefault("overlay.shadow_opacity", 0.75)
	v.SetDefault("overlay.fly_in", "650ms")
	v.SetDefault("overlay.fly_out", "400ms")
	v.SetDefault("overlay.pulse_period", "1200ms")
	v.SetDefault("overlay.pulse_dim", 0.88)
	v.SetDefault("overlay.stagger_step", "50ms")
	v.SetDefault("overlay.stagger_line", "200ms")
	v.SetDefault("overlay.heartbeat", "300ms")
	v.SetDefault("overlay.frame_interval", "33ms")
	v.SetDefault("overlay.haptics", true)
	v.SetDefault("overlay.celebration.fade_out", "100ms")
	v.SetDefault("overlay.celebration.emphasis", "800ms")
	v.SetDefault("overlay.celebration.hold", "600ms")
	v.SetDefault("overlay.celebration.nudge", "150ms")
	v.SetDefault("overlay.celebration.slide_off", "400ms")
	v.SetDefault("overlay.celebration.pause", "250ms")
	v.SetDefault("overlay.celebration.reenter", "500ms")

	v.SetDefault("ssh.address", "0.0.0.0:23234")
	v.SetDefault("ssh.host_key_path", ".ssh/mempool_block_ed25519")

	v.SetDefault("health.enabled", true)
	v.SetDefault("health.port", 8081)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "mempool-block")
	v.SetDefault("telemetry.trace_exporter", "zipkin")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.Mempool.HTTPURL); err != nil {
		return fmt.Errorf("invalid mempool.http_url: %s", c.Mempool.HTTPURL)
	}
	u, err := url.Parse(c.Mempool.WebSocketURL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return fmt.Errorf("invalid mempool.websocket_url: %s", c.Mempool.WebSocketURL)
	}
	if c.Mempool.PollInterval <= 0 {
		return fmt.Errorf("mempool.poll_interval must be positive")
	}
	if c.Mempool.FetchTimeout <= 0 {
		return fmt.Errorf("mempool.fetch_timeout must be positive")
	}
	if c.Trigger.Keyword == "" {
		return fmt.Errorf("trigger.keyword cannot be empty")
	}
	for _, r := range c.Trigger.Keyword {
		if r < 'a' || r > 'z' {
			return fmt.Errorf("trigger.keyword must be lowercase letters: %q", c.Trigger.Keyword)
		}
	}
	s := c.Trigger.Swipe
	if s.AngleMin < 0 || s.AngleMax > 90 || s.AngleMin >= s.AngleMax {
		return fmt.Errorf("trigger.swipe angle window invalid: [%v, %v]", s.AngleMin, s.AngleMax)
	}
	if s.CellWidthPx <= 0 || s.CellHeightPx <= 0 {
		return fmt.Errorf("trigger.swipe cell size must be positive")
	}
	if c.Overlay.BlockWidth < 12 || c.Overlay.BlockHeight < 8 {
		return fmt.Errorf("overlay block must be at least 12x8 cells")
	}
	if c.Overlay.FlyIn <= 0 || c.Overlay.FlyOut <= 0 {
		return fmt.Errorf("overlay fly durations must be positive")
	}
	return nil
}
