package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Feed struct {
		URL              string        `yaml:"url"`
		ReconnectDelay   time.Duration `yaml:"reconnect_delay"`
		PingInterval     time.Duration `yaml:"ping_interval"`
		ResetOnReconnect bool          `yaml:"reset_on_reconnect"`
	} `yaml:"feed"`
	Engine struct {
		MinVolume           float64       `yaml:"min_volume"`
		AlertThresholdTimes float64       `yaml:"alert_threshold_times"`
		ShowIncrease        *bool         `yaml:"show_increase"`
		ShowDecrease        *bool         `yaml:"show_decrease"`
		AlertCooldown       time.Duration `yaml:"alert_cooldown"`
		SnapshotExpiry      time.Duration `yaml:"snapshot_expiry"`
		SweepInterval       time.Duration `yaml:"sweep_interval"`
		HistoryLimit        int           `yaml:"history_limit"`
	} `yaml:"engine"`
	Sink struct {
		Type string `yaml:"type"` // log, kafka, clickhouse
	} `yaml:"sink"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		AsyncInsert  bool          `yaml:"async_insert"`
		WaitForAsync bool          `yaml:"wait_for_async_insert"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	CoinInfo struct {
		Enabled bool          `yaml:"enabled"`
		InfoURL string        `yaml:"info_url"`
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"coininfo"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FEED_URL"); v != "" {
		c.Feed.URL = v
	}
	if v := os.Getenv("SINK"); v != "" {
		c.Sink.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port := splitHostPort(v, c.CoinInfo.Redis.Port)
		c.CoinInfo.Redis.Host = host
		c.CoinInfo.Redis.Port = port
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Feed.ReconnectDelay == 0 {
		c.Feed.ReconnectDelay = 5 * time.Second
	}
	if c.Feed.PingInterval == 0 {
		c.Feed.PingInterval = 20 * time.Second
	}
	if c.Engine.MinVolume == 0 {
		c.Engine.MinVolume = 10000
	}
	if c.Engine.AlertThresholdTimes == 0 {
		c.Engine.AlertThresholdTimes = 2.5
	}
	if c.Engine.AlertCooldown == 0 {
		c.Engine.AlertCooldown = 60 * time.Second
	}
	if c.Engine.SnapshotExpiry == 0 {
		c.Engine.SnapshotExpiry = 180 * time.Second
	}
	if c.Engine.SweepInterval == 0 {
		c.Engine.SweepInterval = 30 * time.Second
	}
	if c.Engine.HistoryLimit == 0 {
		c.Engine.HistoryLimit = 100
	}
	if c.Sink.Type == "" {
		c.Sink.Type = "log"
	}
	if c.CoinInfo.TTL == 0 {
		c.CoinInfo.TTL = time.Hour
	}
}

// ShowIncrease returns the direction flag, defaulting to true when the
// key is omitted.
func (c *Config) ShowIncrease() bool {
	if c.Engine.ShowIncrease == nil {
		return true
	}
	return *c.Engine.ShowIncrease
}

func (c *Config) ShowDecrease() bool {
	if c.Engine.ShowDecrease == nil {
		return true
	}
	return *c.Engine.ShowDecrease
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Feed.URL == "" {
		return fmt.Errorf("feed.url is required")
	}
	switch c.Sink.Type {
	case "log", "kafka", "clickhouse":
	default:
		return fmt.Errorf("sink.type must be 'log', 'kafka' or 'clickhouse', got '%s'", c.Sink.Type)
	}
	if c.Sink.Type == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty with the kafka sink")
	}
	if c.Sink.Type == "kafka" && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required with the kafka sink")
	}
	if c.Sink.Type == "clickhouse" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required with the clickhouse sink")
	}
	if !c.ShowIncrease() && !c.ShowDecrease() {
		return fmt.Errorf("engine.show_increase and engine.show_decrease cannot both be false")
	}
	if c.Engine.MinVolume < 0 {
		return fmt.Errorf("engine.min_volume must be non-negative")
	}
	if c.Engine.AlertThresholdTimes < 0 {
		return fmt.Errorf("engine.alert_threshold_times must be non-negative")
	}
	return nil
}

func splitHostPort(addr string, defPort int) (string, int) {
	host := addr
	port := defPort
	if i := strings.LastIndex(addr, ":"); i > 0 {
		host = addr[:i]
		if p := addr[i+1:]; p != "" {
			fmt.Sscanf(p, "%d", &port)
		}
	}
	return host, port
}
