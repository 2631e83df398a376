package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
	"liyu1981.xyz/iot-camera-service/pkg/common"
)

// Config holds the server settings. Values come from defaults, then the optional
// YAML file named by IOT_CONFIG_FILE, then the environment.
type Config struct {
	DB      DBConfig      `yaml:"db"`
	Server  ServerConfig  `yaml:"server"`
	Limiter LimiterConfig `yaml:"limiter"`
	Blob    BlobConfig    `yaml:"blob"`
	Events  EventsConfig  `yaml:"events"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type DBConfig struct {
	// Type is one of "file", "memory" or "postgres".
	Type string `yaml:"type"`
	Path string `yaml:"path"`
	DSN  string `yaml:"dsn"`
}

type ServerConfig struct {
	HTTPHostPort string `yaml:"http_host_port"`
	// GRPCHostPort disables the gRPC server when empty.
	GRPCHostPort string `yaml:"grpc_host_port"`
	APIVersion   string `yaml:"api_version"`
}

type LimiterConfig struct {
	DefaultRate  float64 `yaml:"default_rate"`
	DefaultBurst int     `yaml:"default_burst"`
}

type BlobConfig struct {
	// Backend is "memory" or "azure".
	Backend          string        `yaml:"backend"`
	Container        string        `yaml:"container"`
	ConnectionString string        `yaml:"connection_string"`
	MaxAttempts      int           `yaml:"max_attempts"`
	InitialDelay     time.Duration `yaml:"initial_delay"`
	MaxDelay         time.Duration `yaml:"max_delay"`
}

// EventsConfig enables a publisher for every sink whose address is set.
type EventsConfig struct {
	MQTTBroker    string `yaml:"mqtt_broker"`
	MQTTClientID  string `yaml:"mqtt_client_id"`
	MQTTTopicRoot string `yaml:"mqtt_topic_root"`
	AMQPURL       string `yaml:"amqp_url"`
	AMQPExchange  string `yaml:"amqp_exchange"`
	InfluxURL     string `yaml:"influx_url"`
	InfluxToken   string `yaml:"influx_token"`
	InfluxOrg     string `yaml:"influx_org"`
	InfluxBucket  string `yaml:"influx_bucket"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

func Default() *Config {
	return &Config{
		DB: DBConfig{
			Type: "file",
			Path: "cameras.db",
		},
		Server: ServerConfig{
			HTTPHostPort: ":1080",
			APIVersion:   "v1",
		},
		Limiter: LimiterConfig{
			DefaultRate:  10,
			DefaultBurst: 20,
		},
		Blob: BlobConfig{
			Backend:      "memory",
			Container:    "camera-images",
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     5 * time.Second,
		},
		Events: EventsConfig{
			MQTTClientID:  "iot-camera-service",
			MQTTTopicRoot: "iot",
			AMQPExchange:  "iot.events",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(common.EnvKeyIOTConfigFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.DB.Type = getEnv(common.EnvKeyIOTDBType, cfg.DB.Type)
	cfg.DB.Path = getEnv(common.EnvKeyIOTDbPath, cfg.DB.Path)
	cfg.DB.DSN = getEnv(common.EnvKeyIOTDbDSN, cfg.DB.DSN)

	cfg.Server.HTTPHostPort = getEnv(common.EnvKeyIOTHttpHostPort, cfg.Server.HTTPHostPort)
	cfg.Server.GRPCHostPort = getEnv(common.EnvKeyIOTGrpcHostPort, cfg.Server.GRPCHostPort)
	cfg.Server.APIVersion = getEnv(common.EnvKeyIOTAPIVersion, cfg.Server.APIVersion)

	cfg.Limiter.DefaultRate = getEnvAsFloat(common.EnvKeyIOTDefaultRate, cfg.Limiter.DefaultRate)
	cfg.Limiter.DefaultBurst = getEnvAsInt(common.EnvKeyIOTDefaultBurst, cfg.Limiter.DefaultBurst)

	cfg.Blob.Backend = getEnv(common.EnvKeyIOTBlobBackend, cfg.Blob.Backend)
	cfg.Blob.Container = getEnv(common.EnvKeyIOTBlobContainer, cfg.Blob.Container)
	cfg.Blob.ConnectionString = getEnv(common.EnvKeyIOTBlobConnectionString, cfg.Blob.ConnectionString)
	cfg.Blob.MaxAttempts = getEnvAsInt(common.EnvKeyIOTBlobMaxAttempts, cfg.Blob.MaxAttempts)
	cfg.Blob.InitialDelay = getEnvAsDuration(common.EnvKeyIOTBlobInitialDelay, cfg.Blob.InitialDelay)
	cfg.Blob.MaxDelay = getEnvAsDuration(common.EnvKeyIOTBlobMaxDelay, cfg.Blob.MaxDelay)

	cfg.Events.MQTTBroker = getEnv(common.EnvKeyIOTMqttBroker, cfg.Events.MQTTBroker)
	cfg.Events.MQTTClientID = getEnv(common.EnvKeyIOTMqttClientID, cfg.Events.MQTTClientID)
	cfg.Events.MQTTTopicRoot = getEnv(common.EnvKeyIOTMqttTopicRoot, cfg.Events.MQTTTopicRoot)
	cfg.Events.AMQPURL = getEnv(common.EnvKeyIOTAmqpURL, cfg.Events.AMQPURL)
	cfg.Events.AMQPExchange = getEnv(common.EnvKeyIOTAmqpExchange, cfg.Events.AMQPExchange)
	cfg.Events.InfluxURL = getEnv(common.EnvKeyIOTInfluxURL, cfg.Events.InfluxURL)
	cfg.Events.InfluxToken = getEnv(common.EnvKeyIOTInfluxToken, cfg.Events.InfluxToken)
	cfg.Events.InfluxOrg = getEnv(common.EnvKeyIOTInfluxOrg, cfg.Events.InfluxOrg)
	cfg.Events.InfluxBucket = getEnv(common.EnvKeyIOTInfluxBucket, cfg.Events.InfluxBucket)

	cfg.Metrics.Enabled = getEnvAsBool(common.EnvKeyIOTMetricsEnabled, cfg.Metrics.Enabled)
}

func (c *Config) Validate() error {
	switch c.DB.Type {
	case "file", "memory":
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("%s is required when %s is postgres", common.EnvKeyIOTDbDSN, common.EnvKeyIOTDBType)
		}
	default:
		return fmt.Errorf("unknown %s: %q", common.EnvKeyIOTDBType, c.DB.Type)
	}

	switch c.Blob.Backend {
	case "memory":
	case "azure":
		if c.Blob.ConnectionString == "" {
			return fmt.Errorf("%s is required when %s is azure", common.EnvKeyIOTBlobConnectionString, common.EnvKeyIOTBlobBackend)
		}
	default:
		return fmt.Errorf("unknown %s: %q", common.EnvKeyIOTBlobBackend, c.Blob.Backend)
	}

	if c.Blob.Container == "" {
		return fmt.Errorf("%s can not be empty", common.EnvKeyIOTBlobContainer)
	}
	if c.Blob.MaxAttempts < 1 {
		return fmt.Errorf("%s should be at least 1", common.EnvKeyIOTBlobMaxAttempts)
	}
	if c.Limiter.DefaultRate <= 0 || c.Limiter.DefaultBurst <= 0 {
		return fmt.Errorf("%s and %s should be positive", common.EnvKeyIOTDefaultRate, common.EnvKeyIOTDefaultBurst)
	}
	if c.Server.APIVersion == "" {
		return fmt.Errorf("%s can not be empty", common.EnvKeyIOTAPIVersion)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
