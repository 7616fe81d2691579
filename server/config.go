package server

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

const DefaultConfigPath = "config.yaml"

type Config struct {
	SubgraphName    string        `yaml:"subgraph_name" env:"SUBGRAPH_NAME" envDefault:"listings"`
	SchemaFile      string        `yaml:"schema_file" env:"SCHEMA_FILE" envDefault:"./schema.graphql"`
	Host            string        `yaml:"host" env:"HOST" envDefault:""`
	Port            int           `yaml:"port" env:"PORT" envDefault:"4003"`
	Endpoint        string        `yaml:"endpoint" env:"GRAPHQL_ENDPOINT" envDefault:"/"`
	HealthPath      string        `yaml:"health_path" env:"HEALTH_PATH" envDefault:"/.well-known/apollo/server-health"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxParallelism  int           `yaml:"max_parallelism" env:"MAX_PARALLELISM" envDefault:"10"`

	Log         LogConfig         `yaml:"log" envPrefix:"LOG_"`
	ListingsAPI ListingsAPIConfig `yaml:"listings_api" envPrefix:"LISTINGS_API_"`
	BookingsDB  BookingsDBConfig  `yaml:"bookings_db" envPrefix:"BOOKINGS_DB_"`
	CORS        CORSConfig        `yaml:"cors" envPrefix:"CORS_"`
	Tracing     TracingConfig     `yaml:"tracing" envPrefix:"TRACING_"`
	Metrics     MetricsConfig     `yaml:"metrics" envPrefix:"METRICS_"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL" envDefault:"info"`
	Pretty bool   `yaml:"pretty" env:"PRETTY" envDefault:"false"`
}

type ListingsAPIConfig struct {
	URL      string        `yaml:"url" env:"URL" envDefault:"https://rt-airlock-services-listing.herokuapp.com/"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT" envDefault:"5s"`
	RetryMax int           `yaml:"retry_max" env:"RETRY_MAX" envDefault:"2"`
}

// BookingsDBConfig selects the bookings store. An empty URL keeps bookings in memory.
type BookingsDBConfig struct {
	URL      string `yaml:"url" env:"URL"`
	MaxConns int32  `yaml:"max_conns" env:"MAX_CONNS" envDefault:"10"`
}

type CORSConfig struct {
	Enabled          bool          `yaml:"enabled" env:"ENABLED" envDefault:"true"`
	AllowOrigins     []string      `yaml:"allow_origins" env:"ALLOW_ORIGINS" envDefault:"*"`
	AllowHeaders     []string      `yaml:"allow_headers" env:"ALLOW_HEADERS" envDefault:"Content-Type,Authorization,userid,userrole,X-Request-Id"`
	AllowCredentials bool          `yaml:"allow_credentials" env:"ALLOW_CREDENTIALS" envDefault:"false"`
	MaxAge           time.Duration `yaml:"max_age" env:"MAX_AGE" envDefault:"5m"`
}

type TracingConfig struct {
	Enabled       bool              `yaml:"enabled" env:"ENABLED" envDefault:"false"`
	Endpoint      string            `yaml:"endpoint" env:"ENDPOINT" envDefault:"http://localhost:4318"`
	URLPath       string            `yaml:"url_path" env:"URL_PATH" envDefault:"/v1/traces"`
	Headers       map[string]string `yaml:"headers" env:"HEADERS"`
	Sampler       float64           `yaml:"sampler" env:"SAMPLER" envDefault:"1"`
	BatchTimeout  time.Duration     `yaml:"batch_timeout" env:"BATCH_TIMEOUT" envDefault:"10s"`
	ExportTimeout time.Duration     `yaml:"export_timeout" env:"EXPORT_TIMEOUT" envDefault:"30s"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED" envDefault:"true"`
	Path    string `yaml:"path" env:"PATH" envDefault:"/metrics"`
}

// Addr is the address the listener binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig reads .env files and the environment, then overlays the YAML file at path.
// A missing file is only an error when path is not the default.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = DefaultConfigPath
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultConfigPath {
			return &cfg, cfg.validate()
		}
		return nil, fmt.Errorf("could not read config file %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(b))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file %s: %w", path, err)
	}
	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.SchemaFile == "" {
		return fmt.Errorf("schema_file must not be empty")
	}
	if c.Endpoint == "" || c.Endpoint[0] != '/' {
		return fmt.Errorf("endpoint must start with '/': %q", c.Endpoint)
	}
	if c.Tracing.Sampler < 0 || c.Tracing.Sampler > 1 {
		return fmt.Errorf("tracing sampler must be between 0 and 1, got %v", c.Tracing.Sampler)
	}
	return nil
}
