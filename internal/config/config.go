package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int           `yaml:"port"`
		MaxUploadBytes int64         `yaml:"maxUploadBytes"`
		ReadTimeout    time.Duration `yaml:"readTimeout"`
		WriteTimeout   time.Duration `yaml:"writeTimeout"`
		CORSOrigins    []string      `yaml:"corsOrigins"`
		RateLimit      struct {
			Capacity        int     `yaml:"capacity"`
			RefillPerSecond float64 `yaml:"refillPerSecond"`
		} `yaml:"rateLimit"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`

	Database struct {
		// memory, sqlite, mysql, postgres or pgx
		Driver   string `yaml:"driver"`
		Path     string `yaml:"path"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
		Migrate  bool   `yaml:"migrate"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`

	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`

	AI struct {
		// openai, groq or gemini
		Provider         string        `yaml:"provider"`
		APIKey           string        `yaml:"apiKey"`
		Model            string        `yaml:"model"`
		BaseURL          string        `yaml:"baseURL"`
		Timeout          time.Duration `yaml:"timeout"`
		ProcessingMethod string        `yaml:"processingMethod"`
		MaxTokens        int           `yaml:"maxTokens"`
		Temperature      float32       `yaml:"temperature"`
		JSONMode         bool          `yaml:"jsonMode"`
	} `yaml:"ai"`
}

// Path returns CONFIG_PATH or config.yaml.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "config.yaml"
}

// Default is the configuration used when no file exists.
func Default() *Config {
	var c Config
	c.Server.Port = 8000
	c.Server.MaxUploadBytes = 128 << 20
	c.Server.ReadTimeout = 60 * time.Second
	c.Server.WriteTimeout = 300 * time.Second
	c.Server.CORSOrigins = []string{"http://localhost:5173"}
	c.Server.RateLimit.Capacity = 10
	c.Server.RateLimit.RefillPerSecond = 0.5
	c.Log.Level = "info"
	c.Database.Driver = "memory"
	c.Database.Path = "medcase.db"
	c.Database.SSLMode = "disable"
	c.Database.Migrate = true
	c.Minio.BucketName = "medcase-uploads"
	c.Redis.TTL = 24 * time.Hour
	c.Kafka.Topic = "medcase.case.created"
	c.AI.Provider = "groq"
	c.AI.Timeout = 120 * time.Second
	c.AI.MaxTokens = 2000
	c.AI.Temperature = 0.2
	return &c
}

// Load baca .env, file config (optional) lalu env override
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&c.AI.Provider, "AI_PROVIDER")
	setString(&c.AI.Model, "AI_MODEL")
	setString(&c.Database.Driver, "DATABASE_DRIVER")
	setString(&c.Database.Password, "DATABASE_PASSWORD")
	setString(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Redis.Password, "REDIS_PASSWORD")

	// provider specific key wins over the generic one
	keys := []string{"AI_API_KEY"}
	switch strings.ToLower(c.AI.Provider) {
	case "openai":
		keys = append([]string{"OPENAI_API_KEY"}, keys...)
	case "groq":
		keys = append([]string{"GROQ_API_KEY"}, keys...)
	case "gemini":
		keys = append([]string{"GEMINI_API_KEY"}, keys...)
	}
	setString(&c.AI.APIKey, keys...)

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "memory", "sqlite", "mysql", "postgres", "pgx":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q not supported", c.Database.Driver))
	}
	switch c.AI.Provider {
	case "openai", "groq", "gemini":
	default:
		errs = append(errs, fmt.Errorf("ai.provider %q not supported", c.AI.Provider))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.maxUploadBytes must be positive"))
	}
	if c.AI.Timeout <= 0 {
		errs = append(errs, errors.New("ai.timeout must be positive"))
	} else if need := c.MinWriteTimeout(); c.Server.WriteTimeout > 0 && c.Server.WriteTimeout < need {
		errs = append(errs, fmt.Errorf("server.writeTimeout %s must be at least %s (two ai.timeout attempts plus %s)",
			c.Server.WriteTimeout, need, writeMargin))
	}
	if c.Minio.Enabled && (c.Minio.Endpoint == "" || c.Minio.BucketName == "") {
		errs = append(errs, errors.New("minio.endpoint and minio.bucketName are required when minio is enabled"))
	}
	return errors.Join(errs...)
}

// writeMargin covers assembling and persisting around the provider calls.
const writeMargin = 30 * time.Second

// MinWriteTimeout is the shortest write deadline that still delivers an
// analyze whose first provider attempt timed out and whose retry succeeded.
func (c *Config) MinWriteTimeout() time.Duration {
	return 2*c.AI.Timeout + writeMargin
}

// ProcessingMethod is the provenance label stamped on every case.
func (c *Config) ProcessingMethod(model string) string {
	if c.AI.ProcessingMethod != "" {
		return c.AI.ProcessingMethod
	}
	return c.AI.Provider + ":" + model
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN works for both lib/pq and pgx.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}
