package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Log        LogConfig        `mapstructure:"log"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Mode           string        `mapstructure:"mode"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	Name         string        `mapstructure:"name"`
	SSLMode      string        `mapstructure:"sslmode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	ConnMaxLife  time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	Channel      string        `mapstructure:"channel"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type ScheduleConfig struct {
	Timezone    string        `mapstructure:"timezone"`
	BoardTTL    time.Duration `mapstructure:"board_ttl"`
	LoadTimeout time.Duration `mapstructure:"load_timeout"`
	MaxAgenda   time.Duration `mapstructure:"max_agenda_range"`

	// RefreshInterval reloads every open board periodically; 0 disables it.
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// Location resolves Timezone. Validate has already checked it.
func (c ScheduleConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisTTL        time.Duration `mapstructure:"redis_ttl"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type MonitoringConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// envOverrides are read from AGENDA_* variables and win over the file.
type envOverrides struct {
	ServerPort *int    `envconfig:"SERVER_PORT"`
	DBHost     *string `envconfig:"DB_HOST"`
	DBPort     *int    `envconfig:"DB_PORT"`
	DBUser     *string `envconfig:"DB_USER"`
	DBPassword *string `envconfig:"DB_PASSWORD"`
	DBName     *string `envconfig:"DB_NAME"`
	DBSSLMode  *string `envconfig:"DB_SSLMODE"`
	RedisURL   *string `envconfig:"REDIS_URL"`
	JWTSecret  *string `envconfig:"JWT_SECRET"`
	Timezone   *string `envconfig:"TIMEZONE"`
	LogLevel   *string `envconfig:"LOG_LEVEL"`
}

const envPrefix = "AGENDA"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 15*time.Second)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "agenda")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.channel", "agenda.events")

	v.SetDefault("jwt.issuer", "agenda-api")

	v.SetDefault("schedule.timezone", "UTC")
	v.SetDefault("schedule.board_ttl", 30*time.Minute)
	v.SetDefault("schedule.load_timeout", 5*time.Second)
	v.SetDefault("schedule.max_agenda_range", 62*24*time.Hour)
	v.SetDefault("schedule.refresh_interval", 5*time.Minute)

	v.SetDefault("cache.ttl", time.Minute)
	v.SetDefault("cache.cleanup_interval", 5*time.Minute)
	v.SetDefault("cache.redis_ttl", 10*time.Minute)
	v.SetDefault("cache.key_prefix", "agenda:availability:")

	v.SetDefault("rate_limit.rps", 50)
	v.SetDefault("rate_limit.burst", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("monitoring.namespace", "agenda")
}

// LoadConfig reads .env (if any), the yaml file and AGENDA_* overrides.
// path may point at a specific file; empty searches the usual directories,
// and a missing file leaves the defaults in place.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	setInt(&cfg.Server.Port, env.ServerPort)
	setString(&cfg.Database.Host, env.DBHost)
	setInt(&cfg.Database.Port, env.DBPort)
	setString(&cfg.Database.User, env.DBUser)
	setString(&cfg.Database.Password, env.DBPassword)
	setString(&cfg.Database.Name, env.DBName)
	setString(&cfg.Database.SSLMode, env.DBSSLMode)
	setString(&cfg.Redis.URL, env.RedisURL)
	setString(&cfg.JWT.Secret, env.JWTSecret)
	setString(&cfg.Schedule.Timezone, env.Timezone)
	setString(&cfg.Log.Level, env.LogLevel)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		problems = append(problems, "jwt.secret is required")
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("schedule.timezone: %v", err))
	}
	if c.Schedule.LoadTimeout <= 0 {
		problems = append(problems, "schedule.load_timeout must be positive")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		problems = append(problems, "rate_limit.rps and rate_limit.burst must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
