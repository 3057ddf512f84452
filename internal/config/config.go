package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MaxResolutionLimit caps heatmap.max_resolution; a raster holds
// resolution*resolution cells in memory
const MaxResolutionLimit = 4096

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Heatmap   HeatmapConfig   `mapstructure:"heatmap"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`

	// File is the config file that was read, empty when running on defaults
	File string `mapstructure:"-"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig guards mutating routes; an empty secret disables auth
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type HeatmapConfig struct {
	MaxResolution int           `mapstructure:"max_resolution"`
	Workers       int           `mapstructure:"workers"` // 0 = one per CPU
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

// CacheConfig points at a redis instance; an empty address disables caching
type CacheConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load 加载配置. path may be empty, in which case config.yaml is looked up
// in . and ./configs and is optional.
func Load(path string) (*Config, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "2m")
	v.SetDefault("database.path", "./data/resourcemap.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("heatmap.max_resolution", 1024)
	v.SetDefault("heatmap.workers", 0)
	v.SetDefault("heatmap.cache_ttl", "10m")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("ratelimit.requests", 30)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Environment variables: RESOURCEMAP_DATABASE_PATH → database.path
	v.SetEnvPrefix("RESOURCEMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 兼容旧的环境变量
	_ = v.BindEnv("server.port", "RESOURCEMAP_SERVER_PORT", "PORT")
	_ = v.BindEnv("database.path", "RESOURCEMAP_DATABASE_PATH", "DB_PATH")
	_ = v.BindEnv("auth.jwt_secret", "RESOURCEMAP_AUTH_JWT_SECRET", "JWT_SECRET")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.File = v.ConfigFileUsed()
	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port == "" {
		errs = append(errs, "server.port is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Heatmap.MaxResolution <= 0 || c.Heatmap.MaxResolution > MaxResolutionLimit {
		errs = append(errs, fmt.Sprintf("heatmap.max_resolution must be in [1, %d], got %d", MaxResolutionLimit, c.Heatmap.MaxResolution))
	}
	if c.Heatmap.Workers < 0 {
		errs = append(errs, fmt.Sprintf("heatmap.workers must not be negative, got %d", c.Heatmap.Workers))
	}
	if c.Heatmap.CacheTTL < 0 {
		errs = append(errs, "heatmap.cache_ttl must not be negative")
	}
	if c.RateLimit.Requests <= 0 {
		errs = append(errs, "ratelimit.requests must be positive")
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, "ratelimit.window must be positive")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or console, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
