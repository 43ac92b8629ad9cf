// Package config loads img2pacs settings from an optional .env file and the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings
type Config struct {
	Archive ArchiveConfig
	Tools   ToolsConfig
	Log     LogConfig
	Cache   CacheConfig
	Redis   RedisConfig
	HTTP    HTTPConfig
	Metrics MetricsConfig
}

// ArchiveConfig identifies the remote archive
type ArchiveConfig struct {
	AETitle string
	Host    string
	Port    int
}

// ToolsConfig locates the external query and store binaries
type ToolsConfig struct {
	FindSCU      string
	StoreSCU     string
	FindTimeout  time.Duration // 0 = no timeout
	StoreTimeout time.Duration // 0 = no timeout
}

type LogConfig struct {
	Level      string
	Format     string // text or json
	File       string // empty disables the rotating file
	MaxSizeMB  int
	MaxBackups int
}

type CacheConfig struct {
	Type string // none, memory or redis
	TTL  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type HTTPConfig struct {
	Addr           string   // loopback unless configured
	AllowedOrigins []string // cross-origin callers, none by default
}

type MetricsConfig struct {
	Textfile string // node_exporter textfile path, empty disables
}

// Default returns the settings used when nothing is configured
func Default() *Config {
	return &Config{
		Archive: ArchiveConfig{
			AETitle: "DCM4CHEE",
			Host:    "localhost",
			Port:    11112,
		},
		Tools: ToolsConfig{
			FindSCU:  "findscu",
			StoreSCU: "storescu",
		},
		Log: LogConfig{
			Level:      "INFO",
			Format:     "text",
			File:       "logs/app.log",
			MaxSizeMB:  5,
			MaxBackups: 5,
		},
		Cache: CacheConfig{
			Type: "memory",
			TTL:  10 * time.Minute,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		HTTP: HTTPConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// Load reads envFile when it exists (missing files are ignored), then
// overlays the process environment on the defaults. Variables already set
// in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	p := parser{lookup: lookup}

	p.str("ARCHIVE_AET", &cfg.Archive.AETitle)
	p.str("ARCHIVE_HOST", &cfg.Archive.Host)
	p.integer("ARCHIVE_PORT", &cfg.Archive.Port)

	p.str("FINDSCU_PATH", &cfg.Tools.FindSCU)
	p.str("STORESCU_PATH", &cfg.Tools.StoreSCU)
	p.duration("FIND_TIMEOUT", &cfg.Tools.FindTimeout)
	p.duration("STORE_TIMEOUT", &cfg.Tools.StoreTimeout)

	p.str("LOG_LEVEL", &cfg.Log.Level)
	p.str("LOG_FORMAT", &cfg.Log.Format)
	p.strOrEmpty("LOG_FILE", &cfg.Log.File)
	p.integer("LOG_MAX_SIZE_MB", &cfg.Log.MaxSizeMB)
	p.integer("LOG_MAX_BACKUPS", &cfg.Log.MaxBackups)

	p.str("CACHE_TYPE", &cfg.Cache.Type)
	p.duration("CACHE_TTL", &cfg.Cache.TTL)

	p.str("REDIS_ADDR", &cfg.Redis.Addr)
	p.str("REDIS_PASSWORD", &cfg.Redis.Password)
	p.integer("REDIS_DB", &cfg.Redis.DB)

	p.str("HTTP_ADDR", &cfg.HTTP.Addr)
	p.list("CORS_ALLOWED_ORIGINS", &cfg.HTTP.AllowedOrigins)

	p.str("METRICS_TEXTFILE", &cfg.Metrics.Textfile)

	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error
	if c.Archive.AETitle == "" || len(c.Archive.AETitle) > 16 {
		errs = append(errs, fmt.Errorf("archive AE title %q must be 1-16 characters", c.Archive.AETitle))
	}
	if c.Archive.Host == "" {
		errs = append(errs, errors.New("archive host is required"))
	}
	if c.Archive.Port < 1 || c.Archive.Port > 65535 {
		errs = append(errs, fmt.Errorf("archive port %d out of range", c.Archive.Port))
	}
	if c.Tools.FindSCU == "" || c.Tools.StoreSCU == "" {
		errs = append(errs, errors.New("findscu and storescu paths are required"))
	}
	if c.Tools.FindTimeout < 0 || c.Tools.StoreTimeout < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	switch strings.ToLower(c.Cache.Type) {
	case "none", "memory":
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis cache requires REDIS_ADDR"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache type %q", c.Cache.Type))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache TTL must not be negative"))
	}
	return errors.Join(errs...)
}

// ArchiveAddress renders AET@host:port as the query and store tools expect it
func (c *Config) ArchiveAddress() string {
	return fmt.Sprintf("%s@%s:%d", c.Archive.AETitle, c.Archive.Host, c.Archive.Port)
}

type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) get(key string) (string, bool) {
	v, ok := p.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (p *parser) str(key string, dst *string) {
	if v, ok := p.get(key); ok {
		*dst = v
	}
}

// strOrEmpty also applies a variable that is set but empty
func (p *parser) strOrEmpty(key string, dst *string) {
	if v, ok := p.lookup(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func (p *parser) integer(key string, dst *int) {
	if v, ok := p.get(key); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = i
	}
}

func (p *parser) duration(key string, dst *time.Duration) {
	if v, ok := p.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}
}

func (p *parser) list(key string, dst *[]string) {
	if v, ok := p.get(key); ok {
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		*dst = out
	}
}
