// Package config loads and validates edge service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// OGImageSource selects what og:image points at for entity detail pages.
type OGImageSource string

// Supported og:image sources.
const (
	// OGImageCard points previews at the self-rendered card endpoint.
	OGImageCard OGImageSource = "card"
	// OGImageArtwork points previews at the raw upstream artwork URL.
	OGImageArtwork OGImageSource = "artwork"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Site      SiteConfig      `mapstructure:"site"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Card      CardConfig      `mapstructure:"card"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	StaticDir string `mapstructure:"static_dir"`
}

// SiteConfig describes the human-facing site the edge fronts.
type SiteConfig struct {
	Name                 string `mapstructure:"name"`
	URL                  string `mapstructure:"url"`
	DefaultDescription   string `mapstructure:"default_description"`
	RedirectDelaySeconds int    `mapstructure:"redirect_delay_seconds"`
	OGImageSource        string `mapstructure:"og_image_source"`
}

// UpstreamConfig governs access to the read-only entity data API.
type UpstreamConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	ArtworkBaseURL    string `mapstructure:"artwork_base_url"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// CacheConfig sets TTLs for the two cache tiers and the HTML response max-age.
type CacheConfig struct {
	UpstreamTTLSeconds int    `mapstructure:"upstream_ttl_seconds"`
	ImageTTLSeconds    int    `mapstructure:"image_ttl_seconds"`
	HTMLMaxAgeSeconds  int    `mapstructure:"html_max_age_seconds"`
	GCSBucket          string `mapstructure:"gcs_bucket"`
}

// CardConfig configures the raster card renderer.
type CardConfig struct {
	FontRegularPath string `mapstructure:"font_regular_path"`
	FontBoldPath    string `mapstructure:"font_bold_path"`
}

// AnalyticsConfig selects and configures the analytics sink.
type AnalyticsConfig struct {
	Sink          string `mapstructure:"sink"`
	PubSubProject string `mapstructure:"pubsub_project"`
	PubSubTopic   string `mapstructure:"pubsub_topic"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	BufferSize    int    `mapstructure:"buffer_size"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DEXGUIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_dir", "public")
	v.SetDefault("site.name", "DexGuide")
	v.SetDefault("site.url", "https://dexguide.gg")
	v.SetDefault("site.default_description",
		"Your free Pokemon database. Stats, moves, type matchups, team builder, and more for all 1025 Pokemon.")
	v.SetDefault("site.redirect_delay_seconds", 3)
	v.SetDefault("site.og_image_source", string(OGImageCard))
	v.SetDefault("upstream.base_url", "https://pokeapi.co/api/v2")
	v.SetDefault("upstream.artwork_base_url",
		"https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork")
	v.SetDefault("upstream.timeout_seconds", 15)
	v.SetDefault("upstream.requests_per_minute", 120)
	v.SetDefault("cache.upstream_ttl_seconds", 604800)
	v.SetDefault("cache.image_ttl_seconds", 604800)
	v.SetDefault("cache.html_max_age_seconds", 3600)
	v.SetDefault("analytics.sink", "log")
	v.SetDefault("analytics.buffer_size", 256)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Site.URL == "" {
		return fmt.Errorf("site.url must be set")
	}
	if c.Site.RedirectDelaySeconds < 0 || c.Site.RedirectDelaySeconds > 10 {
		return fmt.Errorf("site.redirect_delay_seconds must be in [0, 10]")
	}
	switch OGImageSource(c.Site.OGImageSource) {
	case OGImageCard, OGImageArtwork:
	default:
		return fmt.Errorf("site.og_image_source must be %q or %q", OGImageCard, OGImageArtwork)
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url must be set")
	}
	if c.Upstream.TimeoutSeconds <= 0 {
		return fmt.Errorf("upstream.timeout_seconds must be > 0")
	}
	if c.Cache.UpstreamTTLSeconds <= 0 || c.Cache.ImageTTLSeconds <= 0 {
		return fmt.Errorf("cache TTLs must be > 0")
	}
	switch c.Analytics.Sink {
	case "log", "pubsub", "postgres":
	default:
		return fmt.Errorf("analytics.sink must be one of log, pubsub, postgres")
	}
	if c.Analytics.Sink == "pubsub" && (c.Analytics.PubSubProject == "" || c.Analytics.PubSubTopic == "") {
		return fmt.Errorf("analytics.pubsub_project and analytics.pubsub_topic must be set for the pubsub sink")
	}
	if c.Analytics.Sink == "postgres" && c.Analytics.PostgresDSN == "" {
		return fmt.Errorf("analytics.postgres_dsn must be set for the postgres sink")
	}
	return nil
}

// UpstreamTTL returns the upstream cache tier TTL as a duration.
func (c Config) UpstreamTTL() time.Duration {
	return time.Duration(c.Cache.UpstreamTTLSeconds) * time.Second
}

// ImageTTL returns the rendered image cache tier TTL as a duration.
func (c Config) ImageTTL() time.Duration {
	return time.Duration(c.Cache.ImageTTLSeconds) * time.Second
}

// UpstreamTimeout returns the upstream HTTP client timeout.
func (c Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}
