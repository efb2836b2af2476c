package am

import (
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override (RECIPEVIZ_SEARCH_BACKEND_URL)
const EnvPrefix = "RECIPEVIZ"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
		"https://127.0.0.1",
	})
	v.SetDefault("server.log_theme", "everforest")

	// Search backend
	v.SetDefault("search.backend_url", "http://localhost:8000")
	v.SetDefault("search.image_base_url", "http://localhost:8000/images/")
	v.SetDefault("search.timeout_seconds", 0) // Hung request = persistent loading

	// Reveal
	v.SetDefault("reveal.default_delay_ms", 500)
	v.SetDefault("reveal.asset_timeout_ms", 5000)
	v.SetDefault("reveal.asset_requests_per_second", 20.0)
	v.SetDefault("reveal.asset_burst", 5)
	v.SetDefault("reveal.resolve_assets", false)

	// Canvas
	v.SetDefault("canvas.node_size", 60.0)
	v.SetDefault("canvas.viewport_width", 1280.0)
	v.SetDefault("canvas.viewport_height", 800.0)
	v.SetDefault("canvas.clip_edges", true)
	v.SetDefault("canvas.follow_first", true)
	v.SetDefault("canvas.recenter_duration_ms", 300)
	v.SetDefault("canvas.zoom_base", 1.2)
	v.SetDefault("canvas.min_zoom_level", -10)
	v.SetDefault("canvas.max_zoom_level", 10)
	v.SetDefault("canvas.palette", "light")
	v.SetDefault("canvas.palette_path", "")

	// Minimap
	v.SetDefault("minimap.enabled", true)
	v.SetDefault("minimap.width", 200.0)
	v.SetDefault("minimap.height", 150.0)
	v.SetDefault("minimap.shrink", 0.75)
}

// BindEnvVars explicitly binds settings commonly set from deployment environments
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("search.backend_url", EnvPrefix+"_BACKEND_URL")
	v.BindEnv("search.image_base_url", EnvPrefix+"_IMAGE_BASE_URL")
	v.BindEnv("server.port", EnvPrefix+"_PORT")
}

// GetServerPort returns the configured port, or DefaultServerPort
func (c *Config) GetServerPort() int {
	if c.Server.Port == 0 {
		return DefaultServerPort
	}
	return c.Server.Port
}

// GetServerAllowedOrigins returns the allowed WebSocket origins
func (c *Config) GetServerAllowedOrigins() []string {
	if len(c.Server.AllowedOrigins) == 0 {
		return []string{
			"http://localhost",
			"https://localhost",
			"http://127.0.0.1",
			"https://127.0.0.1",
		}
	}
	return c.Server.AllowedOrigins
}

// Defaults returns a Config populated only from SetDefaults
func Defaults() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// Defaults always decode
		panic(err)
	}
	return cfg
}
