package am

// Config represents the recipeviz configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server" toml:"server"`
	Search  SearchConfig  `mapstructure:"search" toml:"search"`
	Reveal  RevealConfig  `mapstructure:"reveal" toml:"reveal"`
	Canvas  CanvasConfig  `mapstructure:"canvas" toml:"canvas"`
	Minimap MinimapConfig `mapstructure:"minimap" toml:"minimap"`
}

// ServerConfig configures the recipeviz web server
type ServerConfig struct {
	Port           int      `mapstructure:"port" toml:"port"` // 0 = DefaultServerPort
	AllowedOrigins []string `mapstructure:"allowed_origins" toml:"allowed_origins"`
	LogTheme       string   `mapstructure:"log_theme" toml:"log_theme"` // Color theme: gruvbox, everforest
}

// Server port constants
const (
	DefaultServerPort = 8080
)

// SearchConfig configures the external search backend
type SearchConfig struct {
	BackendURL     string `mapstructure:"backend_url" toml:"backend_url"`         // POSTs go to {backend_url}/api
	ImageBaseURL   string `mapstructure:"image_base_url" toml:"image_base_url"`   // Base for relative image links
	TimeoutSeconds int    `mapstructure:"timeout_seconds" toml:"timeout_seconds"` // 0 = wait forever
}

// RevealConfig configures the reveal scheduler and asset resolution
type RevealConfig struct {
	DefaultDelayMS         int     `mapstructure:"default_delay_ms" toml:"default_delay_ms"`
	AssetTimeoutMS         int     `mapstructure:"asset_timeout_ms" toml:"asset_timeout_ms"`
	AssetRequestsPerSecond float64 `mapstructure:"asset_requests_per_second" toml:"asset_requests_per_second"` // 0 = unlimited
	AssetBurst             int     `mapstructure:"asset_burst" toml:"asset_burst"`
	ResolveAssets          bool    `mapstructure:"resolve_assets" toml:"resolve_assets"` // false = clients fetch images themselves
}

// CanvasConfig configures the world canvas and camera
type CanvasConfig struct {
	NodeSize           float64 `mapstructure:"node_size" toml:"node_size"`
	ViewportWidth      float64 `mapstructure:"viewport_width" toml:"viewport_width"`
	ViewportHeight     float64 `mapstructure:"viewport_height" toml:"viewport_height"`
	ClipEdges          bool    `mapstructure:"clip_edges" toml:"clip_edges"`
	FollowFirst        bool    `mapstructure:"follow_first" toml:"follow_first"` // Recenter on the first node when a dataset arrives
	RecenterDurationMS int     `mapstructure:"recenter_duration_ms" toml:"recenter_duration_ms"`
	ZoomBase           float64 `mapstructure:"zoom_base" toml:"zoom_base"`
	MinZoomLevel       int     `mapstructure:"min_zoom_level" toml:"min_zoom_level"`
	MaxZoomLevel       int     `mapstructure:"max_zoom_level" toml:"max_zoom_level"`
	Palette            string  `mapstructure:"palette" toml:"palette"`           // Built-in palette name: light, dark
	PalettePath        string  `mapstructure:"palette_path" toml:"palette_path"` // TOML palette file, overrides Palette
}

// MinimapConfig configures the overview inset
type MinimapConfig struct {
	Enabled bool    `mapstructure:"enabled" toml:"enabled"`
	Width   float64 `mapstructure:"width" toml:"width"`
	Height  float64 `mapstructure:"height" toml:"height"`
	Shrink  float64 `mapstructure:"shrink" toml:"shrink"` // Content fill ratio of the inset
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
