package am

import (
	"net/url"

	"github.com/teranos/recipeviz/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Server port: 0 = default, negative or out of range = invalid
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.Newf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Search.BackendURL != "" {
		if err := validateURL("search.backend_url", c.Search.BackendURL); err != nil {
			return err
		}
	}
	if c.Search.ImageBaseURL != "" {
		if err := validateURL("search.image_base_url", c.Search.ImageBaseURL); err != nil {
			return err
		}
	}
	if c.Search.TimeoutSeconds < 0 {
		return errors.Newf("search.timeout_seconds must be >= 0, got %d", c.Search.TimeoutSeconds)
	}

	// A delay below 1ms is rejected before any scheduler starts
	if c.Reveal.DefaultDelayMS < 1 {
		return errors.WithHint(
			errors.Newf("reveal.default_delay_ms must be >= 1, got %d", c.Reveal.DefaultDelayMS),
			"use 1 for the fastest reveal")
	}
	if c.Reveal.AssetTimeoutMS < 0 {
		return errors.Newf("reveal.asset_timeout_ms must be >= 0, got %d", c.Reveal.AssetTimeoutMS)
	}
	if c.Reveal.AssetRequestsPerSecond < 0 {
		return errors.Newf("reveal.asset_requests_per_second must be >= 0, got %f", c.Reveal.AssetRequestsPerSecond)
	}
	if c.Reveal.AssetBurst < 0 {
		return errors.Newf("reveal.asset_burst must be >= 0, got %d", c.Reveal.AssetBurst)
	}

	if c.Canvas.NodeSize <= 0 {
		return errors.Newf("canvas.node_size must be > 0, got %f", c.Canvas.NodeSize)
	}
	if c.Canvas.ViewportWidth <= 0 || c.Canvas.ViewportHeight <= 0 {
		return errors.Newf("canvas viewport must be positive, got %fx%f", c.Canvas.ViewportWidth, c.Canvas.ViewportHeight)
	}
	if c.Canvas.RecenterDurationMS < 0 {
		return errors.Newf("canvas.recenter_duration_ms must be >= 0, got %d", c.Canvas.RecenterDurationMS)
	}
	if c.Canvas.ZoomBase <= 1 {
		return errors.Newf("canvas.zoom_base must be > 1, got %f", c.Canvas.ZoomBase)
	}
	if c.Canvas.MinZoomLevel > 0 || c.Canvas.MaxZoomLevel < 0 {
		return errors.Newf("canvas zoom levels must bracket 0, got [%d, %d]", c.Canvas.MinZoomLevel, c.Canvas.MaxZoomLevel)
	}

	if c.Minimap.Enabled {
		if c.Minimap.Width <= 0 || c.Minimap.Height <= 0 {
			return errors.Newf("minimap size must be positive when enabled, got %fx%f", c.Minimap.Width, c.Minimap.Height)
		}
		if c.Minimap.Shrink <= 0 || c.Minimap.Shrink > 1 {
			return errors.Newf("minimap.shrink must be in (0, 1], got %f", c.Minimap.Shrink)
		}
	}

	return nil
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrapf(err, "%s is not a valid URL", key)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Newf("%s must be http or https, got %q", key, raw)
	}
	return nil
}
