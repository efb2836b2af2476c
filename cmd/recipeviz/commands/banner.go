package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/recipeviz/am"
	"github.com/teranos/recipeviz/logger"
	"github.com/teranos/recipeviz/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(verbosity, port int, cfg *am.Config, configPath string) {
	info := version.Get()
	if configPath == "" {
		configPath = "(defaults only)"
	}

	lines := []string{
		fmt.Sprintf("Version:   %s (commit %s)", info.Version, info.Short()),
		fmt.Sprintf("Built:     %s", info.BuildTime),
		fmt.Sprintf("Verbosity: %s", logger.LevelName(verbosity)),
		fmt.Sprintf("Listening: http://localhost:%d", port),
		fmt.Sprintf("Backend:   %s", cfg.Search.BackendURL),
		fmt.Sprintf("Palette:   %s", cfg.Canvas.Palette),
		fmt.Sprintf("Config:    %s", configPath),
	}
	fmt.Println()
	pterm.DefaultBox.WithTitle(pterm.LightCyan("recipeviz")).Println(strings.Join(lines, "\n"))
	pterm.Info.Println("Connect a canvas client to /ws, press Ctrl+C to stop")
	fmt.Println()
}
