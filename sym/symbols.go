// Package sym defines the canonical glyphs for recipeviz commands and
// canvas events. They are stable across CLI output and client UIs.
package sym

// Command glyphs
const (
	AM     = "≡" // am: configuration
	Serve  = "⟐" // server: canvas sessions
	Render = "▣" // render: one-shot snapshot
)

// Canvas glyphs, one per event kind
const (
	Search   = "⌕" // search started
	Dataset  = "⋈" // dataset received
	Reveal   = "✦" // reveal complete
	Failed   = "⨳" // node asset failed
	Error    = "✗" // search failed
	Minimap  = "⌗" // minimap inset
	Recenter = "⊙" // camera recenter
)

// entry binds a glyph to its command or event name
type entry struct {
	glyph       string
	name        string
	description string
}

var registry = []entry{
	{AM, "am", "Configuration"},
	{Serve, "server", "Canvas sessions over WebSocket"},
	{Render, "render", "One-shot SVG or PNG snapshot"},
	{Search, "search_started", "Search started"},
	{Dataset, "dataset_received", "Dataset received"},
	{Reveal, "reveal_complete", "Reveal complete"},
	{Failed, "node_failed", "Node asset failed to load"},
	{Error, "error", "Search failed"},
	{Minimap, "minimap", "Minimap inset"},
	{Recenter, "recenter", "Camera recenter"},
}

// Lookup tables built from the registry at init time.
var (
	nameToGlyph  map[string]string
	glyphToName  map[string]string
	descriptions map[string]string
)

func init() {
	nameToGlyph = make(map[string]string, len(registry))
	glyphToName = make(map[string]string, len(registry))
	descriptions = make(map[string]string, len(registry))
	for _, e := range registry {
		nameToGlyph[e.name] = e.glyph
		glyphToName[e.glyph] = e.name
		descriptions[e.name] = e.description
	}
}

// For returns the glyph for a command or event name, or "" if there is none
func For(name string) string {
	return nameToGlyph[name]
}

// Name returns the command or event name for a glyph
func Name(glyph string) string {
	return glyphToName[glyph]
}

// Describe returns the human-readable description for a name
func Describe(name string) string {
	return descriptions[name]
}
