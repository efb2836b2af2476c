package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// palette holds the ANSI colours used by the minimal encoder
type palette struct {
	fg        string
	time      string
	id        string
	number    string
	component []string // rotated by a hash of the logger name
	warn      string
	warnBg    string
	err       string
	errBg     string
}

var themes = map[string]palette{
	// Gruvbox Dark (warm, muted)
	"gruvbox": {
		fg:        "\x1b[38;5;223m",
		time:      "\x1b[38;5;108m",
		id:        "\x1b[38;5;109m",
		number:    "\x1b[38;5;175m",
		component: []string{"\x1b[38;5;208m", "\x1b[38;5;214m"},
		warn:      "\x1b[38;5;214m",
		warnBg:    "\x1b[48;5;58m",
		err:       "\x1b[38;5;167m",
		errBg:     "\x1b[48;5;88m",
	},
	// Everforest Dark (forest greens)
	"everforest": {
		fg:        "\x1b[38;5;223m",
		time:      "\x1b[38;5;107m",
		id:        "\x1b[38;5;109m",
		number:    "\x1b[38;5;108m",
		component: []string{"\x1b[38;5;108m", "\x1b[38;5;65m", "\x1b[38;5;208m"},
		warn:      "\x1b[38;5;179m",
		warnBg:    "\x1b[48;5;58m",
		err:       "\x1b[38;5;167m",
		errBg:     "\x1b[48;5;52m",
	},
}

// Current active theme (set from config or RECIPEVIZ_LOG_THEME)
var currentTheme = "everforest"

// SetTheme configures the color scheme for log output; unknown names are ignored
func SetTheme(theme string) {
	if _, ok := themes[theme]; ok {
		currentTheme = theme
	}
}

func colors() palette {
	return themes[currentTheme]
}

func colorComponent(name string) string {
	hash := 0
	for _, c := range name {
		hash += int(c)
	}
	rot := colors().component
	return rot[hash%len(rot)]
}

// minimalEncoder implements a calm, compact console encoder with theme support
// Format: "13:04:35  r.scheduler  Reveal complete  3f2a… gen=4 (12 nodes, 11 edges)"
type minimalEncoder struct {
	zapcore.Encoder // base encoder, used for Clone and field serialization
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{Encoder: enc.Encoder.Clone()}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	c := colors()
	final := buffer.NewPool().Get()

	final.AppendString(c.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level: only shown for non-info entries
	if lvl := levelColorString(ent.Level); lvl != "" {
		final.AppendString("  ")
		final.AppendString(lvl)
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorComponent(ent.LoggerName))
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(c.fg)
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	if len(fields) > 0 {
		final.AppendString("  ")
		final.AppendString(extractFieldValues(fields))
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for non-info levels
func levelColorString(level zapcore.Level) string {
	c := colors()
	switch level {
	case zapcore.InfoLevel:
		return ""
	case zapcore.DebugLevel:
		return c.id + "DEBUG" + colorReset
	case zapcore.WarnLevel:
		return colorBold + c.warnBg + c.warn + "WARN" + colorReset
	default:
		return colorBold + c.errBg + c.err + level.CapitalString() + colorReset
	}
}

// abbreviateName shortens component names: reveal.scheduler -> r.scheduler
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// getFieldValue renders a zap field value without its key
func getFieldValue(field zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	field.AddTo(enc)
	if v, ok := enc.Fields[field.Key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

// extractFieldValues formats fields compactly. IDs and counts get special
// treatment, everything else is rendered key=value so nothing is dropped.
func extractFieldValues(fields []zapcore.Field) string {
	c := colors()
	var values, rest []string
	var nodeCount, edgeCount string

	for _, field := range fields {
		val := getFieldValue(field)
		switch field.Key {
		case FieldClientID, FieldSearchID:
			if val != "" {
				values = append(values, c.id+val+colorReset)
			}
		case FieldNodes:
			nodeCount = val
		case FieldEdges:
			edgeCount = val
		case FieldDurationMS:
			values = append(values, c.number+val+colorReset+"ms")
		default:
			rest = append(rest, field.Key+"="+val)
		}
	}

	if nodeCount != "" || edgeCount != "" {
		if nodeCount == "" {
			nodeCount = "0"
		}
		if edgeCount == "" {
			edgeCount = "0"
		}
		values = append(values, c.fg+"("+c.number+nodeCount+colorReset+c.fg+" nodes, "+
			c.number+edgeCount+colorReset+c.fg+" edges)"+colorReset)
	}

	sort.Strings(rest)
	values = append(values, rest...)
	return strings.Join(values, " ")
}
