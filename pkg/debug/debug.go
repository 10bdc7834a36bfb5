// Package debug turns on verbose logging per subsystem and installs the
// process-wide slog logger.
//
// Categories pick which subsystems log their Debug and Trace records; the
// level decides whether those records reach the output at all. Both come
// from configuration and can be overridden from the environment:
//
//	EXPENSES_DEBUG=auth,storage EXPENSES_LOG_LEVEL=debug ./server
package debug

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"sync/atomic"
)

// Subsystems that emit category logs.
const (
	Auth      = "auth"
	Storage   = "storage"
	Transport = "transport"
	Notify    = "notify"
	Config    = "config"

	// All enables every category.
	All = "all"
)

// LevelTrace sits below slog.LevelDebug.
const LevelTrace = slog.LevelDebug - 4

// Environment variables that take precedence over configuration.
const (
	EnvCategories = "EXPENSES_DEBUG"
	EnvLevel      = "EXPENSES_LOG_LEVEL"
	EnvFormat     = "EXPENSES_LOG_FORMAT"
)

// Settings describes the logging setup before it is applied.
type Settings struct {
	Categories string // comma or space separated
	Level      string // trace, debug, info, warn, error
	Format     string // text or json
}

// Resolve returns s with every non-empty environment value read through
// getenv replacing the configured one.
func (s Settings) Resolve(getenv func(string) string) Settings {
	if v := getenv(EnvCategories); v != "" {
		s.Categories = v
	}
	if v := getenv(EnvLevel); v != "" {
		s.Level = v
	}
	if v := getenv(EnvFormat); v != "" {
		s.Format = v
	}
	return s
}

type categorySet map[string]struct{}

var enabled atomic.Pointer[categorySet]

func init() {
	enable(os.Getenv(EnvCategories))
}

// Init resolves the configured values against the environment, enables the
// resulting categories and installs a stderr logger as slog's default.
func Init(categories, level, format string) {
	s := Settings{Categories: categories, Level: level, Format: format}.Resolve(os.Getenv)
	enable(s.Categories)
	slog.SetDefault(NewLogger(os.Stderr, s.Format, ParseLevel(s.Level)))
}

func enable(list string) {
	set := categorySet{}
	for _, c := range strings.FieldsFunc(strings.ToLower(list), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}) {
		set[c] = struct{}{}
	}
	enabled.Store(&set)
}

// NewLogger returns a logger writing JSON when format is "json" and text
// otherwise. Trace records are labelled TRACE.
func NewLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l <= LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Enabled reports whether category logs are on for category.
func Enabled(category string) bool {
	set := *enabled.Load()
	_, all := set[All]
	_, ok := set[category]
	return all || ok
}

// Log writes a Debug record tagged with category when it is enabled.
func Log(category, msg string, args ...any) {
	emit(category, slog.LevelDebug, msg, args)
}

// Trace writes a Trace record tagged with category when it is enabled.
func Trace(category, msg string, args ...any) {
	emit(category, LevelTrace, msg, args)
}

func emit(category string, level slog.Level, msg string, args []any) {
	if !Enabled(category) {
		return
	}
	slog.Default().Log(context.Background(), level, msg, append([]any{"category", category}, args...)...)
}

// ParseLevel maps a level name to a slog.Level. Unknown names give Info.
func ParseLevel(s string) slog.Level {
	name := strings.ToUpper(strings.TrimSpace(s))
	switch name {
	case "TRACE":
		return LevelTrace
	case "WARNING":
		name = "WARN"
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Categories returns the enabled categories in sorted order.
func Categories() []string {
	return slices.Sorted(maps.Keys(*enabled.Load()))
}
