// Package config loads the display theme. The theme only supplies
// colors; it has no effect on navigation behavior.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/LFroesch/treenav/internal/logger"
)

// Theme holds the display colors.
type Theme struct {
	Border      lipgloss.Color
	HighlightBg lipgloss.Color
	Starred     lipgloss.Color
	Dim         lipgloss.Color
	Text        lipgloss.Color
}

// Config holds all treenav configuration.
type Config struct {
	Theme Theme
}

type jsonConfig struct {
	Theme jsonTheme `json:"theme"`
}

type jsonTheme struct {
	Border      string `json:"border"`
	HighlightBg string `json:"highlight_bg"`
	Starred     string `json:"starred"`
	Dim         string `json:"dim"`
	Text        string `json:"text"`
}

// DefaultTheme returns the built-in colors.
func DefaultTheme() Theme {
	return Theme{
		Border:      lipgloss.Color("#50C8DC"),
		HighlightBg: lipgloss.Color("#285064"),
		Starred:     lipgloss.Color("#FAC832"),
		Dim:         lipgloss.Color("#646464"),
		Text:        lipgloss.Color("#FFFFFF"),
	}
}

// Load reads config from ~/.config/treenav/config.json. Any failure
// falls back to defaults; invalid color entries fall back per-field.
func Load() *Config {
	cfg := &Config{Theme: DefaultTheme()}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		logger.Warn("Failed to get home directory: %v", err)
		return cfg
	}
	configPath := filepath.Join(homeDir, ".config", "treenav", "config.json")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg
	}

	var raw jsonConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("Failed to parse config file %s: %v, using defaults", configPath, err)
		return cfg
	}

	applyColor(&cfg.Theme.Border, raw.Theme.Border)
	applyColor(&cfg.Theme.HighlightBg, raw.Theme.HighlightBg)
	applyColor(&cfg.Theme.Starred, raw.Theme.Starred)
	applyColor(&cfg.Theme.Dim, raw.Theme.Dim)
	applyColor(&cfg.Theme.Text, raw.Theme.Text)

	return cfg
}

func applyColor(dst *lipgloss.Color, value string) {
	if c, ok := ParseColor(value); ok {
		*dst = c
	}
}

var hexColor = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// Named colors map to ANSI palette indexes lipgloss understands.
var namedColors = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
	"gray":    "8",
	"grey":    "8",
}

// ParseColor accepts hex colors like "#50C8DC" (with or without the
// hash) and a small set of named colors.
func ParseColor(s string) (lipgloss.Color, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	if hexColor.MatchString(s) {
		if !strings.HasPrefix(s, "#") {
			s = "#" + s
		}
		return lipgloss.Color(strings.ToUpper(s)), true
	}

	if code, ok := namedColors[strings.ToLower(s)]; ok {
		return lipgloss.Color(code), true
	}
	return "", false
}
