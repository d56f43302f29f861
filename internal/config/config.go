// Package config manages crop-editor configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/ironsheep/crop-editor/internal/editor"
	"github.com/ironsheep/crop-editor/internal/imaging"
)

// Config represents the application configuration.
type Config struct {
	Canvas    CanvasConfig    `yaml:"canvas"`
	Files     FilesConfig     `yaml:"files"`
	Selection SelectionConfig `yaml:"selection"`
	History   HistoryConfig   `yaml:"history"`
	LogLevel  string          `yaml:"log_level"`
}

// CanvasConfig is the size of the preview surface in pixels.
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// FilesConfig controls which files can be opened and how images are saved.
type FilesConfig struct {
	OpenExtensions   []string `yaml:"open_extensions"`
	SaveExtensions   []string `yaml:"save_extensions"`
	DefaultExtension string   `yaml:"default_extension"`
	JPEGQuality      int      `yaml:"jpeg_quality"`
	WebPQuality      float32  `yaml:"webp_quality"`
}

// SelectionConfig styles the rubber band drawn while dragging and tunes the
// region detector behind suggested selections.
type SelectionConfig struct {
	OutlineColor    string  `yaml:"outline_color"`
	DetectMinArea   int     `yaml:"detect_min_area"`
	DetectTolerance float64 `yaml:"detect_tolerance"`
}

// HistoryConfig bounds the undo stack. MaxEntries 0 means unbounded.
type HistoryConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Canvas: CanvasConfig{
			Width:  800,
			Height: 600,
		},
		Files: FilesConfig{
			OpenExtensions:   editor.DefaultOpenExtensions(),
			SaveExtensions:   editor.DefaultSaveExtensions(),
			DefaultExtension: editor.DefaultExtension,
			JPEGQuality:      95,
			WebPQuality:      90,
		},
		Selection: SelectionConfig{
			OutlineColor:    "#FF0000",
			DetectMinArea:   400,
			DetectTolerance: 0.8,
		},
		History: HistoryConfig{
			MaxEntries: 0,
		},
		LogLevel: "info",
	}
}

// Validate checks that every value is in range. All problems are reported
// together.
func (c *Config) Validate() error {
	var errs []error

	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas: size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height))
	}
	if len(c.Files.OpenExtensions) == 0 {
		errs = append(errs, errors.New("files.open_extensions: at least one extension is required"))
	}
	if len(c.Files.SaveExtensions) == 0 {
		errs = append(errs, errors.New("files.save_extensions: at least one extension is required"))
	}
	for _, ext := range append(append([]string{}, c.Files.OpenExtensions...), c.Files.SaveExtensions...) {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("files: extension %q must start with a dot", ext))
		}
	}
	if !strings.HasPrefix(c.Files.DefaultExtension, ".") {
		errs = append(errs, fmt.Errorf("files.default_extension: %q must start with a dot", c.Files.DefaultExtension))
	} else if !imaging.HasExtension("x"+c.Files.DefaultExtension, c.Files.SaveExtensions) {
		errs = append(errs, fmt.Errorf("files.default_extension: %q is not in save_extensions", c.Files.DefaultExtension))
	}
	if c.Files.JPEGQuality < 1 || c.Files.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("files.jpeg_quality: must be 1-100, got %d", c.Files.JPEGQuality))
	}
	if c.Files.WebPQuality < 0 || c.Files.WebPQuality > 100 {
		errs = append(errs, fmt.Errorf("files.webp_quality: must be 0-100, got %g", c.Files.WebPQuality))
	}
	if _, err := imaging.ParseHexColor(c.Selection.OutlineColor); err != nil {
		errs = append(errs, fmt.Errorf("selection.outline_color: %w", err))
	}
	if c.Selection.DetectMinArea < 0 {
		errs = append(errs, fmt.Errorf("selection.detect_min_area: must not be negative, got %d", c.Selection.DetectMinArea))
	}
	if math.IsNaN(c.Selection.DetectTolerance) || c.Selection.DetectTolerance < 0 || c.Selection.DetectTolerance > 1 {
		errs = append(errs, fmt.Errorf("selection.detect_tolerance: must be 0-1, got %g", c.Selection.DetectTolerance))
	}
	if c.History.MaxEntries < 0 {
		errs = append(errs, fmt.Errorf("history.max_entries: must not be negative, got %d", c.History.MaxEntries))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	return errors.Join(errs...)
}

// Codec returns an image codec configured from the files section.
func (c *Config) Codec() *imaging.Codec {
	codec := imaging.NewCodec()
	codec.OpenExtensions = c.Files.OpenExtensions
	codec.JPEGQuality = c.Files.JPEGQuality
	codec.WebPQuality = c.Files.WebPQuality
	return codec
}

// EditorOptions returns the editor settings described by the configuration:
// a history-limited session, the outline color, the detector thresholds and
// the file extensions.
func (c *Config) EditorOptions() ([]editor.Option, error) {
	outline, err := imaging.ParseHexColor(c.Selection.OutlineColor)
	if err != nil {
		return nil, fmt.Errorf("selection.outline_color: %w", err)
	}
	return []editor.Option{
		editor.WithSession(editor.NewSession(editor.WithHistoryLimit(c.History.MaxEntries))),
		editor.WithOutlineColor(outline),
		editor.WithDetection(c.Selection.DetectMinArea, c.Selection.DetectTolerance),
		editor.WithOpenExtensions(c.Files.OpenExtensions),
		editor.WithSaveExtensions(c.Files.SaveExtensions),
		editor.WithDefaultExtension(c.Files.DefaultExtension),
	}, nil
}

// ParseLevel maps a level name to a slog level. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown level %q", s)
}
