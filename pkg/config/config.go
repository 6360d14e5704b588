// Package config loads sotflame settings from a TOML or YAML file.
//
// Settings are layered: built-in defaults, then the config file, then
// command-line flags. A file only overrides the keys it sets, so
//
//	title = "checkout"
//
//	[geometry]
//	width = 1600
//
// changes the heading and the document width and keeps every other default.
// The format is chosen by extension: .toml, or .yaml/.yml. Unknown keys are
// rejected so typos do not silently fall back to defaults.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/sotflame/pkg/errors"
	"github.com/matzehuels/sotflame/pkg/flame/layout"
	"github.com/matzehuels/sotflame/pkg/pipeline"
)

const appName = "sotflame"

// File mirrors the config file. Pointer fields distinguish "unset" from an
// explicit zero.
type File struct {
	Title       string   `toml:"title" yaml:"title"`
	Palette     string   `toml:"palette" yaml:"palette"`
	Seed        *uint64  `toml:"seed" yaml:"seed"`
	SearchColor string   `toml:"search_color" yaml:"search_color"`
	MaxDepth    int      `toml:"max_depth" yaml:"max_depth"`
	Output      string   `toml:"output" yaml:"output"`
	Cache       *bool    `toml:"cache" yaml:"cache"`
	Geometry    Geometry `toml:"geometry" yaml:"geometry"`
}

// Geometry overrides individual layout dimensions.
type Geometry struct {
	Width        *float64 `toml:"width" yaml:"width"`
	SideMargin   *float64 `toml:"side_margin" yaml:"side_margin"`
	TopMargin    *float64 `toml:"top_margin" yaml:"top_margin"`
	BottomMargin *float64 `toml:"bottom_margin" yaml:"bottom_margin"`
	BoxHeight    *float64 `toml:"box_height" yaml:"box_height"`
	RowSpacing   *float64 `toml:"row_spacing" yaml:"row_spacing"`
	TextOffsetX  *float64 `toml:"text_offset_x" yaml:"text_offset_x"`
	TextOffsetY  *float64 `toml:"text_offset_y" yaml:"text_offset_y"`
}

// DefaultPath returns $XDG_CONFIG_HOME/sotflame/config.toml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFS(err, "read config %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return decodeTOML(path, data)
	case ".yaml", ".yml":
		return decodeYAML(path, data)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unsupported config format %q (use .toml, .yaml or .yml)", path, ext)
	}
}

// LoadDefault reads the file at DefaultPath. A missing file yields an
// empty config.
func LoadDefault() (*File, error) {
	path, err := DefaultPath()
	if err != nil {
		return &File{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &File{}, nil
	}
	return Load(path)
}

func decodeTOML(path string, data []byte) (*File, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return &f, nil
}

func decodeYAML(path string, data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	return &f, nil
}

// Apply copies every set field onto opts. An unset opts.Geometry starts
// from the default dimensions.
func (f *File) Apply(opts *pipeline.Options) {
	if f == nil {
		return
	}
	if f.Title != "" {
		opts.Title = f.Title
	}
	if f.Palette != "" {
		opts.Palette = f.Palette
	}
	if f.Seed != nil {
		opts.Seed = *f.Seed
	}
	if f.SearchColor != "" {
		opts.SearchColor = f.SearchColor
	}
	if f.MaxDepth != 0 {
		opts.MaxDepth = f.MaxDepth
	}

	if opts.Geometry == (layout.Geometry{}) {
		opts.Geometry = layout.DefaultGeometry()
	}
	g := &opts.Geometry
	set(&g.Width, f.Geometry.Width)
	set(&g.SideMargin, f.Geometry.SideMargin)
	set(&g.TopMargin, f.Geometry.TopMargin)
	set(&g.BottomMargin, f.Geometry.BottomMargin)
	set(&g.BoxHeight, f.Geometry.BoxHeight)
	set(&g.RowSpacing, f.Geometry.RowSpacing)
	set(&g.TextOffsetX, f.Geometry.TextOffsetX)
	set(&g.TextOffsetY, f.Geometry.TextOffsetY)
}

// CacheEnabled reports whether the file leaves the artifact cache on.
func (f *File) CacheEnabled() bool {
	return f == nil || f.Cache == nil || *f.Cache
}

func set(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
