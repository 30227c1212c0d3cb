package editor

import (
	"encoding/binary"
	stderrors "errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/objview/pkg/errors"
	"github.com/matzehuels/objview/pkg/layout"
	"github.com/matzehuels/objview/pkg/nodegraph"
	"github.com/matzehuels/objview/pkg/walker"
)

// Config holds the editor settings. Every field has a default; a config
// file only needs the keys it changes.
type Config struct {
	SceneWidth  float64 `toml:"scene_width" validate:"gt=0"`
	SceneHeight float64 `toml:"scene_height" validate:"gt=0"`
	GridSize    float64 `toml:"grid_size" validate:"gt=0"`
	ShowGrid    bool    `toml:"show_grid"`
	SnapToGrid  bool    `toml:"snap_to_grid"`

	// MouseBoundingBox is the side of the square around the pointer used
	// to find the hovered node while drawing a connection.
	MouseBoundingBox float64 `toml:"mouse_bounding_box" validate:"gt=0"`

	NodeWidth      float64 `toml:"node_width" validate:"gt=0"`
	NodeHeight     float64 `toml:"node_height" validate:"gt=0"`
	NodeRadius     float64 `toml:"node_radius" validate:"gte=0"`
	NodeBorder     float64 `toml:"node_border" validate:"gte=0"`
	NodeAttrHeight float64 `toml:"node_attr_height" validate:"gt=0"`
	AttrFontSize   int     `toml:"attr_font_size" validate:"gt=0"`
	// CharWidth is the width of one label cell in scene units.
	CharWidth float64 `toml:"char_width" validate:"gt=0"`

	ZoomStep      float64 `toml:"zoom_step" validate:"gt=1"`
	WheelZoomStep float64 `toml:"wheel_zoom_step" validate:"gt=1"`
	// ConnectionTolerance is how far from a connection a press still grabs it.
	ConnectionTolerance float64 `toml:"connection_tolerance" validate:"gte=0"`

	LayoutMargin float64 `toml:"layout_margin" validate:"gte=0"`
	// MaxDepth limits the walk; 0 means unlimited.
	MaxDepth int `toml:"max_depth" validate:"gte=0"`
	// HistorySize is how many graph events the session keeps.
	HistorySize int `toml:"history_size" validate:"gt=0"`

	Bits   int    `toml:"bits" validate:"oneof=16 32 64"`
	Endian string `toml:"endian" validate:"oneof=little big"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		SceneWidth:          2000,
		SceneHeight:         2000,
		GridSize:            36,
		ShowGrid:            true,
		MouseBoundingBox:    80,
		NodeWidth:           200,
		NodeHeight:          25,
		NodeRadius:          10,
		NodeBorder:          2,
		NodeAttrHeight:      30,
		AttrFontSize:        10,
		CharWidth:           7,
		ZoomStep:            1.03,
		WheelZoomStep:       1.15,
		ConnectionTolerance: 6,
		LayoutMargin:        layout.DefaultMargin,
		HistorySize:         500,
		Bits:                64,
		Endian:              "little",
	}
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return errors.New(errors.ErrCodeInvalidConfig, "%s: failed %q constraint (value %v)", e.Field(), e.Tag(), e.Value())
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "validate config")
	}
	return nil
}

// Style returns the node geometry settings.
func (c Config) Style() nodegraph.Style {
	return nodegraph.Style{
		BaseWidth:  c.NodeWidth,
		BaseHeight: c.NodeHeight,
		AttrHeight: c.NodeAttrHeight,
		Border:     c.NodeBorder,
		Radius:     c.NodeRadius,
		Measure:    nodegraph.CellMeasurer{CellWidth: c.CharWidth},
	}
}

// Arch returns the target pointer width and byte order.
func (c Config) Arch() walker.Arch {
	var order binary.ByteOrder = binary.LittleEndian
	if c.Endian == "big" {
		order = binary.BigEndian
	}
	return walker.Arch{Bits: c.Bits, ByteOrder: order}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/objview/config.toml, or the
// platform equivalent.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "objview", "config.toml")
}

// LoadConfig reads a TOML config over the defaults and validates it. A
// missing file yields the defaults when the path is the default one, and
// an error otherwise.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && stderrors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML over the defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
