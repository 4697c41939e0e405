package brush

import (
	"bytes"
	"image/color"
	"io"

	"github.com/maskbrush/brush/utils"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Brush size limits.
const (
	MinBrushSize = 1
	MaxBrushSize = 256
)

const (
	// DefaultHistoryDepth is the number of stroke snapshots kept for undo.
	DefaultHistoryDepth = 10
	// DefaultMaxCanvasBytes is the memory ceiling of a single canvas buffer.
	DefaultMaxCanvasBytes int64 = 1 << 30
	// DefaultOpacity is the opacity of the draft mask in the live preview.
	DefaultOpacity = 0.4
)

// Opacity slider range, expressed on the 0..255 alpha scale.
const (
	MinOpacitySlider = 50
	MaxOpacitySlider = 210
)

var (
	// Background is the colour of unpainted pixels.
	Background = color.NRGBA{}
	// DefaultPaintColor is the colour used for new masks.
	DefaultPaintColor = color.NRGBA{G: 0xff, A: 0xff}
	// DefaultEraseColor is the preview marker colour of the eraser.
	DefaultEraseColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Options holds the editing parameters of a mask.
type Options struct {
	BrushSize      int
	Color          color.NRGBA
	Opacity        float64
	EraseColor     color.NRGBA
	HistoryDepth   int
	MaxCanvasBytes int64
	// StrictSeed turns out of canvas fill seeds into ErrOutOfBoundsSeed
	// instead of a silent no-op.
	StrictSeed bool
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		BrushSize:      MinBrushSize,
		Color:          DefaultPaintColor,
		Opacity:        DefaultOpacity,
		EraseColor:     DefaultEraseColor,
		HistoryDepth:   DefaultHistoryDepth,
		MaxCanvasBytes: DefaultMaxCanvasBytes,
	}
}

// Validate reports the first option outside of its accepted range.
func (o *Options) Validate() error {
	switch {
	case o.BrushSize < MinBrushSize || o.BrushSize > MaxBrushSize:
		return errors.Errorf("brush size %d outside of [%d, %d]", o.BrushSize, MinBrushSize, MaxBrushSize)
	case o.Opacity < 0 || o.Opacity > 1:
		return errors.Errorf("opacity %g outside of [0, 1]", o.Opacity)
	case o.HistoryDepth < 1:
		return errors.Errorf("history depth should be at least 1, got %d", o.HistoryDepth)
	case o.MaxCanvasBytes <= 0:
		return errors.Errorf("canvas memory ceiling should be positive, got %d", o.MaxCanvasBytes)
	case !IsPainted(o.Color):
		return errors.Wrapf(ErrInvalidColor, "%s", utils.RGBAToHex(o.Color))
	}
	return nil
}

// OpacityFromSlider converts an opacity slider value on the 0..255 scale
// to a preview opacity. The value is clamped to the slider range.
func OpacityFromSlider(v int) float64 {
	return float64(utils.Clamp(v, MinOpacitySlider, MaxOpacitySlider)) / 255
}

type optionsFile struct {
	BrushSize      int     `yaml:"brush_size"`
	Color          string  `yaml:"color"`
	Opacity        float64 `yaml:"opacity"`
	EraseColor     string  `yaml:"erase_color"`
	HistoryDepth   int     `yaml:"history_depth"`
	MaxCanvasBytes int64   `yaml:"max_canvas_bytes"`
	StrictSeed     bool    `yaml:"strict_seed"`
}

// LoadOptions reads a YAML document on top of the default options.
// Keys missing from the document keep their default value. Colours are
// written in hexadecimal notation.
func LoadOptions(r io.Reader) (*Options, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not read the options")
	}

	def := DefaultOptions()
	f := optionsFile{
		BrushSize:      def.BrushSize,
		Color:          utils.RGBAToHex(def.Color),
		Opacity:        def.Opacity,
		EraseColor:     utils.RGBAToHex(def.EraseColor),
		HistoryDepth:   def.HistoryDepth,
		MaxCanvasBytes: def.MaxCanvasBytes,
		StrictSeed:     def.StrictSeed,
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "could not decode the options")
	}

	opts := &Options{
		BrushSize:      f.BrushSize,
		Opacity:        f.Opacity,
		HistoryDepth:   f.HistoryDepth,
		MaxCanvasBytes: f.MaxCanvasBytes,
		StrictSeed:     f.StrictSeed,
	}
	if opts.Color, err = utils.HexToRGBA(f.Color); err != nil {
		return nil, errors.Wrap(err, "color")
	}
	if opts.EraseColor, err = utils.HexToRGBA(f.EraseColor); err != nil {
		return nil, errors.Wrap(err, "erase_color")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// WriteTo encodes the options as a YAML document.
func (o *Options) WriteTo(w io.Writer) (int64, error) {
	out, err := yaml.Marshal(optionsFile{
		BrushSize:      o.BrushSize,
		Color:          utils.RGBAToHex(o.Color),
		Opacity:        o.Opacity,
		EraseColor:     utils.RGBAToHex(o.EraseColor),
		HistoryDepth:   o.HistoryDepth,
		MaxCanvasBytes: o.MaxCanvasBytes,
		StrictSeed:     o.StrictSeed,
	})
	if err != nil {
		return 0, errors.Wrap(err, "could not encode the options")
	}
	n, err := w.Write(out)
	return int64(n), err
}
