package brush

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// ShapeTypeMask is the shape type of persisted brush masks.
const ShapeTypeMask = "mask"

// Shape is the persisted form of a finalized mask, laid out like a labelme
// shape record. Points holds the top-left and bottom-right corners of the
// mask bounds and Mask the cropped canvas as a base64 encoded PNG.
type Shape struct {
	Label       string          `json:"label"`
	Points      [][2]float64    `json:"points"`
	GroupID     *int            `json:"group_id"`
	Description string          `json:"description"`
	ShapeType   string          `json:"shape_type"`
	Flags       map[string]bool `json:"flags"`
	Mask        string          `json:"mask"`
}

// EncodeShape finalizes m and returns its persisted form.
// It fails with ErrEmptyMask when nothing was painted.
func EncodeShape(m *Mask) (*Shape, error) {
	crop, rect, err := m.Finalize()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, crop.Image(), imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "could not encode the mask")
	}

	flags := m.Flags
	if flags == nil {
		flags = map[string]bool{}
	}
	return &Shape{
		Label:       m.Label.Label,
		Points:      [][2]float64{{rect.Left, rect.Top}, {rect.Right, rect.Bottom}},
		GroupID:     m.GroupID,
		Description: m.Description,
		ShapeType:   ShapeTypeMask,
		Flags:       flags,
		Mask:        base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// DecodeShape reconstructs a w×h mask from its persisted form by pasting the
// decoded crop at the top-left corner of the stored bounds. Colour masks keep
// their painted pixels; grayscale and paletted masks, as written by other
// annotation tools, are binarised to the paint colour of opts.
// The loaded state becomes the base of the undo history.
func DecodeShape(s *Shape, w, h int, opts *Options) (*Mask, error) {
	if len(s.Points) == 0 {
		return nil, errors.Wrap(ErrDecode, "shape has no points")
	}
	data, err := base64.StdEncoding.DecodeString(s.Mask)
	if err != nil {
		return nil, errors.Wrapf(ErrDecode, "base64: %v", err)
	}
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(ErrDecode, "image: %v", err)
	}

	m, err := NewMask(w, h, opts)
	if err != nil {
		return nil, err
	}
	m.Label = Label{
		Label:       s.Label,
		GroupID:     s.GroupID,
		Flags:       s.Flags,
		Description: s.Description,
	}

	var crop *image.NRGBA
	switch src.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		crop = binarize(imgToNRGBA(src), m.Color())
	default:
		if _, ok := src.(*image.Paletted); ok {
			crop = binarize(imgToNRGBA(src), m.Color())
		} else {
			crop = normalize(imaging.Clone(src))
		}
	}

	origin := image.Pt(int(math.Floor(s.Points[0][0])), int(math.Floor(s.Points[0][1])))
	m.paste(origin, newCanvasFrom(crop))
	m.rebase()
	return m, nil
}

// normalize turns every pixel not recognized as painted into background.
func normalize(img *image.NRGBA) *image.NRGBA {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		if img.Pix[i+1] == 0 || img.Pix[i+3] == 0 {
			img.Pix[i+0] = 0
			img.Pix[i+1] = 0
			img.Pix[i+2] = 0
			img.Pix[i+3] = 0
		}
	}
	return img
}
