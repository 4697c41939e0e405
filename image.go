package brush

import (
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/maskbrush/brush/utils"
	"github.com/pkg/errors"
)

// LoadImage decodes an image and converts it to NRGBA with its min point at (0, 0).
// The EXIF orientation of JPEG files is applied.
func LoadImage(r io.Reader) (*image.NRGBA, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(err, "could not decode the image")
	}
	return imgToNRGBA(img), nil
}

// LoadImageFile opens and decodes the image file at path.
func LoadImageFile(path string) (*image.NRGBA, error) {
	ctype, err := utils.DetectContentType(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open the image file")
	}
	if !strings.Contains(ctype, "image") {
		return nil, errors.Errorf("%s is not an image file: %s", path, ctype)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open the image file")
	}
	defer f.Close()
	return LoadImage(f)
}

// NewMaskForImage creates a blank mask sized like img.
func NewMaskForImage(img image.Image, opts *Options) (*Mask, error) {
	b := img.Bounds()
	return NewMask(b.Dx(), b.Dy(), opts)
}

// SaveImage encodes img to w. For files the format is chosen by the file
// extension, any other writer receives PNG, which keeps the mask alpha.
func SaveImage(w io.Writer, img image.Image) error {
	format := imaging.PNG
	if f, ok := w.(*os.File); ok && filepath.Ext(f.Name()) != "" {
		var err error
		if format, err = imaging.FormatFromFilename(f.Name()); err != nil {
			return errors.Wrap(err, "unsupported output format")
		}
	}
	return imaging.Encode(w, img, format, imaging.JPEGQuality(100))
}

// imgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func imgToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstBounds := srcBounds.Sub(srcBounds.Min)
	dstW := dstBounds.Dx()
	dstH := dstBounds.Dy()
	dst := image.NewNRGBA(dstBounds)

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := dstW * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.Gray:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				v := src.Pix[si+dstX]
				dst.Pix[di+0] = v
				dst.Pix[di+1] = v
				dst.Pix[di+2] = v
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
				dst.Pix[di+0] = c.R
				dst.Pix[di+1] = c.G
				dst.Pix[di+2] = c.B
				dst.Pix[di+3] = c.A
				di += 4
			}
		}
	}

	return dst
}

// binarize converts a foreign mask image to a mask canvas: pixels which are
// opaque enough and bright enough become col, everything else background.
func binarize(src *image.NRGBA, col color.NRGBA) *image.NRGBA {
	var (
		bounds = src.Bounds()
		dst    = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		dx     = bounds.Dx()
		dy     = bounds.Dy()
	)

	for y := 0; y < dy; y++ {
		si := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		for x := 0; x < dx; x, si = x+1, si+4 {
			r, g, b, a := src.Pix[si], src.Pix[si+1], src.Pix[si+2], src.Pix[si+3]
			if a <= 127 {
				continue
			}
			lum := (299*int(r) + 587*int(g) + 114*int(b)) / 1000
			if lum > 127 {
				dst.SetNRGBA(x, y, col)
			}
		}
	}

	return dst
}
