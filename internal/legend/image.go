package legend

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"github.com/chai2010/webp"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rotisserie/eris"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Image formats supported by Encode.
const (
	FormatWebP = "webp"
	FormatPNG  = "png"
)

const (
	imgPadding = 8
	imgRow     = 18
	imgSwatch  = 18
	imgWidth   = 150
)

var (
	imgBackground = color.RGBA{R: 255, G: 255, B: 255, A: 204}
	imgText       = color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 255}
)

// ErrUnknownFormat is returned for an unsupported image format.
var ErrUnknownFormat = eris.New("unknown legend image format")

// Image draws the legend as a raster panel with a swatch per entry.
func (l Legend) Image() (*image.RGBA, error) {
	face := basicfont.Face7x13
	height := imgPadding*2 + imgRow*(len(l.Entries)+1)
	img := image.NewRGBA(image.Rect(0, 0, imgWidth, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: imgBackground}, image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Src: image.NewUniform(imgText), Face: face}
	baseline := func(row int) fixed.Int26_6 {
		return fixed.I(imgPadding + row*imgRow + (imgRow+face.Ascent)/2)
	}

	d.Dot = fixed.Point26_6{X: fixed.I(imgPadding), Y: baseline(0)}
	d.DrawString(l.Title)

	for i, e := range l.Entries {
		c, err := ParseHexColor(e.Color)
		if err != nil {
			return nil, eris.Wrapf(err, "legend entry %q", e.Label)
		}

		top := imgPadding + (i+1)*imgRow
		swatch := image.Rect(imgPadding, top+1, imgPadding+imgSwatch, top+imgRow-1)
		draw.Draw(img, swatch, &image.Uniform{C: c}, image.Point{}, draw.Src)

		d.Dot = fixed.Point26_6{X: fixed.I(imgPadding + imgSwatch + 8), Y: baseline(i + 1)}
		// basicfont has no en dash glyph
		d.DrawString(strings.ReplaceAll(e.Label, "–", "-"))
	}

	return img, nil
}

// Encode renders the legend image in the given format.
func (l Legend) Encode(format string) ([]byte, error) {
	img, err := l.Image()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case FormatWebP:
		err = webp.Encode(&buf, img, &webp.Options{Lossless: true})
	case FormatPNG:
		err = png.Encode(&buf, img)
	default:
		return nil, eris.Wrapf(ErrUnknownFormat, "%q", format)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "encode legend %s", format)
	}

	return buf.Bytes(), nil
}

// ParseHexColor parses #RGB and #RRGGBB colors; the leading # is optional.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := s
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	if len(hex) != 4 && len(hex) != 7 {
		return color.RGBA{}, eris.Errorf("invalid hex color %q", s)
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, eris.Wrapf(err, "invalid hex color %q", s)
	}

	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
