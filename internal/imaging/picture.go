// Package imaging turns downloaded image bytes into terminal-ready pictures.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/pders01/tankobon/internal/failure"
)

const (
	kittyChunk     = 4096
	kittyMaxPixels = 1600
	upperHalfBlock = "▀"
)

// Picture is an encoded image ready to be placed in a Cols x Rows cell box.
// It is a plain value and safe to pass between goroutines.
type Picture struct {
	Protocol Protocol
	Cols     int
	Rows     int
	Data     string
}

// Empty reports whether the picture holds nothing drawable.
func (p Picture) Empty() bool { return p.Data == "" }

// Decode parses jpeg, png, gif or webp bytes.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: image: %v", failure.ErrDecode, err)
	}
	return img, nil
}

// Fit scales img to fit within maxW x maxH pixels keeping its aspect ratio.
// Transparent areas are flattened onto black. Images are never upscaled.
func Fit(img image.Image, maxW, maxH int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || maxW <= 0 || maxH <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}

	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	if scale > 1 {
		scale = 1
	}
	dw := max(1, int(float64(w)*scale))
	dh := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// Encode renders img for protocol inside a cols x rows cell box.
func Encode(img image.Image, protocol Protocol, cols, rows int) (Picture, error) {
	if cols <= 0 || rows <= 0 {
		return Picture{}, fmt.Errorf("%w: encode: empty area %dx%d", failure.ErrDecode, cols, rows)
	}
	switch protocol {
	case Kitty:
		return encodeKitty(img, cols, rows)
	default:
		return encodeHalfblocks(img, cols, rows), nil
	}
}

// DecodeAndEncode is the whole pipeline from downloaded bytes to a picture.
func DecodeAndEncode(data []byte, protocol Protocol, cols, rows int) (Picture, error) {
	img, err := Decode(data)
	if err != nil {
		return Picture{}, err
	}
	return Encode(img, protocol, cols, rows)
}

// encodeHalfblocks draws two vertical pixels per cell using the upper half
// block glyph: foreground is the top pixel, background the bottom one.
func encodeHalfblocks(img image.Image, cols, rows int) Picture {
	fitted := Fit(img, cols, rows*2)
	b := fitted.Bounds()
	usedRows := (b.Dy() + 1) / 2

	var sb strings.Builder
	for y := 0; y < usedRows; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < b.Dx(); x++ {
			top := hex(fitted.RGBAAt(x, 2*y))
			bottom := "#000000"
			if 2*y+1 < b.Dy() {
				bottom = hex(fitted.RGBAAt(x, 2*y+1))
			}
			sb.WriteString(termenv.String(upperHalfBlock).
				Foreground(termenv.RGBColor(top)).
				Background(termenv.RGBColor(bottom)).
				String())
		}
	}
	return Picture{Protocol: Halfblocks, Cols: b.Dx(), Rows: usedRows, Data: sb.String()}
}

// encodeKitty transmits a PNG through the kitty graphics protocol and lets
// the terminal scale it into the cell box. Rows-1 newlines follow the escape
// so the surrounding layout reserves the space the image covers.
func encodeKitty(img image.Image, cols, rows int) (Picture, error) {
	fitted := Fit(img, kittyMaxPixels, kittyMaxPixels)

	var buf bytes.Buffer
	if err := png.Encode(&buf, fitted); err != nil {
		return Picture{}, fmt.Errorf("%w: encode png: %v", failure.ErrDecode, err)
	}
	payload := base64.StdEncoding.EncodeToString(buf.Bytes())

	var sb strings.Builder
	for offset := 0; offset < len(payload); offset += kittyChunk {
		end := min(offset+kittyChunk, len(payload))
		more := 0
		if end < len(payload) {
			more = 1
		}
		var seq string
		if offset == 0 {
			seq = fmt.Sprintf("\x1b_Ga=T,f=100,q=2,c=%d,r=%d,m=%d;%s\x1b\\", cols, rows, more, payload[offset:end])
		} else {
			seq = fmt.Sprintf("\x1b_Gm=%d;%s\x1b\\", more, payload[offset:end])
		}
		sb.WriteString(passthrough(seq))
	}
	sb.WriteString(strings.Repeat("\n", rows-1))
	return Picture{Protocol: Kitty, Cols: cols, Rows: rows, Data: sb.String()}, nil
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
