package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/tankobon/internal/failure"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not an image"))
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrDecode)
}

func TestFitKeepsAspectAndNeverUpscales(t *testing.T) {
	got := Fit(solid(200, 100, color.White), 50, 50)
	assert.Equal(t, 50, got.Bounds().Dx())
	assert.Equal(t, 25, got.Bounds().Dy())

	small := Fit(solid(10, 10, color.White), 100, 100)
	assert.Equal(t, 10, small.Bounds().Dx())
	assert.Equal(t, 10, small.Bounds().Dy())
}

func TestHalfblocksUsesTwoPixelsPerRow(t *testing.T) {
	pic, err := DecodeAndEncode(pngBytes(t, solid(8, 8, color.RGBA{255, 0, 0, 255})), Halfblocks, 8, 8)
	require.NoError(t, err)

	assert.Equal(t, Halfblocks, pic.Protocol)
	assert.Equal(t, 8, pic.Cols)
	assert.Equal(t, 4, pic.Rows)
	assert.Len(t, strings.Split(pic.Data, "\n"), 4)
	assert.Equal(t, 32, strings.Count(pic.Data, upperHalfBlock))
}

func TestKittyChunksPayload(t *testing.T) {
	t.Setenv("TMUX", "")
	pic, err := Encode(solid(64, 64, color.White), Kitty, 20, 10)
	require.NoError(t, err)

	assert.Equal(t, Kitty, pic.Protocol)
	assert.True(t, strings.HasPrefix(pic.Data, "\x1b_Ga=T,f=100,q=2,c=20,r=10,"))
	assert.Equal(t, 9, strings.Count(pic.Data, "\n"))
}

func TestEncodeRejectsEmptyArea(t *testing.T) {
	_, err := Encode(solid(4, 4, color.White), Halfblocks, 0, 10)
	assert.ErrorIs(t, err, failure.ErrDecode)
	assert.Equal(t, failure.Decode, failure.Classify("page", err).Reason)
}

func TestParseProtocol(t *testing.T) {
	p, err := ParseProtocol("kitty")
	require.NoError(t, err)
	assert.Equal(t, Kitty, p)

	p, err = ParseProtocol("HalfBlocks")
	require.NoError(t, err)
	assert.Equal(t, Halfblocks, p)

	_, err = ParseProtocol("sixel")
	assert.Error(t, err)
}

func TestDetectProtocol(t *testing.T) {
	t.Setenv("KITTY_WINDOW_ID", "")
	t.Setenv("TERM_PROGRAM", "")
	t.Setenv("TERM", "xterm-256color")
	assert.Equal(t, Halfblocks, DetectProtocol())

	t.Setenv("TERM_PROGRAM", "ghostty")
	assert.Equal(t, Kitty, DetectProtocol())
}

func TestPassthroughWrapsInTmux(t *testing.T) {
	t.Setenv("TMUX", "/tmp/tmux-0/default,1,0")
	got := passthrough("\x1b_Ga=d\x1b\\")
	assert.True(t, strings.HasPrefix(got, "\x1bPtmux;\x1b\x1b_G"))
}
