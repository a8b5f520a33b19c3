package value

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
)

// imageDataURLPrefix is the fixed encoding the spec requires for inline
// image values.
const imageDataURLPrefix = "data:image/png;base64,"

// Image is an in-memory RGBA raster. It is the payload of a KindImage
// Value. There is no pack dependency that decodes image codecs (see
// DESIGN.md), so this is implemented directly against the standard
// library's image/png.
type Image struct {
	Width  int
	Height int
	Pixels []byte // tightly packed RGBA, len == Width*Height*4
}

// NewImage builds an Image from raw RGBA pixels.
func NewImage(width, height int, pixels []byte) Image {
	cp := append([]byte(nil), pixels...)
	return Image{Width: width, Height: height, Pixels: cp}
}

func (img *Image) toDataURL() string {
	return imageDataURLPrefix + img.encodeBase64()
}

func (img *Image) encodeBase64() string {
	nrgba := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	copy(nrgba.Pix, img.Pixels)
	var buf bytes.Buffer
	// png.Encode fails only on writer errors, which bytes.Buffer never
	// returns, or on an image with zero width or height, which then
	// encodes as an empty payload.
	_ = png.Encode(&buf, nrgba)
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodeImageDataURL(s string) (Image, bool) {
	if !strings.HasPrefix(s, imageDataURLPrefix) {
		return Image{}, false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, imageDataURLPrefix))
	if err != nil {
		return Image{}, false
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return Image{}, false
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 0, w*h*4)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			c := color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
			pixels = append(pixels, c.R, c.G, c.B, c.A)
		}
	}
	return Image{Width: w, Height: h, Pixels: pixels}, true
}
