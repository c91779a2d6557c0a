// Package logo turns whatever image a user uploads into the small opaque
// JPEG Telegram wants as an audio thumbnail.
package logo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const (
	// Telegram prefers small JPEG thumbnails; 300x300 is the bounding box.
	MaxWidth  = 300
	MaxHeight = 300

	jpegQuality = 85
)

var ErrBadImage = errors.New("logo: undecodable image")

// Normalize decodes src, flattens it onto white (drops any alpha), scales it
// down to fit MaxWidth x MaxHeight preserving aspect ratio (never upscales)
// and re-encodes it as JPEG. Pure function, no state.
func Normalize(src []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	img = imaging.Fit(img, MaxWidth, MaxHeight, imaging.Lanczos)
	img = flatten(img)

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("logo: encode: %w", err)
	}
	return out.Bytes(), nil
}

// flatten composites the image onto a white background so transparent areas
// do not come out black after the JPEG encode.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.OverlayCenter(bg, img, 1.0)
}
