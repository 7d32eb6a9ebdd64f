package storage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// Cover dimensions.  Uploads are scaled down to fit the box, keeping their
// aspect ratio, and never scaled up.
const (
	CoverMaxWidth  = 600
	CoverMaxHeight = 800
)

// ProcessCover decodes an uploaded image, applies its EXIF orientation,
// fits it into the cover box and re-encodes it as JPEG.
func ProcessCover(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() > CoverMaxWidth || b.Dy() > CoverMaxHeight {
		img = imaging.Fit(img, CoverMaxWidth, CoverMaxHeight, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
