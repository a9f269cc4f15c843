// Package imaging normalizes uploaded item photos. Every accepted upload is
// decoded, bounded in size, and re-encoded as JPEG so the photo store only
// ever holds one format.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

const (
	// MaxUploadBytes bounds how much of an upload is read before decoding.
	MaxUploadBytes = 10 << 20

	// MaxPhotoDimension is the largest width or height of a stored photo.
	MaxPhotoDimension = 1600

	// ThumbDimension is the largest width or height of a list thumbnail.
	ThumbDimension = 320

	jpegQuality  = 85
	thumbQuality = 75
)

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Photo is a normalized photo with its thumbnail, both JPEG.
type Photo struct {
	Data  []byte
	Thumb []byte
}

// Normalize reads an uploaded photo, verifies the format by sniffing the
// bytes rather than trusting client headers, downscales anything larger
// than MaxPhotoDimension and re-encodes both the photo and a thumbnail as
// JPEG.
func Normalize(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("photo exceeds %d byte limit", MaxUploadBytes)
	}

	detected := http.DetectContentType(data)
	if !allowedMIME[detected] {
		return nil, fmt.Errorf("unsupported photo format %s (only JPEG and PNG accepted)", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding photo: %w", err)
	}

	full, err := encode(bound(img, MaxPhotoDimension), jpegQuality)
	if err != nil {
		return nil, err
	}
	thumb, err := encode(bound(img, ThumbDimension), thumbQuality)
	if err != nil {
		return nil, err
	}

	return &Photo{Data: full, Thumb: thumb}, nil
}

func encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// bound scales the image down so neither dimension exceeds maxDim,
// preserving aspect ratio. Images already within bounds pass through
// untouched; nothing is ever upscaled.
func bound(img image.Image, maxDim int) image.Image {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = h * maxDim / w
	} else {
		newW = w * maxDim / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
