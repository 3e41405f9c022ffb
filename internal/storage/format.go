package storage

import (
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

// Format is an output encoding for saved sub-pictures.
type Format string

// Supported output formats. JPG and JPEG are the same encoding with
// different file extensions.
const (
	FormatJPG  Format = "JPG"
	FormatJPEG Format = "JPEG"
	FormatPNG  Format = "PNG"
	FormatBMP  Format = "BMP"
	FormatGIF  Format = "GIF"
	FormatTIFF Format = "TIFF"
)

// DefaultJPEGQuality is used when Options.JPEGQuality is zero.
const DefaultJPEGQuality = 95

var encodings = map[Format]imaging.Format{
	FormatJPG:  imaging.JPEG,
	FormatJPEG: imaging.JPEG,
	FormatPNG:  imaging.PNG,
	FormatBMP:  imaging.BMP,
	FormatGIF:  imaging.GIF,
	FormatTIFF: imaging.TIFF,
}

// ParseFormat accepts a format name in any case, with or without a leading
// dot ("jpg", ".PNG", "Tiff").
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if _, ok := encodings[f]; !ok {
		return "", fmt.Errorf("unsupported format %q (supported: jpg, jpeg, png, bmp, gif, tiff)", s)
	}
	return f, nil
}

// Extension returns the lowercase file extension without a dot.
func (f Format) Extension() string {
	return strings.ToLower(string(f))
}

// ContentType returns the MIME type written with uploaded objects.
func (f Format) ContentType() string {
	switch f {
	case FormatJPG, FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatBMP:
		return "image/bmp"
	case FormatGIF:
		return "image/gif"
	case FormatTIFF:
		return "image/tiff"
	}
	return "application/octet-stream"
}

// Encode writes img to w in format f.
func (f Format) Encode(w io.Writer, img image.Image, jpegQuality int) error {
	enc, ok := encodings[f]
	if !ok {
		return fmt.Errorf("unsupported format %q", string(f))
	}
	if jpegQuality <= 0 {
		jpegQuality = DefaultJPEGQuality
	}
	if err := imaging.Encode(w, img, enc, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", f.Extension(), err)
	}
	return nil
}
