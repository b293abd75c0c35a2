// Package imaging produces the responsive variants of uploaded raster images.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"sort"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 85

// ErrNotRaster is returned for content the decoders do not recognise (SVG, PDF, ...).
var ErrNotRaster = errors.New("not a raster image")

// Variant is a resized copy of an image.
type Variant struct {
	Name   string
	Width  int
	Height int
	Mime   string
	Ext    string
	Data   []byte
}

// Dimensions returns the pixel size of an encoded image.
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, ErrNotRaster
	}
	return cfg.Width, cfg.Height, nil
}

// Breakpoints builds one variant per breakpoint narrower than the source image,
// widest first. Images at or below every breakpoint yield no variants.
func Breakpoints(data []byte, breakpoints map[string]int) ([]Variant, error) {
	width, _, err := Dimensions(data)
	if err != nil {
		return nil, err
	}

	type point struct {
		name  string
		width int
	}
	points := make([]point, 0, len(breakpoints))
	for name, w := range breakpoints {
		if w > 0 && w < width {
			points = append(points, point{name, w})
		}
	}
	if len(points) == 0 {
		return nil, nil
	}
	sort.Slice(points, func(i, j int) bool { return points[i].width > points[j].width })

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	variants := make([]Variant, 0, len(points))
	for _, p := range points {
		resized := Resize(src, p.width)
		encoded, mime, ext, err := encode(resized, format)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", p.name, err)
		}
		b := resized.Bounds()
		variants = append(variants, Variant{
			Name:   p.name,
			Width:  b.Dx(),
			Height: b.Dy(),
			Mime:   mime,
			Ext:    ext,
			Data:   encoded,
		})
	}
	return variants, nil
}

// Resize scales src to width, keeping the aspect ratio.
func Resize(src image.Image, width int) image.Image {
	b := src.Bounds()
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// encode keeps the source format where an encoder exists; webp falls back to png.
func encode(img image.Image, format string) ([]byte, string, string, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
		return buf.Bytes(), "image/jpeg", ".jpg", err
	case "gif":
		err = gif.Encode(&buf, img, nil)
		return buf.Bytes(), "image/gif", ".gif", err
	case "bmp":
		err = bmp.Encode(&buf, img)
		return buf.Bytes(), "image/bmp", ".bmp", err
	case "tiff":
		err = tiff.Encode(&buf, img, nil)
		return buf.Bytes(), "image/tiff", ".tiff", err
	default:
		err = png.Encode(&buf, img)
		return buf.Bytes(), "image/png", ".png", err
	}
}
