package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	// Decoders for frames and generated images.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Web image limits.
const (
	DefaultMaxWidth = 1080
	DefaultMaxBytes = 2 * 1024 * 1024

	startQuality = 90
	minQuality   = 30
	qualityStep  = 10
)

// PrepareForWeb resizes src to at most maxWidth pixels wide and re-encodes it
// as JPEG into dst, lowering quality until the file fits maxBytes. When even
// the lowest quality is too large, the smallest encoding is written anyway.
func PrepareForWeb(src, dst string, maxWidth, maxBytes int) error {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(src), err)
	}

	img = fitWidth(img, maxWidth)

	var buf bytes.Buffer
	for q := startQuality; q >= minQuality; q -= qualityStep {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return fmt.Errorf("encode jpeg: %w", err)
		}
		if buf.Len() <= maxBytes {
			break
		}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, buf.Bytes(), 0o644)
}

// fitWidth scales img down to maxWidth keeping the aspect ratio. The result
// is always an opaque RGBA so alpha never turns black in JPEG.
func fitWidth(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxWidth {
		h = max(1, h*maxWidth/w)
		w = maxWidth
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
