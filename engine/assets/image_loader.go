package assets

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
)

// LoadImage decodes a PNG file into an RGBA image with a tight stride.
func LoadImage(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode png %q: %w", path, err)
	}
	return imageToRGBA(img), nil
}

// LoadPNG returns width, height, and tightly packed RGBA8 pixels (row-major, top-left origin).
func LoadPNG(path string) (w, h int, rgba []byte, err error) {
	img, err := LoadImage(path)
	if err != nil {
		return 0, 0, nil, err
	}
	w, h = img.Bounds().Dx(), img.Bounds().Dy()
	return w, h, img.Pix, nil
}

func imageToRGBA(img image.Image) *image.RGBA {
	if m, ok := img.(*image.RGBA); ok && m.Stride == m.Rect.Dx()*4 && m.Rect.Min == (image.Point{}) {
		return m
	}
	dst := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}
