package heatmap

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/jengzang/resourcemap-backend-go/internal/models"
)

// MaxImageScale bounds the PNG upscaling factor
const MaxImageScale = 16

// Image renders a raster as an RGBA image, north up, each cell scaled to
// scale x scale pixels with nearest-neighbour sampling.
func Image(r *models.Raster, scale int) (*image.RGBA, error) {
	if r == nil || r.Resolution <= 0 || len(r.Pixels) != r.Resolution*r.Resolution {
		return nil, errors.New("malformed raster")
	}
	if scale < 1 || scale > MaxImageScale {
		return nil, invalid("scale", "must be between 1 and %d, got %d", MaxImageScale, scale)
	}

	src := image.NewRGBA(image.Rect(0, 0, r.Resolution, r.Resolution))
	for _, cell := range r.Pixels {
		src.SetRGBA(cell.X, cell.Y, RGBAFor(cell.Value))
	}
	if scale == 1 {
		return src, nil
	}

	size := r.Resolution * scale
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// EncodePNG writes the rendered raster to w
func EncodePNG(w io.Writer, r *models.Raster, scale int) error {
	img, err := Image(r, scale)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}
