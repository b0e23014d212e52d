// Package render rasterizes encoded point sequences into PNG images.
//
// Rendering is a visualization aid only: the image is not part of the
// codec's correctness contract and cannot be decoded back into bytes.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"revelare.io/fractal/record"
)

// fillFraction is the share of each canvas axis the point cloud is scaled
// to occupy. Aspect ratio is preserved.
const fillFraction = 0.8

// blockSize is the square pixel block plotted per point.
const blockSize = 2

// PNG plots every point of rec as a 2x2 pixel block in its stored color on a
// width x height canvas filled with bg. A record with no points yields a
// blank canvas, never an error.
func PNG(rec *record.Record, width, height int, bg color.Color) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("render: nil record")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render: invalid canvas %dx%d", width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	if len(rec.Points) > 0 {
		plot(img, rec.Points, width, height)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("render: encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

func plot(img *image.RGBA, points []record.Point, width, height int) {
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	spanX, spanY := maxX-minX, maxY-minY
	scale := 0.0
	if spanX > 0 || spanY > 0 {
		sx, sy := math.Inf(1), math.Inf(1)
		if spanX > 0 {
			sx = fillFraction * float64(width) / spanX
		}
		if spanY > 0 {
			sy = fillFraction * float64(height) / spanY
		}
		scale = min(sx, sy)
	}

	// Center the scaled cloud; a degenerate cloud (single point) lands on
	// the canvas center.
	offX := (float64(width) - spanX*scale) / 2
	offY := (float64(height) - spanY*scale) / 2

	for _, p := range points {
		px := int(offX + (p.X-minX)*scale)
		py := int(offY + (p.Y-minY)*scale)
		c := color.RGBA{R: p.R, G: p.G, B: p.B, A: 255}
		for dy := 0; dy < blockSize; dy++ {
			for dx := 0; dx < blockSize; dx++ {
				x, y := px+dx, py+dy
				if x >= 0 && x < width && y >= 0 && y < height {
					img.SetRGBA(x, y, c)
				}
			}
		}
	}
}
