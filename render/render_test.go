package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"revelare.io/fractal/record"
)

func decodePNG(t *testing.T, b []byte) (w, h int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy()
}

func TestPNGDimensions(t *testing.T) {
	rec := &record.Record{
		Points: []record.Point{
			{X: 0, Y: 0, R: 255},
			{X: 1, Y: 1, G: 255},
			{X: 0.5, Y: 0.25, B: 255},
		},
	}
	b, err := PNG(rec, 320, 200, color.White)
	if err != nil {
		t.Fatalf("PNG failed: %v", err)
	}
	w, h := decodePNG(t, b)
	if w != 320 || h != 200 {
		t.Fatalf("canvas: got %dx%d want 320x200", w, h)
	}
}

func TestPNGEmptyRecordIsBlankCanvas(t *testing.T) {
	b, err := PNG(&record.Record{}, 64, 64, color.White)
	if err != nil {
		t.Fatalf("PNG failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	for y := 0; y < 64; y += 7 {
		for x := 0; x < 64; x += 7 {
			r, g, bb, _ := img.At(x, y).RGBA()
			if r != 0xFFFF || g != 0xFFFF || bb != 0xFFFF {
				t.Fatalf("pixel (%d,%d) not background: %v", x, y, img.At(x, y))
			}
		}
	}
}

func TestPNGSinglePointCentered(t *testing.T) {
	rec := &record.Record{Points: []record.Point{{X: 3, Y: -2, R: 10, G: 20, B: 30}}}
	b, err := PNG(rec, 100, 100, color.Black)
	if err != nil {
		t.Fatalf("PNG failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	r, g, bb, _ := img.At(50, 50).RGBA()
	if r>>8 != 10 || g>>8 != 20 || bb>>8 != 30 {
		t.Fatalf("center pixel: got (%d,%d,%d)", r>>8, g>>8, bb>>8)
	}
}

func TestPNGRejectsBadInput(t *testing.T) {
	if _, err := PNG(nil, 10, 10, color.White); err == nil {
		t.Fatalf("expected error for nil record")
	}
	if _, err := PNG(&record.Record{}, 0, 10, color.White); err == nil {
		t.Fatalf("expected error for zero width")
	}
	if _, err := PNG(&record.Record{}, 10, -1, color.White); err == nil {
		t.Fatalf("expected error for negative height")
	}
}
