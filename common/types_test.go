package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestToRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 410, 210))
	tests := []struct {
		name    string
		maxSize int
		w, h    int
	}{
		{"no cap", 0, 400, 200},
		{"cap above size", 1024, 400, 200},
		{"wide downscale", 100, 100, 50},
	}
	for _, tt := range tests {
		got := ToRGBA(src, tt.maxSize)
		if got.Rect != image.Rect(0, 0, tt.w, tt.h) {
			t.Errorf("%s: ToRGBA().Rect = %v, want %dx%d at origin", tt.name, got.Rect, tt.w, tt.h)
		}
	}

	tall := image.NewGray(image.Rect(0, 0, 30, 300))
	if got := ToRGBA(tall, 60).Rect; got != image.Rect(0, 0, 6, 60) {
		t.Errorf("ToRGBA(tall, 60).Rect = %v, want (0,0)-(6,60)", got)
	}
}

func TestImportedTextureDecode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	tex := &ImportedTexture{Name: "albedo", Data: buf.Bytes()}
	pix, w, h, err := tex.Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if w != 2 || h != 2 || len(pix) != 16 {
		t.Fatalf("Decode() = %d bytes %dx%d, want 16 bytes 2x2", len(pix), w, h)
	}
	if pix[4] != 255 || pix[7] != 255 {
		t.Errorf("pixel (1,0) = %v, want opaque red", pix[4:8])
	}

	if _, _, _, err := (&ImportedTexture{}).Decode(); err == nil {
		t.Error("Decode() on empty texture error = nil, want error")
	}
	var nilTex *ImportedTexture
	if _, _, _, err := nilTex.Decode(); err == nil {
		t.Error("Decode() on nil texture error = nil, want error")
	}
}

func TestDigitKey(t *testing.T) {
	if d, ok := DigitKey(Key0 + 6); !ok || d != 6 {
		t.Errorf("DigitKey(Key0+6) = %d, %v, want 6, true", d, ok)
	}
	if _, ok := DigitKey(KeyC); ok {
		t.Error("DigitKey(KeyC) ok = true, want false")
	}
}
