package operators

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/record"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func decodeField(t *testing.T, rec record.Record) image.Config {
	t.Helper()
	encoded, ok, err := rec.String(FieldImageBase64)
	if !ok || err != nil {
		t.Fatalf("missing %s: %v", FieldImageBase64, err)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	return cfg
}

func TestImageEncoder_Downscales(t *testing.T) {
	enc, err := NewImageEncoder(ImageEncoderConfig{MaxWidth: 100, MaxHeight: 100}, nil)
	if err != nil {
		t.Fatal(err)
	}
	rec := record.New("id", "img1", FieldImagePath, writePNG(t, 200, 50))
	if err := enc.Apply(context.Background(), &rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := decodeField(t, rec)
	if cfg.Width != 100 || cfg.Height != 25 {
		t.Errorf("expected 100x25, got %dx%d", cfg.Width, cfg.Height)
	}

	encoded, _, _ := rec.String(FieldImageBase64)
	tokens, _ := rec.Get(FieldImageTokens)
	if tokens != len(encoded)/4 {
		t.Errorf("estimated tokens = %v, want %d", tokens, len(encoded)/4)
	}
}

func TestImageEncoder_KeepsSmallImage(t *testing.T) {
	enc, _ := NewImageEncoder(ImageEncoderConfig{}, nil)
	rec := record.New("id", "img1", FieldImagePath, writePNG(t, 40, 30))
	if err := enc.Apply(context.Background(), &rec); err != nil {
		t.Fatal(err)
	}
	if cfg := decodeField(t, rec); cfg.Width != 40 || cfg.Height != 30 {
		t.Errorf("expected 40x30, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestImageEncoder_Errors(t *testing.T) {
	enc, _ := NewImageEncoder(ImageEncoderConfig{}, nil)

	rec := record.New("id", "1")
	if err := enc.Apply(context.Background(), &rec); !errors.IsMissingField(err) {
		t.Errorf("expected missing_field, got %v", err)
	}

	rec = record.New("id", "1", FieldImagePath, filepath.Join(t.TempDir(), "missing.jpg"))
	if err := enc.Apply(context.Background(), &rec); errors.Kind(err) != errors.ErrCodeProcessing {
		t.Errorf("expected processing error for missing file, got %v", err)
	}

	garbage := filepath.Join(t.TempDir(), "garbage.jpg")
	_ = os.WriteFile(garbage, []byte("not an image"), 0o600)
	rec = record.New("id", "1", FieldImagePath, garbage)
	if err := enc.Apply(context.Background(), &rec); errors.Kind(err) != errors.ErrCodeProcessing {
		t.Errorf("expected processing error for undecodable file, got %v", err)
	}

	if _, err := NewImageEncoder(ImageEncoderConfig{Quality: 101}, nil); !errors.IsConfiguration(err) {
		t.Errorf("expected configuration error for quality 101, got %v", err)
	}
}
