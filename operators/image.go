package operators

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
	"os"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/logger"
	"github.com/kbukum/jsonflow/record"
)

// ImageEncoderConfig configures an ImageEncoder.
type ImageEncoderConfig struct {
	PathField   string `mapstructure:"path_field"`
	OutputField string `mapstructure:"output_field"`
	TokensField string `mapstructure:"tokens_field"`
	MaxWidth    int    `mapstructure:"max_width"`
	MaxHeight   int    `mapstructure:"max_height"`
	Quality     int    `mapstructure:"quality"`
}

// ImageEncoder loads an image file, shrinks it to fit the configured box,
// re-encodes it as JPEG and stores the base64 text on the record.
type ImageEncoder struct {
	cfg ImageEncoderConfig
	log *logger.Logger
}

// NewImageEncoder creates an ImageEncoder.
func NewImageEncoder(cfg ImageEncoderConfig, log *logger.Logger) (*ImageEncoder, error) {
	if cfg.PathField == "" {
		cfg.PathField = FieldImagePath
	}
	if cfg.OutputField == "" {
		cfg.OutputField = FieldImageBase64
	}
	if cfg.TokensField == "" {
		cfg.TokensField = FieldImageTokens
	}
	if cfg.MaxWidth == 0 {
		cfg.MaxWidth = 800
	}
	if cfg.MaxHeight == 0 {
		cfg.MaxHeight = 800
	}
	if cfg.Quality == 0 {
		cfg.Quality = 85
	}
	if cfg.MaxWidth < 0 || cfg.MaxHeight < 0 {
		return nil, errors.Configuration("image_encoder: max_width and max_height must be positive")
	}
	if cfg.Quality < 1 || cfg.Quality > 100 {
		return nil, errors.Configurationf("image_encoder: quality must be 1-100, got %d", cfg.Quality)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ImageEncoder{cfg: cfg, log: log.WithComponent(KindImageEncoder)}, nil
}

// Name returns the operator kind.
func (e *ImageEncoder) Name() string { return KindImageEncoder }

// Apply writes the base64 JPEG and its estimated token cost.
func (e *ImageEncoder) Apply(ctx context.Context, rec *record.Record) error {
	path, ok, err := rec.String(e.cfg.PathField)
	if !ok || (err == nil && path == "") {
		return errors.MissingField(e.cfg.PathField)
	}
	if err != nil {
		return errors.Processing("image_encoder: bad path", err)
	}

	data, err := e.Encode(path)
	if err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	tokens := len(encoded) / 4

	rec.Set(e.cfg.OutputField, encoded)
	rec.Set(e.cfg.TokensField, tokens)

	e.log.WithContext(ctx).Debug("image encoded", logger.Fields(
		"path", path,
		"jpeg_bytes", len(data),
		"estimated_tokens", tokens,
	))
	return nil
}

// Encode returns the JPEG bytes for the image at path.
func (e *ImageEncoder) Encode(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Processing("image_encoder: open image", err).WithDetail("path", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Processing("image_encoder: decode image", err).WithDetail("path", path)
	}

	img = fit(img, e.cfg.MaxWidth, e.cfg.MaxHeight)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.cfg.Quality}); err != nil {
		return nil, errors.Processing("image_encoder: encode jpeg", err)
	}
	return buf.Bytes(), nil
}

// fit scales img down, keeping its aspect ratio, so it fits maxW x maxH.
// Images already inside the box are returned unchanged.
func fit(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return img
	}

	ratio := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(float64(w)*ratio))
	nh := max(1, int(float64(h)*ratio))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
