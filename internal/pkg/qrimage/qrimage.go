package qrimage

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
)

const (
	DefaultSize   = 300
	defaultMargin = 4 // modules of quiet zone
)

// Renderer turns token strings into PNG QR codes.
type Renderer struct {
	size  int
	level qrcode.RecoveryLevel
}

func NewRenderer(size int) *Renderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Renderer{size: size, level: qrcode.Medium}
}

// PNG encodes content as a square PNG of the configured size.
func (r *Renderer) PNG(content string) ([]byte, error) {
	qr, err := qrcode.New(content, r.level)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	qr.DisableBorder = true

	// One pixel per module, scaled up below.
	bitmap := qr.Image(-1)
	modules := bitmap.Bounds().Dx()
	total := modules + 2*defaultMargin
	if r.size < total {
		return nil, fmt.Errorf("image size %d too small for %d modules", r.size, total)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, r.size, r.size))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	scale := r.size / total
	offset := (r.size - modules*scale) / 2
	dst := image.Rect(offset, offset, offset+modules*scale, offset+modules*scale)
	draw.NearestNeighbor.Scale(canvas, dst, bitmap, bitmap.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL returns the PNG as a data:image/png;base64 URL.
func (r *Renderer) DataURL(content string) (string, error) {
	b, err := r.PNG(content)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b), nil
}
