// Package thumbnail generates fixed-size display thumbnails for media items
// and stores them in a sandboxed directory, one JPEG per configured size.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"sort"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/clipdeck/clipdeck/internal/config"
	"github.com/clipdeck/clipdeck/internal/models"
	"github.com/clipdeck/clipdeck/internal/storage"
)

// Size is one thumbnail rendition.
type Size struct {
	Name   string
	Width  int
	Height int
}

// Generator renders and stores thumbnails.
type Generator struct {
	sandbox *storage.Sandbox
	sizes   []Size
	quality int
	logger  *slog.Logger
}

// NewGenerator creates a Generator storing under thumbDir. Sizes come from
// the thumbnails config section; the map order is irrelevant, renditions are
// sorted by name for stable output.
func NewGenerator(thumbDir string, cfg config.ThumbnailsConfig, logger *slog.Logger) (*Generator, error) {
	sandbox, err := storage.NewSandbox(thumbDir)
	if err != nil {
		return nil, fmt.Errorf("thumbnail storage: %w", err)
	}
	if len(cfg.Sizes) == 0 {
		return nil, fmt.Errorf("thumbnail generator: no sizes configured")
	}
	sizes := make([]Size, 0, len(cfg.Sizes))
	for name, dims := range cfg.Sizes {
		w, h, err := config.ParseDimensions(dims)
		if err != nil {
			return nil, fmt.Errorf("thumbnail size %q: %w", name, err)
		}
		sizes = append(sizes, Size{Name: name, Width: w, Height: h})
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i].Name < sizes[j].Name })

	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		sandbox: sandbox,
		sizes:   sizes,
		quality: 85,
		logger:  logger.With("component", "thumbnails"),
	}, nil
}

// FileName returns the stored name for one rendition.
func FileName(mediaID models.ULID, sizeName string) string {
	return fmt.Sprintf("%s-%s.jpg", mediaID, sizeName)
}

// Generate decodes src and writes every configured rendition. A decode
// failure is a real error: the caller had image bytes and expected
// thumbnails from them.
func (g *Generator) Generate(ctx context.Context, mediaID models.ULID, src []byte) error {
	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return fmt.Errorf("decode thumbnail source: %w", err)
	}

	for _, size := range g.sizes {
		if err := ctx.Err(); err != nil {
			return err
		}
		scaled := scale(img, size.Width, size.Height)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: g.quality}); err != nil {
			return fmt.Errorf("encode %s thumbnail: %w", size.Name, err)
		}
		if err := g.sandbox.AtomicWrite(FileName(mediaID, size.Name), buf.Bytes()); err != nil {
			return fmt.Errorf("write %s thumbnail: %w", size.Name, err)
		}
	}
	g.logger.Debug("generated thumbnails",
		"media_id", mediaID, "source_format", format, "renditions", len(g.sizes))
	return nil
}

// Exists reports whether every configured rendition is present.
func (g *Generator) Exists(mediaID models.ULID) bool {
	for _, size := range g.sizes {
		ok, err := g.sandbox.Exists(FileName(mediaID, size.Name))
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// Path returns the on-disk location of one rendition.
func (g *Generator) Path(mediaID models.ULID, sizeName string) (string, error) {
	return g.sandbox.ResolvePath(FileName(mediaID, sizeName))
}

// Delete removes all renditions for a media item, best-effort.
func (g *Generator) Delete(mediaID models.ULID) error {
	for _, size := range g.sizes {
		name := FileName(mediaID, size.Name)
		ok, err := g.sandbox.Exists(name)
		if err != nil || !ok {
			continue
		}
		if err := g.sandbox.Remove(name); err != nil {
			return fmt.Errorf("remove thumbnail %s: %w", name, err)
		}
	}
	return nil
}

// Sizes returns the configured renditions, sorted by name.
func (g *Generator) Sizes() []Size {
	out := make([]Size, len(g.sizes))
	copy(out, g.sizes)
	return out
}

// scale fits img into w x h, cropping to fill: the image is scaled so the
// target is fully covered, then centered.
func scale(img image.Image, w, h int) image.Image {
	src := img.Bounds()
	if src.Dx() == 0 || src.Dy() == 0 {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}

	// cover scaling: pick the larger ratio so no letterboxing remains
	scaleX := float64(w) / float64(src.Dx())
	scaleY := float64(h) / float64(src.Dy())
	ratio := scaleX
	if scaleY > ratio {
		ratio = scaleY
	}
	scaledW := int(float64(src.Dx())*ratio + 0.5)
	scaledH := int(float64(src.Dy())*ratio + 0.5)

	scaled := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, src, xdraw.Over, nil)

	// center crop to the exact target size
	offX := (scaledW - w) / 2
	offY := (scaledH - h) / 2
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(out, out.Bounds(), scaled, image.Pt(offX, offY), xdraw.Src)
	return out
}
