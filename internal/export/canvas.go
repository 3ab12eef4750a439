package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/phrazzld/lessondeck/internal/generation"
	"github.com/phrazzld/lessondeck/internal/render"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Slide canvas size in pixels.
const (
	SlideWidth  = 1280
	SlideHeight = 720
)

const (
	margin        = 80.0
	titleSize     = 56.0
	bodySize      = 30.0
	noteSize      = 22.0
	lineSpacing   = 1.4
	bulletPrefix  = "•  "
	loadingNotice = "Đang tạo hình ảnh..."
)

var (
	backgroundColor = color.NRGBA{R: 0xFD, G: 0xF6, B: 0xE3, A: 0xFF}
	panelColor      = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xD0}
	titleColor      = color.NRGBA{R: 0x1F, G: 0x3A, B: 0x68, A: 0xFF}
	bodyColor       = color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xFF}
	noteColor       = color.NRGBA{R: 0xB0, G: 0x3A, B: 0x2E, A: 0xFF}
)

// Canvas draws slide snapshots.
type Canvas struct {
	fonts parsedFonts
}

// NewCanvas parses fonts once; the Canvas is safe for concurrent use.
func NewCanvas(f Fonts) (*Canvas, error) {
	pf, err := f.parse()
	if err != nil {
		return nil, err
	}
	return &Canvas{fonts: pf}, nil
}

// RenderSlide draws view onto a SlideWidth x SlideHeight image. A ready image
// is scaled to cover the canvas; the text sits on a translucent panel. An
// image that cannot be decoded is left out.
func (c *Canvas) RenderSlide(view render.SlideView) image.Image {
	dc := gg.NewContext(SlideWidth, SlideHeight)
	dc.SetColor(backgroundColor)
	dc.Clear()

	if view.Image.State == render.ImageReady {
		if bg, err := decodeDataURI(view.Image.URI); err == nil {
			dc.DrawImage(cover(bg, SlideWidth, SlideHeight), 0, 0)
		}
	}

	dc.SetColor(panelColor)
	dc.DrawRoundedRectangle(margin/2, margin/2, SlideWidth-margin, SlideHeight-margin, 24)
	dc.Fill()

	width := float64(SlideWidth) - 2*margin
	y := margin

	dc.SetFontFace(face(c.fonts.bold, titleSize))
	dc.SetColor(titleColor)
	titleLines := dc.WordWrap(view.Title, width)
	dc.DrawStringWrapped(view.Title, margin, y, 0, 0, width, lineSpacing, gg.AlignLeft)
	y += float64(len(titleLines))*titleSize*lineSpacing + titleSize/2

	dc.SetFontFace(face(c.fonts.regular, bodySize))
	dc.SetColor(bodyColor)
	for _, b := range view.Body {
		text := b.Text
		if b.Kind == render.BlockBullet {
			text = bulletPrefix + text
		}
		lines := dc.WordWrap(text, width)
		h := float64(len(lines)) * bodySize * lineSpacing
		if y+h > SlideHeight-margin {
			break
		}
		dc.DrawStringWrapped(text, margin, y, 0, 0, width, lineSpacing, gg.AlignLeft)
		y += h + bodySize/2
	}

	var note string
	switch view.Image.State {
	case render.ImageError:
		note = view.Image.Message
	case render.ImageLoading:
		note = loadingNotice
	}
	if note != "" {
		dc.SetFontFace(face(c.fonts.regular, noteSize))
		dc.SetColor(noteColor)
		dc.DrawStringAnchored(note, SlideWidth-margin, SlideHeight-margin, 1, 0)
	}

	return dc.Image()
}

// RenderSlidePNG writes the snapshot of view as PNG.
func (c *Canvas) RenderSlidePNG(w io.Writer, view render.SlideView) error {
	dc := gg.NewContextForImage(c.RenderSlide(view))
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func decodeDataURI(uri string) (image.Image, error) {
	raw, ok := generation.DecodeDataURI(uri)
	if !ok {
		return nil, fmt.Errorf("slide image is not a data URI")
	}
	img, _, err := image.Decode(bytes.NewReader(raw.Data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// cover center-crops src to the w:h aspect ratio and scales it to w x h.
func cover(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()

	crop := b
	if sw*h > sh*w {
		cw := sh * w / h
		x0 := b.Min.X + (sw-cw)/2
		crop = image.Rect(x0, b.Min.Y, x0+cw, b.Max.Y)
	} else if sw*h < sh*w {
		ch := sw * h / w
		y0 := b.Min.Y + (sh-ch)/2
		crop = image.Rect(b.Min.X, y0, b.Max.X, y0+ch)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Over, nil)
	return dst
}
