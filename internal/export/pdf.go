package export

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/phrazzld/lessondeck/internal/render"
)

const (
	fontFamily = "lessondeck"
	// Lesson plan pages are A4 in millimetres.
	a4Margin = 20.0
)

// Exporter produces downloadable documents for decks and lesson plans.
type Exporter struct {
	fonts  Fonts
	canvas *Canvas
}

// NewExporter creates an Exporter with the given fonts.
func NewExporter(f Fonts) (*Exporter, error) {
	c, err := NewCanvas(f)
	if err != nil {
		return nil, err
	}
	return &Exporter{fonts: f, canvas: c}, nil
}

// Canvas returns the slide canvas.
func (e *Exporter) Canvas() *Canvas {
	return e.canvas
}

// DeckPDF writes one landscape page per slide, each page a canvas snapshot.
func (e *Exporter) DeckPDF(w io.Writer, d *domain.Deck) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: SlideWidth, Ht: SlideHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(d.Content[domain.SlideKeyLesson], true)

	for i, view := range render.ComposeDeck(d) {
		var png bytes.Buffer
		if err := e.canvas.RenderSlidePNG(&png, view); err != nil {
			return fmt.Errorf("slide %d: %w", i, err)
		}

		name := "slide-" + strconv.Itoa(i)
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, &png)
		pdf.AddPage()
		pdf.ImageOptions(name, 0, 0, SlideWidth, SlideHeight, false, opts, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write deck pdf: %w", err)
	}
	return nil
}

// LessonPlanPDF writes the lesson plan as a field listing on A4 pages.
func (e *Exporter) LessonPlanPDF(w io.Writer, p *domain.LessonPlan) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(fontFamily, "", e.fonts.Regular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", e.fonts.Bold)
	pdf.SetMargins(a4Margin, a4Margin, a4Margin)
	pdf.SetAutoPageBreak(true, a4Margin)
	pdf.SetTitle(p.Lesson, true)
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 18)
	pdf.MultiCell(0, 9, p.Lesson, "", "L", false)
	pdf.Ln(4)

	fields := []struct{ label, value string }{
		{"Chủ đề", p.Module},
		{"Khối lớp", gradeLabel(p.Grade)},
		{"Khởi động", p.StartUp},
		{"Luyện tập", p.Practice},
		{"Vận dụng", p.Apply},
		{"Ngày tạo", p.CreatedAt.Format("02/01/2006")},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		pdf.SetFont(fontFamily, "B", 12)
		pdf.MultiCell(0, 7, f.label, "", "L", false)
		pdf.SetFont(fontFamily, "", 12)
		pdf.MultiCell(0, 6, f.value, "", "L", false)
		pdf.Ln(3)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write lesson plan pdf: %w", err)
	}
	return nil
}

func gradeLabel(grade int) string {
	if grade <= 0 {
		return ""
	}
	return "Lớp " + strconv.Itoa(grade)
}
