package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Fonts holds the raw TTF data used by every exporter.
type Fonts struct {
	Regular []byte
	Bold    []byte
}

// DefaultFonts returns the Go fonts.
func DefaultFonts() Fonts {
	return Fonts{Regular: goregular.TTF, Bold: gobold.TTF}
}

// LoadFonts reads TTF files from disk. An empty path keeps the matching Go font,
// so a font with full Vietnamese coverage can be swapped in without code changes.
func LoadFonts(regularPath, boldPath string) (Fonts, error) {
	f := DefaultFonts()
	if p := strings.TrimSpace(regularPath); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return Fonts{}, fmt.Errorf("failed to read regular font: %w", err)
		}
		f.Regular = b
	}
	if p := strings.TrimSpace(boldPath); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return Fonts{}, fmt.Errorf("failed to read bold font: %w", err)
		}
		f.Bold = b
	}
	return f, nil
}

type parsedFonts struct {
	regular *truetype.Font
	bold    *truetype.Font
}

func (f Fonts) parse() (parsedFonts, error) {
	regular, err := truetype.Parse(f.Regular)
	if err != nil {
		return parsedFonts{}, fmt.Errorf("failed to parse regular TTF: %w", err)
	}
	bold, err := truetype.Parse(f.Bold)
	if err != nil {
		return parsedFonts{}, fmt.Errorf("failed to parse bold TTF: %w", err)
	}
	return parsedFonts{regular: regular, bold: bold}, nil
}

// face creates a new face; faces cache glyphs and must not be shared between goroutines.
func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
