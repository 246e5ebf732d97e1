package card

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FontSet holds the two font weights the card layout requires. Fonts are
// parsed once at construction and faces are derived per size, so a single
// FontSet serves every composition.
type FontSet struct {
	regular *truetype.Font
	bold    *truetype.Font
}

// LoadFonts parses the regular and bold faces. Empty paths fall back to
// the embedded Go fonts, which keeps rendering deterministic and free of
// file I/O in the default configuration.
func LoadFonts(regularPath, boldPath string) (*FontSet, error) {
	regular, err := loadFont(regularPath, goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("load regular font: %w", err)
	}
	bold, err := loadFont(boldPath, gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("load bold font: %w", err)
	}
	return &FontSet{regular: regular, bold: bold}, nil
}

func loadFont(path string, fallback []byte) (*truetype.Font, error) {
	data := fallback
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font file: %w", err)
		}
		data = b
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return f, nil
}

// Face returns a font.Face at the requested point size.
func (fs *FontSet) Face(bold bool, points float64) font.Face {
	f := fs.regular
	if bold {
		f = fs.bold
	}
	return truetype.NewFace(f, &truetype.Options{Size: points})
}
