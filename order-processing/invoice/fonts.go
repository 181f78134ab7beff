package invoice

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

const (
	regularFontFile = "NotoSans-Regular.ttf"
	boldFontFile    = "NotoSans-Bold.ttf"

	// runes the invoice labels need beyond Latin-1
	probeRunes = "ЗамовленняҐЄІЇґєії№"
)

// FontSource supplies TrueType faces for the invoice body
type FontSource interface {
	Load() (regular, bold []byte, err error)
}

// DirFontSource reads the Noto Sans pair from a directory
type DirFontSource struct {
	Dir string
}

func (s DirFontSource) Load() ([]byte, []byte, error) {
	regular, err := readFont(filepath.Join(s.Dir, regularFontFile))
	if err != nil {
		return nil, nil, err
	}
	bold, err := readFont(filepath.Join(s.Dir, boldFontFile))
	if err != nil {
		return nil, nil, err
	}
	return regular, bold, nil
}

// EmbeddedFontSource returns the Go font pair compiled into the binary
type EmbeddedFontSource struct{}

func (EmbeddedFontSource) Load() ([]byte, []byte, error) {
	return goregular.TTF, gobold.TTF, nil
}

// FontChain returns the first source that loads
type FontChain []FontSource

func (c FontChain) Load() ([]byte, []byte, error) {
	var errs []error
	for _, src := range c {
		regular, bold, err := src.Load()
		if err == nil {
			return regular, bold, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, nil, errors.New("no font source configured")
	}
	return nil, nil, errors.Join(errs...)
}

func readFont(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	if err := probeGlyphs(data); err != nil {
		return nil, fmt.Errorf("font %s: %w", filepath.Base(path), err)
	}
	return data, nil
}

// probeGlyphs checks that the face parses and covers the Cyrillic labels
func probeGlyphs(data []byte) error {
	face, err := parseTrueType(data)
	if err != nil {
		return err
	}
	var buf sfnt.Buffer
	for _, r := range probeRunes {
		idx, err := face.GlyphIndex(&buf, r)
		if err != nil {
			return err
		}
		if idx == 0 {
			return fmt.Errorf("missing glyph %q", r)
		}
	}
	return nil
}

// parseTrueType accepts only glyf-outline faces; the PDF backend cannot embed
// CFF outlines or collections
func parseTrueType(data []byte) (*sfnt.Font, error) {
	if len(data) < 4 {
		return nil, errors.New("unsupported font format: too short")
	}
	magic := data[:4]
	if !bytes.Equal(magic, []byte{0x00, 0x01, 0x00, 0x00}) && !bytes.Equal(magic, []byte("true")) {
		return nil, fmt.Errorf("unsupported font format %q", magic)
	}
	return sfnt.Parse(data)
}

// glyphCoverage reports runes every registered face can draw
type glyphCoverage struct {
	faces []*sfnt.Font
	buf   sfnt.Buffer
}

func newGlyphCoverage(fonts ...[]byte) (*glyphCoverage, error) {
	g := &glyphCoverage{}
	for _, data := range fonts {
		face, err := parseTrueType(data)
		if err != nil {
			return nil, err
		}
		g.faces = append(g.faces, face)
	}
	return g, nil
}

func (g *glyphCoverage) has(r rune) bool {
	// the backend width table ends at the BMP
	if r > 0xFFFF {
		return false
	}
	if unicode.IsSpace(r) {
		return true
	}
	for _, face := range g.faces {
		idx, err := face.GlyphIndex(&g.buf, r)
		if err != nil || idx == 0 {
			return false
		}
	}
	return true
}

// sanitize replaces runes the faces cannot draw with '?'
func (g *glyphCoverage) sanitize(s string) string {
	clean := true
	for _, r := range s {
		if !g.has(r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	out := []rune(s)
	for i, r := range out {
		if !g.has(r) {
			out[i] = '?'
		}
	}
	return string(out)
}
