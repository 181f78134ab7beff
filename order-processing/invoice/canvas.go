package invoice

import (
	"io"
	"time"
)

// FontStyle selects the regular or emphasized face of the current family
type FontStyle int

const (
	Regular FontStyle = iota
	Bold
)

// DocumentMeta is fixed document metadata; it must not depend on wall-clock
// time so identical orders produce identical bytes.
type DocumentMeta struct {
	Title   string
	Created time.Time
}

// Canvas is the drawing backend used by the renderer. Coordinates are in
// points with the origin at the top-left corner of the page.
type Canvas interface {
	// RegisterFont installs a family with regular and bold faces and reports
	// whether the backend accepted it. A false result leaves the canvas usable
	// with its built-in font.
	RegisterFont(family string, regular, bold []byte) bool
	SetFont(style FontStyle, size float64)
	AddPage()
	PageSize() (width, height float64)
	// SplitText wraps text into lines that fit width using the current font.
	SplitText(text string, width float64) []string
	Rect(x, y, w, h float64)
	// Text draws one line previously returned by SplitText.
	Text(x, y, w, h float64, line string)
	Err() error
	Output(w io.Writer) error
}

// CanvasFactory opens a fresh canvas for one document
type CanvasFactory func(meta DocumentMeta) Canvas
