package invoice

import (
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	coreFamily = "Helvetica"

	// measured once per style after registration
	fontTrialText = "Ж"
)

// PDFCanvas draws on an A4 portrait fpdf document measured in points
type PDFCanvas struct {
	meta      DocumentMeta
	pdf       *fpdf.Fpdf
	family    string
	coverage  *glyphCoverage
	translate func(string) string
}

// NewPDFCanvas is the default CanvasFactory
func NewPDFCanvas(meta DocumentMeta) Canvas {
	c := &PDFCanvas{meta: meta}
	c.reset()
	return c
}

func (c *PDFCanvas) reset() {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCellMargin(0)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(c.meta.Created)
	pdf.SetModificationDate(c.meta.Created)
	pdf.SetTitle(c.meta.Title, true)
	pdf.SetLineWidth(0.75)

	c.pdf = pdf
	c.family = coreFamily
	c.coverage = nil
	c.translate = pdf.UnicodeTranslatorFromDescriptor("")
}

// RegisterFont embeds the pair and selects it for all text. fpdf reports some
// parse failures only on stdout, so each style is selected and measured before
// the family is accepted. On rejection the document starts over on core fonts.
// It must be called before the first page.
func (c *PDFCanvas) RegisterFont(family string, regular, bold []byte) (ok bool) {
	if len(regular) == 0 || len(bold) == 0 || c.pdf.Err() {
		return false
	}
	coverage, err := newGlyphCoverage(regular, bold)
	if err != nil {
		return false
	}

	defer func() {
		if rec := recover(); rec != nil {
			ok = false
		}
		if !ok {
			c.reset()
		}
	}()

	c.pdf.AddUTF8FontFromBytes(family, "", regular)
	c.pdf.AddUTF8FontFromBytes(family, "B", bold)
	for _, style := range []string{"", "B"} {
		c.pdf.SetFont(family, style, 10)
		if c.pdf.Err() || c.pdf.GetStringWidth(fontTrialText) <= 0 {
			return false
		}
	}

	c.family = family
	c.coverage = coverage
	return true
}

func (c *PDFCanvas) SetFont(style FontStyle, size float64) {
	s := ""
	if style == Bold {
		s = "B"
	}
	c.pdf.SetFont(c.family, s, size)
}

func (c *PDFCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *PDFCanvas) PageSize() (float64, float64) {
	return c.pdf.GetPageSize()
}

func (c *PDFCanvas) SplitText(text string, width float64) []string {
	if c.coverage != nil {
		return c.pdf.SplitText(c.coverage.sanitize(text), width)
	}
	// core fonts only carry cp1252 metrics, so measure the translated bytes
	raw := c.pdf.SplitLines([]byte(c.translate(text)), width)
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, string(l))
	}
	return lines
}

func (c *PDFCanvas) Rect(x, y, w, h float64) {
	c.pdf.Rect(x, y, w, h, "D")
}

func (c *PDFCanvas) Text(x, y, w, h float64, line string) {
	c.pdf.SetXY(x, y)
	c.pdf.CellFormat(w, h, line, "", 0, "L", false, 0, "")
}

func (c *PDFCanvas) Err() error {
	return c.pdf.Error()
}

func (c *PDFCanvas) Output(w io.Writer) error {
	return c.pdf.Output(w)
}
