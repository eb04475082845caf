package render

import (
	"strings"

	"github.com/go-pdf/fpdf"
)

type rgb struct{ r, g, b int }

var (
	colorAccent    = rgb{44, 90, 160}
	colorHeading   = rgb{44, 62, 80}
	colorMuted     = rgb{108, 117, 125}
	colorSeparator = rgb{233, 236, 239}
	colorZebraEven = rgb{248, 249, 250}
	colorZebraOdd  = rgb{255, 255, 255}
	colorRule      = rgb{230, 230, 230}
	colorFooter    = rgb{220, 220, 220}
	colorWhite     = rgb{255, 255, 255}
)

type PDFOptions struct {
	// Uncompressed leaves page streams readable; used by tests.
	Uncompressed bool
}

// document wraps fpdf with the cp1252 translation the core fonts need.
type document struct {
	pdf        *fpdf.Fpdf
	translator func(string) string
}

func newDocument(data Data, options PDFOptions) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(20, 15, 20)
	pdf.SetCompression(!options.Uncompressed)
	pdf.AliasNbPages("")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(data.GeneratedAt)
	pdf.SetModificationDate(data.GeneratedAt)
	pdf.SetCreator(CompanyShortName+" - "+CompanyName, true)
	pdf.SetTitle(reportTitle(data), true)

	return &document{pdf: pdf, translator: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (d *document) font(style string, size float64, color rgb) {
	d.pdf.SetFont("Helvetica", style, size)
	d.pdf.SetTextColor(color.r, color.g, color.b)
}

func (d *document) text(x float64, y float64, value string) {
	d.pdf.Text(x, y, d.translator(latin1(value)))
}

func (d *document) textRight(x float64, y float64, value string) {
	translated := d.translator(latin1(value))
	d.pdf.Text(x-d.pdf.GetStringWidth(translated), y, translated)
}

func (d *document) textCenter(x float64, y float64, value string) {
	translated := d.translator(latin1(value))
	d.pdf.Text(x-d.pdf.GetStringWidth(translated)/2, y, translated)
}

func (d *document) fillRect(x, y, w, h float64, color rgb) {
	d.pdf.SetFillColor(color.r, color.g, color.b)
	d.pdf.Rect(x, y, w, h, "F")
}

func (d *document) line(x1, y1, x2, y2 float64, width float64, color rgb) {
	d.pdf.SetDrawColor(color.r, color.g, color.b)
	d.pdf.SetLineWidth(width)
	d.pdf.Line(x1, y1, x2, y2)
}

// wrap splits text into lines no wider than width with the current font.
func (d *document) wrap(value string, width float64) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return d.pdf.SplitText(latin1(value), width)
}

/*
latin1 replaces characters the core PDF fonts cannot show.

Common typographic punctuation is mapped to ASCII; anything else outside
Latin-1 becomes '?'.
*/
func latin1(value string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '‘', '’':
			return '\''
		case '“', '”':
			return '"'
		case '–', '—':
			return '-'
		case '\t':
			return ' '
		}
		if r > 0xFF {
			return '?'
		}
		return r
	}, value)
}
