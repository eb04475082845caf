package render

import (
	"fmt"
	"strconv"

	"github.com/tuumbleweed/xerr"
)

/*
RenderMaterialsPDF draws the materials report: a two-column table of
material and count, with the header row repeated on every page.
*/
func RenderMaterialsPDF(data Data, options PDFOptions) (artifact Artifact, e *xerr.Error) {
	doc := newDocument(data, options)
	loc := data.location()

	doc.pdf.SetFooterFunc(func() {
		doc.line(20, 275, 190, 275, 0.5, colorFooter)
		doc.font("", 8, colorMuted)
		doc.textRight(190, 282, fmt.Sprintf("Página %d de {nb}", doc.pdf.PageNo()))
		doc.text(20, 282, generatedLabel(data.GeneratedAt, loc))
	})
	doc.pdf.AddPage()

	doc.font("", 20, colorAccent)
	doc.text(20, 25, CompanyShortName)
	doc.font("", 12, colorMuted)
	doc.text(20, 32, CompanyName)
	doc.font("", 16, colorHeading)
	doc.text(20, 45, reportTitle(data))
	doc.font("", 12, colorMuted)
	doc.text(20, 52, "Cliente: "+data.Client)
	doc.text(20, 59, siteLine(data))
	doc.line(20, 65, 190, 65, 0.2, colorSeparator)

	if len(data.Materials) == 0 {
		doc.font("", 12, colorMuted)
		doc.text(20, 77, noMaterialsMsg+".")
		return finishPDF(doc, data)
	}

	doc.font("", 12, colorHeading)
	doc.text(20, 77, fmt.Sprintf("Total de materiales diferentes: %d", len(data.Materials)))
	drawMaterialsHeader(doc, materialRowsTopY-16)

	doc.font("", 9, colorHeading)
	lines := make([][]string, len(data.Materials))
	heights := make([]float64, len(data.Materials))
	for i, entry := range data.Materials {
		lines[i] = doc.wrap(entry.Material, materialWrapMM)
		heights[i] = materialRowHeight(len(lines[i]))
	}

	placements := placeRows(heights, materialRowsTopY, materialNewPageY, 0)
	bottom := materialRowsTopY
	for i, entry := range data.Materials {
		y := placements[i].Y
		if placements[i].Page > doc.pdf.PageNo() {
			doc.pdf.AddPage()
			drawMaterialsHeader(doc, materialNewPageY-16)
		}

		background := colorZebraEven
		if i%2 == 1 {
			background = colorZebraOdd
		}
		doc.fillRect(20, y, 150, heights[i], background)
		doc.fillRect(170, y, 20, heights[i], background)
		doc.pdf.SetDrawColor(colorFooter.r, colorFooter.g, colorFooter.b)
		doc.pdf.SetLineWidth(0.3)
		doc.pdf.Rect(20, y, 150, heights[i], "D")
		doc.pdf.Rect(170, y, 20, heights[i], "D")

		doc.font("", 9, colorHeading)
		for lineIndex, line := range lines[i] {
			doc.text(22, y+materialLineMM+float64(lineIndex)*materialLineMM, line)
		}

		doc.font("B", 10, colorAccent)
		doc.textCenter(180, y+heights[i]/2+2, strconv.Itoa(entry.Count))

		bottom = y + heights[i]
	}

	doc.line(20, bottom, 190, bottom, 0.8, colorAccent)
	return finishPDF(doc, data)
}

// drawMaterialsHeader draws the blue MATERIAL / CANT. band whose top is at y.
func drawMaterialsHeader(doc *document, y float64) {
	doc.fillRect(20, y, 150, 12, colorAccent)
	doc.fillRect(170, y, 20, 12, colorAccent)
	doc.font("B", 11, colorWhite)
	doc.text(22, y+6, "MATERIAL")
	doc.text(172, y+6, "CANT.")
}
