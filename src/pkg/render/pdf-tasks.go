package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sima-reports/src/pkg/photo"
	"sima-reports/src/pkg/tasks"
)

const photoPlaceholder = "Error al cargar imagen"

// taskBlock is one task row with its text wrapped and its height known.
type taskBlock struct {
	task        tasks.CompletedTask
	description []string
	materials   []string
	height      float64
}

/*
RenderTasksPDF draws the maintenance report.

Every row height is computed before anything is drawn, so a row never splits
across pages. A photo that cannot be embedded is replaced by a placeholder
line; the document is always produced.
*/
func RenderTasksPDF(data Data, options PDFOptions) (artifact Artifact, e *xerr.Error) {
	doc := newDocument(data, options)
	loc := data.location()
	showClient := !data.AllSites()

	doc.pdf.SetFooterFunc(func() {
		doc.line(20, 285, 190, 285, 0.3, colorFooter)
		doc.font("", 7, colorMuted)
		doc.textRight(190, 290, fmt.Sprintf("Página %d de {nb}", doc.pdf.PageNo()))
		doc.text(20, 290, generatedLabel(data.GeneratedAt, loc))
	})
	doc.pdf.AddPage()

	drawTasksHeader(doc, data)

	if len(data.Tasks) == 0 {
		doc.font("", 10, colorMuted)
		doc.text(20, 58, noTasksNotice+".")
	} else {
		doc.font("", 10, colorHeading)
		doc.text(20, 58, fmt.Sprintf("Total de tareas completadas: %d", len(data.Tasks)))

		// Wrapping is measured in the body font.
		doc.font("", 8, colorHeading)
		blocks := make([]taskBlock, len(data.Tasks))
		heights := make([]float64, len(data.Tasks))
		for i, task := range data.Tasks {
			blocks[i] = taskBlock{
				task:        task,
				description: doc.wrap(descriptionText(task.Description), wrapWidthMM),
				materials:   doc.wrap(task.Materials, wrapWidthMM),
			}
			blocks[i].height = taskRowHeight(len(blocks[i].description), len(blocks[i].materials), showClient, task.Photo != "")
			heights[i] = blocks[i].height
		}

		placements := placeRows(heights, taskRowsStartY, taskNewPageY, taskRowGapMM)
		for i, block := range blocks {
			if placements[i].Page > doc.pdf.PageNo() {
				doc.pdf.AddPage()
			}
			drawTaskRow(doc, block, i, placements[i].Y, showClient, loc)

			if i < len(blocks)-1 && placements[i+1].Page == placements[i].Page {
				y := placements[i].Y + block.height + taskRowGapMM
				doc.line(22, y-1, 188, y-1, 0.2, colorRule)
			}
		}
	}

	return finishPDF(doc, data)
}

func drawTasksHeader(doc *document, data Data) {
	doc.font("", 18, colorAccent)
	doc.text(20, 20, CompanyShortName)

	doc.font("", 10, colorMuted)
	doc.text(20, 26, CompanyName)

	doc.font("", 14, colorHeading)
	doc.text(20, 35, reportTitle(data))

	doc.font("", 10, colorMuted)
	doc.text(20, 41, "Cliente: "+data.Client)
	doc.text(20, 46, siteLine(data))

	doc.line(20, 50, 190, 50, 0.2, colorSeparator)
}

func drawTaskRow(doc *document, block taskBlock, index int, top float64, showClient bool, loc *time.Location) {
	task := block.task

	background := colorZebraEven
	if index%2 == 1 {
		background = colorZebraOdd
	}
	doc.fillRect(18, top, 174, block.height, background)
	doc.fillRect(18, top, 2, block.height, colorAccent)

	// Dates in the top right corner.
	doc.font("", 7, colorMuted)
	doc.textRight(188, top+4, "Ingresada: "+createdDate(task.CreatedAt, loc))
	doc.textRight(188, top+7, "Completada: "+completedDate(task.CompletedAt, loc))

	y := top + 4
	if showClient {
		labelValue(doc, y, "CLIENTE:", 50, orNotAvailable(task.Client))
		y += 4
	}
	labelValue(doc, y, "SEDE:", 40, orNotAvailable(task.Site))
	y += 4
	labelValue(doc, y, "TIPO:", 40, typeLabel(task.Type))
	y += 4

	y += 5
	sectionTitle(doc, y, "DESCRIPCIÓN:")
	y += 2
	doc.font("", 8, colorHeading)
	for _, line := range block.description {
		y += 4
		doc.text(24, y, line)
	}

	y += 6
	sectionTitle(doc, y, "MATERIALES:")
	y += 2
	if len(block.materials) > 0 {
		doc.font("", 8, colorHeading)
		for _, line := range block.materials {
			y += 4
			doc.text(24, y, line)
		}
	} else {
		y += 4
		doc.font("I", 8, colorMuted)
		doc.text(24, y, notAvailable)
	}

	if task.Photo != "" {
		y += 4
		sectionTitle(doc, y, "EVIDENCIA:")
		if !embedPhoto(doc, task, 22, y+2) {
			doc.font("I", 8, colorMuted)
			doc.text(22, y+4, photoPlaceholder)
		}
	}
}

func labelValue(doc *document, y float64, label string, valueX float64, value string) {
	doc.font("B", 8, colorAccent)
	doc.text(22, y, label)
	doc.font("", 8, colorHeading)
	doc.text(valueX, y, value)
}

func sectionTitle(doc *document, y float64, title string) {
	doc.font("B", 8, colorAccent)
	doc.text(22, y, title)
}

/*
embedPhoto places the task photo in a 30x22 mm box.

The photo is decoded and re-encoded as JPEG first; any failure along the way
(including fpdf rejecting the image) is cleared from the document and reported
as false so the caller can draw the placeholder.
*/
func embedPhoto(doc *document, task tasks.CompletedTask, x float64, y float64) bool {
	jpegBytes, _, e := photo.ToJPEG(task.Photo)
	if e != nil {
		tl.Log(tl.Warning, palette.Yellow, "Photo of task '%s' %s: %s", task.ID, "could not be decoded", e)
		return false
	}

	name := "photo-" + task.ID
	options := fpdf.ImageOptions{ImageType: "JPG"}
	info := doc.pdf.RegisterImageOptionsReader(name, options, bytes.NewReader(jpegBytes))
	if info == nil || doc.pdf.Err() {
		tl.Log(tl.Warning, palette.Yellow, "Photo of task '%s' %s: %s", task.ID, "could not be embedded", fmt.Sprint(doc.pdf.Error()))
		doc.pdf.ClearError()
		return false
	}

	doc.pdf.ImageOptions(name, x, y, 30, 22, false, options, 0, "")
	return true
}

func finishPDF(doc *document, data Data) (artifact Artifact, e *xerr.Error) {
	pages := doc.pdf.PageCount()

	var buffer bytes.Buffer
	err := doc.pdf.Output(&buffer)
	if err != nil {
		e = xerr.NewError(err, "write PDF document", FileName(data, FormatPDF))
		return artifact, e
	}

	artifact = Artifact{
		FileName:    FileName(data, FormatPDF),
		ContentType: FormatPDF.ContentType(),
		Body:        buffer.Bytes(),
		Pages:       pages,
	}

	tl.Log(tl.Info1, palette.Green, "Rendered '%s' (%s pages)", artifact.FileName, fmt.Sprint(pages))
	return artifact, nil
}
