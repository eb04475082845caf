package render

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/tuumbleweed/xerr"
)

/*
Actions are the two export links shown on the printable page.

They point back at the same in-memory data set the page was built from, so
exporting after a preview does not query the store again. Empty links are
not shown.
*/
type Actions struct {
	PDF         string
	Spreadsheet string
}

/*
RenderHTML converts the report into a single HTML page using inline CSS only.

It carries the same information as the PDF: header, info section, then one
card per task (photos inline) or one materials table.
*/
func RenderHTML(data Data, actions Actions) (artifact Artifact, e *xerr.Error) {
	var buffer bytes.Buffer
	loc := data.location()

	buffer.WriteString("<!doctype html>")
	buffer.WriteString(`<html lang="es">`)
	buffer.WriteString("<head>")
	buffer.WriteString(`<meta charset="utf-8">`)
	buffer.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	buffer.WriteString(`<title>` + html.EscapeString(reportTitle(data)) + `</title>`)
	buffer.WriteString(`<style>@media print{.no-print{display:none !important;}}</style>`)
	buffer.WriteString("</head>")

	bodyStyle := "margin:0;padding:0;background-color:#F3F4F6;font-family:Helvetica,Arial,sans-serif;color:#2C3E50;"
	buffer.WriteString(`<body style="` + bodyStyle + `">`)
	buffer.WriteString(`<div style="max-width:800px;margin:0 auto;padding:24px;">`)

	// Action bar.
	if actions.PDF != "" || actions.Spreadsheet != "" {
		buffer.WriteString(`<div class="no-print" style="text-align:right;margin-bottom:16px;">`)
		if actions.PDF != "" {
			buffer.WriteString(actionLink(actions.PDF, "Descargar PDF", "#DC3545"))
		}
		if actions.Spreadsheet != "" {
			buffer.WriteString(actionLink(actions.Spreadsheet, "Descargar Excel", "#28A745"))
		}
		buffer.WriteString(`</div>`)
	}

	// Header.
	buffer.WriteString(`<div style="background-color:#FFFFFF;border-radius:12px;padding:24px;border-top:4px solid #2C5AA0;">`)
	buffer.WriteString(`<div style="font-size:28px;font-weight:800;color:#2C5AA0;">` + CompanyShortName + `</div>`)
	buffer.WriteString(`<div style="font-size:13px;color:#6C757D;">` + CompanyName + `</div>`)
	buffer.WriteString(`<div style="margin-top:14px;font-size:20px;font-weight:700;">` + html.EscapeString(reportTitle(data)) + `</div>`)

	// Info section.
	buffer.WriteString(`<div style="margin-top:10px;font-size:13px;line-height:1.7;color:#6C757D;">`)
	buffer.WriteString(`Cliente: <span style="font-weight:700;color:#2C3E50;">` + html.EscapeString(data.Client) + `</span><br>`)
	buffer.WriteString(`Sede: <span style="font-weight:700;color:#2C3E50;">` + html.EscapeString(siteName(data)) + `</span><br>`)
	buffer.WriteString(`Período: <span style="font-weight:700;color:#2C3E50;">` + html.EscapeString(data.Period.Label) + `</span>`)
	buffer.WriteString(`</div>`)
	buffer.WriteString(`</div>`)

	buffer.WriteString(`<div style="margin-top:18px;">`)
	if data.Kind == KindMaterials {
		writeMaterialsTable(&buffer, data)
	} else {
		writeTaskCards(&buffer, data)
	}
	buffer.WriteString(`</div>`)

	buffer.WriteString(`<div style="margin-top:18px;font-size:11px;color:#9CA3AF;text-align:center;">` + html.EscapeString(generatedLabel(data.GeneratedAt, loc)) + `</div>`)

	buffer.WriteString(`</div>`)
	buffer.WriteString(`</body>`)
	buffer.WriteString(`</html>`)

	artifact = Artifact{
		FileName:    FileName(data, FormatHTML),
		ContentType: FormatHTML.ContentType(),
		Body:        buffer.Bytes(),
	}
	return artifact, e
}

func writeTaskCards(buffer *bytes.Buffer, data Data) {
	loc := data.location()

	if len(data.Tasks) == 0 {
		buffer.WriteString(emptyNotice(noTasksNotice + "."))
		return
	}

	buffer.WriteString(`<div style="font-size:14px;font-weight:700;margin-bottom:10px;">Total de tareas completadas: ` + strconv.Itoa(len(data.Tasks)) + `</div>`)

	for index, task := range data.Tasks {
		background := "#F8F9FA"
		if index%2 == 1 {
			background = "#FFFFFF"
		}

		buffer.WriteString(`<div style="background-color:` + background + `;border-left:6px solid #2C5AA0;border-radius:8px;padding:14px 16px;margin-bottom:10px;font-size:13px;line-height:1.6;">`)

		buffer.WriteString(`<div style="float:right;text-align:right;font-size:11px;color:#6C757D;">`)
		buffer.WriteString(`Ingresada: ` + html.EscapeString(createdDate(task.CreatedAt, loc)) + `<br>`)
		buffer.WriteString(`Completada: ` + html.EscapeString(completedDate(task.CompletedAt, loc)))
		buffer.WriteString(`</div>`)

		if !data.AllSites() {
			buffer.WriteString(field("Cliente", orNotAvailable(task.Client)))
		}
		buffer.WriteString(field("Sede", orNotAvailable(task.Site)))
		buffer.WriteString(field("Tipo", typeLabel(task.Type)))

		buffer.WriteString(sectionHeading("Descripción"))
		buffer.WriteString(`<div style="white-space:pre-wrap;">` + html.EscapeString(descriptionText(task.Description)) + `</div>`)

		buffer.WriteString(sectionHeading("Materiales"))
		if strings.TrimSpace(task.Materials) == "" {
			buffer.WriteString(`<div style="font-style:italic;color:#6C757D;">` + notAvailable + `</div>`)
		} else {
			buffer.WriteString(`<div>` + html.EscapeString(task.Materials) + `</div>`)
		}

		if task.Photo != "" {
			buffer.WriteString(sectionHeading("Evidencia"))
			if strings.HasPrefix(task.Photo, "data:image/") {
				buffer.WriteString(`<img src="` + html.EscapeString(task.Photo) + `" alt="Evidencia" style="max-width:240px;max-height:180px;border-radius:6px;border:1px solid #E5E7EB;">`)
			} else {
				buffer.WriteString(`<div style="font-style:italic;color:#6C757D;">` + photoPlaceholder + `</div>`)
			}
		}

		buffer.WriteString(`</div>`)
	}
}

func writeMaterialsTable(buffer *bytes.Buffer, data Data) {
	if len(data.Materials) == 0 {
		buffer.WriteString(emptyNotice(noMaterialsMsg + "."))
		return
	}

	buffer.WriteString(`<div style="font-size:14px;font-weight:700;margin-bottom:10px;">Total de materiales diferentes: ` + strconv.Itoa(len(data.Materials)) + `</div>`)
	buffer.WriteString(`<table cellpadding="0" cellspacing="0" border="0" width="100%" style="border-collapse:collapse;background-color:#FFFFFF;font-size:13px;">`)
	buffer.WriteString(`<tr style="background-color:#2C5AA0;color:#FFFFFF;">`)
	buffer.WriteString(`<th align="left" style="padding:10px;">MATERIAL</th>`)
	buffer.WriteString(`<th align="center" style="padding:10px;width:80px;">CANT.</th>`)
	buffer.WriteString(`</tr>`)

	for index, entry := range data.Materials {
		background := "#F8F9FA"
		if index%2 == 1 {
			background = "#FFFFFF"
		}
		buffer.WriteString(`<tr style="background-color:` + background + `;">`)
		buffer.WriteString(`<td style="padding:8px 10px;border:1px solid #DCDCDC;">` + html.EscapeString(entry.Material) + `</td>`)
		buffer.WriteString(`<td align="center" style="padding:8px 10px;border:1px solid #DCDCDC;font-weight:700;color:#2C5AA0;">` + strconv.Itoa(entry.Count) + `</td>`)
		buffer.WriteString(`</tr>`)
	}
	buffer.WriteString(`</table>`)
}

func actionLink(href string, label string, color string) string {
	return fmt.Sprintf(
		`<a href="%s" style="display:inline-block;margin-left:8px;padding:10px 16px;border-radius:6px;background-color:%s;color:#FFFFFF;font-size:14px;font-weight:700;text-decoration:none;">%s</a>`,
		html.EscapeString(href), color, html.EscapeString(label),
	)
}

func field(label string, value string) string {
	return `<div><span style="font-weight:700;color:#2C5AA0;">` + strings.ToUpper(label) + `:</span> ` + html.EscapeString(value) + `</div>`
}

func sectionHeading(label string) string {
	return `<div style="margin-top:8px;font-weight:700;color:#2C5AA0;">` + strings.ToUpper(label) + `:</div>`
}

func emptyNotice(message string) string {
	return `<div style="padding:14px;border:1px dashed #D1D5DB;border-radius:12px;background-color:#FAFAFA;color:#6C757D;font-size:13px;">` + html.EscapeString(message) + `</div>`
}
