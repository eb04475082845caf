package render

import (
	"fmt"

	"github.com/tuumbleweed/xerr"
)

// Render dispatches data to the renderer for format.
func Render(data Data, format Format, pdfOptions PDFOptions, actions Actions) (artifact Artifact, e *xerr.Error) {
	switch format {
	case FormatPDF:
		if data.Kind == KindMaterials {
			return RenderMaterialsPDF(data, pdfOptions)
		}
		return RenderTasksPDF(data, pdfOptions)
	case FormatSpreadsheet:
		return RenderSpreadsheet(data)
	case FormatHTML:
		return RenderHTML(data, actions)
	}

	e = xerr.NewError(fmt.Errorf("unsupported format '%s'", format), "render report", string(data.Kind))
	return artifact, e
}
