package render

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
	"github.com/xuri/excelize/v2"
)

// SheetSpec is a single worksheet as ordered rows of cell values.
type SheetSpec struct {
	Name      string
	Rows      [][]any
	Widths    []float64
	HeaderRow int // 1-based row index of the column header row
}

var (
	taskColumns     = []any{"Fecha Completada", "Cliente", "Sede", "Tipo", "Descripción", "Materiales", "Tiene Foto"}
	taskWidths      = []float64{20, 25, 25, 15, 50, 40, 12}
	materialColumns = []any{"Material", "Cantidad Usada"}
	materialWidths  = []float64{60, 20}
)

// TaskSheet lays out the maintenance report worksheet.
func TaskSheet(data Data) SheetSpec {
	loc := data.location()

	rows := [][]any{
		{CompanyShortName + " - " + CompanyName},
		{},
		{reportTitle(data)},
		{"Cliente: " + data.Client},
		{"Sede: " + siteName(data)},
		{fmt.Sprintf("Total de tareas completadas: %d", len(data.Tasks))},
		{},
		taskColumns,
	}
	headerRow := len(rows)

	if len(data.Tasks) == 0 {
		rows = append(rows, []any{noTasksNotice})
	}
	for _, task := range data.Tasks {
		hasPhoto := "No"
		if task.Photo != "" {
			hasPhoto = "Sí"
		}
		rows = append(rows, []any{
			completedDate(task.CompletedAt, loc),
			orNotAvailable(task.Client),
			orNotAvailable(task.Site),
			typeLabel(task.Type),
			descriptionText(task.Description),
			orNotAvailable(task.Materials),
			hasPhoto,
		})
	}

	rows = append(rows, []any{}, []any{generatedLabel(data.GeneratedAt, loc)})

	return SheetSpec{Name: "Reporte Mantenimiento", Rows: rows, Widths: taskWidths, HeaderRow: headerRow}
}

// MaterialSheet lays out the materials report worksheet.
func MaterialSheet(data Data) SheetSpec {
	rows := [][]any{
		{CompanyShortName + " - Reporte de Materiales"},
		{},
		{reportTitle(data)},
		{"Cliente: " + data.Client},
		{"Sede: " + siteName(data)},
		{fmt.Sprintf("Total de materiales diferentes: %d", len(data.Materials))},
		{},
		materialColumns,
	}
	headerRow := len(rows)

	if len(data.Materials) == 0 {
		rows = append(rows, []any{noMaterialsMsg})
	}
	for _, entry := range data.Materials {
		rows = append(rows, []any{entry.Material, entry.Count})
	}

	rows = append(rows, []any{}, []any{generatedLabel(data.GeneratedAt, data.location())})

	return SheetSpec{Name: "Reporte Materiales", Rows: rows, Widths: materialWidths, HeaderRow: headerRow}
}

// RenderSpreadsheet writes the worksheet for data.Kind as an .xlsx workbook.
func RenderSpreadsheet(data Data) (artifact Artifact, e *xerr.Error) {
	spec := TaskSheet(data)
	if data.Kind == KindMaterials {
		spec = MaterialSheet(data)
	}

	body, err := writeWorkbook(spec)
	if err != nil {
		e = xerr.NewError(err, "write spreadsheet", spec.Name)
		return artifact, e
	}

	artifact = Artifact{
		FileName:    FileName(data, FormatSpreadsheet),
		ContentType: FormatSpreadsheet.ContentType(),
		Body:        body,
	}

	tl.Log(tl.Info1, palette.Green, "Rendered '%s' (%s rows)", artifact.FileName, fmt.Sprint(len(spec.Rows)))
	return artifact, nil
}

func writeWorkbook(spec SheetSpec) ([]byte, error) {
	workbook := excelize.NewFile()
	defer workbook.Close()

	if err := workbook.SetSheetName("Sheet1", spec.Name); err != nil {
		return nil, err
	}

	for index, row := range spec.Rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, index+1)
		if err != nil {
			return nil, err
		}
		if err := workbook.SetSheetRow(spec.Name, cell, &row); err != nil {
			return nil, err
		}
	}

	for index, width := range spec.Widths {
		column, err := excelize.ColumnNumberToName(index + 1)
		if err != nil {
			return nil, err
		}
		if err := workbook.SetColWidth(spec.Name, column, column, width); err != nil {
			return nil, err
		}
	}

	if err := styleSheet(workbook, spec); err != nil {
		return nil, err
	}

	buffer, err := workbook.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// styleSheet makes the title bold and paints the column header row.
func styleSheet(workbook *excelize.File, spec SheetSpec) error {
	titleStyle, err := workbook.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: "#2C5AA0"},
	})
	if err != nil {
		return err
	}
	if err := workbook.SetCellStyle(spec.Name, "A1", "A1", titleStyle); err != nil {
		return err
	}

	if spec.HeaderRow == 0 || len(spec.Widths) == 0 {
		return nil
	}

	headerStyle, err := workbook.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#2C5AA0"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	first, err := excelize.CoordinatesToCellName(1, spec.HeaderRow)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(spec.Widths), spec.HeaderRow)
	if err != nil {
		return err
	}
	return workbook.SetCellStyle(spec.Name, first, last, headerStyle)
}
