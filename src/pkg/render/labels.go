package render

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"sima-reports/src/pkg/timestamp"
)

const (
	notAvailable   = "N/A"
	noDescription  = "Sin descripción"
	allSitesLabel  = "Todas las sedes"
	allSitesFile   = "TodasSedes"
	noTasksNotice  = "No hay tareas completadas en el período seleccionado"
	noMaterialsMsg = "No hay materiales registrados en el período seleccionado"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

/*
FileName builds SIMA_<Kind>_<Client>_<SiteOrTodasSedes>_<Period>.<ext>.

Whitespace runs inside each component become a single underscore.
*/
func FileName(data Data, format Format) string {
	site := allSitesFile
	if !data.AllSites() {
		site = fileComponent(data.Site)
	}

	return fmt.Sprintf(
		"%s_%s_%s_%s_%s.%s",
		CompanyShortName, data.Kind.FilePrefix(), fileComponent(data.Client), site,
		fileComponent(data.Period.FileLabel), format,
	)
}

func fileComponent(value string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(value), "_")
}

func reportTitle(data Data) string {
	if data.Kind == KindMaterials {
		return "Reporte de Materiales - " + data.Period.Label
	}
	return "Reporte de Mantenimiento - " + data.Period.Label
}

func siteName(data Data) string {
	if data.AllSites() {
		return allSitesLabel
	}
	return data.Site
}

// "Sede: HQ", or "Todas las sedes" alone.
func siteLine(data Data) string {
	if data.AllSites() {
		return allSitesLabel
	}
	return "Sede: " + data.Site
}

func orNotAvailable(value string) string {
	if strings.TrimSpace(value) == "" {
		return notAvailable
	}
	return value
}

// typeLabel upper-cases the first letter of the type tag.
func typeLabel(taskType string) string {
	if taskType == "" {
		return notAvailable
	}
	first, size := utf8.DecodeRuneInString(taskType)
	return string(unicode.ToUpper(first)) + taskType[size:]
}

func descriptionText(description string) string {
	if strings.TrimSpace(description) == "" {
		return noDescription
	}
	return description
}

// generatedLabel formats like an es-ES locale string: 5/3/2024, 9:07:03.
func generatedLabel(generatedAt time.Time, loc *time.Location) string {
	local := generatedAt.In(loc)
	return fmt.Sprintf(
		"Generado: %d/%d/%d, %d:%02d:%02d",
		local.Day(), int(local.Month()), local.Year(), local.Hour(), local.Minute(), local.Second(),
	)
}

func completedDate(instant time.Time, loc *time.Location) string {
	return instant.In(loc).Format("02/01/2006")
}

func createdDate(raw timestamp.Raw, loc *time.Location) string {
	return timestamp.FormatDate(raw, loc)
}
