// Package render turns a report data set into PDF, spreadsheet and printable
// HTML documents.
//
// The three renderers read the same Data and agree on field selection and
// labels; they only differ in layout.
package render

import (
	"strings"
	"time"

	"sima-reports/src/pkg/period"
	"sima-reports/src/pkg/tasks"
)

const (
	CompanyShortName = "SIMA"
	CompanyName      = "Servicios Integrales de Mantenimiento"
)

type Kind string

const (
	KindTasks     Kind = "tasks"
	KindMaterials Kind = "materials"
)

// ParseKind accepts the API names and the Spanish file prefixes.
func ParseKind(value string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "tasks", "reporte", "report":
		return KindTasks, true
	case "materials", "materiales":
		return KindMaterials, true
	}
	return "", false
}

// FilePrefix is the report kind as it appears in file names.
func (k Kind) FilePrefix() string {
	if k == KindMaterials {
		return "Materiales"
	}
	return "Reporte"
}

type Format string

const (
	FormatPDF         Format = "pdf"
	FormatSpreadsheet Format = "xlsx"
	FormatHTML        Format = "html"
)

func ParseFormat(value string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pdf":
		return FormatPDF, true
	case "xlsx", "excel":
		return FormatSpreadsheet, true
	case "html", "preview":
		return FormatHTML, true
	}
	return "", false
}

func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatSpreadsheet:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/html; charset=utf-8"
}

/*
Data is everything a renderer needs for one report.

Site is a site name or tasks.AllSites. Tasks are expected sorted by
completion instant; Materials is only read for KindMaterials.
*/
type Data struct {
	Kind        Kind                  `json:"kind"`
	Client      string                `json:"client"`
	Site        string                `json:"site"`
	Period      period.Period         `json:"period"`
	Tasks       []tasks.CompletedTask `json:"tasks"`
	Materials   []tasks.MaterialCount `json:"materials"`
	GeneratedAt time.Time             `json:"generated_at"`
	Location    *time.Location        `json:"-"`
}

// AllSites reports whether the report covers every site of the client.
func (d Data) AllSites() bool {
	return d.Site == "" || d.Site == tasks.AllSites
}

func (d Data) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.Local
}

// Artifact is a rendered document ready to be saved or streamed.
type Artifact struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"-"`
	Pages       int    `json:"pages,omitempty"`
}
