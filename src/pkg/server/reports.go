package server

import (
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	"sima-reports/src/pkg/render"
	"sima-reports/src/pkg/report"
)

const (
	// Set when the store could not be read and the report is empty for that reason.
	HeaderReportNotice = "X-Report-Notice"
	HeaderPreviewID    = "X-Preview-ID"

	fetchFailedNotice = "No se pudieron cargar las tareas; el reporte puede estar incompleto"
)

type reportQuery struct {
	Client string `query:"client"`
	Site   string `query:"site"`
	Year   int    `query:"year"`
	Month  int    `query:"month"`
	Week   int    `query:"week"`
	Kind   string `query:"kind"`
	Format string `query:"format"`
}

func (s *Server) generateReport(c echo.Context) error {
	var query reportQuery
	if err := c.Bind(&query); err != nil {
		return badRequest(c, err)
	}

	kind, ok := render.ParseKind(query.Kind)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "tipo de reporte desconocido: " + query.Kind})
	}
	format, ok := render.ParseFormat(query.Format)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "formato desconocido: " + query.Format})
	}

	request := report.Request{
		OwnerID: ownerID(c),
		Client:  query.Client,
		Site:    query.Site,
		Year:    query.Year,
		Month:   query.Month,
		Week:    query.Week,
		Kind:    kind,
		Format:  format,
	}
	if _, e := s.generator.Validate(request); e != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "criterios de reporte inválidos"})
	}

	outcome, e := s.generator.Generate(c.Request().Context(), request)
	if e != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "no se pudo generar el reporte"})
	}

	if outcome.FetchFailed {
		c.Response().Header().Set(HeaderReportNotice, fetchFailedNotice)
	}
	if format == render.FormatHTML {
		c.Response().Header().Set(HeaderPreviewID, outcome.SnapshotID)
		return c.HTMLBlob(http.StatusOK, outcome.Artifact.Body)
	}
	return attachment(c, outcome.Artifact)
}

// renderPreview downloads one of the requesting owner's previews as PDF or spreadsheet.
func (s *Server) renderPreview(c echo.Context) error {
	return s.previewDownload(c, c.Param("id"), ownerID(c))
}

// sharedPreview serves the preview's action links to whoever holds the id.
func (s *Server) sharedPreview(c echo.Context) error {
	owner, found := s.generator.SnapshotOwner(c.Param("id"))
	if !found {
		return previewExpired(c)
	}
	return s.previewDownload(c, c.Param("id"), owner)
}

func (s *Server) previewDownload(c echo.Context, id string, owner string) error {
	format, ok := render.ParseFormat(c.Param("format"))
	if !ok || format == render.FormatHTML {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "formato desconocido: " + c.Param("format")})
	}
	if _, found := s.generator.Snapshot(id, owner); !found {
		return previewExpired(c)
	}

	artifact, e := s.generator.RenderSnapshot(id, owner, format)
	if e != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "no se pudo generar el reporte"})
	}
	return attachment(c, artifact)
}

func previewExpired(c echo.Context) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": "la vista previa expiró, genere el reporte de nuevo"})
}

func attachment(c echo.Context, artifact render.Artifact) error {
	c.Response().Header().Set(
		echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": artifact.FileName}),
	)
	return c.Blob(http.StatusOK, artifact.ContentType, artifact.Body)
}
