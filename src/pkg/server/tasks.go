package server

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	echomw "sima-reports/src/pkg/echo-middleware"
	"sima-reports/src/pkg/photo"
	"sima-reports/src/pkg/store"
	"sima-reports/src/pkg/timestamp"
)

const maxPhotoBytes = 5 << 20

type createTaskRequest struct {
	Description string `json:"description" validate:"required,max=2000"`
	Client      string `json:"client" validate:"required"`
	Site        string `json:"sede" validate:"required"`
	Type        string `json:"type" validate:"required,max=40"`
}

type completeTaskRequest struct {
	Materials string `json:"materials" form:"materials" validate:"max=2000"`
	// Photo as a data URI; multipart requests send a "photo" file instead.
	Photo string `json:"photo"`
}

// taskView is a task with its timestamps resolved for JSON clients.
type taskView struct {
	store.TaskRecord
	CreatedAt   string `json:"created_at,omitempty"`
	CompletedAt string `json:"completed_at,omitempty"`
}

func (s *Server) view(record store.TaskRecord) taskView {
	return taskView{
		TaskRecord:  record,
		CreatedAt:   formatInstant(record.CreatedAt, s.location),
		CompletedAt: formatInstant(record.CompletedAt, s.location),
	}
}

func formatInstant(raw timestamp.Raw, loc *time.Location) string {
	instant, ok := timestamp.Normalize(raw, loc)
	if !ok {
		return ""
	}
	return instant.Format(time.RFC3339)
}

func ownerID(c echo.Context) string {
	return echomw.OwnerID(c)
}

func (s *Server) listTasks(c echo.Context) error {
	ws, err := s.workspace(c)
	if err != nil {
		return storeError(c, err)
	}

	status := c.QueryParam("status")
	views := []taskView{}
	for _, record := range ws.Tasks() {
		if (status == "pending" && record.Completed) || (status == "completed" && !record.Completed) {
			continue
		}
		views = append(views, s.view(record))
	}
	return c.JSON(http.StatusOK, views)
}

func (s *Server) listPending(c echo.Context) error {
	ws, err := s.workspace(c)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, ws.Pending())
}

func (s *Server) listCompleted(c echo.Context) error {
	ws, err := s.workspace(c)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, ws.CompletedByMonth())
}

func (s *Server) completedDates(c echo.Context) error {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	ws, err := s.workspace(c)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, ws.CompletedDateDiagnostics(limit))
}

func (s *Server) createTask(c echo.Context) error {
	var request createTaskRequest
	if err := bindValid(c, &request); err != nil {
		return badRequest(c, err)
	}

	ws, err := s.workspace(c)
	if err != nil {
		return storeError(c, err)
	}
	record, err := ws.AddTask(c.Request().Context(), store.NewTask{
		Description: request.Description,
		Client:      request.Client,
		Site:        request.Site,
		Type:        request.Type,
	})
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusCreated, s.view(record))
}

/*
completeTask accepts JSON (materials plus an optional photo data URI) or a
multipart form with a "materials" field and an optional "photo" file. Photos
are resized before the task is written.
*/
func (s *Server) completeTask(c echo.Context) error {
	var request completeTaskRequest
	if err := bindValid(c, &request); err != nil {
		return badRequest(c, err)
	}

	photoSource, err := uploadedPhoto(c, request.Photo)
	if err != nil {
		return badRequest(c, err)
	}

	ws, err := s.workspace(c)
	if err != nil {
		return storeError(c, err)
	}
	record, err := ws.CompleteTask(c.Request().Context(), c.Param("id"), request.Materials, photoSource)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, s.view(record))
}

// uploadedPhoto returns the photo bytes of the request, or nil when there is none.
func uploadedPhoto(c echo.Context, dataURI string) (io.Reader, error) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		header, err := c.FormFile("photo")
		if err == http.ErrMissingFile {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if header.Size > maxPhotoBytes {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "la imagen es demasiado grande, máximo 5MB")
		}

		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}

	if strings.TrimSpace(dataURI) == "" {
		return nil, nil
	}
	mime, data, e := photo.DecodeDataURI(dataURI)
	if e != nil || !strings.HasPrefix(mime, "image/") {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "la foto no es una imagen válida")
	}
	if len(data) > maxPhotoBytes {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "la imagen es demasiado grande, máximo 5MB")
	}
	return bytes.NewReader(data), nil
}

func (s *Server) deleteTask(c echo.Context) error {
	err := s.store.DeleteTask(c.Request().Context(), ownerID(c), c.Param("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
