package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sima-reports/src/pkg/render"
	"sima-reports/src/pkg/report"
	"sima-reports/src/pkg/store"
	"sima-reports/src/pkg/timestamp"
)

const token = "test-token"

type unreachableReader struct{}

func (unreachableReader) ListCompletedTasks(ctx context.Context, ownerID, client, site string) ([]store.TaskRecord, error) {
	return nil, errors.New("connection refused")
}

func newTestServer(t *testing.T, reader store.Reader) (*Server, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	if reader == nil {
		reader = s
	}
	generator := report.NewGenerator(reader, time.UTC, time.Minute)
	generator.PDFOptions = render.PDFOptions{Uncompressed: true}
	return New(s, generator, Options{Token: token, DefaultOwnerID: "owner", Location: time.UTC}), s
}

func call(srv *Server, method string, target string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, target, reader)
	request.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	srv.Handler().ServeHTTP(recorder, request)
	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &value), recorder.Body.String())
	return value
}

func TestHealthAndAuth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	recorder := httptest.NewRecorder()
	srv.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = httptest.NewRecorder()
	srv.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/clients", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestCatalogLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	created := call(srv, http.MethodPost, "/api/clients", map[string]string{"name": "Acme"})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	client := decode[store.Client](t, created)

	assert.Equal(t, http.StatusConflict, call(srv, http.MethodPost, "/api/clients", map[string]string{"name": "Acme"}).Code)
	assert.Equal(t, http.StatusBadRequest, call(srv, http.MethodPost, "/api/clients", map[string]string{"name": ""}).Code)

	site := call(srv, http.MethodPost, "/api/sites", map[string]string{"client": "Acme", "name": "HQ"})
	require.Equal(t, http.StatusCreated, site.Code, site.Body.String())
	assert.Equal(t, http.StatusBadRequest, call(srv, http.MethodPost, "/api/sites", map[string]string{"client": "Acme", "name": "all"}).Code)
	assert.Equal(t, http.StatusNotFound, call(srv, http.MethodPost, "/api/sites", map[string]string{"client": "Nobody", "name": "HQ"}).Code)

	sites := decode[[]store.Site](t, call(srv, http.MethodGet, "/api/sites?client=Acme", nil))
	require.Len(t, sites, 1)
	assert.Equal(t, "HQ", sites[0].Name)

	assert.Equal(t, http.StatusNoContent, call(srv, http.MethodDelete, "/api/clients/"+client.ID, nil).Code)
	assert.Empty(t, decode[[]store.Client](t, call(srv, http.MethodGet, "/api/clients", nil)))
	assert.Empty(t, decode[[]store.Site](t, call(srv, http.MethodGet, "/api/sites", nil)))
	assert.Equal(t, http.StatusNotFound, call(srv, http.MethodDelete, "/api/clients/"+client.ID, nil).Code)
}

func TestTaskLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	created := call(srv, http.MethodPost, "/api/tasks", map[string]string{"description": "Cambio de luminarias", "client": "Acme", "sede": "HQ", "type": "preventivo"})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	task := decode[map[string]any](t, created)
	taskID := task["id"].(string)
	assert.NotEmpty(t, task["created_at"])

	assert.Equal(t, http.StatusBadRequest, call(srv, http.MethodPost, "/api/tasks", map[string]string{"description": "x", "client": "Acme"}).Code)

	pending := decode[[]map[string]any](t, call(srv, http.MethodGet, "/api/tasks?status=pending", nil))
	assert.Len(t, pending, 1)

	completed := call(srv, http.MethodPost, "/api/tasks/"+taskID+"/complete", map[string]string{"materials": "Cable, Cinta"})
	require.Equal(t, http.StatusOK, completed.Code, completed.Body.String())
	completedTask := decode[map[string]any](t, completed)
	assert.Equal(t, true, completedTask["completed"])
	assert.NotEmpty(t, completedTask["completed_at"])

	assert.Equal(t, http.StatusConflict, call(srv, http.MethodPost, "/api/tasks/"+taskID+"/complete", map[string]string{}).Code)
	assert.Equal(t, http.StatusNotFound, call(srv, http.MethodPost, "/api/tasks/missing/complete", map[string]string{}).Code)

	months := decode[[]map[string]any](t, call(srv, http.MethodGet, "/api/tasks/completed", nil))
	require.Len(t, months, 1)
	assert.Equal(t, float64(1), months[0]["count"])

	dates := decode[[]map[string]any](t, call(srv, http.MethodGet, "/api/tasks/completed/dates", nil))
	require.Len(t, dates, 1)
	assert.Equal(t, "live", dates[0]["shape"])

	assert.Equal(t, http.StatusNoContent, call(srv, http.MethodDelete, "/api/tasks/"+taskID, nil).Code)
	assert.Empty(t, decode[[]map[string]any](t, call(srv, http.MethodGet, "/api/tasks", nil)))
}

func TestCompleteTaskWithMultipartPhoto(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	created := call(srv, http.MethodPost, "/api/tasks", map[string]string{"description": "Pintura", "client": "Acme", "sede": "HQ", "type": "correctivo"})
	require.Equal(t, http.StatusCreated, created.Code)
	taskID := decode[map[string]any](t, created)["id"].(string)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("materials", "Pintura blanca"))
	file, err := form.CreateFormFile("photo", "evidencia.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(file, image.NewRGBA(image.Rect(0, 0, 1200, 1200))))
	require.NoError(t, form.Close())

	request := httptest.NewRequest(http.MethodPost, "/api/tasks/"+taskID+"/complete", &body)
	request.Header.Set("Authorization", "Bearer "+token)
	request.Header.Set("Content-Type", form.FormDataContentType())
	recorder := httptest.NewRecorder()
	srv.Handler().ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	completed := decode[map[string]any](t, recorder)
	assert.Equal(t, "Pintura blanca", completed["materials"])
	assert.True(t, strings.HasPrefix(completed["photo"].(string), "data:image/jpeg;base64,"))
}

func TestCompleteTaskRejectsNonImageDataURI(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	created := call(srv, http.MethodPost, "/api/tasks", map[string]string{"description": "x", "client": "Acme", "sede": "HQ", "type": "preventivo"})
	taskID := decode[map[string]any](t, created)["id"].(string)

	response := call(srv, http.MethodPost, "/api/tasks/"+taskID+"/complete", map[string]string{"photo": "data:text/plain;base64,aGVsbG8="})
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func seedMarch(t *testing.T, s *store.MemoryStore) {
	t.Helper()
	for _, record := range []store.TaskRecord{
		{ID: "a", CompletedAt: timestamp.ISOString("2024-03-05T10:00:00Z"), Materials: "Cable"},
		{ID: "b", CompletedAt: timestamp.ISOString("2024-03-20T10:00:00Z"), Materials: "Cable, Cinta"},
		{ID: "c", CompletedAt: timestamp.ISOString("2024-04-01T10:00:00Z")},
	} {
		record.OwnerID = "owner"
		record.Client = "Acme"
		record.Site = "HQ"
		record.Completed = true
		_, err := s.ImportTask(context.Background(), record)
		require.NoError(t, err)
	}
}

func TestReportDownload(t *testing.T) {
	srv, s := newTestServer(t, nil)
	seedMarch(t, s)

	response := call(srv, http.MethodGet, "/api/reports?client=Acme&site=HQ&year=2024&month=3&kind=tasks&format=pdf", nil)
	require.Equal(t, http.StatusOK, response.Code, response.Body.String())
	assert.Equal(t, "application/pdf", response.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=SIMA_Reporte_Acme_HQ_Marzo_2024.pdf`, response.Header().Get("Content-Disposition"))
	assert.Contains(t, response.Body.String(), "Total de tareas completadas: 2")
	assert.Empty(t, response.Header().Get(HeaderReportNotice))
}

func TestReportValidation(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	assert.Equal(t, http.StatusBadRequest, call(srv, http.MethodGet, "/api/reports?client=Acme&year=2024&month=13&format=pdf", nil).Code)
	assert.Equal(t, http.StatusBadRequest, call(srv, http.MethodGet, "/api/reports?client=Acme&year=2024&month=3&format=docx", nil).Code)
	assert.Equal(t, http.StatusBadRequest, call(srv, http.MethodGet, "/api/reports?year=2024&month=3&format=pdf", nil).Code)
	assert.Equal(t, http.StatusBadRequest, call(srv, http.MethodGet, "/api/reports?client=Acme&year=2024&month=3&kind=otro&format=pdf", nil).Code)
}

func TestPreviewThenDownload(t *testing.T) {
	srv, s := newTestServer(t, nil)
	seedMarch(t, s)

	preview := call(srv, http.MethodGet, "/api/reports?client=Acme&year=2024&month=3&kind=materiales&format=html", nil)
	require.Equal(t, http.StatusOK, preview.Code, preview.Body.String())
	previewID := preview.Header().Get(HeaderPreviewID)
	require.NotEmpty(t, previewID)
	assert.Contains(t, preview.Body.String(), "Total de materiales diferentes: 2")
	assert.Contains(t, preview.Body.String(), `href="/previews/`+previewID+`/xlsx"`)

	download := call(srv, http.MethodGet, "/api/previews/"+previewID+"/xlsx", nil)
	require.Equal(t, http.StatusOK, download.Code)
	assert.Equal(t, `attachment; filename=SIMA_Materiales_Acme_TodasSedes_Marzo_2024.xlsx`, download.Header().Get("Content-Disposition"))

	assert.Equal(t, http.StatusNotFound, call(srv, http.MethodGet, "/api/previews/unknown/pdf", nil).Code)
	assert.Equal(t, http.StatusBadRequest, call(srv, http.MethodGet, "/api/previews/"+previewID+"/html", nil).Code)
}

var previewLink = regexp.MustCompile(`href="(/previews/[^"]+/pdf)"`)

func TestPreviewLinkWorksWithoutCredentials(t *testing.T) {
	srv, s := newTestServer(t, nil)
	seedMarch(t, s)

	preview := call(srv, http.MethodGet, "/api/reports?client=Acme&site=HQ&year=2024&month=3&format=html", nil)
	require.Equal(t, http.StatusOK, preview.Code, preview.Body.String())
	match := previewLink.FindStringSubmatch(preview.Body.String())
	require.Len(t, match, 2)

	// a browser following the link sends neither the token nor the owner header
	recorder := httptest.NewRecorder()
	srv.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, match[1], nil))
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.Equal(t, `attachment; filename=SIMA_Reporte_Acme_HQ_Marzo_2024.pdf`, recorder.Header().Get("Content-Disposition"))
	assert.Contains(t, recorder.Body.String(), "Total de tareas completadas: 2")

	unknown := httptest.NewRecorder()
	srv.Handler().ServeHTTP(unknown, httptest.NewRequest(http.MethodGet, "/previews/unknown/pdf", nil))
	assert.Equal(t, http.StatusNotFound, unknown.Code)
}

func TestPreviewIsScopedToItsOwner(t *testing.T) {
	srv, s := newTestServer(t, nil)
	seedMarch(t, s)

	preview := call(srv, http.MethodGet, "/api/reports?client=Acme&year=2024&month=3&format=html", nil)
	require.Equal(t, http.StatusOK, preview.Code, preview.Body.String())
	previewID := preview.Header().Get(HeaderPreviewID)

	request := httptest.NewRequest(http.MethodGet, "/api/previews/"+previewID+"/pdf", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	request.Header.Set("X-Owner-ID", "someone-else")
	recorder := httptest.NewRecorder()
	srv.Handler().ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Empty(t, recorder.Header().Get("Content-Disposition"))
}

func TestReportFetchFailureAddsNotice(t *testing.T) {
	srv, _ := newTestServer(t, unreachableReader{})

	response := call(srv, http.MethodGet, "/api/reports?client=Acme&year=2024&month=3&format=pdf", nil)
	require.Equal(t, http.StatusOK, response.Code)
	assert.NotEmpty(t, response.Header().Get(HeaderReportNotice))
	assert.Contains(t, response.Body.String(), "No hay tareas completadas en el per")
}

func TestOwnerScoping(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, call(srv, http.MethodPost, "/api/clients", map[string]string{"name": "Acme"}).Code)

	request := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	request.Header.Set("X-Owner-ID", "someone-else")
	recorder := httptest.NewRecorder()
	srv.Handler().ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, decode[[]store.Client](t, recorder))
}
