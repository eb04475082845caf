package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuumbleweed/xerr"

	"sima-reports/src/pkg/email"
	"sima-reports/src/pkg/period"
	"sima-reports/src/pkg/render"
	"sima-reports/src/pkg/report"
	"sima-reports/src/pkg/store"
	"sima-reports/src/pkg/timestamp"
)

type sentMessage struct {
	recipients  []string
	subject     string
	html        string
	attachments []email.Attachment
}

func marchStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore()
	_, err := s.ImportTask(context.Background(), store.TaskRecord{
		ID: "t-1", OwnerID: "owner", Client: "Acme", Site: "HQ", Type: "preventivo",
		Description: "Cambio de filtros", Materials: "Filtro", Completed: true,
		CompletedAt: timestamp.ISOString("2024-03-05T10:00:00Z"),
	})
	require.NoError(t, err)
	return s
}

func newRunner(t *testing.T, jobs []Job, outbox *[]sentMessage) (*Runner, string) {
	t.Helper()
	generator := report.NewGenerator(marchStore(t), time.UTC, time.Minute)
	dir := t.TempDir()

	return &Runner{
		Generator:  generator,
		Sinks:      []report.Sink{report.LocalDirSink{Dir: dir}},
		OwnerID:    "owner",
		Jobs:       jobs,
		Recipients: []string{"ops@sima.example"},
		Location:   time.UTC,
		Now:        func() time.Time { return time.Date(2024, 4, 1, 6, 0, 0, 0, time.UTC) },
		Send: func(recipients []string, subject string, text string, html string, attachments []email.Attachment) *xerr.Error {
			*outbox = append(*outbox, sentMessage{recipients: recipients, subject: subject, html: html, attachments: attachments})
			return nil
		},
	}, dir
}

func TestRunPreviousMonth(t *testing.T) {
	outbox := []sentMessage{}
	runner, dir := newRunner(t, []Job{
		{Client: "Acme", Site: "HQ", Kind: "tasks", Formats: []string{"pdf", "xlsx"}},
	}, &outbox)

	results := runner.RunPreviousMonth(context.Background())
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Err)
	assert.True(t, results[0].Emailed)
	assert.Equal(t, []string{"SIMA_Reporte_Acme_HQ_Marzo_2024.pdf", "SIMA_Reporte_Acme_HQ_Marzo_2024.xlsx"}, results[0].Files)

	for _, name := range results[0].Files {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err)
	}

	require.Len(t, outbox, 1)
	assert.Equal(t, []string{"ops@sima.example"}, outbox[0].recipients)
	assert.Equal(t, "SIMA Reporte de Mantenimiento - Acme - Marzo 2024", outbox[0].subject)
	assert.Contains(t, outbox[0].html, "Adjunto el reporte de mantenimiento de Acme (HQ) correspondiente a Marzo 2024.")
	require.Len(t, outbox[0].attachments, 2)
	assert.Equal(t, "application/pdf", outbox[0].attachments[0].ContentType)
}

func TestRunPreviousMonthJobRecipientsAndKinds(t *testing.T) {
	outbox := []sentMessage{}
	runner, _ := newRunner(t, []Job{
		{Client: "Acme", Kind: "materials", Recipients: []string{"acme@acme.example"}},
	}, &outbox)

	results := runner.RunPreviousMonth(context.Background())
	require.Len(t, results, 1)
	assert.Equal(t, []string{"SIMA_Materiales_Acme_TodasSedes_Marzo_2024.pdf"}, results[0].Files)

	require.Len(t, outbox, 1)
	assert.Equal(t, []string{"acme@acme.example"}, outbox[0].recipients)
	assert.Equal(t, "SIMA Reporte de Materiales - Acme - Marzo 2024", outbox[0].subject)
}

func TestRunPreviousMonthKeepsGoingAfterFailure(t *testing.T) {
	outbox := []sentMessage{}
	runner, _ := newRunner(t, []Job{
		{Client: "Acme", Kind: "invoices"},
		{Client: "Acme", Site: "HQ", Formats: []string{"html"}},
		{Client: "Acme", Site: "HQ"},
	}, &outbox)

	results := runner.RunPreviousMonth(context.Background())
	require.Len(t, results, 3)
	assert.NotEmpty(t, results[0].Err)
	assert.NotEmpty(t, results[1].Err)
	assert.Empty(t, results[2].Err)
	assert.Len(t, outbox, 1)
}

func TestRunPreviousMonthWithoutRecipients(t *testing.T) {
	outbox := []sentMessage{}
	runner, _ := newRunner(t, []Job{{Client: "Acme", Site: "HQ"}}, &outbox)
	runner.Recipients = nil

	results := runner.RunPreviousMonth(context.Background())
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Err)
	assert.False(t, results[0].Emailed)
	assert.Empty(t, outbox)
}

func TestMessageEscapesNamesInHTML(t *testing.T) {
	previous := period.Monthly(2024, time.March, time.UTC)
	subject, text, body := message(Job{Client: "A&B <x>", Site: "Sede \"1\""}, render.KindTasks, previous)

	assert.Equal(t, "SIMA Reporte de Mantenimiento - A&B <x> - Marzo 2024", subject)
	assert.Contains(t, text, "A&B <x>")
	assert.Contains(t, body, "A&amp;B &lt;x&gt;")
	assert.Contains(t, body, "Sede &#34;1&#34;")
	assert.NotContains(t, body, "<x>")
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	_, e := Start("every full moon", time.UTC, func() {})
	assert.NotNil(t, e)

	scheduler, e := Start("0 6 1 * *", time.UTC, func() {})
	require.Nil(t, e)
	scheduler.Stop()
	assert.Len(t, scheduler.Entries(), 1)
}

func TestInitializeConfigAppliesDefaults(t *testing.T) {
	previous := Cfg
	defer func() { Cfg = previous }()

	InitializeConfig(&Config{Jobs: []Job{{Client: "Acme"}}})
	assert.Equal(t, "0 6 1 * *", Cfg.Spec)
	assert.Len(t, Cfg.Jobs, 1)
}
