/*
Package scheduler produces last month's reports on a cron schedule, stores
them through the configured sinks and e-mails them to each job's recipients.
*/
package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sima-reports/src/pkg/email"
	"sima-reports/src/pkg/period"
	"sima-reports/src/pkg/render"
	"sima-reports/src/pkg/report"
	"sima-reports/src/pkg/store"
)

// SendFunc delivers one e-mail; email.SendMessage bound to the email config by default.
type SendFunc func(recipients []string, subject string, text string, html string, attachments []email.Attachment) *xerr.Error

// Result is what happened to one job in one run.
type Result struct {
	Job         Job      `json:"job"`
	Files       []string `json:"files"`
	Locations   []string `json:"locations"`
	Emailed     bool     `json:"emailed"`
	FetchFailed bool     `json:"fetch_failed"`
	Err         string   `json:"error,omitempty"`
}

type Runner struct {
	Generator  *report.Generator
	Sinks      []report.Sink
	Send       SendFunc
	OwnerID    string
	Jobs       []Job
	Recipients []string
	Location   *time.Location
	Now        func() time.Time
}

// SendWithConfig sends through the provider and sender of the "email" section.
func SendWithConfig(recipients []string, subject string, text string, html string, attachments []email.Attachment) *xerr.Error {
	enabled := email.Cfg.Enabled
	return email.SendMessage(email.Provider(email.Cfg.Provider), &enabled, email.Cfg.Sender, recipients, subject, text, html, attachments)
}

/*
RunPreviousMonth generates every job for the calendar month before Now.

A failing job is logged and reported in its Result; the remaining jobs still run.
*/
func (r *Runner) RunPreviousMonth(ctx context.Context) []Result {
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	now := r.Now().In(loc)
	previous := period.Monthly(now.Year(), now.Month(), loc).PreviousMonth(loc)

	tl.Log(tl.Notice, palette.BlueBold, "Running %s scheduled jobs for %s", fmt.Sprint(len(r.Jobs)), previous.Label)

	results := make([]Result, 0, len(r.Jobs))
	for _, job := range r.Jobs {
		result := r.runJob(ctx, job, previous)
		if result.Err != "" {
			tl.Log(tl.Error, palette.Red, "Job for '%s' failed: %s", job.Client, result.Err)
		}
		results = append(results, result)
	}
	return results
}

func (r *Runner) runJob(ctx context.Context, job Job, previous period.Period) (result Result) {
	result.Job = job

	kind, ok := render.ParseKind(job.Kind)
	if !ok {
		result.Err = "unknown report kind '" + job.Kind + "'"
		return result
	}

	formats := job.Formats
	if len(formats) == 0 {
		formats = []string{string(render.FormatPDF)}
	}

	attachments := []email.Attachment{}
	for _, name := range formats {
		format, ok := render.ParseFormat(name)
		if !ok || format == render.FormatHTML {
			result.Err = "unsupported format '" + name + "'"
			return result
		}

		outcome, e := r.Generator.Generate(ctx, report.Request{
			OwnerID: r.OwnerID,
			Client:  job.Client,
			Site:    job.Site,
			Year:    previous.Year,
			Month:   int(previous.Month),
			Kind:    kind,
			Format:  format,
		})
		if e != nil {
			result.Err = fmt.Sprint(e)
			return result
		}
		result.FetchFailed = result.FetchFailed || outcome.FetchFailed
		result.Files = append(result.Files, outcome.Artifact.FileName)

		for _, sink := range r.Sinks {
			location, e := sink.Save(ctx, outcome.Artifact)
			if e != nil {
				result.Err = fmt.Sprint(e)
				return result
			}
			result.Locations = append(result.Locations, location)
		}

		attachments = append(attachments, email.Attachment{
			FileName:    outcome.Artifact.FileName,
			ContentType: outcome.Artifact.ContentType,
			Data:        outcome.Artifact.Body,
		})
	}

	recipients := job.Recipients
	if len(recipients) == 0 {
		recipients = r.Recipients
	}
	if len(recipients) == 0 || r.Send == nil {
		return result
	}

	subject, text, htmlBody := message(job, kind, previous)
	if e := r.Send(recipients, subject, text, htmlBody, attachments); e != nil {
		result.Err = fmt.Sprint(e)
		return result
	}
	result.Emailed = true
	return result
}

func message(job Job, kind render.Kind, previous period.Period) (subject string, text string, htmlBody string) {
	title := "Reporte de Mantenimiento"
	if kind == render.KindMaterials {
		title = "Reporte de Materiales"
	}
	site := job.Site
	if strings.TrimSpace(site) == "" || site == store.AllSites {
		site = "todas las sedes"
	}

	subject = fmt.Sprintf("%s %s - %s - %s", render.CompanyShortName, title, job.Client, previous.Label)
	text = fmt.Sprintf("Adjunto el %s de %s (%s) correspondiente a %s.", strings.ToLower(title), job.Client, site, previous.Label)
	htmlBody = `<div style="font-family:Helvetica,Arial,sans-serif;color:#2C3E50;">` +
		`<h2 style="color:#2E86C1;margin:0 0 8px 0;">` + html.EscapeString(render.CompanyShortName) + `</h2>` +
		`<p style="margin:0;">` + html.EscapeString(text) + `</p></div>`
	return subject, text, htmlBody
}

/*
Start registers run on spec and starts the cron scheduler.

The returned scheduler must be stopped by the caller.
*/
func Start(spec string, loc *time.Location, run func()) (scheduler *cron.Cron, e *xerr.Error) {
	scheduler = cron.New(cron.WithLocation(loc))
	_, err := scheduler.AddFunc(spec, run)
	if err != nil {
		e = xerr.NewError(err, "register scheduled job", spec)
		return nil, e
	}
	scheduler.Start()

	tl.Log(tl.Notice, palette.Green, "Scheduled report jobs with '%s'", spec)
	return scheduler, nil
}
