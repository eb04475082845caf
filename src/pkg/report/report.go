/*
Package report runs one report generation: criteria in, rendered document out.

A generation walks Idle -> CriteriaSelected -> Fetching -> Rendering -> Idle.
When the store cannot be read it goes Fetching -> FetchFailed -> Idle instead,
and the empty report is still rendered so the caller always gets a document.
*/
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sima-reports/src/pkg/period"
	"sima-reports/src/pkg/render"
	"sima-reports/src/pkg/store"
	"sima-reports/src/pkg/tasks"
)

type State string

const (
	StateIdle             State = "idle"
	StateCriteriaSelected State = "criteria_selected"
	StateFetching         State = "fetching"
	StateRendering        State = "rendering"
	StateFetchFailed      State = "fetch_failed"
)

// Request is the report criteria. Week 0 selects the whole month.
type Request struct {
	OwnerID string        `json:"owner_id" validate:"required"`
	Client  string        `json:"client" validate:"required"`
	Site    string        `json:"site"`
	Year    int           `json:"year" validate:"min=1,max=9999"`
	Month   int           `json:"month" validate:"min=1,max=12"`
	Week    int           `json:"week" validate:"min=0,max=5"`
	Kind    render.Kind   `json:"kind" validate:"oneof=tasks materials"`
	Format  render.Format `json:"format" validate:"oneof=pdf xlsx html"`
}

type Outcome struct {
	Artifact render.Artifact `json:"artifact"`
	Data     render.Data     `json:"-"`
	// SnapshotID is set for previews; the snapshot renders the other formats.
	SnapshotID  string  `json:"snapshot_id,omitempty"`
	FetchFailed bool    `json:"fetch_failed"`
	Trace       []State `json:"trace"`
}

type Generator struct {
	source    store.Reader
	location  *time.Location
	snapshots *cache.Cache
	validate  *validator.Validate

	Now             func() time.Time
	PDFOptions      render.PDFOptions
	PreviewBasePath string
}

// NewGenerator reads tasks from source; previews are kept for previewTTL.
func NewGenerator(source store.Reader, location *time.Location, previewTTL time.Duration) *Generator {
	if location == nil {
		location = time.Local
	}
	return &Generator{
		source:          source,
		location:        location,
		snapshots:       cache.New(previewTTL, 2*previewTTL),
		validate:        validator.New(),
		Now:             time.Now,
		PreviewBasePath: DefaultValueConfig().PreviewBasePath,
	}
}

// NewGeneratorFromConfig builds a generator with the "report" section settings.
func NewGeneratorFromConfig(source store.Reader) *Generator {
	generator := NewGenerator(source, Location(), PreviewTTL())
	generator.PDFOptions = render.PDFOptions{Uncompressed: Cfg.UncompressedPDF}
	generator.PreviewBasePath = Cfg.PreviewBasePath
	return generator
}

// Validate checks the criteria and resolves the period they cover.
func (g *Generator) Validate(request Request) (p period.Period, e *xerr.Error) {
	err := g.validate.Struct(request)
	if err != nil {
		e = xerr.NewError(err, "validate report criteria", request.Client)
		return p, e
	}
	return period.Resolve(request.Year, request.Month, request.Week, g.location)
}

/*
Generate fetches the tasks for request once and renders them.

Invalid criteria are the only error besides a renderer failure; a store that
cannot be read produces an Outcome flagged FetchFailed holding the empty report.
*/
func (g *Generator) Generate(ctx context.Context, request Request) (outcome Outcome, e *xerr.Error) {
	outcome.Trace = []State{StateIdle}

	reportPeriod, e := g.Validate(request)
	if e != nil {
		return outcome, e
	}
	site := strings.TrimSpace(request.Site)
	if site == "" {
		site = tasks.AllSites
	}
	outcome.Trace = append(outcome.Trace, StateCriteriaSelected, StateFetching)

	tl.Log(
		tl.Info, palette.Blue, "Generating %s %s report for '%s' / '%s', %s",
		string(request.Kind), string(request.Format), request.Client, site, reportPeriod.Label,
	)

	completed, err := tasks.FilterCompletedTasks(ctx, g.source, tasks.Criteria{
		OwnerID:  request.OwnerID,
		Client:   request.Client,
		Site:     site,
		Start:    reportPeriod.Start,
		End:      reportPeriod.End,
		Location: g.location,
	})
	if err != nil {
		outcome.FetchFailed = true
		outcome.Trace = append(outcome.Trace, StateFetchFailed)
		tl.Log(tl.Warning, palette.YellowBold, "Rendering an empty report for '%s': %s", request.Client, err.Error())
	} else {
		outcome.Trace = append(outcome.Trace, StateRendering)
	}

	data := render.Data{
		Kind:        request.Kind,
		Client:      request.Client,
		Site:        site,
		Period:      reportPeriod,
		Tasks:       completed,
		GeneratedAt: g.Now(),
		Location:    g.location,
	}
	if request.Kind == render.KindMaterials {
		data.Materials = tasks.AggregateMaterials(completed)
	}
	outcome.Data = data

	var actions render.Actions
	if request.Format == render.FormatHTML {
		outcome.SnapshotID = uuid.NewString()
		g.snapshots.SetDefault(outcome.SnapshotID, snapshot{OwnerID: request.OwnerID, Data: data})
		actions = render.Actions{
			PDF:         g.PreviewBasePath + "/" + outcome.SnapshotID + "/" + string(render.FormatPDF),
			Spreadsheet: g.PreviewBasePath + "/" + outcome.SnapshotID + "/" + string(render.FormatSpreadsheet),
		}
	}

	outcome.Artifact, e = render.Render(data, request.Format, g.PDFOptions, actions)
	outcome.Trace = append(outcome.Trace, StateIdle)
	if e != nil {
		return outcome, e
	}

	tl.Log(
		tl.Info1, palette.Green, "Report '%s' ready: %s tasks, %s bytes",
		outcome.Artifact.FileName, fmt.Sprint(len(completed)), fmt.Sprint(len(outcome.Artifact.Body)),
	)
	return outcome, nil
}

type snapshot struct {
	OwnerID string
	Data    render.Data
}

// Snapshot returns the data set ownerID kept for a preview, if it has not
// expired. A preview made by another owner is reported as not found.
func (g *Generator) Snapshot(id string, ownerID string) (render.Data, bool) {
	value, found := g.snapshots.Get(id)
	if !found {
		return render.Data{}, false
	}
	kept, ok := value.(snapshot)
	if !ok || kept.OwnerID != ownerID {
		return render.Data{}, false
	}
	return kept.Data, true
}

// SnapshotOwner returns the owner who made the preview id.
func (g *Generator) SnapshotOwner(id string) (string, bool) {
	value, found := g.snapshots.Get(id)
	if !found {
		return "", false
	}
	kept, ok := value.(snapshot)
	return kept.OwnerID, ok
}

/*
RenderSnapshot renders a preview's data set as PDF or spreadsheet without
reading the store again, so the downloads match what the preview showed.
*/
func (g *Generator) RenderSnapshot(id string, ownerID string, format render.Format) (artifact render.Artifact, e *xerr.Error) {
	if format != render.FormatPDF && format != render.FormatSpreadsheet {
		e = xerr.NewError(fmt.Errorf("format '%s' cannot be rendered from a preview", format), "render snapshot", id)
		return artifact, e
	}

	data, found := g.Snapshot(id, ownerID)
	if !found {
		e = xerr.NewError(fmt.Errorf("preview '%s' not found or expired", id), "render snapshot", id)
		return artifact, e
	}

	return render.Render(data, format, g.PDFOptions, render.Actions{})
}
