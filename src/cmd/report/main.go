package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sima-reports/src/pkg/period"
	"sima-reports/src/pkg/render"
	"sima-reports/src/pkg/report"
	"sima-reports/src/pkg/setup"
	"sima-reports/src/pkg/store"
	"sima-reports/src/pkg/util"
)

type reportOptions struct {
	OwnerID   string
	Client    string
	Site      string
	Year      int
	Month     int
	Week      int
	Kind      render.Kind
	Format    render.Format
	OutputDir string
	Archive   bool
}

func main() {
	options := parseFlags()

	tl.Log(
		tl.Notice, palette.BlueBold, "Generating %s %s report for '%s' / '%s' (%s-%s)",
		string(options.Kind), string(options.Format), options.Client, options.Site,
		fmt.Sprintf("%04d", options.Year), fmt.Sprintf("%02d", options.Month),
	)

	source, e := store.Open()
	if e != nil {
		e.QuitIf(xerr.ErrorTypeError)
	}
	defer source.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	generator := report.NewGeneratorFromConfig(source)
	outcome, e := generator.Generate(ctx, report.Request{
		OwnerID: options.OwnerID,
		Client:  options.Client,
		Site:    options.Site,
		Year:    options.Year,
		Month:   options.Month,
		Week:    options.Week,
		Kind:    options.Kind,
		Format:  options.Format,
	})
	if e != nil {
		e.QuitIf(xerr.ErrorTypeError)
	}
	if outcome.FetchFailed {
		tl.Log(tl.Warning, palette.Yellow, "Tasks could not be read, the report was rendered %s", "without tasks")
	}

	sinks := []report.Sink{report.LocalDirSink{Dir: options.OutputDir}}
	if options.Archive {
		s3Sink, e := report.NewS3Sink(report.ArchiveCfg)
		if e != nil {
			e.QuitIf(xerr.ErrorTypeError)
		}
		sinks = append(sinks, s3Sink)
	}

	for _, sink := range sinks {
		location, e := sink.Save(ctx, outcome.Artifact)
		if e != nil {
			e.QuitIf(xerr.ErrorTypeError)
		}
		tl.Log(tl.Info1, palette.Green, "Saved report to '%s'", location)
	}
}

/*
parseFlags parses CLI flags and returns validated reportOptions.

Defaults:
- previous month in the report time zone
- all sites of the client
- output dir from the "report" config section
*/
func parseFlags() reportOptions {
	configPath := flag.String("config", "./cfg/config.json", "Path to the JSON or YAML config file")
	ownerFlag := flag.String("owner", "", "Owner whose tasks are reported (default: store owner_id)")
	clientFlag := flag.String("client", "", "Client name")
	siteFlag := flag.String("site", "", "Site name (default: all sites)")
	yearFlag := flag.Int("year", 0, "Year to report (default: year of the previous month)")
	monthFlag := flag.Int("month", 0, "Month to report 1-12 (default: previous month)")
	weekFlag := flag.Int("week", 0, "Week of the month 1-5, 0 for the whole month")
	kindFlag := flag.String("kind", "tasks", "Report kind: tasks or materials")
	formatFlag := flag.String("format", "pdf", "Output format: pdf, xlsx or html")
	outputFlag := flag.String("o", "", "Output directory (default: report output_dir)")
	archiveFlag := flag.Bool("s3", false, "Also upload the report to the archive bucket")

	flag.Parse()
	setup.InitializeConfig(*configPath)

	util.RequiredFlag(clientFlag, "client")
	util.EnsureFlags()

	kind, ok := render.ParseKind(*kindFlag)
	if !ok {
		xerr.QuitIfError(fmt.Errorf("unknown report kind '%s'", *kindFlag), "parse -kind")
	}
	format, ok := render.ParseFormat(*formatFlag)
	if !ok {
		xerr.QuitIfError(fmt.Errorf("unknown format '%s'", *formatFlag), "parse -format")
	}

	location := report.Location()
	now := time.Now().In(location)
	previous := period.Monthly(now.Year(), now.Month(), location).PreviousMonth(location)

	yearValue := *yearFlag
	monthValue := *monthFlag
	if yearValue == 0 && monthValue == 0 {
		yearValue = previous.Year
		monthValue = int(previous.Month)
	}
	if yearValue == 0 {
		yearValue = now.Year()
	}
	if monthValue == 0 {
		monthValue = int(now.Month())
	}
	monthValue = util.Clamp(monthValue, 1, 12)

	ownerID := *ownerFlag
	if ownerID == "" {
		ownerID = store.Cfg.OwnerID
	}

	outputDir := *outputFlag
	if outputDir == "" {
		outputDir = report.Cfg.OutputDir
	}

	return reportOptions{
		OwnerID:   ownerID,
		Client:    *clientFlag,
		Site:      *siteFlag,
		Year:      yearValue,
		Month:     monthValue,
		Week:      *weekFlag,
		Kind:      kind,
		Format:    format,
		OutputDir: outputDir,
		Archive:   *archiveFlag,
	}
}
