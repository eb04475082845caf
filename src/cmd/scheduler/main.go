package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sima-reports/src/pkg/config"
	"sima-reports/src/pkg/report"
	"sima-reports/src/pkg/scheduler"
	"sima-reports/src/pkg/setup"
	"sima-reports/src/pkg/store"
)

func main() {
	configPath := flag.String("config", "./cfg/config.json", "Path to the JSON or YAML config file")
	once := flag.Bool("once", false, "Run every job now for the previous month and exit")
	flag.Parse()

	setup.InitializeConfig(*configPath)
	config.CheckIfEnvVarsPresent(
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_REGION", // amazon ses, s3
		"MAILGUN_DOMAIN", "MAILGUN_API_KEY", // mailgun
		"SENDGRID_API_KEY", // sendgrid
	)

	if len(scheduler.Cfg.Jobs) == 0 {
		tl.Log(tl.Warning, palette.YellowBold, "scheduler config has %s, nothing to do", "no jobs")
		os.Exit(1)
	}

	source, e := store.Open()
	if e != nil {
		e.QuitIf(xerr.ErrorTypeError)
	}
	defer source.Close()

	sinks := []report.Sink{report.LocalDirSink{Dir: report.Cfg.OutputDir}}
	if scheduler.Cfg.Archive {
		s3Sink, e := report.NewS3Sink(report.ArchiveCfg)
		if e != nil {
			e.QuitIf(xerr.ErrorTypeError)
		}
		sinks = append(sinks, s3Sink)
	}

	location := report.Location()
	runner := &scheduler.Runner{
		Generator:  report.NewGeneratorFromConfig(source),
		Sinks:      sinks,
		Send:       scheduler.SendWithConfig,
		OwnerID:    store.Cfg.OwnerID,
		Jobs:       scheduler.Cfg.Jobs,
		Recipients: scheduler.Cfg.Recipients,
		Location:   location,
		Now:        time.Now,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func() {
		results := runner.RunPreviousMonth(ctx)
		failed := 0
		for _, result := range results {
			if result.Err != "" {
				failed++
			}
		}
		tl.Log(tl.Notice, palette.Green, "Scheduled run finished: %s jobs, %s failed", fmt.Sprint(len(results)), fmt.Sprint(failed))
		tl.LogJSON(tl.Verbose, palette.CyanDim, "Scheduled run results", results)
	}

	if *once {
		run()
		return
	}

	cron, e := scheduler.Start(scheduler.Cfg.Spec, location, run)
	if e != nil {
		e.QuitIf(xerr.ErrorTypeError)
	}
	if scheduler.Cfg.RunOnStart {
		run()
	}

	<-ctx.Done()
	tl.Log(tl.Notice, palette.Yellow, "Stopping %s", "scheduler")
	<-cron.Stop().Done()
}
