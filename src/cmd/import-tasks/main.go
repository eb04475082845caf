package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sima-reports/src/pkg/setup"
	"sima-reports/src/pkg/store"
	"sima-reports/src/pkg/util"
)

/*
Import a legacy JSON export of task documents into the configured store.

Clients and sites named by the tasks are created when missing; tasks already
present are skipped, so the import can be re-run.
*/
func main() {
	configPath := flag.String("config", "./cfg/config.json", "Path to the JSON or YAML config file")
	inputPath := flag.String("in", "", "Path to the JSON export")
	ownerFlag := flag.String("owner", "", "Assign every task to this owner (default: keep the export's userId)")
	dryRun := flag.Bool("dry-run", false, "Decode and report the export without writing")
	flag.Parse()

	setup.InitializeConfig(*configPath)

	util.RequiredFlag(inputPath, "in")
	util.EnsureFlags()

	file, err := os.Open(*inputPath)
	xerr.QuitIfError(err, fmt.Sprintf("Unable to open file '%s'", *inputPath))
	defer file.Close()

	records, err := store.DecodeLegacyExport(file)
	xerr.QuitIfError(err, fmt.Sprintf("Unable to decode export '%s'", *inputPath))
	tl.Log(tl.Notice, palette.BlueBold, "Decoded %s tasks from '%s'", fmt.Sprint(len(records)), *inputPath)

	if *dryRun {
		for _, record := range records {
			tl.Log(tl.Info, palette.Cyan, "%s | %s / %s | completed=%s", record.ID, record.Client, record.Site, fmt.Sprint(record.Completed))
		}
		return
	}

	target, e := store.Open()
	if e != nil {
		e.QuitIf(xerr.ErrorTypeError)
	}
	defer target.Close()

	summary, err := store.ImportLegacy(context.Background(), target, *ownerFlag, records)
	xerr.QuitIfError(err, "Unable to import tasks")

	tl.LogJSON(tl.Info, palette.Green, "Import summary", summary)
}
