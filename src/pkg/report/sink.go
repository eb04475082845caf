package report

import (
	"context"
	"os"
	"path/filepath"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sima-reports/src/pkg/render"
)

// Sink stores a finished artifact and returns where it ended up.
type Sink interface {
	Save(ctx context.Context, artifact render.Artifact) (location string, e *xerr.Error)
}

// LocalDirSink writes artifacts under Dir, overwriting files with the same name.
type LocalDirSink struct {
	Dir string
}

func (s LocalDirSink) Save(ctx context.Context, artifact render.Artifact) (location string, e *xerr.Error) {
	e = ensureOutputDirectory(s.Dir)
	if e != nil {
		return "", e
	}

	location = filepath.Join(s.Dir, artifact.FileName)
	err := os.WriteFile(location, artifact.Body, 0o644)
	if err != nil {
		e = xerr.NewError(err, "write report file", location)
		return "", e
	}

	tl.Log(tl.Info1, palette.Green, "Saved '%s'", location)
	return location, nil
}

/*
ensureOutputDirectory creates the target directory (and parents) if needed.

It uses os.MkdirAll and returns a *xerr.Error if creation fails.
*/
func ensureOutputDirectory(outputDirPath string) (e *xerr.Error) {
	err := os.MkdirAll(outputDirPath, 0o755)
	if err != nil {
		e = xerr.NewError(err, "create output directory", outputDirPath)
		return e
	}

	tl.Log(tl.Debug, palette.Blue, "Ensured output directory '%s'", outputDirPath)
	return e
}
