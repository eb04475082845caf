package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sima-reports/src/pkg/config"
	echomw "sima-reports/src/pkg/echo-middleware"
	"sima-reports/src/pkg/report"
	"sima-reports/src/pkg/server"
	"sima-reports/src/pkg/setup"
	"sima-reports/src/pkg/store"
)

func main() {
	configPath := flag.String("config", "./cfg/config.json", "Path to the JSON or YAML config file")
	flag.Parse()

	setup.InitializeConfig(*configPath)
	config.CheckIfEnvVarsPresent(echomw.EnvBearerToken)

	source, e := store.Open()
	if e != nil {
		e.QuitIf(xerr.ErrorTypeError)
	}
	defer source.Close()

	generator := report.NewGeneratorFromConfig(source)
	api := server.New(source, generator, server.OptionsFromConfig(os.Getenv(echomw.EnvBearerToken)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	address := net.JoinHostPort(echomw.Cfg.Address, fmt.Sprint(echomw.Cfg.Port))
	go func() {
		err := api.Start(address)
		xerr.QuitIfError(err, "start HTTP server")
	}()

	<-ctx.Done()
	tl.Log(tl.Notice, palette.Yellow, "Shutting down %s", "HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := api.Shutdown(shutdownCtx)
	xerr.QuitIfError(err, "shut down HTTP server")
}
