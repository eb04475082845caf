/*
Package setup reads the configuration file and hands each section to the
package that owns it.

Section names: "store", "report", "archive", "email", "echo_middleware"
and "scheduler".
*/
package setup

import (
	"sima-reports/src/pkg/config"
	echomw "sima-reports/src/pkg/echo-middleware"
	"sima-reports/src/pkg/email"
	"sima-reports/src/pkg/report"
	"sima-reports/src/pkg/scheduler"
	"sima-reports/src/pkg/store"
)

func InitializeConfig(configPath string) {
	config.InitializeConfig(configPath)
	ApplySections()
}

// ApplySections initializes every package from the loaded sections.
func ApplySections() {
	var storeConfig *store.Config
	config.Section("store", &storeConfig)
	store.InitializeConfig(storeConfig)

	var reportConfig *report.Config
	config.Section("report", &reportConfig)
	report.InitializeConfig(reportConfig)

	var archiveConfig *report.ArchiveConfig
	config.Section("archive", &archiveConfig)
	report.InitializeArchiveConfig(archiveConfig)

	var emailConfig *email.Config
	config.Section("email", &emailConfig)
	email.InitializeConfig(emailConfig)

	var middlewareConfig *echomw.Config
	config.Section("echo_middleware", &middlewareConfig)
	echomw.InitializeConfig(middlewareConfig)

	var schedulerConfig *scheduler.Config
	config.Section("scheduler", &schedulerConfig)
	scheduler.InitializeConfig(schedulerConfig)
}
