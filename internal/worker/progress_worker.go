package worker

import (
	"github.com/spec-kit/history-importer/internal/service"
)

// StartProgressWorker registers progress handlers.
func StartProgressWorker(reporter *service.ProgressReporter) {
	if reporter == nil {
		return
	}
	reporter.RegisterHandlers()
}
