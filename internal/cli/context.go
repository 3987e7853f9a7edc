// Package cli provides the command-line interface for coursecrawl.
package cli

import (
	"sync"

	"github.com/lionpath-labs/coursecrawl/internal/app"
)

var (
	appMu     sync.Mutex
	globalApp *app.Application
)

func setApp(a *app.Application) {
	appMu.Lock()
	defer appMu.Unlock()
	globalApp = a
}

func getApp() *app.Application {
	appMu.Lock()
	defer appMu.Unlock()
	return globalApp
}
