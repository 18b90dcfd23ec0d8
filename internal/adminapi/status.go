package adminapi

import (
	"time"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/webserver"
	"github.com/labstack/echo/v4"
)

var startedAt = time.Now()

func registerStatusRoutes() {
	webserver.ApiGET("/status", statusHandler)
}

// statusHandler reports liveness and whether the monitor sees the store.
func statusHandler(c echo.Context) error {
	appCtx := GetAppContext(c)
	cfg := appCtx.Config()
	connected := false
	if m := appCtx.Monitor(); m != nil {
		connected = m.Connected()
	}
	return ok(c, map[string]interface{}{
		"appid":     cfg.System.Appid,
		"backend":   cfg.Ledger.Backend,
		"connected": connected,
		"sessions":  appCtx.Sessions().Len(),
		"uptime":    time.Since(startedAt).Round(time.Second).String(),
	})
}
