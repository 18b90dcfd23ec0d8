package adminapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/ledger"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/webserver"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const streamHeartbeat = 25 * time.Second

func registerStreamRoutes() {
	webserver.ApiGET("/ledger/stream", streamBalance, requireSession)
}

// streamBalance pushes the balance as server-sent events: once on connect
// and again after every ledger change. Slow clients only see the latest
// balance.
func streamBalance(c echo.Context) error {
	s := currentSession(c)
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	updates := make(chan ledger.Balance, 1)
	unsub := s.OnChange(func(b ledger.Balance) {
		for {
			select {
			case updates <- b:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer unsub()

	if err := writeEvent(res, "balance", s.Balance()); err != nil {
		return nil
	}
	ticker := time.NewTicker(streamHeartbeat)
	defer ticker.Stop()
	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case b := <-updates:
			if err := writeEvent(res, "balance", b); err != nil {
				return nil
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func writeEvent(res *echo.Response, event string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err = fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
