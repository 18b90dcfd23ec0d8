package adminapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/app"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/ledger"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gorm.io/gorm"
)

const sessionCtxKey = "ledgerSession"

// Init registers every admin API route. webserver.Init must run first.
func Init() {
	registerAuthRoutes()
	registerStatusRoutes()
	registerLedgerRoutes()
	registerProductRoutes()
	registerExportRoutes()
	registerStreamRoutes()
	registerSystemRoutes()
}

type Response struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

type Meta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Data: data})
}

func paged(c echo.Context, data interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, Response{
		Data: data,
		Meta: &Meta{Total: total, Page: page, PageSize: pageSize},
	})
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, ErrorResponse{Error: code, Message: message, Details: details})
}

// ledgerFail maps ledger error kinds to HTTP responses.
func ledgerFail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ledger.ErrAuthRequired):
		return fail(c, http.StatusUnauthorized, "AUTH_REQUIRED", "Sign in to change the ledger", nil)
	case errors.Is(err, ledger.ErrInvalidInput):
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "Invalid input", err.Error())
	case errors.Is(err, ledger.ErrInvalidReference):
		return fail(c, http.StatusNotFound, "INVALID_REFERENCE", "Referenced record not found", err.Error())
	case errors.Is(err, ledger.ErrInvalidDateRange):
		return fail(c, http.StatusBadRequest, "INVALID_DATE_RANGE", "Check-out must be after check-in", err.Error())
	case errors.Is(err, ledger.ErrDuplicateName):
		return fail(c, http.StatusConflict, "DUPLICATE_NAME", "A product with that name already exists", err.Error())
	case errors.Is(err, ledger.ErrBackendUnavailable):
		return fail(c, http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE", "Ledger store unavailable", err.Error())
	}
	return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed", err.Error())
}

func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppCtxKey).(app.AppContext)
}

func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB()
}

// requireSession resolves the ledger session of the token holder, opening
// one when the operator has none yet (for example after a restart).
func requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, found := webserver.GetClaims(c)
		if !found {
			return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing session token", nil)
		}
		appCtx := GetAppContext(c)
		s, found := appCtx.Sessions().Get(claims.UID)
		if !found {
			user, err := appCtx.Identity().User(c.Request().Context(), claims.UID)
			if err != nil {
				return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Operator not found or disabled", nil)
			}
			s, err = appCtx.Sessions().Open(c.Request().Context(), ledger.Identity{
				UID:         user.UID,
				Email:       user.Email,
				DisplayName: user.DisplayName,
			})
			if err != nil {
				return ledgerFail(c, err)
			}
		}
		c.Set(sessionCtxKey, s)
		return next(c)
	}
}

func currentSession(c echo.Context) *ledger.Session {
	return c.Get(sessionCtxKey).(*ledger.Session)
}

// logOperation records a successful mutation in the operator log.
func logOperation(c echo.Context, action, desc string) {
	s := currentSession(c)
	GetAppContext(c).LogOperation(c.Request().Context(), s.Identity().Name(), c.RealIP(), action, desc)
}

func parsePagination(c echo.Context) (int, int) {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.QueryParam("perPage"))
	if err != nil || pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}
	return page, pageSize
}

// parseTime accepts unix milliseconds or any layout dateparse understands.
// Missing values give the zero time.
func parseTime(v interface{}) (time.Time, error) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, nil
	case string:
		val = strings.TrimSpace(val)
		if val == "" {
			return time.Time{}, nil
		}
		if ms, err := strconv.ParseInt(val, 10, 64); err == nil && len(val) >= 10 {
			return time.UnixMilli(ms), nil
		}
		t, err := dateparse.ParseIn(val, time.Local)
		if err != nil {
			return time.Time{}, errors.Wrapf(ledger.ErrInvalidInput, "bad time %q", val)
		}
		return t, nil
	}
	ms, err := cast.ToInt64E(v)
	if err != nil {
		return time.Time{}, errors.Wrapf(ledger.ErrInvalidInput, "bad time %v", v)
	}
	if ms == 0 {
		return time.Time{}, nil
	}
	return time.UnixMilli(ms), nil
}
