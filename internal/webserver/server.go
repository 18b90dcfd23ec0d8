package webserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/app"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/identity"
	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	ApiPrefix   = "/api/v1"
	AppCtxKey   = "appCtx"
	UserCtxKey  = "user"
	tokenLookup = "header:Authorization:Bearer ,query:token"
)

// publicPaths are reachable without a session token.
var publicPaths = map[string]bool{
	ApiPrefix + "/auth/login":    true,
	ApiPrefix + "/auth/register": true,
	ApiPrefix + "/status":        true,
}

var server *AdminServer

type AdminServer struct {
	root   *echo.Echo
	api    *echo.Group
	appCtx app.AppContext
}

// CustomValidator plugs go-playground/validator into echo's Bind/Validate.
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Init builds the echo server. Route registration through ApiGET and
// friends must happen after Init.
func Init(appCtx app.AppContext) {
	server = NewAdminServer(appCtx)
}

func NewAdminServer(appCtx app.AppContext) *AdminServer {
	s := &AdminServer{appCtx: appCtx}
	s.root = echo.New()
	s.root.HideBanner = true
	s.root.HidePort = true
	s.root.Validator = &CustomValidator{validator: validator.New()}
	s.root.HTTPErrorHandler = errorHandler

	s.root.Use(middleware.Recover())
	s.root.Use(requestLogger())
	s.root.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppCtxKey, appCtx)
			return next(c)
		}
	})

	s.api = s.root.Group(ApiPrefix)
	s.api.Use(echojwt.WithConfig(echojwt.Config{
		TokenLookup: tokenLookup,
		ContextKey:  UserCtxKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return appCtx.Identity().Authenticate(c.Request().Context(), auth)
		},
		Skipper: func(c echo.Context) bool {
			return publicPaths[c.Path()]
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, identity.ErrTokenRevoked) {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error":   "AUTH_REQUIRED",
					"message": "Signed out, sign in again",
				})
			}
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"error":   "UNAUTHORIZED",
				"message": "Missing or invalid session token",
			})
		},
	}))
	return s
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("namespace", "webserver"),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				zap.L().Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			zap.L().Debug("request", fields...)
			return nil
		},
	})
}

func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	_ = c.JSON(code, map[string]interface{}{
		"error":   strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_")),
		"message": msg,
	})
}

// Root returns the echo instance, mainly for tests.
func Root() *echo.Echo {
	return server.root
}

func (s *AdminServer) Start() error {
	cfg := s.appCtx.Config()
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	zap.S().Infof("Admin server listening on %s", addr)
	err := s.root.Start(addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func Listen() error {
	return server.Start()
}

func Shutdown(ctx context.Context) error {
	if server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return server.root.Shutdown(ctx)
}

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}

// GetClaims returns the session token claims of an authenticated request.
func GetClaims(c echo.Context) (*identity.Claims, bool) {
	claims, ok := c.Get(UserCtxKey).(*identity.Claims)
	return claims, ok && claims != nil
}
