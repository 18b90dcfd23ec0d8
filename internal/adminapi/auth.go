package adminapi

import (
	"net/http"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/identity"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email       string `json:"email" validate:"required"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"displayName" validate:"max=100"`
}

func registerAuthRoutes() {
	webserver.ApiPOST("/auth/login", loginHandler)
	webserver.ApiPOST("/auth/register", registerHandler)
	webserver.ApiPOST("/auth/logout", logoutHandler)
	webserver.ApiGET("/auth/me", currentUserHandler)
}

func authFail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect email or password", nil)
	case errors.Is(err, identity.ErrInvalidEmail):
		return fail(c, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email address", nil)
	case errors.Is(err, identity.ErrWeakPassword):
		return fail(c, http.StatusBadRequest, "WEAK_PASSWORD", err.Error(), nil)
	case errors.Is(err, identity.ErrEmailInUse):
		return fail(c, http.StatusConflict, "EMAIL_IN_USE", "Email already registered", nil)
	case errors.Is(err, identity.ErrRegisterDisabled):
		return fail(c, http.StatusForbidden, "REGISTER_DISABLED", "Registration is disabled", nil)
	}
	zap.L().Error("auth request failed", zap.String("namespace", "adminapi"), zap.Error(err))
	return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed", nil)
}

func loginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request parameters", nil)
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Email and password are required", err.Error())
	}
	appCtx := GetAppContext(c)
	result, err := appCtx.Identity().SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return authFail(c, err)
	}
	appCtx.LogOperation(c.Request().Context(), result.User.Email, c.RealIP(), "login", "operator signed in")
	return ok(c, result)
}

func registerHandler(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request parameters", nil)
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Email and password are required", err.Error())
	}
	appCtx := GetAppContext(c)
	result, err := appCtx.Identity().SignUp(c.Request().Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		return authFail(c, err)
	}
	appCtx.LogOperation(c.Request().Context(), result.User.Email, c.RealIP(), "register", "operator registered")
	return c.JSON(http.StatusCreated, Response{Data: result})
}

func logoutHandler(c echo.Context) error {
	claims, found := webserver.GetClaims(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing session token", nil)
	}
	appCtx := GetAppContext(c)
	if err := appCtx.Identity().SignOut(c.Request().Context(), claims.UID); err != nil {
		zap.L().Error("sign out failed", zap.String("namespace", "adminapi"), zap.String("uid", claims.UID), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Sign out failed", nil)
	}
	appCtx.LogOperation(c.Request().Context(), claims.Email, c.RealIP(), "logout", "operator signed out")
	return ok(c, map[string]interface{}{"uid": claims.UID})
}

func currentUserHandler(c echo.Context) error {
	claims, found := webserver.GetClaims(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing session token", nil)
	}
	user, err := GetAppContext(c).Identity().User(c.Request().Context(), claims.UID)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Operator not found or disabled", nil)
	}
	return ok(c, user)
}
