// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codeberg.org/oliverandrich/school-auth/internal/appcontext"
	"codeberg.org/oliverandrich/school-auth/internal/handlers"
	"codeberg.org/oliverandrich/school-auth/internal/i18n"
	"codeberg.org/oliverandrich/school-auth/internal/middleware"
	"codeberg.org/oliverandrich/school-auth/internal/repository"
	authsvc "codeberg.org/oliverandrich/school-auth/internal/services/auth"
	"codeberg.org/oliverandrich/school-auth/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = i18n.Init()
}

type testAPI struct {
	e    *echo.Echo
	repo *repository.Repository
}

// newTestAPI wires the handlers the way the server does, without the
// ambient middleware.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	tokens := testutil.NewTestTokens(t)
	svc, err := authsvc.NewService(repo, testutil.NewTestHasher(t), tokens, nil)
	require.NoError(t, err)

	e := echo.New()
	e.HTTPErrorHandler = handlers.ErrorHandler(true)
	e.Use(appcontext.Middleware())
	e.Use(middleware.Locale())

	h := handlers.New(repo)
	ah := handlers.NewAuth(svc)
	uh := handlers.NewUsers(svc)

	e.GET("/health", h.Health)
	e.POST("/auth/register", ah.Register)
	e.POST("/auth/login", ah.Login)
	e.POST("/auth/refresh", ah.Refresh)

	users := e.Group("/users", middleware.RequireBearer(tokens))
	users.GET("/me", uh.Me)
	users.PATCH("/me", uh.UpdateMe)
	users.PUT("/me/password", uh.ChangePassword)
	users.DELETE("/me", uh.DeleteMe)

	return &testAPI{e: e, repo: repo}
}

func (a *testAPI) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("database is locked") }

func TestHealth(t *testing.T) {
	h := handlers.New(nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Health(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealth_WithDatabase(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealth_DatabaseDown(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = handlers.ErrorHandler(false)
	e.GET("/health", handlers.New(failingPinger{}).Health)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"An internal server error occurred"}`, rec.Body.String())
}
