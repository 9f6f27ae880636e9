// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/oliverandrich/school-auth/internal/i18n"
	"codeberg.org/oliverandrich/school-auth/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocale(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"id-ID,id;q=0.9", "id"},
		{"de-DE", "en"},
		{"en-US,en;q=0.8", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Accept-Language", tt.header)
			c := e.NewContext(req, httptest.NewRecorder())

			var got string
			err := middleware.Locale()(func(c echo.Context) error {
				got = i18n.GetLocale(c.Request().Context())
				return nil
			})(c)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
