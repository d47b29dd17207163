package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	domainErrors "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/errors"
	"go.uber.org/zap"
)

func TestHTTPErrorHandler(t *testing.T) {
	e := newTestEcho(nil)
	e.HTTPErrorHandler = NewHTTPErrorHandler(zap.NewNop())
	e.GET("/boom", func(c echo.Context) error { return errors.New("pq: password authentication failed") })
	e.GET("/teapot", func(c echo.Context) error { return echo.NewHTTPError(http.StatusConflict, "already there") })
	e.GET("/policy", func(c echo.Context) error { return domainErrors.ErrEmailInUse })

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/missing", http.StatusNotFound, `{"ok":false,"error":"Not Found"}`},
		{"/boom", http.StatusInternalServerError, `{"ok":false,"error":"Internal server error"}`},
		{"/teapot", http.StatusConflict, `{"ok":false,"error":"already there"}`},
		{"/policy", http.StatusConflict, `{"ok":false,"error":"Email is already in use"}`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := doJSON(e, http.MethodGet, tt.path, "")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
