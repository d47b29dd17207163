package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimitConfig limits credential endpoints per client ip and email.
type RateLimitConfig struct {
	Rate      float64
	Burst     int
	ExpiresIn time.Duration
}

const maxPeekBody = 64 << 10

// CredentialRateLimiter returns the limiter applied to sign-in, signup and
// password recovery endpoints. Every call returns a limiter with its own store.
func CredentialRateLimiter(cfg RateLimitConfig) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.Rate),
				Burst:     cfg.Burst,
				ExpiresIn: cfg.ExpiresIn,
			},
		),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			id := c.RealIP()
			if email := emailFromBody(c); email != "" {
				id += ":" + email
			}
			return id, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, echo.Map{
				"ok":    false,
				"error": "Unable to identify client",
			})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"ok":    false,
				"error": "Too many requests. Please try again later.",
			})
		},
	})
}

// emailFromBody peeks at the email field of a JSON or form body and restores
// the body for the handler.
func emailFromBody(c echo.Context) string {
	req := c.Request()
	if req.Method != http.MethodPost || req.Body == nil {
		return ""
	}

	if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return strings.ToLower(c.FormValue("email"))
	}

	original := req.Body
	body, err := io.ReadAll(io.LimitReader(original, maxPeekBody))
	req.Body = readCloser{io.MultiReader(bytes.NewReader(body), original), original}
	if err != nil {
		return ""
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Email))
}

type readCloser struct {
	io.Reader
	io.Closer
}
