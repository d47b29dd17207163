package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/constants"
)

// DeviceIDHeader lets non-browser clients pass their device id.
const DeviceIDHeader = "X-Device-Id"

const (
	maxDeviceIDLength = 128
	deviceCookieTTL   = 365 * 24 * time.Hour
	oauthStateKey     = "state"
	oauthStateMaxAge  = 10 * 60
)

// ErrOAuthStateMissing is returned when no OAuth state was stored for the browser.
var ErrOAuthStateMissing = errors.New("oauth state missing")

// CookieOptions are shared by every cookie the service sets.
type CookieOptions struct {
	Secure bool
	Domain string
}

// SetIdentityCookie stores the identity token in an HttpOnly cookie.
func SetIdentityCookie(c echo.Context, token string, expiresAt time.Time, opts CookieOptions) {
	c.SetCookie(&http.Cookie{
		Name:     constants.IdentityCookieName,
		Value:    token,
		Path:     "/",
		Domain:   opts.Domain,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearIdentityCookie expires the identity cookie.
func ClearIdentityCookie(c echo.Context, opts CookieOptions) {
	c.SetCookie(&http.Cookie{
		Name:     constants.IdentityCookieName,
		Value:    "",
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// DeviceMiddleware reads the device id from the device cookie or the
// X-Device-Id header. Browsers without one get a new id in a long-lived cookie.
func DeviceMiddleware(opts CookieOptions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			deviceID := ""
			if cookie, err := c.Cookie(constants.DeviceCookieName); err == nil {
				deviceID = cookie.Value
			}
			if deviceID == "" {
				deviceID = c.Request().Header.Get(DeviceIDHeader)
			}

			if deviceID == "" || len(deviceID) > maxDeviceIDLength {
				deviceID = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     constants.DeviceCookieName,
					Value:    deviceID,
					Path:     "/",
					Domain:   opts.Domain,
					Expires:  time.Now().Add(deviceCookieTTL),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(DeviceIDKey, deviceID)
			return next(c)
		}
	}
}

// DeviceIDFrom returns the device id set by DeviceMiddleware.
func DeviceIDFrom(c echo.Context) string {
	deviceID, _ := c.Get(DeviceIDKey).(string)
	return deviceID
}

// SaveOAuthState remembers the OAuth state for the browser in the session store.
func SaveOAuthState(c echo.Context, state string, opts CookieOptions) error {
	sess, err := session.Get(constants.OAuthSessionName, c)
	if sess == nil {
		return err
	}

	sess.Options = &sessions.Options{
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   oauthStateMaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	sess.Values[oauthStateKey] = state
	return sess.Save(c.Request(), c.Response())
}

// ConsumeOAuthState returns the stored OAuth state and deletes the session.
func ConsumeOAuthState(c echo.Context, opts CookieOptions) (string, error) {
	sess, err := session.Get(constants.OAuthSessionName, c)
	if sess == nil {
		return "", err
	}

	state, _ := sess.Values[oauthStateKey].(string)

	sess.Values = make(map[interface{}]interface{})
	sess.Options = &sessions.Options{
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return "", err
	}

	if state == "" {
		return "", ErrOAuthStateMissing
	}
	return state, nil
}
