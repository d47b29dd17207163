package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/boj/redistore"
	redigo "github.com/gomodule/redigo/redis"
	"github.com/gorilla/sessions"
	appmw "github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/http/middleware"
)

// sessionStoreMaxAge bounds short-lived browser state such as the OAuth state.
const sessionStoreMaxAge = 10 * 60

// NewSessionStore creates the Redis backed gorilla session store.
func NewSessionStore(pool *redigo.Pool, secret, keyPrefix string, cookies appmw.CookieOptions) (*redistore.RediStore, error) {
	if secret == "" {
		return nil, errors.New("session store secret is empty")
	}

	store, err := redistore.NewRediStoreWithPool(pool, []byte(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to create redis session store: %w", err)
	}

	store.SetKeyPrefix(keyPrefix)
	store.SetMaxAge(sessionStoreMaxAge)
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   cookies.Domain,
		MaxAge:   sessionStoreMaxAge,
		HttpOnly: true,
		Secure:   cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	return store, nil
}
