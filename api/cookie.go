package api

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const cookieTokenKey = "token"

// CookieSessions keeps the session token in a signed HttpOnly cookie next to the bearer header.
type CookieSessions struct {
	store  *sessions.CookieStore
	name   string
	secure bool
}

func NewCookieSessions(secret, name string, secure bool) *CookieSessions {
	return &CookieSessions{
		store:  sessions.NewCookieStore([]byte(secret)),
		name:   name,
		secure: secure,
	}
}

func (s *CookieSessions) options(maxAge int) *sessions.Options {
	sameSite := http.SameSiteLaxMode
	if s.secure {
		sameSite = http.SameSiteNoneMode
	}
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: sameSite,
	}
}

func (s *CookieSessions) Save(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) error {
	sess, _ := s.store.New(r, s.name)
	sess.Values[cookieTokenKey] = token
	sess.Options = s.options(int(ttl.Seconds()))
	return sess.Save(r, w)
}

func (s *CookieSessions) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.New(r, s.name)
	sess.Options = s.options(-1)
	return sess.Save(r, w)
}

// Token reads the session token from the cookie, or "" when absent or tampered with.
func (s *CookieSessions) Token(r *http.Request) string {
	sess, err := s.store.Get(r, s.name)
	if err != nil {
		return ""
	}
	token, _ := sess.Values[cookieTokenKey].(string)
	return token
}
