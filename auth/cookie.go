package auth

import (
	"net/http"
	"time"
)

const DefaultCookieName = "aventus_token"

// CookieConfig holds the attributes shared by the set and clear variants of the auth cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

func (c CookieConfig) base() *http.Cookie {
	name := c.Name
	if name == "" {
		name = DefaultCookieName
	}
	return &http.Cookie{
		Name:     name,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetCookie stores token in an HTTP-only cookie that lives as long as the token.
func SetCookie(w http.ResponseWriter, c CookieConfig, token string) {
	cookie := c.base()
	cookie.Value = token
	cookie.MaxAge = int(TokenTTL / time.Second)
	cookie.Expires = time.Now().Add(TokenTTL)
	http.SetCookie(w, cookie)
}

// ClearCookie expires the auth cookie with the same attributes it was set with.
func ClearCookie(w http.ResponseWriter, c CookieConfig) {
	cookie := c.base()
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)
}

// TokenFromRequest returns the token from the auth cookie, falling back to an
// Authorization: Bearer header. It returns "" when neither is present.
func TokenFromRequest(r *http.Request, c CookieConfig) string {
	if cookie, err := r.Cookie(c.base().Name); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
