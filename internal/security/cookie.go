package security

import (
	"net/http"
	"time"
)

// SessionCookieName is the single cookie carrying the session token. Its
// presence or absence is the only authentication signal at the transport
// layer.
const SessionCookieName = "session"

type CookieManager struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func NewCookieManager(domain string, secure bool, sameSite string) *CookieManager {
	mode := http.SameSiteLaxMode
	switch sameSite {
	case "strict":
		mode = http.SameSiteStrictMode
	case "none":
		mode = http.SameSiteNoneMode
	}
	return &CookieManager{Domain: domain, Secure: secure, SameSite: mode}
}

func (m *CookieManager) SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   m.Domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: m.SameSite,
	})
}

// ClearSessionCookie is idempotent; clearing an absent cookie is fine.
func (m *CookieManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: m.SameSite,
	})
}

func GetCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
