package middleware

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"go-blog-rbac-service/internal/observability"
)

// RouteClass partitions the URL space for the request gate.
type RouteClass int

const (
	// RouteOpen routes are untouched by the gate.
	RouteOpen RouteClass = iota
	// RouteAuthPage routes are the login and signup pages, which bounce
	// already-authenticated users to the dashboard.
	RouteAuthPage
	// RouteProtected routes require a valid session.
	RouteProtected
)

const (
	loginPath     = "/login"
	signupPath    = "/signup"
	dashboardPath = "/dashboard"
)

// Classify maps a request path to its gate class. Classification is pure so
// the route state machine can be tested without a server.
func Classify(rawPath string) RouteClass {
	p := path.Clean("/" + rawPath)
	switch p {
	case loginPath, signupPath:
		return RouteAuthPage
	}
	if p == dashboardPath || strings.HasPrefix(p, dashboardPath+"/") {
		return RouteProtected
	}
	return RouteOpen
}

// RequestGate enforces the public/protected partition with redirects. It
// consults only the verified session claims, never the permission set; the
// handlers behind the gate re-check grants themselves.
func RequestGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class := Classify(r.URL.Path)
		authenticated := SessionClaimsFromContext(r.Context()) != nil

		switch class {
		case RouteProtected:
			if !authenticated {
				observability.RecordGateDecision(r.Context(), "protected", "redirect_login")
				target := loginPath + "?callbackUrl=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			observability.RecordGateDecision(r.Context(), "protected", "pass")
		case RouteAuthPage:
			if authenticated {
				observability.RecordGateDecision(r.Context(), "auth_page", "redirect_dashboard")
				http.Redirect(w, r, dashboardPath, http.StatusFound)
				return
			}
			observability.RecordGateDecision(r.Context(), "auth_page", "pass")
		default:
			observability.RecordGateDecision(r.Context(), "open", "pass")
		}
		next.ServeHTTP(w, r)
	})
}
