package middleware

import (
	"context"
	"net"
	"net/http"
	"net/url"

	"github.com/notedrop/notedrop-api/internal/contextx"
)

// safeMethod reports whether the method cannot change state and therefore
// skips the origin and csrf checks.
func safeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

// ClientIP stores the request's remote IP in the context so layers above
// net/http (huma handlers, services) can reach it. Run after chi's RealIP.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		ctx := context.WithValue(r.Context(), contextx.ClientIPKey, ip)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OriginGuard rejects state-changing requests whose Origin (or, failing
// that, Referer origin) is not in the allowlist. Browsers always attach one
// of the two on cross-site POSTs, so an empty value is also rejected.
func OriginGuard(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if safeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			value := r.Header.Get("Origin")
			if value == "" {
				if referer := r.Header.Get("Referer"); referer != "" {
					if u, err := url.Parse(referer); err == nil {
						value = u.Scheme + "://" + u.Host
					}
				}
			}
			if value == "" {
				writeProblem(w, r, http.StatusForbidden, "ORIGIN_REQUIRED", "request origin could not be determined")
				return
			}
			if _, ok := allowed[value]; !ok {
				writeProblem(w, r, http.StatusForbidden, "ORIGIN_FORBIDDEN", "request origin is not allowed")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CSRFGuard enforces the double-submit check on state-changing requests:
// the X-CSRF-Token header must equal the csrf_token cookie. The refresh
// endpoint is exempt while the caller has no refresh cookie, since with no
// session there is nothing for a forged request to ride on.
func CSRFGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if safeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		if r.URL.Path == "/auth/refresh" {
			if _, err := r.Cookie("refresh_token"); err != nil {
				next.ServeHTTP(w, r)
				return
			}
		}

		cookie, err := r.Cookie("csrf_token")
		headerToken := r.Header.Get("X-CSRF-Token")
		if err != nil || cookie.Value == "" || headerToken == "" || cookie.Value != headerToken {
			writeProblem(w, r, http.StatusForbidden, "CSRF_TOKEN_MISMATCH", "missing or mismatched csrf token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
