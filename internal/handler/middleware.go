package handler

import (
	"net"
	"net/http"
	"slices"
	"strings"

	"github.com/msomdec/student-roster/internal/service"
)

const adminCookie = "admin_token"

// isAdmin reports whether the request carries a valid admin token, either
// in the admin_token cookie or as a Bearer Authorization header.
func isAdmin(r *http.Request, auth *service.AuthService) bool {
	token := ""
	if c, err := r.Cookie(adminCookie); err == nil {
		token = c.Value
	} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	}
	if token == "" {
		return false
	}
	return auth.ValidateToken(token) == nil
}

// RequireAdmin rejects requests without a valid admin token with 401.
func RequireAdmin(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(r, auth) {
			writeError(w, http.StatusUnauthorized, "Admin authentication required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SecurityHeaders sets conservative browser security headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

// AllowedHosts rejects requests whose Host is not in hosts with 400.
// "*" allows any host; an entry starting with "." also matches its
// subdomains.
func AllowedHosts(hosts []string, next http.Handler) http.Handler {
	if len(hosts) == 0 || slices.Contains(hosts, "*") {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hostAllowed(hosts, r.Host) {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func hostAllowed(hosts []string, host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)
	for _, allowed := range hosts {
		allowed = strings.ToLower(allowed)
		if strings.HasPrefix(allowed, ".") {
			if host == allowed[1:] || strings.HasSuffix(host, allowed) {
				return true
			}
			continue
		}
		if host == allowed {
			return true
		}
	}
	return false
}

// clientIP returns the remote address without its port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
