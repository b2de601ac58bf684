package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/student-roster/internal/domain"
	"github.com/msomdec/student-roster/internal/service"
	"github.com/msomdec/student-roster/internal/view"
)

// AdminHandler handles admin login and logout.
type AdminHandler struct {
	auth         *service.AuthService
	limiter      *service.TokenBucket
	cookieSecure bool
}

// NewAdminHandler creates a new AdminHandler. limiter may be nil.
func NewAdminHandler(auth *service.AuthService, limiter *service.TokenBucket, cookieSecure bool) *AdminHandler {
	return &AdminHandler{auth: auth, limiter: limiter, cookieSecure: cookieSecure}
}

// HandleLoginPage renders the login form.
func (h *AdminHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	view.LoginPage("").Render(r.Context(), w)
}

// HandleLogin processes the login form and sets the admin cookie.
// POST /admin/login (form: password)
func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow(clientIP(r)) {
		w.WriteHeader(http.StatusTooManyRequests)
		view.LoginPage("Too many login attempts. Please wait and try again.").Render(r.Context(), w)
		return
	}

	if !h.auth.Enabled() {
		w.WriteHeader(http.StatusForbidden)
		view.LoginPage("Admin login is disabled.").Render(r.Context(), w)
		return
	}

	token, err := h.auth.Login(r.FormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			w.WriteHeader(http.StatusUnauthorized)
			view.LoginPage("Invalid password.").Render(r.Context(), w)
			return
		}
		slog.Error("admin login", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     adminCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 24 hours
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the admin cookie.
func (h *AdminHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
