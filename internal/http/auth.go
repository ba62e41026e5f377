package http

import (
	"net/http"
	"time"

	"github.com/wChoros/OpenEduLog-backend/internal/auth"
	"github.com/wChoros/OpenEduLog-backend/internal/model"
)

const (
	sessionCookieName = "session_token"
	roleCookieName    = "role"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	if _, err := s.auth.Register(r.Context(), in); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "User created")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	token, role, err := s.auth.Login(r.Context(), in)
	if err != nil {
		loginsTotal.WithLabelValues("failure").Inc()
		writeError(w, err)
		return
	}
	loginsTotal.WithLabelValues("success").Inc()

	s.setSessionCookies(w, token, role)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Logged In",
		"role":    string(role),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	err := s.auth.Logout(r.Context(), token)
	// The cookie is cleared even when the session is already gone so
	// the client does not keep replaying a dead token.
	s.clearSessionCookies(w)
	if err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Logged Out")
}

// setSessionCookies sets the HttpOnly session cookie and a readable
// role hint for the frontend. The role cookie carries no authority;
// every request is checked against the server-side session.
func (s *Server) setSessionCookies(w http.ResponseWriter, token string, role model.Role) {
	expires := time.Now().Add(s.auth.TTL())
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   s.cfg.CookieDomain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     roleCookieName,
		Value:    string(role),
		Path:     "/",
		Domain:   s.cfg.CookieDomain,
		Expires:  expires,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{sessionCookieName, roleCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   s.cfg.CookieDomain,
			MaxAge:   -1,
			HttpOnly: name == sessionCookieName,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
