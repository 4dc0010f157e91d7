package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/scribeapp/scribe-web/pkg/session"
	"github.com/scribeapp/scribe-web/pkg/store"
	"github.com/scribeapp/scribe-web/pkg/upstream"
)

const defaultLanding = "/dashboard"

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "home", pageData{User: session.FromRequest(r).User})
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "login", pageData{
		User:       session.FromRequest(r).User,
		RedirectTo: r.URL.Query().Get("redirectTo"),
	})
}

// handleLogin exchanges the submitted credentials for a token. Failures
// re-render the form with the username echoed back, never the password.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "login", pageData{Error: "Invalid form submission."})
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, err := s.api.Authenticate(r.Context(), username, password)
	if err != nil {
		status, msg := loginFailure(err)
		s.render(w, status, "login", pageData{
			Error:      msg,
			Username:   username,
			RedirectTo: r.URL.Query().Get("redirectTo"),
		})
		return
	}

	s.cookies.Write(w, token)
	http.Redirect(w, r, safeRedirect(r.URL.Query().Get("redirectTo")), http.StatusSeeOther)
}

// loginFailure maps an authentication error to a status and a message
// that does not reveal which credential was wrong.
func loginFailure(err error) (int, string) {
	var se *upstream.StatusError
	switch {
	case errors.As(err, &se) && se.Status == http.StatusUnauthorized:
		return http.StatusUnauthorized, "Invalid username or password."
	case errors.As(err, &se) && se.Status >= 500:
		return http.StatusBadGateway, "Server error. Please try again later."
	case errors.As(err, &se):
		return se.Status, "Login failed. Please try again."
	default:
		return http.StatusBadGateway, "Server error. Please try again later."
	}
}

// safeRedirect keeps post-login redirects on this site. Anything that
// is not a plain local path falls back to the landing page.
func safeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return defaultLanding
	}
	return target
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "register", pageData{User: session.FromRequest(r).User})
}

// handleRegister creates the account upstream, then chains straight
// into login with the same credentials. If that second call fails the
// account exists but the user sees a registration error; there is no
// rollback.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "register", pageData{Error: "Invalid form submission."})
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	email := r.PostFormValue("email")
	pfpURL := r.PostFormValue("pfp_url")

	payload, err := json.Marshal(map[string]string{
		"username": username,
		"email":    email,
		"password": password,
		"pfp_url":  pfpURL,
	})
	if err != nil {
		s.render(w, http.StatusInternalServerError, "register", pageData{Error: "Registration failed."})
		return
	}

	resp, err := s.api.Forward(r.Context(), "", http.MethodPost, "/users/register", bytes.NewReader(payload))
	if err != nil {
		s.render(w, http.StatusBadGateway, "register", pageData{
			Error:    "Server error. Please try again later.",
			Username: username,
		})
		return
	}
	if !resp.OK() {
		s.render(w, resp.Status, "register", pageData{
			Error:    registerFailure(resp),
			Username: username,
		})
		return
	}

	token, err := s.api.Authenticate(r.Context(), username, password)
	if err != nil {
		status, msg := loginFailure(err)
		s.render(w, status, "register", pageData{Error: msg, Username: username})
		return
	}

	s.cookies.Write(w, token)
	http.Redirect(w, r, defaultLanding, http.StatusSeeOther)
}

func registerFailure(resp *upstream.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return "Registration failed. Please try again."
}

// handleLogout expires the cookie and sends the browser home. The token
// stays valid upstream unless revocation is configured; revocation is
// best-effort and never blocks the logout.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.cfg.RevokeOnLogout {
		if sc := session.FromRequest(r); sc.Token != "" {
			if err := s.api.Revoke(r.Context(), sc.Token); err != nil {
				s.logger.Warn("token revocation failed", "err", err)
			}
		}
	}

	s.cookies.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleDashboard loads notes and folders with two independent reads.
// Either may fail without blocking the other; a failed read degrades to
// an empty list plus a page notice.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sc := session.FromRequest(r)

	data := pageData{User: sc.User}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		notes, err := s.api.NotesForUser(r.Context(), sc.Token, sc.User.ID)
		if err != nil {
			s.logger.Warn("notes fetch failed", "user_id", sc.User.ID, "err", err)
			data.NotesErr = "Failed to fetch notes."
			return
		}
		data.Notes = notes
	}()
	go func() {
		defer wg.Done()
		folders, err := s.api.FoldersForUser(r.Context(), sc.Token, sc.User.ID)
		if err != nil {
			s.logger.Warn("folders fetch failed", "user_id", sc.User.ID, "err", err)
			data.FoldersErr = "Failed to fetch folders."
			return
		}
		data.Folders = folders
	}()
	wg.Wait()

	s.render(w, http.StatusOK, "dashboard", data)
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "account", pageData{User: session.FromRequest(r).User})
}

// refreshStores re-reads notes and folders into a live session's
// stores. Used by the live channel; failures leave the previous values
// in place.
func (s *Server) refreshStores(ctx context.Context, sc session.Context, sess *store.Session) {
	if notes, err := s.api.NotesForUser(ctx, sc.Token, sc.User.ID); err == nil {
		sess.Notes.Set(notes)
	} else {
		s.logger.Warn("live notes refresh failed", "err", err)
	}
	if folders, err := s.api.FoldersForUser(ctx, sc.Token, sc.User.ID); err == nil {
		sess.Folders.Set(folders)
	} else {
		s.logger.Warn("live folders refresh failed", "err", err)
	}
}
