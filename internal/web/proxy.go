package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/scribeapp/scribe-web/pkg/session"
)

// envelope mirrors the upstream API's JSON wrapping.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, data envelope) {
	js, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "failed to marshal JSON", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}

// relay forwards one call to the API and mirrors its response: the raw
// body on 2xx, {"error": <upstream body>} with the mirrored status
// otherwise, and a 500 {"error": ...} when the API can't be reached.
func (s *Server) relay(w http.ResponseWriter, r *http.Request, method, path string, body io.Reader, failMsg string) {
	sc := session.FromRequest(r)

	resp, err := s.api.Forward(r.Context(), sc.Token, method, path, body)
	if err != nil {
		s.logger.Warn("proxy call failed", "method", method, "path", path, "err", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"error": failMsg})
		return
	}

	if !resp.OK() {
		if json.Valid(resp.Body) {
			writeJSON(w, resp.Status, envelope{"error": json.RawMessage(resp.Body)})
		} else {
			writeJSON(w, resp.Status, envelope{"error": failMsg})
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}

// idParam reads a numeric {id} route parameter. The API addresses
// everything by integer id; anything else is a bad request.
func idParam(r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (s *Server) proxyNoteAdd(w http.ResponseWriter, r *http.Request) {
	s.relay(w, r, http.MethodPost, "/notes", r.Body, "Failed to add note")
}

func (s *Server) proxyNoteUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, envelope{"error": "Note ID is required"})
		return
	}
	s.relay(w, r, http.MethodPatch, "/notes/"+strconv.FormatInt(id, 10), r.Body, "Failed to update note")
}

func (s *Server) proxyNoteDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, envelope{"error": "Note ID is required"})
		return
	}
	s.relay(w, r, http.MethodDelete, "/notes/"+strconv.FormatInt(id, 10), nil, "Failed to delete note")
}

func (s *Server) proxyNotesAll(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, envelope{"error": "User ID is required"})
		return
	}
	s.relay(w, r, http.MethodGet, "/user-notes/"+strconv.FormatInt(id, 10), nil, "Failed to fetch notes")
}

func (s *Server) proxyFolderAdd(w http.ResponseWriter, r *http.Request) {
	s.relay(w, r, http.MethodPost, "/folders", r.Body, "Failed to add folder")
}

func (s *Server) proxyFolderDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, envelope{"error": "Folder ID is required"})
		return
	}
	s.relay(w, r, http.MethodDelete, "/folders/"+strconv.FormatInt(id, 10), nil, "Failed to delete folder")
}

func (s *Server) proxyFoldersAll(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, envelope{"error": "User ID is required"})
		return
	}
	s.relay(w, r, http.MethodGet, "/user-folders/"+strconv.FormatInt(id, 10), nil, "Failed to fetch folders")
}

func (s *Server) proxyUserUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, envelope{"error": "User ID is required"})
		return
	}
	s.relay(w, r, http.MethodPatch, "/users/"+strconv.FormatInt(id, 10), r.Body, "Failed to update user")
}

// proxyUserPassword reshapes {new_password} into the {id, new_password}
// payload the API expects, then relays. On success the upstream body is
// replaced with {"success": true}.
func (s *Server) proxyUserPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, envelope{"error": "User ID is required"})
		return
	}

	var body struct {
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{"error": "Invalid request payload"})
		return
	}

	payload, err := json.Marshal(map[string]any{
		"id":           id,
		"new_password": body.NewPassword,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, envelope{"error": "Failed to update password"})
		return
	}

	sc := session.FromRequest(r)
	resp, err := s.api.Forward(r.Context(), sc.Token, http.MethodPatch,
		"/users/password/"+strconv.FormatInt(id, 10), bytes.NewReader(payload))
	if err != nil || !resp.OK() {
		writeJSON(w, http.StatusInternalServerError, envelope{"error": "Failed to update password"})
		return
	}

	writeJSON(w, http.StatusOK, envelope{"success": true})
}

// proxyUserRegister relays registration and, on success, chains a login
// with the same credentials so the new account lands authenticated. A
// failed chained login is reported as the registration failure even
// though the account now exists.
func (s *Server) proxyUserRegister(w http.ResponseWriter, r *http.Request) {
	var form struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
		PfpURL   string `json:"pfp_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{"error": "Invalid request payload"})
		return
	}

	payload, err := json.Marshal(map[string]string{
		"username": form.Username,
		"email":    form.Email,
		"password": form.Password,
		"pfp_url":  form.PfpURL,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, envelope{"error": "Failed to register user"})
		return
	}

	resp, err := s.api.Forward(r.Context(), "", http.MethodPost, "/users/register", bytes.NewReader(payload))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, envelope{"error": "Failed to register user"})
		return
	}
	if !resp.OK() {
		if json.Valid(resp.Body) {
			writeJSON(w, resp.Status, envelope{"error": json.RawMessage(resp.Body)})
		} else {
			writeJSON(w, resp.Status, envelope{"error": "Failed to register user"})
		}
		return
	}

	token, err := s.api.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		status, msg := loginFailure(err)
		writeJSON(w, status, envelope{"error": msg})
		return
	}

	s.cookies.Write(w, token)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(resp.Body)
}
