package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return client, srv
}

func TestMeDecodesEnvelopeAndBareShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "enveloped user", body: `{"user": {"id": 7, "username": "kira", "email": "k@x.io"}}`},
		{name: "bare user", body: `{"id": 7, "username": "kira", "email": "k@x.io"}`},
		{name: "minimal legacy shape", body: `{"id": 7, "email": "k@x.io", "first_name": "Kira", "last_name": "M"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/users/me" {
					t.Errorf("path = %q, want /users/me", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer T" {
					t.Errorf("Authorization = %q, want Bearer T", got)
				}
				w.Write([]byte(tt.body))
			}))

			user, err := client.Me(context.Background(), "T")
			if err != nil {
				t.Fatalf("Me error: %v", err)
			}
			if user.ID != 7 {
				t.Fatalf("user.ID = %d, want 7", user.ID)
			}
			if user.Email != "k@x.io" {
				t.Fatalf("user.Email = %q, want k@x.io", user.Email)
			}
		})
	}
}

func TestMeFailsClosedOnRejectedToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid token"}`))
	}))

	_, err := client.Me(context.Background(), "stale")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Me error = %v, want ErrUnauthorized", err)
	}
}

func TestMeFailsClosedOnMalformedBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))

	_, err := client.Me(context.Background(), "T")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Me error = %v, want ErrUnavailable", err)
	}
}

func TestMeFailsClosedOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := New(url)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, err := client.Me(context.Background(), "T"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Me error = %v, want ErrUnavailable", err)
	}
}

func TestAuthenticateReturnsToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tokens/authentication" {
			t.Errorf("path = %q, want /tokens/authentication", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want none on credential exchange", got)
		}
		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if creds["username"] != "kira" || creds["password"] != "hunter2" {
			t.Errorf("credentials = %v", creds)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"auth_token": "T"}`))
	}))

	token, err := client.Authenticate(context.Background(), "kira", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if token != "T" {
		t.Fatalf("token = %q, want T", token)
	}
}

func TestAuthenticateMapsRejection(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "Invalid credentials"}`))
	}))

	_, err := client.Authenticate(context.Background(), "kira", "wrong")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Authenticate error = %v, want ErrUnauthorized", err)
	}

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Authenticate error = %T, want *StatusError", err)
	}
	if se.Status != http.StatusUnauthorized {
		t.Fatalf("StatusError.Status = %d, want 401", se.Status)
	}
}

func TestForwardRelaysNonSuccessStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error": "title required"}`))
	}))

	resp, err := client.Forward(context.Background(), "T", http.MethodPost, "/notes", nil)
	if err != nil {
		t.Fatalf("Forward error: %v", err)
	}
	if resp.OK() {
		t.Fatal("resp.OK() = true, want false")
	}
	if resp.Status != http.StatusUnprocessableEntity {
		t.Fatalf("resp.Status = %d, want 422", resp.Status)
	}
	if string(resp.Body) != `{"error": "title required"}` {
		t.Fatalf("resp.Body = %s", resp.Body)
	}
}

func TestNotesAndFoldersForUser(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user-notes/7":
			w.Write([]byte(`{"notes": [{"id": 1, "user_id": 7, "title": "first"}]}`))
		case "/user-folders/7":
			w.Write([]byte(`{"folders": [{"id": 2, "title": "inbox", "parent_folder_id": null}]}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	notes, err := client.NotesForUser(context.Background(), "T", 7)
	if err != nil {
		t.Fatalf("NotesForUser error: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != "first" {
		t.Fatalf("notes = %+v", notes)
	}

	folders, err := client.FoldersForUser(context.Background(), "T", 7)
	if err != nil {
		t.Fatalf("FoldersForUser error: %v", err)
	}
	if len(folders) != 1 || folders[0].Title != "inbox" {
		t.Fatalf("folders = %+v", folders)
	}
	if folders[0].ParentFolderID != nil {
		t.Fatalf("ParentFolderID = %v, want nil", folders[0].ParentFolderID)
	}
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	if _, err := New("not-a-url"); err == nil {
		t.Fatal("New(not-a-url) error = nil, want error")
	}
}
