package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCookieStoreWriteAttributes(t *testing.T) {
	store := NewCookieStore()
	rr := httptest.NewRecorder()

	store.Write(rr, "T")

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != "auth_token" || c.Value != "T" {
		t.Fatalf("cookie = %s=%s, want auth_token=T", c.Name, c.Value)
	}
	if !c.HttpOnly {
		t.Fatal("HttpOnly = false, want true")
	}
	if !c.Secure {
		t.Fatal("Secure = false, want true")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("SameSite = %v, want Lax", c.SameSite)
	}
	if c.Path != "/" {
		t.Fatalf("Path = %q, want /", c.Path)
	}
	if c.MaxAge != 0 {
		t.Fatalf("MaxAge = %d, want 0 (no client-side expiry)", c.MaxAge)
	}
}

func TestCookieStoreClearExpiresImmediately(t *testing.T) {
	store := NewCookieStore()
	rr := httptest.NewRecorder()

	store.Clear(rr)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Value != "" {
		t.Fatalf("Value = %q, want empty", c.Value)
	}
	if c.MaxAge >= 0 {
		t.Fatalf("MaxAge = %d, want negative", c.MaxAge)
	}
}

func TestCookieStoreReadMissing(t *testing.T) {
	store := NewCookieStore()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	if got := store.Read(r); got != "" {
		t.Fatalf("Read = %q, want empty", got)
	}
}

func TestCookieStoreReadRoundTrip(t *testing.T) {
	store := NewCookieStore(WithCookieName("sid"), WithSecure(false))
	rr := httptest.NewRecorder()
	store.Write(rr, "abc")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rr.Result().Cookies() {
		r.AddCookie(c)
	}

	if got := store.Read(r); got != "abc" {
		t.Fatalf("Read = %q, want abc", got)
	}
	if rr.Result().Cookies()[0].Secure {
		t.Fatal("Secure = true, want false with WithSecure(false)")
	}
}
