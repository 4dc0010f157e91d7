package upstream

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestDestinationRuleMatches(t *testing.T) {
	rule := DestinationRule{Host: "api.example.com", ProxyPrefix: "/api/"}

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{name: "exact hostname", url: "https://api.example.com/users/me", want: true},
		{name: "hostname case-insensitive", url: "https://API.Example.COM/notes", want: true},
		{name: "hostname with port", url: "https://api.example.com:8443/notes", want: true},
		{name: "local proxy prefix", url: "/api/notes/add", want: true},
		{name: "third-party host", url: "https://images.example.net/upload", want: false},
		{name: "subdomain is not the host", url: "https://evil.api.example.com/users/me", want: false},
		{name: "prefix elsewhere in path", url: "https://other.example.net/v1/api/x", want: false},
		{name: "local path outside prefix", url: "/login", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.url)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.url, err)
			}
			if got := rule.Matches(u); got != tt.want {
				t.Fatalf("Matches(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestTransportInjectsTokenForMatchingHost(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	srvURL, _ := url.Parse(srv.URL)
	rule := DestinationRule{Host: srvURL.Hostname()}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/users/me", nil)
	resp, err := NewTransport("T", rule, nil).RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip error: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "Bearer T" {
		t.Fatalf("Authorization = %q, want %q", gotAuth, "Bearer T")
	}
	if h := req.Header.Get("Authorization"); h != "" {
		t.Fatalf("caller's request was mutated: Authorization = %q", h)
	}
}

func TestTransportNeverLeaksTokenToOtherHosts(t *testing.T) {
	var gotAuth string
	thirdParty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer thirdParty.Close()

	rule := DestinationRule{Host: "api.example.com", ProxyPrefix: "/api/"}

	req, _ := http.NewRequest(http.MethodPost, thirdParty.URL+"/image/upload", nil)
	resp, err := NewTransport("T", rule, nil).RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip error: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "" {
		t.Fatalf("token leaked to third-party destination: Authorization = %q", gotAuth)
	}
}

func TestTransportDoesNotDoubleSign(t *testing.T) {
	var gotAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Values("Authorization")
	}))
	defer srv.Close()

	srvURL, _ := url.Parse(srv.URL)
	rule := DestinationRule{Host: srvURL.Hostname()}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/notes", nil)
	req.Header.Set("Authorization", "Bearer already-set")

	resp, err := NewTransport("T", rule, nil).RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip error: %v", err)
	}
	resp.Body.Close()

	if len(gotAuth) != 1 || gotAuth[0] != "Bearer already-set" {
		t.Fatalf("Authorization = %v, want exactly [Bearer already-set]", gotAuth)
	}
}

func TestTransportSkipsInjectionWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	srvURL, _ := url.Parse(srv.URL)
	rule := DestinationRule{Host: srvURL.Hostname()}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/users/me", nil)
	resp, err := NewTransport("", rule, nil).RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip error: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "" {
		t.Fatalf("Authorization = %q, want empty for anonymous request", gotAuth)
	}
}
