package zoho

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestNormalizeScopes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a,b", "a b"},
		{"a, b ,c", "a b c"},
		{"a,\\\n  b", "a b"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeScopes(tt.in); got != tt.want {
			t.Errorf("NormalizeScopes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveScopes(t *testing.T) {
	got, _ := ResolveScopes("x,y", "projects-full", "env")
	if got != "x y" {
		t.Errorf("explicit scopes should win, got %q", got)
	}

	got, _ = ResolveScopes("", "projects-full", "env")
	if !strings.HasPrefix(got, "ZohoProjects.portals.ALL ") {
		t.Errorf("preset should win over configured, got %q", got)
	}

	got, _ = ResolveScopes("", "", "env.a,env.b")
	if got != "env.a env.b" {
		t.Errorf("configured scopes = %q", got)
	}

	got, _ = ResolveScopes("", "", "")
	if got != NormalizeScopes(DefaultScopes) {
		t.Errorf("default scopes = %q", got)
	}

	if _, err := ResolveScopes("", "nope", ""); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestAuthURL(t *testing.T) {
	c := NewClient(Config{ClientID: "cid", RedirectURI: "https://example.invalid/cb"})
	raw, err := c.AuthURL("a b")
	if err != nil {
		t.Fatalf("AuthURL: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Host != "accounts.zoho.com" || u.Path != "/oauth/v2/auth" {
		t.Errorf("unexpected url %s", raw)
	}
	q := u.Query()
	if q.Get("access_type") != "offline" || q.Get("prompt") != "consent" || q.Get("scope") != "a b" {
		t.Errorf("unexpected query %s", u.RawQuery)
	}

	_, err = NewClient(Config{}).AuthURL("a")
	if err == nil || !strings.Contains(err.Error(), "ZOHO_CLIENT_ID") {
		t.Errorf("expected missing ZOHO_CLIENT_ID, got %v", err)
	}
}

func TestExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("grant_type") != "authorization_code" || r.PostForm.Get("code") != "c0de" {
			t.Errorf("unexpected form %v", r.PostForm)
		}
		_, _ = w.Write([]byte(`{"access_token":"atk","refresh_token":"rtk","expires_in":3600}`))
	}))
	defer server.Close()

	c := newTestClient(server)
	res, err := c.ExchangeCode(context.Background(), "c0de")
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if res.RefreshToken != "rtk" || res.AccessToken != "atk" {
		t.Errorf("unexpected result %+v", res)
	}

	noSecret := NewClient(Config{ClientID: "id", RedirectURI: "x"})
	if _, err := noSecret.ExchangeCode(context.Background(), "c"); err == nil ||
		!strings.Contains(err.Error(), "ZOHO_CLIENT_SECRET") {
		t.Errorf("expected missing secret error, got %v", err)
	}
}
