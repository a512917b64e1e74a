package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIsHostAllowed(t *testing.T) {
	tests := []struct {
		name         string
		host         string
		allowedHosts []string
		want         bool
	}{
		{
			name:         "EmptyAllowedHostsAllowsAll",
			host:         "kasa.app",
			allowedHosts: []string{},
			want:         true,
		},
		{
			name:         "ExactMatchWithPort",
			host:         "kasa.app:8080",
			allowedHosts: []string{"kasa.app:8080"},
			want:         true,
		},
		{
			name:         "HostWithoutPortMatchesAllowedWithPort",
			host:         "kasa.app",
			allowedHosts: []string{"kasa.app:8080"},
			want:         true,
		},
		{
			name:         "HostWithPortMatchesAllowedWithoutPort",
			host:         "kasa.app:8443",
			allowedHosts: []string{"kasa.app"},
			want:         true,
		},
		{
			name:         "LocalhostWithPort",
			host:         "localhost:3000",
			allowedHosts: []string{"localhost"},
			want:         true,
		},
		{
			name:         "IPv6LoopbackWithPort",
			host:         "[::1]:8080",
			allowedHosts: []string{"[::1]:8080"},
			want:         true,
		},
		{
			name:         "IPv6WithPortMatchesAllowedWithoutPort",
			host:         "[::1]:8080",
			allowedHosts: []string{"::1"},
			want:         true,
		},
		{
			name:         "CaseInsensitive",
			host:         "Kasa.APP:8080",
			allowedHosts: []string{"kasa.app"},
			want:         true,
		},
		{
			name:         "WhitespaceTrimmed",
			host:         "  kasa.app:8080  ",
			allowedHosts: []string{"kasa.app"},
			want:         true,
		},
		{
			name:         "MatchSecondInList",
			host:         "api.kasa.app",
			allowedHosts: []string{"kasa.app", "api.kasa.app"},
			want:         true,
		},
		{
			name:         "UnknownHostRejected",
			host:         "evil.example",
			allowedHosts: []string{"kasa.app", "api.kasa.app"},
			want:         false,
		},
		{
			name:         "SubdomainMismatchRejected",
			host:         "sub.kasa.app",
			allowedHosts: []string{"kasa.app"},
			want:         false,
		},
		{
			name:         "IPv6DifferentAddressRejected",
			host:         "[::2]:8080",
			allowedHosts: []string{"[::1]:8080"},
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsHostAllowed(tt.host, tt.allowedHosts)
			if got != tt.want {
				t.Errorf("IsHostAllowed(%q, %v) = %v, want %v",
					tt.host, tt.allowedHosts, got, tt.want)
			}
		})
	}
}

func TestHSTS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := HSTS(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	got := rr.Header().Get("Strict-Transport-Security")
	if !strings.Contains(got, "max-age=31536000") {
		t.Errorf("Strict-Transport-Security = %q, want max-age=31536000", got)
	}
}

func TestSecureCookies(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok"})
		w.WriteHeader(http.StatusOK)
	})
	handler := SecureCookies(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	cookies := rr.Header()["Set-Cookie"]
	if len(cookies) != 1 {
		t.Fatalf("Set-Cookie count = %d, want 1", len(cookies))
	}
	for _, attr := range []string{"Secure", "HttpOnly", "SameSite"} {
		if !strings.Contains(cookies[0], attr) {
			t.Errorf("cookie %q missing %s attribute", cookies[0], attr)
		}
	}
}

func TestEnsureSecureCookie_PreservesExistingSameSite(t *testing.T) {
	got := ensureSecureCookie("access_token=tok; Path=/; SameSite=Lax")
	if strings.Contains(got, "SameSite=Strict") {
		t.Errorf("ensureSecureCookie() = %q, existing SameSite should be kept", got)
	}
	if !strings.Contains(got, "Secure") || !strings.Contains(got, "HttpOnly") {
		t.Errorf("ensureSecureCookie() = %q, want Secure and HttpOnly added", got)
	}
}
