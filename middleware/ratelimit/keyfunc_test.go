package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientKeyFunc_PrefersHeaderWhenSet(t *testing.T) {
	fn := ClientKeyFunc(ClientIDHeader, false)

	r := httptest.NewRequest(http.MethodPost, "http://example/api/buy", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.Header.Set("X-Client-Id", " client-123 ")

	if got := fn(r); got != "client-123" {
		t.Fatalf("expected header key, got %q", got)
	}
}

func TestClientKeyFunc_EmptyHeaderFallsBackToRemoteAddr(t *testing.T) {
	fn := ClientKeyFunc(ClientIDHeader, false)

	r := httptest.NewRequest(http.MethodPost, "http://example/api/buy", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set(ClientIDHeader, "   ")

	if got := fn(r); got != "10.0.0.9" {
		t.Fatalf("expected remote host, got %q", got)
	}
}

func TestClientKeyFunc_AcceptsAnyOpaqueValue(t *testing.T) {
	fn := ClientKeyFunc(ClientIDHeader, false)

	r := httptest.NewRequest(http.MethodPost, "http://example/api/buy", nil)
	r.Header.Set(ClientIDHeader, "🌽 ' OR 1=1 --")

	if got := fn(r); got != "🌽 ' OR 1=1 --" {
		t.Fatalf("expected header value used verbatim, got %q", got)
	}
}

func TestOriginKeyFunc_TrustXForwardedForUsesFirstIP(t *testing.T) {
	fn := OriginKeyFunc(true)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")

	if got := fn(r); got != "1.2.3.4" {
		t.Fatalf("expected first XFF ip, got %q", got)
	}
}

func TestOriginKeyFunc_IgnoresXForwardedForByDefault(t *testing.T) {
	fn := OriginKeyFunc(false)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-Forwarded-For", "1.2.3.4")

	if got := fn(r); got != "10.0.0.9" {
		t.Fatalf("expected remote host, got %q", got)
	}
}

func TestOriginKeyFunc_RemoteAddrWithoutPortOrEmpty(t *testing.T) {
	fn := OriginKeyFunc(false)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "unix-socket"
	if got := fn(r); got != "unix-socket" {
		t.Fatalf("expected raw RemoteAddr, got %q", got)
	}

	r.RemoteAddr = ""
	if got := fn(r); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func TestOriginKeyFunc_IPv6(t *testing.T) {
	fn := OriginKeyFunc(false)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "[::1]:4000"
	if got := fn(r); got != "::1" {
		t.Fatalf("expected ::1, got %q", got)
	}
}
