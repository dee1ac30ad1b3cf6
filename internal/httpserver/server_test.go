package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBareServer() *Server {
	return New(Config{
		JWTSecret:    "test_secret",
		ClientOrigin: "http://localhost:5173",
	}, Deps{})
}

func TestHealth(t *testing.T) {
	s := newBareServer()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newBareServer()
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/daily/riddle"},
		{http.MethodPost, "/daily/guess"},
		{http.MethodGet, "/profile"},
		{http.MethodPost, "/race/start"},
		{http.MethodPost, "/admin/banner"},
	}
	for _, p := range paths {
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, httptest.NewRequest(p.method, p.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without token = %d, want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestInvalidToken(t *testing.T) {
	s := newBareServer()
	req := httptest.NewRequest(http.MethodGet, "/daily/riddle", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token = %d, want 401", rec.Code)
	}
}

func TestNotFoundIsJSON(t *testing.T) {
	s := newBareServer()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"not_found"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
