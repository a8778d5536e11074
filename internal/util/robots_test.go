package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func robotsServer(t *testing.T, robots string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, robots)
	})
	return httptest.NewServer(mux)
}

func TestRobotsChecker_DisallowedPath(t *testing.T) {
	server := robotsServer(t, "User-agent: *\nDisallow: /admin/\n")
	defer server.Close()

	checker := NewRobotsChecker("claimscan-test", 5*time.Second)

	allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/public")
	if err != nil || !allowed {
		t.Errorf("expected /public allowed, got %v %v", allowed, err)
	}

	allowed, _, err = checker.CanFetch(context.Background(), server.URL+"/admin/panel")
	if err != nil || allowed {
		t.Errorf("expected /admin/panel disallowed, got %v %v", allowed, err)
	}
}

func TestRobotsChecker_CrawlDelay(t *testing.T) {
	server := robotsServer(t, "User-agent: *\nCrawl-delay: 2\n")
	defer server.Close()

	checker := NewRobotsChecker("claimscan-test", 5*time.Second)

	allowed, delay, err := checker.CanFetch(context.Background(), server.URL+"/page")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !allowed {
		t.Error("expected fetch allowed")
	}
	if delay != 2*time.Second {
		t.Errorf("expected 2s crawl delay, got %v", delay)
	}
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewRobotsChecker("claimscan-test", 5*time.Second)
	allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/anything")
	if err != nil || !allowed {
		t.Errorf("missing robots.txt must allow fetching, got %v %v", allowed, err)
	}
}

func TestRobotsChecker_UnreachableHostAllows(t *testing.T) {
	checker := NewRobotsChecker("claimscan-test", 200*time.Millisecond)
	allowed, _, err := checker.CanFetch(context.Background(), "http://127.0.0.1:1/page")
	if err != nil || !allowed {
		t.Errorf("unreachable robots endpoint must allow by default, got %v %v", allowed, err)
	}
}
