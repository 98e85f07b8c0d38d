package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsPolicy_Check(t *testing.T) {
	var robotsHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsHits.Add(1)
			_, _ = w.Write([]byte("User-agent: reviewinsights\nDisallow: /private/\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewRobotsPolicy(srv.Client(), "reviewinsights/0.1 (+https://example.com)")
	ctx := context.Background()

	allowed, delay, err := p.Check(ctx, srv.URL+"/data/reviews.csv")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !allowed || delay != 2*time.Second {
		t.Errorf("Expected allowed with 2s delay, got %v %v", allowed, delay)
	}

	allowed, _, _ = p.Check(ctx, srv.URL+"/private/reviews.csv")
	if allowed {
		t.Error("Expected /private/ to be disallowed")
	}

	if n := robotsHits.Load(); n != 1 {
		t.Errorf("Expected robots.txt fetched once, got %d", n)
	}

	other := NewRobotsPolicy(srv.Client(), "otherbot/1.0")
	if allowed, _, _ := other.Check(ctx, srv.URL+"/data/reviews.csv"); allowed {
		t.Error("Expected wildcard group to disallow other agents")
	}
}

func TestRobotsPolicy_MissingAndUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p := NewRobotsPolicy(srv.Client(), "reviewinsights")
	if allowed, _, err := p.Check(context.Background(), srv.URL+"/reviews.csv"); err != nil || !allowed {
		t.Errorf("Missing robots.txt must allow, got %v %v", allowed, err)
	}

	down := NewRobotsPolicy(&http.Client{Timeout: time.Second}, "reviewinsights")
	if allowed, _, err := down.Check(context.Background(), "http://127.0.0.1:1/reviews.csv"); err != nil || !allowed {
		t.Errorf("Unreachable robots.txt must allow, got %v %v", allowed, err)
	}
}

func TestRobotsPolicy_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewRobotsPolicy(srv.Client(), "reviewinsights")
	if allowed, _, _ := p.Check(context.Background(), srv.URL+"/reviews.csv"); allowed {
		t.Error("5xx robots.txt must disallow")
	}
}

func TestProductToken(t *testing.T) {
	tests := map[string]string{
		"reviewinsights/0.1 (+https://x)": "reviewinsights",
		"curl/8.0":                        "curl",
		"plain":                           "plain",
		"":                                "",
	}
	for in, want := range tests {
		if got := ProductToken(in); got != want {
			t.Errorf("ProductToken(%q) = %q, want %q", in, got, want)
		}
	}
}
