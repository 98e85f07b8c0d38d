package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsPolicy decides whether a remote file may be downloaded under its
// host's robots.txt. Rules are fetched once per scheme and host.
type RobotsPolicy struct {
	client *http.Client
	agent  string

	mu    sync.Mutex
	rules map[string]*robotstxt.RobotsData // nil entry: robots.txt unavailable
}

// NewRobotsPolicy creates a policy that fetches robots.txt with client
func NewRobotsPolicy(client *http.Client, userAgent string) *RobotsPolicy {
	return &RobotsPolicy{
		client: client,
		agent:  userAgent,
		rules:  make(map[string]*robotstxt.RobotsData),
	}
}

// Check reports whether rawURL may be fetched and the crawl delay the host
// asks for. An unreachable robots.txt allows everything.
func (p *RobotsPolicy) Check(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}

	data := p.rulesFor(ctx, u.Scheme+"://"+u.Host)
	if data == nil {
		return true, 0, nil
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	agent := ProductToken(p.agent)
	return data.TestAgent(path, agent), data.FindGroup(agent).CrawlDelay, nil
}

func (p *RobotsPolicy) rulesFor(ctx context.Context, origin string) *robotstxt.RobotsData {
	p.mu.Lock()
	data, ok := p.rules[origin]
	p.mu.Unlock()
	if ok {
		return data
	}

	data = p.fetch(ctx, origin)
	p.mu.Lock()
	p.rules[origin] = data
	p.mu.Unlock()
	return data
}

func (p *RobotsPolicy) fetch(ctx context.Context, origin string) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", p.agent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return nil
	}
	// 4xx allows everything, 5xx disallows everything
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil
	}
	return data
}

// ProductToken returns the product name of a User-Agent
// ("reviewinsights/0.1 (+url)" -> "reviewinsights")
func ProductToken(ua string) string {
	fields := strings.Fields(ua)
	if len(fields) == 0 {
		return ua
	}
	return strings.SplitN(fields[0], "/", 2)[0]
}
