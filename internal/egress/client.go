// Package egress wraps outbound HTTP traffic behind a per-client hostname
// allowlist enforced at the transport layer, so no caller — direct use or an
// injected SDK — can reach a host outside that client's allowlist.
package egress

import (
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	toolgateotel "github.com/Strob0t/toolgate/internal/adapter/otel"
)

// HostNotAllowedError reports a denied outbound request. It carries both the
// attempted host and the allowlist so callers can build a useful reason.
type HostNotAllowedError struct {
	Host      string
	Allowlist []string
}

func (e *HostNotAllowedError) Error() string {
	return fmt.Sprintf("egress denied: host %q not in allowlist %v", e.Host, e.Allowlist)
}

// guardedTransport rejects any request whose URL host is not in allowlist,
// case-insensitively, with exact matching only — no suffix or wildcard
// matching is performed, and no network I/O happens on denial.
type guardedTransport struct {
	base      http.RoundTripper
	allowlist map[string]struct{}
	hosts     []string
}

func (t *guardedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	host := strings.ToLower(req.URL.Hostname())

	ctx, span := toolgateotel.StartEgressSpan(req.Context(), host)
	defer span.End()
	req = req.WithContext(ctx)

	if _, ok := t.allowlist[host]; !ok {
		return nil, &HostNotAllowedError{Host: host, Allowlist: t.hosts}
	}
	return t.base.RoundTrip(req)
}

// Client is a guarded outbound HTTP client scoped to a single allowlist. The
// LLM router constructs one distinct Client per provider.
type Client struct {
	http *http.Client
}

// New constructs a Client whose transport only reaches the given hosts.
// Hosts are matched case-insensitively and exactly.
func New(allowedHosts []string) *Client {
	set := make(map[string]struct{}, len(allowedHosts))
	hosts := make([]string, len(allowedHosts))
	for i, h := range allowedHosts {
		lower := strings.ToLower(h)
		set[lower] = struct{}{}
		hosts[i] = lower
	}
	transport := &guardedTransport{
		base:      otelhttp.NewTransport(http.DefaultTransport),
		allowlist: set,
		hosts:     hosts,
	}
	return &Client{http: &http.Client{Transport: transport}}
}

// HTTPClient exposes the underlying *http.Client for injection into
// third-party SDKs (e.g. via option.WithHTTPClient), so SDK-issued requests
// are guarded the same as requests issued directly through this Client.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Do issues req through the guarded transport.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.http.Do(req)
}
