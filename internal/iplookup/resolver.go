// Package iplookup determines the address recorded on a submitted ticket.
package iplookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Unknown is recorded when no address could be determined.
const Unknown = "unknown"

// Resolver picks the caller address, falling back to a public lookup service.
type Resolver struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewResolver builds a resolver. An empty url disables the remote lookup.
func NewResolver(url string, timeout time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Resolve returns the first usable address: the first X-Forwarded-For hop,
// then the socket peer, then the lookup service. It never fails; any problem
// degrades to Unknown.
func (r *Resolver) Resolve(ctx context.Context, forwardedFor, remoteAddr string) string {
	if ip := firstForwarded(forwardedFor); ip != "" {
		return ip
	}
	if ip := peerAddress(remoteAddr); ip != "" {
		return ip
	}
	ip, err := r.lookup(ctx)
	if err != nil {
		r.logger.Warn("ip lookup failed", zap.Error(err))
		return Unknown
	}
	return ip
}

func (r *Resolver) lookup(ctx context.Context) (string, error) {
	if r.url == "" {
		return "", fmt.Errorf("lookup disabled")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lookup returned %s", resp.Status)
	}

	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode lookup response: %w", err)
	}
	if net.ParseIP(body.IP) == nil {
		return "", fmt.Errorf("lookup returned invalid address %q", body.IP)
	}
	return body.IP, nil
}

func firstForwarded(header string) string {
	if header == "" {
		return ""
	}
	first := strings.TrimSpace(strings.Split(header, ",")[0])
	if net.ParseIP(first) == nil {
		return ""
	}
	return first
}

func peerAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	ip := net.ParseIP(addr)
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
