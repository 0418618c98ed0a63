// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateKeyPrefix namespaces limiter counters in Valkey.
const rateKeyPrefix = "ratelimit:"

// RateLimiter provides per-IP fixed-window rate limiting backed by Valkey,
// so limits hold across server instances.
type RateLimiter struct {
	client  *redis.Client
	name    string
	limit   int           // max requests per window
	window  time.Duration // window duration
	proxies []netip.Prefix
}

// RateLimitOption configures a RateLimiter.
type RateLimitOption func(*RateLimiter)

// TrustProxies makes the limiter read the client address from
// X-Forwarded-For when the request comes from one of prefixes.
func TrustProxies(prefixes ...netip.Prefix) RateLimitOption {
	return func(rl *RateLimiter) { rl.proxies = prefixes }
}

// NewRateLimiter creates a rate limiter named name that allows limit
// requests per window for each client.
func NewRateLimiter(client *redis.Client, name string, limit int, window time.Duration, opts ...RateLimitOption) *RateLimiter {
	rl := &RateLimiter{
		client: client,
		name:   name,
		limit:  limit,
		window: window,
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Allow counts a request for key and reports whether it is within the
// limit. The counter expires one window after the first request. INCR and
// EXPIRE NX run in one MULTI so a counter never outlives its window.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := rateKeyPrefix + rl.name + ":" + key

	var incr *redis.IntCmd
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, rl.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	return incr.Val() <= int64(rl.limit), nil
}

// Middleware returns an HTTP middleware that rate-limits by client IP.
// Valkey errors let the request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, rl.proxies)
		ok, err := rl.Allow(r.Context(), ip)
		if err != nil {
			slog.Warn("rate limiter unavailable, allowing request", "limiter", rl.name, "error", err)
			ok = true
		}
		if !ok {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the address a request came from. Forwarding headers are
// honoured only when the direct peer is a trusted proxy; X-Forwarded-For is
// then walked from the right and the first untrusted hop wins.
func clientIP(r *http.Request, proxies []netip.Prefix) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !trusted(host, proxies) {
		return host
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		addr, err := netip.ParseAddr(hop)
		if err != nil {
			break
		}
		if !trusted(hop, proxies) {
			return addr.Unmap().String()
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if addr, err := netip.ParseAddr(xri); err == nil {
			return addr.Unmap().String()
		}
	}
	return host
}

func trusted(ip string, proxies []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
