// Package network extracts caller details from HTTP requests.
package network

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the caller address recorded in login snapshots.
// X-Forwarded-For (first hop) wins over X-Real-IP, which wins over
// RemoteAddr. IPv4-mapped IPv6 addresses are reported in dotted form.
func ClientIP(r *http.Request) string {
	var ip string
	switch {
	case r.Header.Get("X-Forwarded-For") != "":
		xff := r.Header.Get("X-Forwarded-For")
		if first, _, ok := strings.Cut(xff, ","); ok {
			xff = first
		}
		ip = strings.TrimSpace(xff)
	case r.Header.Get("X-Real-IP") != "":
		ip = strings.TrimSpace(r.Header.Get("X-Real-IP"))
	default:
		ip = r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
	}
	return strings.TrimPrefix(ip, "::ffff:")
}
