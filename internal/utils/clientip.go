package utils

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

var forwardedIPHeaders = []string{"X-Forwarded-For", "X-Real-IP", "Client-IP"}

// ClientIP returns the first public address found in the proxy headers,
// falling back to the connection's remote address.
func ClientIP(r *http.Request) string {
	for _, header := range forwardedIPHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		first := strings.TrimSpace(strings.Split(value, ",")[0])
		if isPublicIP(first) {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr == "" {
			return "Unknown"
		}
		return r.RemoteAddr
	}
	return host
}

func isPublicIP(s string) bool {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return false
	}
	return !(addr.IsPrivate() || addr.IsLoopback() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast())
}
