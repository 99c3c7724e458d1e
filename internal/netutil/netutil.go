package netutil

import (
	"net/netip"
	"strings"
	"unicode/utf8"
)

// MaxTitleLength bounds the stored session title (normally a user-agent
// string, which clients can make arbitrarily long).
const MaxTitleLength = 512

// NormalizeIP accepts a bare IP or an address carrying a port ("192.0.2.4:1234",
// "[2001:db8::1]:443") and returns the canonical IP portion without zone
// identifiers. The bool reports whether the input parsed as an IP at all.
func NormalizeIP(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if addrPort, err := netip.ParseAddrPort(raw); err == nil {
		return addrPort.Addr().WithZone("").String(), true
	}
	if addr, err := netip.ParseAddr(raw); err == nil {
		return addr.WithZone("").String(), true
	}
	// Bracketed IPv6 with a non-numeric port, e.g. "[::1]:port".
	if strings.HasPrefix(raw, "[") {
		if end := strings.LastIndex(raw, "]"); end > 0 {
			if addr, err := netip.ParseAddr(raw[1:end]); err == nil {
				return addr.WithZone("").String(), true
			}
		}
	}
	// host:port where host is IPv4.
	if idx := strings.LastIndex(raw, ":"); idx > 0 {
		if addr, err := netip.ParseAddr(raw[:idx]); err == nil {
			return addr.WithZone("").String(), true
		}
	}
	return raw, false
}

// TruncateTitle trims a client descriptor to MaxTitleLength runes without
// splitting multi-byte characters.
func TruncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= MaxTitleLength {
		return title
	}
	runes := []rune(title)
	return string(runes[:MaxTitleLength])
}
