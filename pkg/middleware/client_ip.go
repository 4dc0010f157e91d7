package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// TrustedProxies matches peer addresses that are allowed to assert
// forwarded headers. A nil matcher trusts nothing.
type TrustedProxies struct {
	ips  map[string]struct{}
	nets []*net.IPNet
}

// NewTrustedProxies parses a list of IPs and CIDR ranges. Invalid
// entries are logged and skipped; an empty result is nil.
func NewTrustedProxies(entries []string, logger *slog.Logger) *TrustedProxies {
	if len(entries) == 0 {
		return nil
	}

	ips := make(map[string]struct{})
	var nets []*net.IPNet

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			_, network, err := net.ParseCIDR(entry)
			if err != nil {
				if logger != nil {
					logger.Warn("invalid trusted proxy CIDR", "entry", entry, "err", err)
				}
				continue
			}
			nets = append(nets, network)
			continue
		}
		ip := net.ParseIP(entry)
		if ip == nil {
			if logger != nil {
				logger.Warn("invalid trusted proxy IP", "entry", entry)
			}
			continue
		}
		ips[ip.String()] = struct{}{}
	}

	if len(ips) == 0 && len(nets) == 0 {
		return nil
	}
	return &TrustedProxies{ips: ips, nets: nets}
}

func (m *TrustedProxies) IsTrusted(ip net.IP) bool {
	if m == nil || ip == nil {
		return false
	}
	if _, ok := m.ips[ip.String()]; ok {
		return true
	}
	for _, network := range m.nets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP resolves the originating client address for a request.
// Forwarded and X-Forwarded-For are honored only when the peer is a
// trusted proxy; the rightmost untrusted hop wins. Returns "" when the
// remote address cannot be parsed.
func ClientIP(r *http.Request, trusted *TrustedProxies) string {
	remote := remoteIP(r)
	if remote == nil {
		return ""
	}
	if !trusted.IsTrusted(remote) {
		return remote.String()
	}

	hops := parseForwarded(r.Header.Get("Forwarded"))
	if len(hops) == 0 {
		hops = parseXForwardedFor(r.Header.Get("X-Forwarded-For"))
	}
	if len(hops) == 0 {
		return remote.String()
	}

	for i := len(hops) - 1; i >= 0; i-- {
		if !trusted.IsTrusted(hops[i]) {
			return hops[i].String()
		}
	}
	return hops[0].String()
}

func remoteIP(r *http.Request) net.IP {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return nil
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return parseHostIP(host)
}

// parseForwarded extracts the for= hops from an RFC 7239 Forwarded
// header, in order.
func parseForwarded(header string) []net.IP {
	if header == "" {
		return nil
	}

	var out []net.IP
	for _, element := range strings.Split(header, ",") {
		for _, param := range strings.Split(element, ";") {
			kv := strings.SplitN(strings.TrimSpace(param), "=", 2)
			if len(kv) != 2 || !strings.EqualFold(kv[0], "for") {
				continue
			}
			if ip := parseForwardedIP(kv[1]); ip != nil {
				out = append(out, ip)
			}
		}
	}
	return out
}

func parseXForwardedFor(header string) []net.IP {
	if header == "" {
		return nil
	}

	var out []net.IP
	for _, part := range strings.Split(header, ",") {
		if ip := parseForwardedIP(part); ip != nil {
			out = append(out, ip)
		}
	}
	return out
}

func parseForwardedIP(value string) net.IP {
	value = strings.Trim(strings.TrimSpace(value), "\"")
	if value == "" || strings.EqualFold(value, "unknown") {
		return nil
	}

	host := value
	if strings.HasPrefix(host, "[") {
		if end := strings.Index(host, "]"); end != -1 {
			host = host[1:end]
		}
	} else if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return parseHostIP(host)
}

func parseHostIP(host string) net.IP {
	host = strings.Trim(host, "[]")
	if zone := strings.Index(host, "%"); zone != -1 {
		host = host[:zone]
	}
	return net.ParseIP(host)
}
