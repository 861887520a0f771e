package visitorcounter

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"

	"github.com/apex/gateway"
)

const (
	visitorIdPrefix = "visitor_"
)

// raw IPs are never persisted, only their digests. the canonical textual form is hashed so
// that different spellings of the same IPv6 address are the same visitor.
func VisitorId(ip net.IP) string {
	digest := sha256.Sum256([]byte(ip.String()))

	return visitorIdPrefix + hex.EncodeToString(digest[:])
}

// Source IP from API Gateway's request context (requestContext.identity.sourceIp). Outside
// of Lambda (standalone REST API) we use the TCP peer address instead.
//
// we deliberately don't look at X-Forwarded-For: clients control its contents.
func VisitorIp(r *http.Request) (net.IP, error) {
	sourceIp := r.RemoteAddr

	if proxyCtx, isLambda := gateway.RequestContext(r.Context()); isLambda {
		sourceIp = proxyCtx.Identity.SourceIP
	}

	return parseSourceIp(sourceIp)
}

func parseSourceIp(sourceIp string) (net.IP, error) {
	sourceIp = strings.TrimSpace(sourceIp)

	// "ip:port" or "[ipv6]:port" from a TCP listener
	if host, _, err := net.SplitHostPort(sourceIp); err == nil {
		sourceIp = host
	}

	ip := net.ParseIP(sourceIp)
	if ip == nil {
		return nil, ErrMissingVisitorIp
	}

	return ip, nil
}
