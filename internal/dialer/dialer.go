package dialer

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/torilate/torilate/internal/failure"
	"github.com/torilate/torilate/internal/netsock"
	"github.com/torilate/torilate/internal/uri"
)

// DefaultUpstream is the Tor SOCKS port of a stock tor daemon.
const DefaultUpstream = "socks4a://127.0.0.1:9050"

// Dialer opens a socket to target through an upstream proxy.
type Dialer interface {
	Dial(ctx context.Context, target uri.URI) (*netsock.Socket, error)
}

// New parses upstream and constructs the matching Dialer.
//
// Supported schemes:
//   - socks4a://ip[:port]
//   - socks4://ip[:port]
//
// The proxy host must be a literal IP address. When the port is missing the
// Tor default of 9050 is used. socks4:// refuses domain-name targets since
// they could only be reached by resolving the name locally.
func New(cfg Config, upstream string) (*SOCKS4ProxyDialer, error) {
	u, err := url.Parse(upstream)
	if err != nil {
		return nil, failure.New(failure.InvalidArgs, "invalid upstream url '%s'", upstream).WithCause(err)
	}

	u.Scheme = strings.ToLower(u.Scheme)

	if u.Path != "" && u.Path != "/" {
		return nil, failure.New(failure.InvalidArgs, "invalid upstream url '%s': path should be empty", upstream)
	}
	if u.User != nil {
		return nil, failure.New(failure.InvalidArgs, "invalid upstream url '%s': SOCKS4 has no password authentication", upstream)
	}

	var socks4a bool
	switch u.Scheme {
	case "":
		return nil, failure.New(failure.InvalidArgs, "invalid upstream url '%s': missing scheme", upstream)
	case "socks4a":
		socks4a = true
	case "socks4":
	default:
		return nil, failure.New(failure.InvalidScheme, "invalid upstream url scheme '%s'", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return nil, failure.New(failure.InvalidArgs, "invalid upstream url '%s': missing host", upstream)
	}
	if netsock.KindOf(host) == netsock.Domain {
		return nil, failure.New(failure.InvalidAddress, "upstream host '%s' must be an IP address", host)
	}

	portStr := u.Port()
	if portStr == "" {
		portStr = defaultPortForScheme(u.Scheme)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port == 0 {
		return nil, failure.New(failure.InvalidArgs, "invalid upstream port '%s'", portStr)
	}

	return NewSOCKS4ProxyDialer(cfg, host, uint16(port), socks4a), nil
}

func defaultPortForScheme(scheme string) string {
	switch scheme {
	case "socks4", "socks4a":
		return "9050"
	default:
		return ""
	}
}

func joinHostPort(host string, port uint16) string {
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}
