// Package uri turns the textual target of a request into the host, port
// and path the tunnel and the HTTP engine need.
package uri

import (
	"net"
	"strconv"
	"strings"

	"github.com/torilate/torilate/internal/failure"
	"github.com/torilate/torilate/internal/netsock"
)

// Scheme is the request scheme.
type Scheme int

const (
	HTTP Scheme = iota
	HTTPS
	Invalid
)

func (s Scheme) String() string {
	switch s {
	case HTTP:
		return "http"
	case HTTPS:
		return "https"
	default:
		return "invalid"
	}
}

// DefaultPort returns 80 for http and 443 for https.
func (s Scheme) DefaultPort() uint16 {
	if s == HTTPS {
		return 443
	}
	return 80
}

// URI is a parsed request target. Path always begins with "/".
type URI struct {
	Scheme Scheme
	Host   string
	Port   uint16
	Path   string
	Kind   netsock.AddrKind
}

// Parse splits raw into its components. Without a scheme prefix the target
// is treated as http. An unknown scheme fails with failure.InvalidScheme and
// the returned URI carries the scheme name in Host for diagnostics.
func Parse(raw string) (URI, error) {
	var u URI
	rest := raw

	switch {
	case strings.HasPrefix(rest, "http://"):
		u.Scheme = HTTP
		rest = rest[len("http://"):]
	case strings.HasPrefix(rest, "https://"):
		u.Scheme = HTTPS
		rest = rest[len("https://"):]
	default:
		if i := strings.Index(rest, "://"); i >= 0 && !strings.ContainsAny(rest[:i], "/?#") {
			u.Scheme = Invalid
			u.Host = rest[:i]
			return u, failure.New(failure.InvalidScheme, "Unsupported scheme '%s'", u.Host)
		}
		u.Scheme = HTTP
	}

	host, rest, err := splitHost(rest)
	if err != nil {
		return URI{}, err
	}
	if host == "" {
		return URI{}, failure.New(failure.InvalidURI, "Missing host in '%s'", raw)
	}
	u.Host = host

	u.Port = u.Scheme.DefaultPort()
	if strings.HasPrefix(rest, ":") {
		end := strings.IndexAny(rest, "/?")
		if end < 0 {
			end = len(rest)
		}
		port, err := parsePort(rest[1:end])
		if err != nil {
			return URI{}, err
		}
		u.Port = port
		rest = rest[end:]
	}

	switch {
	case strings.HasPrefix(rest, "/"):
		u.Path = rest
	case strings.HasPrefix(rest, "?"):
		u.Path = "/" + rest
	case rest == "":
		u.Path = "/"
	default:
		return URI{}, failure.New(failure.InvalidURI, "Unexpected '%s' after host in '%s'", rest, raw)
	}

	u.Kind = netsock.KindOf(u.Host)
	return u, nil
}

// splitHost returns the host and whatever follows it. Bracketed IPv6
// literals are unwrapped.
func splitHost(s string) (host, rest string, err error) {
	if strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return "", "", failure.New(failure.InvalidURI, "Unterminated IPv6 literal '%s'", s)
		}
		return s[1:end], s[end+1:], nil
	}
	end := strings.IndexAny(s, "/:?")
	if end < 0 {
		return s, "", nil
	}
	return s[:end], s[end:], nil
}

func parsePort(s string) (uint16, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, failure.New(failure.InvalidURI, "Invalid port '%s'", s)
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil || n == 0 {
		return 0, failure.New(failure.InvalidURI, "Invalid port '%s'", s)
	}
	return uint16(n), nil
}

// HostPort returns host:port, bracketing IPv6 hosts.
func (u URI) HostPort() string {
	return net.JoinHostPort(u.Host, strconv.Itoa(int(u.Port)))
}

// String reassembles the URI. The port is omitted when it is the scheme
// default.
func (u URI) String() string {
	var b strings.Builder
	b.WriteString(u.Scheme.String())
	b.WriteString("://")
	if u.Port != u.Scheme.DefaultPort() {
		b.WriteString(u.HostPort())
	} else if u.Kind == netsock.IPv6 {
		b.WriteString("[" + u.Host + "]")
	} else {
		b.WriteString(u.Host)
	}
	b.WriteString(u.Path)
	return b.String()
}

// WithPath returns a copy of u targeting path on the same host and port.
func (u URI) WithPath(path string) URI {
	u.Path = path
	return u
}
