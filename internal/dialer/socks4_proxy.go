package dialer

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/torilate/torilate/internal/failure"
	"github.com/torilate/torilate/internal/netsock"
	"github.com/torilate/torilate/internal/socks4"
	"github.com/torilate/torilate/internal/uri"
)

type SOCKS4ProxyDialer struct {
	cfg       Config
	proxyIP   string
	proxyPort uint16
	socks4a   bool
	log       zerolog.Logger
}

func NewSOCKS4ProxyDialer(cfg Config, proxyIP string, proxyPort uint16, socks4a bool) *SOCKS4ProxyDialer {
	return &SOCKS4ProxyDialer{
		cfg:       cfg,
		proxyIP:   proxyIP,
		proxyPort: proxyPort,
		socks4a:   socks4a,
		log:       zerolog.Nop(),
	}
}

// WithLogger returns a copy of f that logs handshake events to log.
func (f *SOCKS4ProxyDialer) WithLogger(log zerolog.Logger) *SOCKS4ProxyDialer {
	c := *f
	c.log = log
	return &c
}

// Addr returns the proxy endpoint as host:port.
func (f *SOCKS4ProxyDialer) Addr() string {
	return joinHostPort(f.proxyIP, f.proxyPort)
}

// Dial connects to the proxy and negotiates a tunnel to target. The returned
// socket is owned by the caller; on error nothing is left open.
func (f *SOCKS4ProxyDialer) Dial(ctx context.Context, target uri.URI) (*netsock.Socket, error) {
	if target.Kind == netsock.Domain && !f.socks4a {
		return nil, failure.New(failure.InvalidAddress, "socks4 upstream cannot reach '%s' without resolving it locally", target.Host)
	}

	sock, err := netsock.Connect(ctx, f.cfg.socket(), f.proxyIP, f.proxyPort)
	if err != nil {
		return nil, failure.Wrap(err, "Cannot connect to TOR at %s", f.Addr())
	}

	if err := socks4.Connect(sock, target.Host, target.Port, f.cfg.userID(), target.Kind); err != nil {
		sock.Close()
		return nil, failure.Wrap(err, "SOCKS4 connection to %s:%d failed", target.Host, target.Port)
	}

	f.log.Debug().
		Str("proxy", f.Addr()).
		Str("host", target.Host).
		Uint16("port", target.Port).
		Stringer("addr_kind", target.Kind).
		Msg("socks4 tunnel granted")

	return sock, nil
}
