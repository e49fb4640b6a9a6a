package testutil

import (
	"context"
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/torilate/torilate/internal/socks4"
)

// TunnelHandler serves the destination side of a granted tunnel.
type TunnelHandler func(req *socks4.Request, c net.Conn)

// SOCKS4Proxy is a loopback SOCKS4/4a proxy that answers every request with
// a fixed status and hands granted tunnels to a TunnelHandler instead of
// dialing anywhere.
type SOCKS4Proxy struct {
	ln   net.Listener
	wait func()

	mu       sync.Mutex
	requests []socks4.Request
}

// StartSOCKS4Proxy listens on loopback until the test ends.
func StartSOCKS4Proxy(t *testing.T, ctx context.Context, status socks4.Status, handler TunnelHandler) *SOCKS4Proxy {
	t.Helper()

	p := &SOCKS4Proxy{}
	p.ln, p.wait = StartAcceptServer(t, ctx, func(c net.Conn) {
		req, err := socks4.ReadRequest(c)
		if err != nil {
			return
		}

		p.mu.Lock()
		p.requests = append(p.requests, *req)
		p.mu.Unlock()

		if err := socks4.WriteReply(c, status, req.Port, req.IP); err != nil {
			return
		}
		if status != socks4.StatusGranted || handler == nil {
			return
		}
		handler(req, c)
	})
	t.Cleanup(p.wait)

	return p
}

// IP and Port locate the proxy.
func (p *SOCKS4Proxy) IP() string {
	return p.ln.Addr().(*net.TCPAddr).IP.String()
}

func (p *SOCKS4Proxy) Port() uint16 {
	return uint16(p.ln.Addr().(*net.TCPAddr).Port)
}

// Upstream returns the proxy as a socks4a:// URL.
func (p *SOCKS4Proxy) Upstream() string {
	return "socks4a://" + net.JoinHostPort(p.IP(), strconv.Itoa(int(p.Port())))
}

// Requests returns every request the proxy has read so far, in arrival
// order.
func (p *SOCKS4Proxy) Requests() []socks4.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]socks4.Request(nil), p.requests...)
}

// Close stops accepting and waits for in-flight tunnels to finish.
func (p *SOCKS4Proxy) Close() {
	p.wait()
}
