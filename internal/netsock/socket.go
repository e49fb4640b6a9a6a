package netsock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/torilate/torilate/internal/failure"
)

// Config controls how sockets are opened. Zero timeouts block indefinitely.
type Config struct {
	DialTimeout time.Duration
	IOTimeout   time.Duration
	KeepAlive   net.KeepAliveConfig
}

// Socket is a connected, blocking TCP stream owned by a single request
// attempt. The zero value and a closed Socket are both invalid.
type Socket struct {
	conn      net.Conn
	ioTimeout time.Duration
	stop      func() bool

	// mu orders deadline writes so a cancel deadline is never overwritten.
	mu       sync.Mutex
	canceled bool
}

// Connect opens a TCP connection to the literal address ip:port. Host
// names are rejected rather than resolved locally.
func Connect(ctx context.Context, cfg Config, ip string, port uint16) (*Socket, error) {
	if err := std.Init(); err != nil {
		return nil, err
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return nil, failure.New(failure.InvalidAddress, "Failed to parse IP address '%s'", ip)
	}
	ap := netip.AddrPortFrom(addr, port)

	d := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", ap.String())
	if err != nil {
		kind := failure.ConnectionFailed
		if socketCreationErrno(err) {
			kind = failure.SocketCreationFailed
		}
		return nil, failure.New(kind, "Failed to connect to %s with error %s", ap, osErrorText(err)).WithCause(err)
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetKeepAliveConfig(cfg.KeepAlive)
	}

	return newSocket(ctx, conn, cfg.IOTimeout), nil
}

// FromConn adopts an already connected stream.
func FromConn(conn net.Conn) *Socket {
	return newSocket(context.Background(), conn, 0)
}

func newSocket(ctx context.Context, conn net.Conn, ioTimeout time.Duration) *Socket {
	s := &Socket{conn: conn, ioTimeout: ioTimeout}
	if ctx.Done() != nil {
		// A past deadline unblocks any pending Read or Write.
		s.stop = context.AfterFunc(ctx, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.canceled = true
			_ = conn.SetDeadline(time.Now())
		})
	}
	return s
}

// Valid reports whether s holds an open connection.
func (s *Socket) Valid() bool {
	return s != nil && s.conn != nil
}

// SendAll writes every byte of buf or fails, reporting how many bytes were
// accepted before the failure.
func (s *Socket) SendAll(buf []byte) error {
	if !s.Valid() {
		return failure.New(failure.NetworkIO, "send() on invalid socket")
	}

	sent := 0
	for sent < len(buf) {
		s.armDeadline()
		n, err := s.conn.Write(buf[sent:])
		sent += n
		if err != nil {
			return failure.New(failure.NetworkIO, "send() failed after %d/%d bytes (error %s)", sent, len(buf), osErrorText(err)).WithCause(err)
		}
		if n == 0 {
			return failure.New(failure.NetworkIO, "send() accepted 0 bytes after %d/%d bytes", sent, len(buf))
		}
	}
	return nil
}

// Recv reads into buf. A zero count with a nil error means the peer closed
// the connection.
func (s *Socket) Recv(buf []byte) (int, error) {
	if !s.Valid() {
		return 0, failure.New(failure.NetRecvFailed, "recv() on invalid socket")
	}
	if len(buf) == 0 {
		return 0, nil
	}

	s.armDeadline()
	n, err := s.conn.Read(buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		return n, failure.New(failure.NetRecvFailed, "recv() failed with error %s", osErrorText(err)).WithCause(err)
	}
	return n, nil
}

// Close releases the connection. It is idempotent and never fails.
func (s *Socket) Close() {
	if !s.Valid() {
		return
	}
	if s.stop != nil {
		s.stop()
	}
	_ = s.conn.Close()
	s.conn = nil
}

// RemoteAddr returns the peer address, or nil for an invalid socket.
func (s *Socket) RemoteAddr() net.Addr {
	if !s.Valid() {
		return nil
	}
	return s.conn.RemoteAddr()
}

func (s *Socket) armDeadline() {
	if s.ioTimeout <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canceled {
		return
	}
	_ = s.conn.SetDeadline(time.Now().Add(s.ioTimeout))
}

func osErrorText(err error) string {
	if code, name, ok := osError(err); ok {
		return fmt.Sprintf("%d %s", code, name)
	}
	return err.Error()
}
