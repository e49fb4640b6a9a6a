package testutil

import (
	"bytes"
	"io"
	"net"
	"testing"

	"github.com/torilate/torilate/internal/socks4"
)

// Stream is the send/receive half of a tunnel socket.
type Stream interface {
	SendAll(buf []byte) error
	Recv(buf []byte) (int, error)
}

// EchoTunnel copies whatever arrives on an accepted tunnel back to the
// client until it half-closes or disconnects.
func EchoTunnel(_ *socks4.Request, c net.Conn) {
	_, _ = io.Copy(c, c)
}

func AssertEcho(t *testing.T, s Stream, msg []byte) {
	t.Helper()

	if err := s.SendAll(msg); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, len(msg))
	got := 0
	for got < len(buf) {
		n, err := s.Recv(buf[got:])
		if err != nil {
			t.Fatal(err)
		}
		if n == 0 {
			t.Fatalf("peer closed after %d of %d bytes", got, len(buf))
		}
		got += n
	}
	if !bytes.Equal(buf, msg) {
		t.Fatalf("expected %q got %q", string(msg), string(buf))
	}
}
