package socks4

import (
	"github.com/torilate/torilate/internal/failure"
	"github.com/torilate/torilate/internal/netsock"
)

// Conn is the part of a socket the handshake needs. *netsock.Socket
// satisfies it.
type Conn interface {
	SendAll(buf []byte) error
	Recv(buf []byte) (int, error)
}

// Connect asks the proxy on conn to open a tunnel to host:port.
func Connect(conn Conn, host string, port uint16, userID string, kind netsock.AddrKind) error {
	req, err := NewConnectRequest(host, port, userID, kind)
	if err != nil {
		return err
	}
	b, err := req.Bytes()
	if err != nil {
		return err
	}

	if err := conn.SendAll(b); err != nil {
		return failure.Wrap(err, "write request")
	}

	var reply [replyLen]byte
	if err := recvFull(conn, reply[:]); err != nil {
		return err
	}

	if reply[0] != ReplyVersion || Status(reply[1]) != StatusGranted {
		return failure.New(failure.ConnectionFailed,
			"SOCKS4 request to %s:%d rejected (reply version %d, status %d: %s)",
			host, port, reply[0], reply[1], Status(reply[1]))
	}
	return nil
}

// recvFull fills buf or fails; a short reply is never accepted.
func recvFull(conn Conn, buf []byte) error {
	got := 0
	for got < len(buf) {
		n, err := conn.Recv(buf[got:])
		if err != nil {
			return failure.Wrap(err, "read reply after %d of %d bytes", got, len(buf))
		}
		if n == 0 {
			return failure.New(failure.ConnectionFailed, "proxy closed the connection after %d of %d reply bytes", got, len(buf))
		}
		got += n
	}
	return nil
}
