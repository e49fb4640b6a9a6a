package socks4

import (
	"fmt"
	"io"

	"github.com/torilate/torilate/internal/netsock"
)

// ReadRequest reads one request from r without consuming anything past its
// final terminator.
func ReadRequest(r io.Reader) (*Request, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if hdr[0] != Version {
		return nil, fmt.Errorf("unsupported version %d", hdr[0])
	}

	req := &Request{
		Command: hdr[1],
		Port:    netsock.Port([2]byte{hdr[2], hdr[3]}),
		IP:      [4]byte{hdr[4], hdr[5], hdr[6], hdr[7]},
	}

	userID, err := readCString(r, MaxRequestLen)
	if err != nil {
		return nil, fmt.Errorf("read user-id: %w", err)
	}
	req.UserID = userID

	if req.IsSOCKS4a() {
		domain, err := readCString(r, MaxRequestLen)
		if err != nil {
			return nil, fmt.Errorf("read domain: %w", err)
		}
		req.Domain = domain
	}
	return req, nil
}

// WriteReply writes an 8-byte reply with the given status.
func WriteReply(w io.Writer, status Status, port uint16, ip [4]byte) error {
	p := netsock.PortBytes(port)
	reply := [replyLen]byte{ReplyVersion, byte(status), p[0], p[1], ip[0], ip[1], ip[2], ip[3]}
	if _, err := w.Write(reply[:]); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	return nil
}

func readCString(r io.Reader, limit int) (string, error) {
	var (
		out []byte
		b   [1]byte
	)
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return "", err
		}
		if b[0] == 0x00 {
			return string(out), nil
		}
		if len(out) >= limit {
			return "", fmt.Errorf("field longer than %d bytes", limit)
		}
		out = append(out, b[0])
	}
}
