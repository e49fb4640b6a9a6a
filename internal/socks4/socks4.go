package socks4

import (
	"fmt"

	"github.com/torilate/torilate/internal/failure"
	"github.com/torilate/torilate/internal/netsock"
)

const (
	Version    = 0x04
	CmdConnect = 0x01
	CmdBind    = 0x02

	// ReplyVersion is the first byte of every reply.
	ReplyVersion = 0x00

	replyLen = 8

	// MaxRequestLen bounds an encoded request. Exceeding it means a caller
	// passed an absurd user-id or host, not that the network misbehaved.
	MaxRequestLen = 512
)

// socks4aIP marks a request whose destination name follows the user-id.
var socks4aIP = [4]byte{0, 0, 0, 1}

// Status is the reply code in byte 1 of a SOCKS4 reply.
type Status byte

const (
	StatusGranted           Status = 90
	StatusRejected          Status = 91
	StatusIdentdUnreachable Status = 92
	StatusIdentdMismatch    Status = 93
)

func (s Status) String() string {
	switch s {
	case StatusGranted:
		return "request granted"
	case StatusRejected:
		return "request rejected or failed"
	case StatusIdentdUnreachable:
		return "request rejected, proxy cannot reach identd on the client"
	case StatusIdentdMismatch:
		return "request rejected, identd reports a different user-id"
	default:
		return fmt.Sprintf("unknown status %d", byte(s))
	}
}

// Request is a SOCKS4 request. Domain is only set for SOCKS4a.
type Request struct {
	Command byte
	Port    uint16
	IP      [4]byte
	UserID  string
	Domain  string
}

// NewConnectRequest builds a CONNECT request for host:port. Domain names use
// the SOCKS4a form; IPv6 destinations cannot be expressed in SOCKS4.
func NewConnectRequest(host string, port uint16, userID string, kind netsock.AddrKind) (*Request, error) {
	req := &Request{Command: CmdConnect, Port: port, UserID: userID}

	switch kind {
	case netsock.IPv4:
		ip, err := netsock.ParseIPv4(host)
		if err != nil {
			return nil, err
		}
		req.IP = ip
	case netsock.Domain:
		if host == "" {
			return nil, failure.New(failure.InvalidAddress, "Empty destination host")
		}
		req.IP = socks4aIP
		req.Domain = host
	case netsock.IPv6:
		return nil, failure.New(failure.InvalidAddress, "SOCKS4 cannot reach IPv6 destination '%s'", host)
	default:
		return nil, failure.New(failure.InvalidAddress, "Unknown address kind %d for '%s'", kind, host)
	}
	return req, nil
}

// IsSOCKS4a reports whether the request carries a domain name.
func (r *Request) IsSOCKS4a() bool {
	return r.IP[0] == 0 && r.IP[1] == 0 && r.IP[2] == 0 && r.IP[3] != 0
}

// Bytes encodes r:
//
//	[0x04][cmd][port:2][ip:4][user-id][0x00]([domain][0x00] for SOCKS4a)
func (r *Request) Bytes() ([]byte, error) {
	n := 8 + len(r.UserID) + 1
	if r.Domain != "" {
		n += len(r.Domain) + 1
	}
	if n > MaxRequestLen {
		return nil, failure.New(failure.InvalidArgs, "SOCKS4 request of %d bytes exceeds the %d byte limit", n, MaxRequestLen)
	}

	port := netsock.PortBytes(r.Port)
	b := make([]byte, 0, n)
	b = append(b, Version, r.Command)
	b = append(b, port[:]...)
	b = append(b, r.IP[:]...)
	b = append(b, r.UserID...)
	b = append(b, 0x00)
	if r.Domain != "" {
		b = append(b, r.Domain...)
		b = append(b, 0x00)
	}
	return b, nil
}

// Destination returns the host the request asks for, for messages.
func (r *Request) Destination() string {
	if r.Domain != "" {
		return r.Domain
	}
	return fmt.Sprintf("%d.%d.%d.%d", r.IP[0], r.IP[1], r.IP[2], r.IP[3])
}
