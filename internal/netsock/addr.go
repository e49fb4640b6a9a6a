package netsock

import (
	"encoding/binary"
	"net"
	"net/netip"
	"strings"

	txsocks5 "github.com/txthinking/socks5"

	"github.com/torilate/torilate/internal/failure"
)

// AddrKind is the textual form of a host.
type AddrKind int

const (
	IPv4 AddrKind = iota
	IPv6
	Domain
)

func (k AddrKind) String() string {
	switch k {
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	case Domain:
		return "domain"
	default:
		return "unknown"
	}
}

// KindOf classifies host as a literal IPv4 address, a literal IPv6 address
// or a domain name that must be resolved on the proxy side. It never
// performs a lookup.
func KindOf(host string) AddrKind {
	atyp, _, _, err := txsocks5.ParseAddress(net.JoinHostPort(host, "0"))
	if err != nil {
		return Domain
	}
	switch atyp {
	case txsocks5.ATYPIPv4:
		// IPv4-mapped IPv6 literals such as ::ffff:10.0.0.1.
		if strings.Contains(host, ":") {
			return IPv6
		}
		return IPv4
	case txsocks5.ATYPIPv6:
		return IPv6
	default:
		return Domain
	}
}

// ParseIPv4 returns the network-order bytes of a dotted-decimal address.
func ParseIPv4(s string) ([4]byte, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is4() {
		return [4]byte{}, failure.New(failure.InvalidAddress, "Invalid IPv4 address format: '%s'", s)
	}
	return addr.As4(), nil
}

// PortBytes returns port in network byte order.
func PortBytes(port uint16) [2]byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], port)
	return b
}

// Port reads a network-order port.
func Port(b [2]byte) uint16 {
	return binary.BigEndian.Uint16(b[:])
}
