package socks4

// Package socks4 implements the SOCKS4 and SOCKS4a CONNECT handshake used to
// open a tunnel through the Tor SOCKS port.
//
// The client side encodes the request, sends it over an already connected
// socket and checks the fixed 8-byte reply. Domain-name targets use the 4a
// form (IP 0.0.0.1 followed by the name) so resolution happens on the proxy
// and never locally.
//
// The server side (ReadRequest, WriteReply) exists for loopback test proxies;
// it is not a proxy implementation.
