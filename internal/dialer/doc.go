package dialer

// Package dialer opens the per-attempt tunnel used by the HTTP engine.
//
// A Dialer connects to the Tor SOCKS port and negotiates a SOCKS4 or
// SOCKS4a CONNECT to the target, returning a socket that speaks directly to
// the destination. Every call opens a fresh proxy connection; tunnels are
// never reused.
