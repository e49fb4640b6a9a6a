package httpc

// Package httpc is a minimal HTTP/1.1 client that reaches every target
// through a Tor SOCKS4a tunnel.
//
// Each attempt dials a fresh tunnel, sends one request with
// "Connection: close" and reads the reply into a fixed 8 KiB buffer until
// the buffer fills or the server closes the connection. Bodies larger than
// the buffer are truncated. When asked to, the client follows 3xx redirects
// up to a limit, downgrading POST to GET on 301, 302 and 303.
//
// There is no TLS: https targets are parsed and dialed on port 443 but the
// request is written in clear text.
