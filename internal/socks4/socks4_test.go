package socks4

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/torilate/torilate/internal/failure"
	"github.com/torilate/torilate/internal/netsock"
)

func TestRequestBytesIPv4(t *testing.T) {
	t.Parallel()

	req, err := NewConnectRequest("93.184.216.34", 80, "torilate", netsock.IPv4)
	if err != nil {
		t.Fatal(err)
	}
	got, err := req.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	want := []byte{0x04, 0x01, 0x00, 0x50, 93, 184, 216, 34}
	want = append(want, "torilate"...)
	want = append(want, 0x00)

	if !bytes.Equal(got, want) {
		t.Fatalf("got  % x\nwant % x", got, want)
	}
	if len(got) != 2+2+4+len("torilate")+1 {
		t.Fatalf("length %d", len(got))
	}
}

func TestRequestBytesSOCKS4a(t *testing.T) {
	t.Parallel()

	req, err := NewConnectRequest("example.com", 8080, "torilate", netsock.Domain)
	if err != nil {
		t.Fatal(err)
	}
	got, err := req.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	want := []byte{0x04, 0x01, 0x1f, 0x90, 0, 0, 0, 1}
	want = append(want, "torilate\x00example.com\x00"...)

	if !bytes.Equal(got, want) {
		t.Fatalf("got  % x\nwant % x", got, want)
	}
	if !req.IsSOCKS4a() {
		t.Fatal("expected SOCKS4a request")
	}
}

func TestRequestEmptyUserID(t *testing.T) {
	t.Parallel()

	req, err := NewConnectRequest("10.0.0.1", 443, "", netsock.IPv4)
	if err != nil {
		t.Fatal(err)
	}
	got, err := req.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x04, 0x01, 0x01, 0xbb, 10, 0, 0, 1, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("got  % x\nwant % x", got, want)
	}
}

func TestNewConnectRequestInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		host string
		kind netsock.AddrKind
	}{
		{name: "ipv6", host: "2001:db8::1", kind: netsock.IPv6},
		{name: "bad ipv4", host: "999.1.1.1", kind: netsock.IPv4},
		{name: "empty domain", host: "", kind: netsock.Domain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConnectRequest(tt.host, 80, "torilate", tt.kind)
			if !errors.Is(err, failure.InvalidAddress) {
				t.Fatalf("expected InvalidAddress, got %v", err)
			}
		})
	}
}

func TestRequestTooLong(t *testing.T) {
	t.Parallel()

	req, err := NewConnectRequest(strings.Repeat("a", MaxRequestLen), 80, "torilate", netsock.Domain)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := req.Bytes(); !errors.Is(err, failure.InvalidArgs) {
		t.Fatalf("expected InvalidArgs, got %v", err)
	}
}

func TestConnect(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		kind     netsock.AddrKind
		reply    []byte
		wantKind failure.Kind
		wantMsg  string
	}{
		{
			name:  "granted ipv4",
			host:  "93.184.216.34",
			kind:  netsock.IPv4,
			reply: []byte{0x00, 90, 0, 0, 0, 0, 0, 0},
		},
		{
			name:  "granted domain",
			host:  "example.com",
			kind:  netsock.Domain,
			reply: []byte{0x00, 90, 0, 80, 1, 2, 3, 4},
		},
		{
			name:     "rejected",
			host:     "example.com",
			kind:     netsock.Domain,
			reply:    []byte{0x00, 91, 0, 0, 0, 0, 0, 0},
			wantKind: failure.ConnectionFailed,
			wantMsg:  "status 91",
		},
		{
			name:     "identd mismatch",
			host:     "example.com",
			kind:     netsock.Domain,
			reply:    []byte{0x00, 93, 0, 0, 0, 0, 0, 0},
			wantKind: failure.ConnectionFailed,
			wantMsg:  "example.com:80",
		},
		{
			name:     "bad reply version",
			host:     "example.com",
			kind:     netsock.Domain,
			reply:    []byte{0x04, 90, 0, 0, 0, 0, 0, 0},
			wantKind: failure.ConnectionFailed,
			wantMsg:  "reply version 4",
		},
		{
			name:     "short reply",
			host:     "example.com",
			kind:     netsock.Domain,
			reply:    []byte{0x00, 90, 0, 0},
			wantKind: failure.ConnectionFailed,
			wantMsg:  "after 4 of 8 reply bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clientConn, serverConn := net.Pipe()
			defer clientConn.Close()

			g := errgroup.Group{}
			g.Go(func() error {
				defer serverConn.Close()

				req, err := ReadRequest(serverConn)
				if err != nil {
					return err
				}
				if req.Command != CmdConnect || req.Port != 80 || req.UserID != "torilate" {
					return fmt.Errorf("unexpected request: %+v", req)
				}
				if req.Destination() != tt.host {
					return fmt.Errorf("destination %q want %q", req.Destination(), tt.host)
				}
				_, err = serverConn.Write(tt.reply)
				return err
			})

			err := Connect(netsock.FromConn(clientConn), tt.host, 80, "torilate", tt.kind)
			if gerr := g.Wait(); gerr != nil {
				t.Fatal(gerr)
			}

			if tt.wantKind == failure.OK {
				if err != nil {
					t.Fatal(err)
				}
				return
			}
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("kind=%v want %v (%v)", failure.KindOf(err), tt.wantKind, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("message %q does not contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestWriteReplyRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteReply(&buf, StatusRejected, 9050, [4]byte{127, 0, 0, 1}); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x00, 91, 0x23, 0x5a, 127, 0, 0, 1}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x want % x", buf.Bytes(), want)
	}
}

func TestReadRequestStopsAtTerminator(t *testing.T) {
	t.Parallel()

	raw := []byte{0x04, 0x01, 0x00, 0x50, 0, 0, 0, 1}
	raw = append(raw, "id\x00host.example\x00GET / HTTP/1.1\r\n"...)
	r := bytes.NewReader(raw)

	req, err := ReadRequest(r)
	if err != nil {
		t.Fatal(err)
	}
	if req.UserID != "id" || req.Domain != "host.example" {
		t.Fatalf("got %+v", req)
	}
	if r.Len() != len("GET / HTTP/1.1\r\n") {
		t.Fatalf("over-read: %d bytes left", r.Len())
	}
}
