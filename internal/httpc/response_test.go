package httpc

import (
	"errors"
	"strings"
	"testing"

	"github.com/torilate/torilate/internal/failure"
)

// chunkReader hands out data a few bytes per Recv, then reports close.
type chunkReader struct {
	data  []byte
	chunk int
	err   error
}

func (r *chunkReader) Recv(buf []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := min(r.chunk, len(buf), len(r.data))
	copy(buf, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func TestReadResponse(t *testing.T) {
	t.Parallel()

	raw := "HTTP/1.1 404 Not Found\r\nContent-Type: text/plain\r\nX-A: b\r\n\r\nnope"
	resp, err := readResponse(&chunkReader{data: []byte(raw), chunk: 3})
	if err != nil {
		t.Fatal(err)
	}

	if resp.StatusCode != 404 {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if string(resp.Raw()) != raw || resp.BytesReceived() != len(raw) {
		t.Fatalf("raw %q", resp.Raw())
	}
	if got := resp.StatusLine(); got != "HTTP/1.1 404 Not Found" {
		t.Fatalf("status line %q", got)
	}
	if got := string(resp.Header()); got != "Content-Type: text/plain\r\nX-A: b\r\n" {
		t.Fatalf("header %q", got)
	}
	if got := string(resp.Body()); got != "nope" {
		t.Fatalf("body %q", got)
	}
	if resp.Truncated() || resp.IsRedirect() {
		t.Fatal("unexpected flags")
	}
}

func TestReadResponseTruncatesWithoutHeaderEnd(t *testing.T) {
	t.Parallel()

	raw := "HTTP/1.1 200 OK\r\nX-Pad: " + strings.Repeat("p", 2*MaxResponseSize)
	resp, err := readResponse(&chunkReader{data: []byte(raw), chunk: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if resp.BytesReceived() != MaxResponseSize || !resp.Truncated() {
		t.Fatalf("received %d", resp.BytesReceived())
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if resp.Body() != nil {
		t.Fatal("body without header end")
	}
	if !strings.HasPrefix(string(resp.Header()), "X-Pad: ppp") {
		t.Fatalf("header %q", resp.Header()[:16])
	}
}

func TestReadResponseRecvError(t *testing.T) {
	t.Parallel()

	_, err := readResponse(&chunkReader{data: []byte("HTTP/1.1 200"), chunk: 4, err: failure.New(failure.NetRecvFailed, "recv() failed with error 104 ECONNRESET")})
	if !errors.Is(err, failure.NetRecvFailed) {
		t.Fatalf("expected NetRecvFailed, got %v", err)
	}
	var fe *failure.Error
	if !errors.As(err, &fe) || fe.TopLevel() != "Failed to receive HTTP response" {
		t.Fatalf("unexpected %v", err)
	}
}

func TestParseStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "HTTP/1.1 200 OK\r\n", want: 200},
		{raw: "HTTP/1.0 301\r\n", want: 301},
		{raw: "HTTP/2.0 599 Odd", want: 599},
		{raw: "\r\n  \r\nHTTP/1.1 100 Continue\r\n", want: 100},
		{raw: "HTTP/1.1 200", want: 200},
		{raw: "HTTP/10.1 200 OK\r\n", want: 200},
		{raw: "HTTP/1.1 200\tOK\r\n", want: 200},
		{raw: "", wantErr: true},
		{raw: "HTTP/1.1 099 Low\r\n", wantErr: true},
		{raw: "HTTP/1.1 600 High\r\n", wantErr: true},
		{raw: "HTTP/1.1 20 Short\r\n", wantErr: true},
		{raw: "HTTP/1.1 2000 Long\r\n", wantErr: true},
		{raw: "HTTP/1.1 abc\r\n", wantErr: true},
		{raw: "HTTP/11 200 OK\r\n", wantErr: true},
		{raw: "http/1.1 200 OK\r\n", wantErr: true},
		{raw: "\tHTTP/1.1 200 OK\r\n", wantErr: true},
		{raw: "<html>", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseStatusCode([]byte(tt.raw))
			if tt.wantErr {
				if !errors.Is(err, failure.BadResponse) {
					t.Fatalf("parseStatusCode(%q) err=%v", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %d want %d", got, tt.want)
			}
		})
	}
}
