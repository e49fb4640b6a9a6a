package httpc

import (
	"errors"
	"testing"

	"github.com/torilate/torilate/internal/failure"
)

func TestLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		want     string
		wantKind failure.Kind
	}{
		{
			name: "relative",
			raw:  "HTTP/1.1 301 Moved\r\nLocation: /new\r\n\r\n",
			want: "/new",
		},
		{
			name: "case insensitive, spaces skipped",
			raw:  "HTTP/1.1 302 Found\r\nServer: x\r\nlOcAtIoN:    http://b.example/x\r\nVary: *\r\n\r\n",
			want: "http://b.example/x",
		},
		{
			name: "no space",
			raw:  "HTTP/1.1 302 Found\r\nLocation:/x\r\n\r\n",
			want: "/x",
		},
		{
			name: "trailing blanks",
			raw:  "HTTP/1.1 301 Moved\r\nLocation: /new \t\r\n\r\n",
			want: "/new",
		},
		{
			name:     "missing",
			raw:      "HTTP/1.1 302 Found\r\nServer: x\r\n\r\n",
			wantKind: failure.RedirectFailed,
		},
		{
			name:     "only in body",
			raw:      "HTTP/1.1 302 Found\r\nServer: x\r\n\r\nLocation: /body\r\n",
			wantKind: failure.RedirectFailed,
		},
		{
			name:     "cut off",
			raw:      "HTTP/1.1 302 Found\r\nLocation: /trunc",
			wantKind: failure.RedirectFailed,
		},
		{
			name:     "status line only",
			raw:      "HTTP/1.1 302 Found",
			wantKind: failure.RedirectFailed,
		},
		{
			name:     "similar name",
			raw:      "HTTP/1.1 302 Found\r\nContent-Location: /c\r\n\r\n",
			wantKind: failure.RedirectFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := location([]byte(tt.raw))
			if tt.wantKind != failure.OK {
				if !errors.Is(err, tt.wantKind) {
					t.Fatalf("err=%v want %v", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestLocationCutOffMessage(t *testing.T) {
	t.Parallel()

	_, err := location([]byte("HTTP/1.1 302 Found\r\nLocation: /trunc"))
	if err == nil || err.Error() != "Failed to extract Location header" {
		t.Fatalf("got %v", err)
	}
}

func TestRedirectMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method string
		status int
		want   string
	}{
		{MethodPost, 301, MethodGet},
		{MethodPost, 302, MethodGet},
		{MethodPost, 303, MethodGet},
		{MethodPost, 307, MethodPost},
		{MethodPost, 308, MethodPost},
		{MethodPost, 300, MethodPost},
		{MethodGet, 301, MethodGet},
		{MethodGet, 307, MethodGet},
	}

	for _, tt := range tests {
		if got := redirectMethod(tt.method, tt.status); got != tt.want {
			t.Fatalf("redirectMethod(%s, %d)=%s want %s", tt.method, tt.status, got, tt.want)
		}
	}
}
