package httpc

import (
	"bytes"
	"regexp"
	"strconv"

	"github.com/torilate/torilate/internal/failure"
)

// MaxResponseSize is the capacity of the response buffer. Anything the
// server sends past it is dropped.
const MaxResponseSize = 8192

var statusLineRE = regexp.MustCompile(`^HTTP/[0-9]+\.[0-9]+ ([0-9]{3})(?:[ \t\r\n]|$)`)

var headerEnd = []byte("\r\n\r\n")

// Response is one HTTP reply as read off the wire, possibly truncated.
type Response struct {
	StatusCode int

	raw []byte
}

// Raw returns every byte received, status line included.
func (r *Response) Raw() []byte {
	return r.raw
}

// BytesReceived is len(Raw()).
func (r *Response) BytesReceived() int {
	return len(r.raw)
}

// Truncated reports whether the buffer filled up, in which case the server
// may have had more to send.
func (r *Response) Truncated() bool {
	return len(r.raw) >= MaxResponseSize
}

// IsRedirect reports a 3xx status.
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// StatusLine returns the first line without leading blank characters.
func (r *Response) StatusLine() string {
	s := skipBlank(r.raw)
	if i := bytes.Index(s, []byte("\r\n")); i >= 0 {
		s = s[:i]
	}
	return string(s)
}

// Header returns the header block between the status line and the blank
// line, or up to the end of the buffer when the blank line was cut off.
func (r *Response) Header() []byte {
	s := skipBlank(r.raw)
	i := bytes.Index(s, []byte("\r\n"))
	if i < 0 {
		return nil
	}
	s = s[i+2:]
	if bytes.HasPrefix(s, []byte("\r\n")) {
		return nil
	}
	if j := bytes.Index(s, headerEnd); j >= 0 {
		return s[:j+2]
	}
	return s
}

// Body returns the content after the first CRLFCRLF, or nil when the buffer
// holds no complete header block.
func (r *Response) Body() []byte {
	i := bytes.Index(r.raw, headerEnd)
	if i < 0 {
		return nil
	}
	return r.raw[i+len(headerEnd):]
}

type receiver interface {
	Recv(buf []byte) (int, error)
}

// readResponse drains conn until the buffer is full or the peer closes, then
// parses the status line. A malformed status line always fails.
func readResponse(conn receiver) (*Response, error) {
	buf := make([]byte, MaxResponseSize)
	total := 0
	for total < len(buf) {
		n, err := conn.Recv(buf[total:])
		if err != nil {
			return nil, failure.Wrap(err, "Failed to receive HTTP response")
		}
		if n == 0 {
			break
		}
		total += n
	}

	resp := &Response{raw: buf[:total]}
	code, err := parseStatusCode(resp.raw)
	if err != nil {
		return nil, err
	}
	resp.StatusCode = code
	return resp, nil
}

func parseStatusCode(raw []byte) (int, error) {
	m := statusLineRE.FindSubmatch(skipBlank(raw))
	if m == nil {
		return 0, failure.New(failure.BadResponse, "Malformed HTTP header: Unable to parse status code")
	}
	code, _ := strconv.Atoi(string(m[1]))
	if code < 100 || code > 599 {
		return 0, failure.New(failure.BadResponse, "Malformed HTTP header: Unable to parse status code")
	}
	return code, nil
}

func skipBlank(b []byte) []byte {
	return bytes.TrimLeft(b, " \r\n")
}
