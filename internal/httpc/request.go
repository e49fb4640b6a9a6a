package httpc

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/torilate/torilate/internal/failure"
	"github.com/torilate/torilate/internal/netsock"
	"github.com/torilate/torilate/internal/uri"
)

const (
	MethodGet  = "GET"
	MethodPost = "POST"
)

// buildRequest renders the request text. Extra headers are validated and
// trimmed first; the first bad one aborts the request.
func buildRequest(method string, target uri.URI, userAgent string, headers []string, body []byte) ([]byte, error) {
	lines := make([]string, 0, len(headers))
	for _, h := range headers {
		line, err := normalizeHeader(h)
		if err != nil {
			return nil, failure.Wrap(err, "Invalid header: %s", h)
		}
		lines = append(lines, line)
	}

	var b bytes.Buffer
	b.WriteString(method)
	b.WriteByte(' ')
	b.WriteString(target.Path)
	b.WriteString(" HTTP/1.1\r\n")

	b.WriteString("Host: ")
	b.WriteString(hostHeader(target))
	b.WriteString("\r\n")

	b.WriteString("User-Agent: ")
	b.WriteString(userAgent)
	b.WriteString("\r\n")

	b.WriteString("Connection: close\r\n")

	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	if method == MethodPost {
		b.WriteString("Content-Length: ")
		b.WriteString(strconv.Itoa(len(body)))
		b.WriteString("\r\n")
	}

	b.WriteString("\r\n")

	if method == MethodPost {
		b.Write(body)
	}
	return b.Bytes(), nil
}

// hostHeader omits the port only when it is 80, whatever the scheme.
func hostHeader(target uri.URI) string {
	host := target.Host
	if target.Kind == netsock.IPv6 {
		host = "[" + host + "]"
	}
	if target.Port != 80 {
		host += ":" + strconv.Itoa(int(target.Port))
	}
	return host
}

// normalizeHeader accepts "Name: value" with at most one trailing line
// terminator and returns it trimmed of surrounding whitespace.
func normalizeHeader(h string) (string, error) {
	s := strings.TrimSuffix(h, "\n")
	s = strings.TrimSuffix(s, "\r")
	if strings.ContainsAny(s, "\r\n") {
		return "", failure.New(failure.InvalidHeader, "embedded line break")
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return "", failure.New(failure.InvalidHeader, "empty header")
	}

	name, value, ok := strings.Cut(s, ":")
	if !ok {
		return "", failure.New(failure.InvalidHeader, "missing ':' separator")
	}
	if !httpguts.ValidHeaderFieldName(name) {
		return "", failure.New(failure.InvalidHeader, "bad field name '%s'", name)
	}
	if !httpguts.ValidHeaderFieldValue(strings.TrimSpace(value)) {
		return "", failure.New(failure.InvalidHeader, "bad field value for '%s'", name)
	}
	return s, nil
}
