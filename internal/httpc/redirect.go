package httpc

import (
	"bytes"

	"github.com/torilate/torilate/internal/failure"
)

var locationPrefix = []byte("location:")

// location finds the Location header of a redirect. Lines are scanned from
// the one after the status line until the blank line that ends the header
// block; the name match is case-insensitive and the value is trimmed of
// surrounding blanks.
func location(raw []byte) (string, error) {
	i := bytes.Index(raw, []byte("\r\n"))
	for i >= 0 {
		line := raw[i+2:]
		if bytes.HasPrefix(line, []byte("\r\n")) {
			break
		}
		if len(line) >= len(locationPrefix) && bytes.EqualFold(line[:len(locationPrefix)], locationPrefix) {
			v := bytes.TrimLeft(line[len(locationPrefix):], " ")
			end := bytes.Index(v, []byte("\r\n"))
			if end < 0 {
				return "", failure.New(failure.RedirectFailed, "Failed to extract Location header")
			}
			return string(bytes.TrimRight(v[:end], " \t")), nil
		}

		next := bytes.Index(line, []byte("\r\n"))
		if next < 0 {
			break
		}
		i += 2 + next
	}
	return "", failure.New(failure.RedirectFailed, "Redirect missing Location header")
}

// redirectMethod returns the method for the request that follows a redirect
// with the given status. POST becomes GET on 301, 302 and 303; every other
// combination keeps the method.
func redirectMethod(method string, status int) string {
	if method != MethodPost {
		return method
	}
	switch status {
	case 301, 302, 303:
		return MethodGet
	default:
		return method
	}
}
