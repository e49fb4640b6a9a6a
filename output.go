package main

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"syscall"

	"github.com/torilate/torilate/internal/failure"
	"github.com/torilate/torilate/internal/httpc"
)

// render picks the bytes to show for resp according to the output flags.
func render(o *commonOptions, resp *httpc.Response) []byte {
	switch {
	case o.raw:
		return resp.Raw()
	case o.contentOnly:
		return resp.Body()
	default:
		out := append([]byte(resp.StatusLine()), "\n\n"...)
		return append(out, resp.Body()...)
	}
}

// emit writes the rendered response to --output when set, stdout otherwise.
func emit(stdout io.Writer, o *commonOptions, resp *httpc.Response) error {
	data := render(o, resp)
	if o.output != "" {
		return writeFile(o.output, data)
	}
	if _, err := stdout.Write(data); err != nil {
		return failure.New(failure.IO, "Failed to write response to stdout").WithCause(err)
	}
	return nil
}

func readFile(name string) ([]byte, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, fileFailure(err, "Failed to read '%s'", name)
	}
	return b, nil
}

func writeFile(name string, data []byte) error {
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fileFailure(err, "Failed to write '%s'", name)
	}
	return nil
}

func fileFailure(err error, format string, args ...any) error {
	kind := failure.IO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = failure.FileNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = failure.NoPermission
	case errors.Is(err, syscall.ENOMEM):
		kind = failure.OutOfMemory
	}
	return failure.Wrap(failure.New(kind, "%s", err).WithCause(err), format, args...)
}
