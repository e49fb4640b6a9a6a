package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/torilate/torilate/internal/dialer"
	"github.com/torilate/torilate/internal/failure"
	"github.com/torilate/torilate/internal/netsock"
)

// Set via ldflags at build time.
var version = "0.1.2-alpha"

// upstream is the Tor SOCKS endpoint. It is not a flag: changing it means
// rebuilding.
var upstream = dialer.DefaultUpstream

func main() {
	var verbose bool
	if err := run(os.Args[1:], os.Stdout, os.Stderr, &verbose); err != nil {
		fmt.Fprintln(os.Stderr, failure.Render(err, verbose))
		os.Exit(failure.ExitCode(err))
	}
}

func run(args []string, stdout, stderr io.Writer, verbose *bool) error {
	if err := netsock.Init(); err != nil {
		return err
	}
	defer netsock.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdout, stderr, verbose)
	root.SetArgs(args)
	return execute(ctx, root)
}

// execute runs root and gives cobra's own usage errors a failure kind.
func execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	var fe *failure.Error
	if err != nil && !errors.As(err, &fe) {
		return failure.New(failure.InvalidArgs, "Failed to parse command arguments: %s", err)
	}
	return err
}

func newRootCmd(stdout, stderr io.Writer, verbose *bool) *cobra.Command {
	root := &cobra.Command{
		Use:   "torilate <command> <url> [options]",
		Short: "Send HTTP requests through the Tor network",
		Long: `torilate routes HTTP/1.1 requests through a local Tor SOCKS port.

Every request opens its own SOCKS4a tunnel to ` + upstream + `, so host names
are resolved by Tor and never locally.`,
		Example: `  torilate get example.com
  torilate get httpbin.org/redirect/3 -f -v
  torilate post example.com -t application/json -b '{"key":"value"}'`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return failure.New(failure.NoArgs, "Use '%s help' for usage information", failure.Program)
			}
			return failure.New(failure.InvalidCommand, "Invalid command '%s'. Use '%s help' for usage information.", args[0], failure.Program)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return failure.New(failure.InvalidArgs, "Failed to parse command arguments: %s", err)
	})

	root.AddCommand(
		newGetCmd(stdout, stderr, verbose),
		newPostCmd(stdout, stderr, verbose),
		newVersionCmd(stdout),
	)
	return root
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func parseTCPKeepAlive(s string) (net.KeepAliveConfig, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return net.KeepAliveConfig{}, errors.New("empty")
	}
	if s == "on" {
		return net.KeepAliveConfig{Enable: true}, nil
	}
	if s == "off" {
		return net.KeepAliveConfig{Enable: false}, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return net.KeepAliveConfig{}, errors.New("expected on|off|keepidle:keepintvl:keepcnt")
	}
	keepIdle, err := parsePositiveSeconds(parts[0])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepidle: %w", err)
	}
	keepIntvl, err := parsePositiveSeconds(parts[1])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepintvl: %w", err)
	}
	keepCnt, err := parsePositiveInt(parts[2])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepcnt: %w", err)
	}

	return net.KeepAliveConfig{
		Enable:   true,
		Idle:     keepIdle,
		Interval: keepIntvl,
		Count:    keepCnt,
	}, nil
}

func parsePositiveSeconds(s string) (time.Duration, error) {
	n, err := parsePositiveInt(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("must be > 0")
	}
	return n, nil
}
