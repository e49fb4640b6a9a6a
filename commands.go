package main

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/torilate/torilate/internal/dialer"
	"github.com/torilate/torilate/internal/failure"
	"github.com/torilate/torilate/internal/httpc"
)

const defaultMaxRedirects = 50

type commonOptions struct {
	output       string
	maxRedirects int
	follow       bool
	raw          bool
	contentOnly  bool
	verbose      bool
	headers      []string
	isolate      bool
	dialTimeout  time.Duration
	ioTimeout    time.Duration
	tcpKeepAlive string
}

type postOptions struct {
	contentType string
	body        string
	input       string
}

func addCommonFlags(fs *pflag.FlagSet, o *commonOptions) {
	fs.SortFlags = false
	fs.StringVarP(&o.output, "output", "o", "", "output file to store the response")
	fs.IntVar(&o.maxRedirects, "max-redirs", defaultMaxRedirects, "follow redirects up to the specified number of times")
	fs.BoolVarP(&o.follow, "follow", "f", false, "follow redirects")
	fs.BoolVarP(&o.raw, "raw", "r", false, "display the raw HTTP response")
	fs.BoolVarP(&o.contentOnly, "content-only", "c", false, "display only the content of the HTTP response")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "display verbose output and full error chains")
	fs.StringArrayVarP(&o.headers, "header", "H", nil, "extra request header 'Name: value' (repeatable)")
	fs.BoolVar(&o.isolate, "isolate", false, "use a random SOCKS user-id so Tor builds a separate circuit")
	fs.DurationVar(&o.dialTimeout, "dial-timeout", 0, "timeout for connecting to the Tor SOCKS port (0 waits forever)")
	fs.DurationVar(&o.ioTimeout, "io-timeout", 0, "timeout for each send or receive (0 waits forever)")
	fs.StringVar(&o.tcpKeepAlive, "tcp-keepalive", "45:45:3", "TCP keepalive: on|off|keepidle:keepintvl:keepcnt")
}

func exactlyOneURL(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return failure.New(failure.InvalidArgs, "'%s' expects exactly one <url>, got %d arguments", cmd.Name(), len(args))
	}
	return nil
}

func newGetCmd(stdout, stderr io.Writer, verbose *bool) *cobra.Command {
	var o commonOptions

	cmd := &cobra.Command{
		Use:   "get <url> [options]",
		Short: "Send HTTP GET request",
		Args:  exactlyOneURL,
		RunE: func(cmd *cobra.Command, args []string) error {
			*verbose = o.verbose

			client, log, err := newClient(&o, stderr)
			if err != nil {
				return err
			}

			resp, err := client.PerformGet(cmd.Context(), args[0], o.headers, o.follow, o.maxRedirects)
			if err != nil {
				return err
			}
			if resp.Truncated() {
				log.Warn().Int("bytes", resp.BytesReceived()).Msg("response truncated")
			}
			return emit(stdout, &o, resp)
		},
	}
	addCommonFlags(cmd.Flags(), &o)
	cmd.MarkFlagsMutuallyExclusive("raw", "content-only")

	return cmd
}

func newPostCmd(stdout, stderr io.Writer, verbose *bool) *cobra.Command {
	var (
		o  commonOptions
		po postOptions
	)

	cmd := &cobra.Command{
		Use:   "post <url> [options]",
		Short: "Send HTTP POST request",
		Args:  exactlyOneURL,
		RunE: func(cmd *cobra.Command, args []string) error {
			*verbose = o.verbose

			body := []byte(po.body)
			if po.input != "" {
				b, err := readFile(po.input)
				if err != nil {
					return err
				}
				body = b
			}

			headers := o.headers
			if po.contentType != "" {
				headers = append([]string{"Content-Type: " + po.contentType}, headers...)
			}

			client, log, err := newClient(&o, stderr)
			if err != nil {
				return err
			}

			resp, err := client.PerformPost(cmd.Context(), args[0], body, headers, o.follow, o.maxRedirects)
			if err != nil {
				return err
			}
			if resp.Truncated() {
				log.Warn().Int("bytes", resp.BytesReceived()).Msg("response truncated")
			}
			return emit(stdout, &o, resp)
		},
	}
	addCommonFlags(cmd.Flags(), &o)

	fs := cmd.Flags()
	fs.StringVarP(&po.contentType, "content-type", "t", "", "Content-Type header for the POST request")
	fs.StringVarP(&po.body, "body", "b", "", "body of the POST request")
	fs.StringVarP(&po.input, "input", "i", "", "input file for the POST request body")

	cmd.MarkFlagsMutuallyExclusive("raw", "content-only")
	cmd.MarkFlagsMutuallyExclusive("body", "input")

	return cmd
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(stdout, "%s %s\n", failure.Program, version)
		},
	}
}

func newClient(o *commonOptions, stderr io.Writer) (*httpc.Client, zerolog.Logger, error) {
	log := newLogger(stderr, o.verbose)

	ka, err := parseTCPKeepAlive(o.tcpKeepAlive)
	if err != nil {
		return nil, log, failure.New(failure.InvalidArgs, "invalid --tcp-keepalive: %s", err)
	}

	dcfg := dialer.Config{
		DialTimeout: o.dialTimeout,
		IOTimeout:   o.ioTimeout,
		KeepAlive:   ka,
	}
	if o.isolate {
		dcfg.UserID = dialer.DefaultUserID + "-" + uuid.NewString()
		log.Debug().Str("user_id", dcfg.UserID).Msg("isolated circuit")
	}

	client, err := httpc.New(httpc.Config{
		Upstream: upstream,
		Dialer:   dcfg,
		Logger:   log,
	})
	if err != nil {
		return nil, log, err
	}
	return client, log, nil
}
