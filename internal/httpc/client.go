package httpc

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/torilate/torilate/internal/dialer"
	"github.com/torilate/torilate/internal/failure"
	"github.com/torilate/torilate/internal/uri"
)

// DefaultUserAgent is sent when Config.UserAgent is empty.
const DefaultUserAgent = "Torilate"

type Config struct {
	// Upstream is the Tor SOCKS endpoint; empty means dialer.DefaultUpstream.
	Upstream  string
	Dialer    dialer.Config
	Logger    zerolog.Logger
	UserAgent string
}

// Client performs requests through a Tor SOCKS port. It holds no
// connection state and is safe for concurrent use.
type Client struct {
	dialer    dialer.Dialer
	userAgent string
	log       zerolog.Logger
}

func New(cfg Config) (*Client, error) {
	upstream := cfg.Upstream
	if upstream == "" {
		upstream = dialer.DefaultUpstream
	}

	d, err := dialer.New(cfg.Dialer, upstream)
	if err != nil {
		return nil, err
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	return &Client{
		dialer:    d.WithLogger(cfg.Logger),
		userAgent: ua,
		log:       cfg.Logger,
	}, nil
}

var defaultClient = sync.OnceValues(func() (*Client, error) {
	return New(Config{})
})

// PerformGet sends a GET through the default Tor endpoint.
func PerformGet(ctx context.Context, rawURI string, headers []string, follow bool, maxRedirects int) (*Response, error) {
	c, err := defaultClient()
	if err != nil {
		return nil, err
	}
	return c.PerformGet(ctx, rawURI, headers, follow, maxRedirects)
}

// PerformPost sends a POST through the default Tor endpoint.
func PerformPost(ctx context.Context, rawURI string, body []byte, headers []string, follow bool, maxRedirects int) (*Response, error) {
	c, err := defaultClient()
	if err != nil {
		return nil, err
	}
	return c.PerformPost(ctx, rawURI, body, headers, follow, maxRedirects)
}

// PerformGet fetches rawURI. With follow set, 3xx replies are followed until
// a non-redirect arrives or maxRedirects hops have been made.
func (c *Client) PerformGet(ctx context.Context, rawURI string, headers []string, follow bool, maxRedirects int) (*Response, error) {
	return c.perform(ctx, MethodGet, rawURI, nil, headers, follow, maxRedirects)
}

// PerformPost posts body to rawURI. Redirects are followed as in PerformGet;
// a 301, 302 or 303 turns the rest of the chain into GETs without a body.
func (c *Client) PerformPost(ctx context.Context, rawURI string, body []byte, headers []string, follow bool, maxRedirects int) (*Response, error) {
	return c.perform(ctx, MethodPost, rawURI, body, headers, follow, maxRedirects)
}

func (c *Client) perform(ctx context.Context, method, rawURI string, body []byte, headers []string, follow bool, maxRedirects int) (*Response, error) {
	target, err := uri.Parse(rawURI)
	if err != nil {
		return nil, failure.Wrap(err, "Failed to parse URI: %s", rawURI)
	}

	log := c.log.With().Str("request_id", uuid.NewString()).Logger()

	resp, err := c.once(ctx, log, method, target, body, headers)
	if err != nil {
		if method == MethodPost {
			return nil, failure.Wrap(err, "Failed to POST to %s:%d", target.Host, target.Port)
		}
		return nil, failure.Wrap(err, "Failed to get HTTP response from %s:%d", target.Host, target.Port)
	}

	if !follow {
		return resp, nil
	}

	followed := 0
	for resp.IsRedirect() {
		if followed >= maxRedirects {
			return nil, failure.New(failure.RedirectLimit, "Exceeded maximum redirect limit of %d", maxRedirects)
		}
		followed++

		loc, err := location(resp.Raw())
		if err != nil {
			return nil, err
		}

		if next := redirectMethod(method, resp.StatusCode); next != method {
			method = next
			body = nil
		}

		if strings.HasPrefix(loc, "/") {
			target = target.WithPath(loc)
		} else {
			target, err = uri.Parse(loc)
			if err != nil {
				return nil, failure.Wrap(err, "Failed to parse redirect URL: %s", loc)
			}
		}

		log.Debug().
			Int("status", resp.StatusCode).
			Str("location", loc).
			Str("method", method).
			Int("hop", followed).
			Msg("following redirect")

		resp, err = c.once(ctx, log, method, target, body, headers)
		if err != nil {
			return nil, failure.Wrap(err, "HTTP redirect failed to %s:%d", target.Host, target.Port)
		}
	}

	return resp, nil
}

// once runs a single attempt on its own tunnel. The tunnel is closed before
// once returns, so a redirect always starts from a fresh proxy connection.
func (c *Client) once(ctx context.Context, log zerolog.Logger, method string, target uri.URI, body []byte, headers []string) (*Response, error) {
	req, err := buildRequest(method, target, c.userAgent, headers, body)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("method", method).
		Str("host", target.Host).
		Uint16("port", target.Port).
		Str("path", target.Path).
		Msg("sending request")
	if target.Scheme == uri.HTTPS {
		log.Warn().Str("url", target.String()).Msg("https target is sent without TLS")
	}

	sock, err := c.dialer.Dial(ctx, target)
	if err != nil {
		return nil, err
	}
	defer sock.Close()

	if err := sock.SendAll(req); err != nil {
		return nil, failure.Wrap(err, "Failed to send HTTP request")
	}

	resp, err := readResponse(sock)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", resp.BytesReceived()).
		Bool("truncated", resp.Truncated()).
		Msg("response received")

	return resp, nil
}
