package dialer

import (
	"net"
	"time"

	"github.com/torilate/torilate/internal/netsock"
)

// DefaultUserID is sent in every SOCKS4 request unless Config.UserID is set.
const DefaultUserID = "torilate"

type Config struct {
	DialTimeout time.Duration
	IOTimeout   time.Duration
	KeepAlive   net.KeepAliveConfig

	// UserID is the SOCKS4 user-id field. Tor isolates streams with
	// different user-ids onto different circuits when IsolateSOCKSAuth is on.
	UserID string
}

func (c Config) userID() string {
	if c.UserID == "" {
		return DefaultUserID
	}
	return c.UserID
}

func (c Config) socket() netsock.Config {
	return netsock.Config{
		DialTimeout: c.DialTimeout,
		IOTimeout:   c.IOTimeout,
		KeepAlive:   c.KeepAlive,
	}
}
