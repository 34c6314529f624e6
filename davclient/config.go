package davclient

import (
	"crypto/tls"
	"time"
)

type config struct {
	TLSConfig       *tls.Config
	MaxIdleConns    int
	IdleConnTimeout time.Duration
	UserAgent       string
}

type Option func(*config)

// WithTLSConfig replaces the tls settings of the underlying transport,
// e.g. to trust a private CA.
func WithTLSConfig(t *tls.Config) Option {
	return func(c *config) {
		c.TLSConfig = t
	}
}

func WithMaxIdleConns(n int) Option {
	return func(c *config) {
		c.MaxIdleConns = n
	}
}

func WithIdleConnTimeout(d time.Duration) Option {
	return func(c *config) {
		c.IdleConnTimeout = d
	}
}

func WithUserAgent(ua string) Option {
	return func(c *config) {
		c.UserAgent = ua
	}
}
