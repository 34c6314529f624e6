package davtest

import "time"

type config struct {
	root    string
	userMap map[string]string
	header  map[string]string
	delay   time.Duration
	tls     bool
}

type Option func(c *config)

// WithRoot mounts the dav tree under root, e.g. "/remote.php/webdav".
func WithRoot(root string) Option {
	return func(c *config) {
		c.root = root
	}
}

func WithUser(m map[string]string) Option {
	return func(c *config) {
		c.userMap = m
	}
}

// WithHeader adds a fixed header to every response, e.g. Server.
func WithHeader(k, v string) Option {
	return func(c *config) {
		c.header[k] = v
	}
}

// WithDelay holds every response for d before answering.
func WithDelay(d time.Duration) Option {
	return func(c *config) {
		c.delay = d
	}
}

// WithTLS serves over https with the httptest self-signed certificate.
func WithTLS() Option {
	return func(c *config) {
		c.tls = true
	}
}

func applyOpts(opts ...Option) *config {
	c := &config{
		root:    "/",
		userMap: map[string]string{},
		header:  map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
