package servermgr

import "github.com/xxxsen/davsync/davclient"

type config struct {
	clientOpts []davclient.Option
	nowFn      func() int64
}

type Option func(c *config)

// WithClientOption is passed to every client the manager builds.
func WithClientOption(opts ...davclient.Option) Option {
	return func(c *config) {
		c.clientOpts = append(c.clientOpts, opts...)
	}
}

// WithNowFunc overrides the unix-seconds clock used for test timestamps.
func WithNowFunc(fn func() int64) Option {
	return func(c *config) {
		c.nowFn = fn
	}
}
