package transfer

import (
	"time"

	"github.com/xxxsen/davsync/davclient"
)

const (
	defaultThread        = 4
	defaultRetry         = 3
	defaultRetryInterval = time.Second
)

type config struct {
	Thread        int
	Retry         int
	RetryInterval time.Duration
	Client        davclient.IClient
}

type Option func(*config)

func WithClient(cli davclient.IClient) Option {
	return func(c *config) {
		c.Client = cli
	}
}

func WithThread(t int) Option {
	return func(c *config) {
		c.Thread = t
	}
}

// WithRetry sets how many times a task is attempted when it fails with a
// transport error, and the pause between attempts.
func WithRetry(times int, interval time.Duration) Option {
	return func(c *config) {
		c.Retry = times
		c.RetryInterval = interval
	}
}
