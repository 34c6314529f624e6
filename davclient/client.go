package davclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davsync/daverr"
	"github.com/xxxsen/davsync/profile"
	"github.com/xxxsen/davsync/utils"
	"go.uber.org/zap"
)

type IClient interface {
	TestConnection(ctx context.Context) (ServerType, error)
	List(ctx context.Context, p string) ([]*FileEntry, error)
	Upload(ctx context.Context, localPath string, remotePath string) error
	Download(ctx context.Context, remotePath string, localPath string) error
	Delete(ctx context.Context, p string) error
	Mkdir(ctx context.Context, p string) error
}

// Client talks to one WebDAV endpoint with one credential. It keeps no state
// between calls besides the pooled connections of its http client, so it is
// safe for concurrent use.
type Client struct {
	c        *config
	base     *url.URL
	url      string
	username string
	timeout  time.Duration
	hc       *http.Client
}

type exchangeResult struct {
	code   int
	header http.Header
	body   []byte
}

// New validates p and secret before building anything; an invalid pair never
// yields a client.
func New(p *profile.ServerProfile, secret string, opts ...Option) (*Client, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := profile.ValidateSecret(secret); err != nil {
		return nil, err
	}
	base, err := url.Parse(p.URL)
	if err != nil {
		return nil, daverr.Config("invalid server config: invalid url format")
	}
	c := &config{
		MaxIdleConns:    defaultMaxIdleConns,
		IdleConnTimeout: defaultIdleConnTimeout,
		UserAgent:       defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	header := http.Header{}
	header.Set("Authorization", basicAuthValue(p.Username, secret))
	header.Set("User-Agent", c.UserAgent)
	timeout := p.TimeoutDuration()
	return &Client{
		c:        c,
		base:     base,
		url:      p.URL,
		username: p.Username,
		timeout:  timeout,
		hc:       newHTTPClient(c, timeout, header),
	}, nil
}

func (c *Client) URL() string {
	return c.url
}

func (c *Client) Username() string {
	return c.username
}

func (c *Client) Timeout() time.Duration {
	return c.timeout
}

func (c *Client) String() string {
	return fmt.Sprintf("WebDAV client for %s", c.url)
}

// Close drops idle pooled connections.
func (c *Client) Close() {
	c.hc.CloseIdleConnections()
}

// exchange sends one request, reads the whole response body and validates
// the status. Every public operation goes through here.
func (c *Client) exchange(ctx context.Context, spec *requestSpec) (*exchangeResult, error) {
	req, err := spec.toHTTPRequest(ctx, c.base)
	if err != nil {
		return nil, daverr.Config("build request failed, method:%s, path:%s", spec.method, spec.path)
	}
	logger := logutil.GetLogger(ctx).With(zap.String("method", spec.method), zap.String("url", req.URL.String()))
	start := time.Now()
	rsp, err := c.hc.Do(req)
	if err != nil {
		derr := classifyTransportError(err, c.timeout)
		logger.Error("webdav request failed", zap.Error(derr), zap.Duration("cost", time.Since(start)))
		return nil, derr
	}
	defer rsp.Body.Close()
	body, err := io.ReadAll(rsp.Body)
	if err != nil {
		derr := classifyTransportError(err, c.timeout)
		logger.Error("read webdav response body failed", zap.Error(derr), zap.Int("status", rsp.StatusCode))
		return nil, derr
	}
	if err := ClassifyStatus(rsp.StatusCode); err != nil {
		logger.Error("webdav request status not ok", zap.Int("status", rsp.StatusCode), zap.Error(err))
		return nil, err
	}
	logger.Debug("webdav request finish", zap.Int("status", rsp.StatusCode), zap.Int("body_size", len(body)), zap.Duration("cost", time.Since(start)))
	return &exchangeResult{
		code:   rsp.StatusCode,
		header: rsp.Header,
		body:   body,
	}, nil
}

// TestConnection probes the root collection with PROPFIND Depth 0 and
// reports the detected server implementation.
func (c *Client) TestConnection(ctx context.Context) (ServerType, error) {
	rs, err := c.exchange(ctx, buildProbeRequest())
	if err != nil {
		return "", err
	}
	if rs.code != http.StatusMultiStatus && rs.code != http.StatusOK {
		return "", daverr.Protocol(rs.code, "server does not appear to support WebDAV protocol, status:%d %s", rs.code, statusText(rs.code))
	}
	st := DetectServerType(rs.header)
	logutil.GetLogger(ctx).Info("webdav connection test succ", zap.String("url", c.url), zap.String("server_type", st.String()))
	return st, nil
}

// List returns the direct children of collection p.
func (c *Client) List(ctx context.Context, p string) ([]*FileEntry, error) {
	rs, err := c.exchange(ctx, buildListRequest(p))
	if err != nil {
		return nil, err
	}
	return ParseMultistatus(rs.body, c.base.Path, targetURL(c.base, p).Path)
}

func (c *Client) Upload(ctx context.Context, localPath string, remotePath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return daverr.LocalIO(err, "read local file failed, path:%s", localPath)
	}
	if _, err := c.exchange(ctx, buildPutRequest(remotePath, data)); err != nil {
		return err
	}
	return nil
}

func (c *Client) Download(ctx context.Context, remotePath string, localPath string) error {
	rs, err := c.exchange(ctx, buildGetRequest(remotePath))
	if err != nil {
		return err
	}
	if err := utils.SafeSaveIOToFile(localPath, bytes.NewReader(rs.body)); err != nil {
		return daverr.LocalIO(err, "write local file failed, path:%s", localPath)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, p string) error {
	if _, err := c.exchange(ctx, buildDeleteRequest(p)); err != nil {
		return err
	}
	return nil
}

// Mkdir creates collection p. A 405 from the server usually means the
// collection already exists and is reported as a protocol error.
func (c *Client) Mkdir(ctx context.Context, p string) error {
	if _, err := c.exchange(ctx, buildMkcolRequest(p)); err != nil {
		return err
	}
	return nil
}
