package davclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/xxxsen/davsync/daverr"
)

const (
	defaultMaxIdleConns    = 8
	defaultIdleConnTimeout = 60 * time.Second
	defaultUserAgent       = "davsync/1.0"
)

// defaultHeaderTransport attaches the headers computed at construction time
// to every outgoing request.
type defaultHeaderTransport struct {
	next   http.RoundTripper
	header http.Header
}

func (t *defaultHeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, vs := range t.header {
		if len(r.Header.Values(k)) > 0 {
			continue
		}
		r.Header[k] = vs
	}
	return t.next.RoundTrip(r)
}

func basicAuthValue(username, secret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+secret))
}

func newHTTPClient(c *config, timeout time.Duration, header http.Header) *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:     c.TLSConfig,
		TLSHandshakeTimeout: timeout,
		MaxIdleConns:        c.MaxIdleConns,
		MaxIdleConnsPerHost: c.MaxIdleConns,
		IdleConnTimeout:     c.IdleConnTimeout,
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &defaultHeaderTransport{
			next:   tr,
			header: header,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// classifyTransportError maps a failure that happened before a complete
// response was read into a transport error kind.
func classifyTransportError(err error, timeout time.Duration) *daverr.Error {
	secs := int(timeout / time.Second)
	if isTimeout(err) {
		return daverr.Transport(daverr.TransportTimeout, err, "connection timeout after %d seconds", secs)
	}
	if isTLSError(err) {
		return daverr.Transport(daverr.TransportTLS, err, "tls handshake or certificate verification failed")
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return daverr.Transport(daverr.TransportConnect, err, "failed to resolve server host")
	}
	if isConnectError(err) {
		return daverr.Transport(daverr.TransportConnect, err, "failed to connect to server")
	}
	if errors.Is(err, context.Canceled) {
		return daverr.Transport(daverr.TransportIO, err, "request canceled")
	}
	return daverr.Transport(daverr.TransportIO, err, "network error")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isTLSError(err error) bool {
	var verr *tls.CertificateVerificationError
	if errors.As(err, &verr) {
		return true
	}
	var uaErr x509.UnknownAuthorityError
	if errors.As(err, &uaErr) {
		return true
	}
	var hostErr x509.HostnameError
	if errors.As(err, &hostErr) {
		return true
	}
	var invalidErr x509.CertificateInvalidError
	if errors.As(err, &invalidErr) {
		return true
	}
	var recErr tls.RecordHeaderError
	if errors.As(err, &recErr) {
		return true
	}
	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return true
	}
	// alerts sent by the peer during the handshake
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "remote error"
}

func isConnectError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
