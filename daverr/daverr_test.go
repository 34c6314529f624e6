package daverr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := Protocol(405, "unsupported method")
	assert.Equal(t, "protocol_error, code:405, unsupported method", err.Error())

	terr := Transport(TransportTimeout, errors.New("deadline"), "connection timeout after %d seconds", 30)
	assert.Contains(t, terr.Error(), "transport_error(timeout)")
	assert.Contains(t, terr.Error(), "30 seconds")
	assert.Contains(t, terr.Error(), "err:deadline")
}

func TestKindThroughWrap(t *testing.T) {
	base := NotFound("resource not found")
	wrapped := fmt.Errorf("list dir failed, err:%w", base)
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindAuth))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindUnknown))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Transport(TransportConnect, nil, "connect failed").Retryable())
	assert.False(t, Protocol(500, "internal").Retryable())
	assert.False(t, Config("bad").Retryable())
}

func TestAccessors(t *testing.T) {
	inner := errors.New("disk full")
	err := fmt.Errorf("save:%w", LocalIO(inner, "write local file failed"))
	assert.True(t, errors.Is(err, inner))
	assert.Equal(t, 0, StatusCodeOf(err))
	assert.Equal(t, TransportNone, TransportKindOf(err))
	assert.Equal(t, 423, StatusCodeOf(Protocol(423, "locked")))
	assert.Equal(t, TransportTLS, TransportKindOf(Transport(TransportTLS, nil, "tls")))
}
