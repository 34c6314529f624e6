package davclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xxxsen/davsync/daverr"
)

func TestClassifyStatusTotal(t *testing.T) {
	for code := 100; code <= 599; code++ {
		err := ClassifyStatus(code)
		if code >= 200 && code < 300 {
			assert.NoError(t, err, "code:%d", code)
			continue
		}
		assert.Error(t, err, "code:%d", code)
		kind := daverr.KindOf(err)
		assert.Contains(t, []daverr.Kind{daverr.KindAuth, daverr.KindNotFound, daverr.KindProtocol}, kind, "code:%d", code)
		assert.Equal(t, code, daverr.StatusCodeOf(err))
	}
}

func TestClassifyStatusTable(t *testing.T) {
	tests := []struct {
		code    int
		kind    daverr.Kind
		contain string
	}{
		{401, daverr.KindAuth, "invalid username or password"},
		{401, daverr.KindAuth, "check your credentials"},
		{403, daverr.KindAuth, "insufficient permission"},
		{404, daverr.KindNotFound, "not found"},
		{400, daverr.KindProtocol, "malformed request"},
		{405, daverr.KindProtocol, "405 Method Not Allowed"},
		{409, daverr.KindProtocol, "conflict"},
		{412, daverr.KindProtocol, "precondition failed"},
		{413, daverr.KindProtocol, "payload too large"},
		{423, daverr.KindProtocol, "locked"},
		{424, daverr.KindProtocol, "failed dependency"},
		{418, daverr.KindProtocol, "client error: 418"},
		{499, daverr.KindProtocol, "499 Unknown, client error"},
		{500, daverr.KindProtocol, "internal server error"},
		{502, daverr.KindProtocol, "bad gateway"},
		{503, daverr.KindProtocol, "service unavailable"},
		{504, daverr.KindProtocol, "gateway timeout"},
		{507, daverr.KindProtocol, "insufficient storage"},
		{599, daverr.KindProtocol, "server error: 599"},
		{301, daverr.KindProtocol, "unexpected status: 301 Moved Permanently"},
		{101, daverr.KindProtocol, "unexpected status: 101"},
		{600, daverr.KindProtocol, "unexpected status: 600 Unknown"},
	}
	for _, tt := range tests {
		err := ClassifyStatus(tt.code)
		assert.True(t, daverr.IsKind(err, tt.kind), "code:%d", tt.code)
		assert.Contains(t, err.Error(), tt.contain, "code:%d", tt.code)
	}
	assert.NoError(t, ClassifyStatus(207))
	assert.NoError(t, ClassifyStatus(201))
	assert.NoError(t, ClassifyStatus(204))
}
