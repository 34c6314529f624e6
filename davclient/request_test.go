package davclient

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinURLIdempotent(t *testing.T) {
	bases := []string{
		"https://example.com/webdav",
		"https://example.com",
		"http://127.0.0.1:8080/remote.php/dav/files/u",
	}
	paths := []string{"documents", "documents/a.txt", "a b/c", ""}
	for _, b := range bases {
		for _, p := range paths {
			expect := JoinURL(b, p)
			assert.Equal(t, expect, JoinURL(b, "/"+p))
			assert.Equal(t, expect, JoinURL(b+"/", p))
			assert.Equal(t, expect, JoinURL(b+"/", "/"+p))
		}
	}
	assert.Equal(t, "https://example.com/webdav/documents", JoinURL("https://example.com/webdav", "/documents"))
	assert.Equal(t, "https://example.com/webdav/", JoinURL("https://example.com/webdav/", ""))
}

func TestTargetURLEscape(t *testing.T) {
	base, err := url.Parse("https://example.com/web dav?x=1")
	assert.NoError(t, err)
	u := targetURL(base, "/my docs/a#1?.txt")
	assert.Equal(t, "/web dav/my docs/a#1?.txt", u.Path)
	assert.Equal(t, "https://example.com/web%20dav/my%20docs/a%231%3F.txt", u.String())
}

func TestBuildRequests(t *testing.T) {
	base, _ := url.Parse("https://example.com/webdav")
	ctx := context.Background()

	probe := buildProbeRequest()
	req, err := probe.toHTTPRequest(ctx, base)
	assert.NoError(t, err)
	assert.Equal(t, MethodPropfind, req.Method)
	assert.Equal(t, "0", req.Header.Get("Depth"))
	assert.Equal(t, "application/xml; charset=utf-8", req.Header.Get("Content-Type"))
	body, _ := io.ReadAll(req.Body)
	assert.Contains(t, string(body), "<D:resourcetype/>")
	assert.NotContains(t, string(body), "getlastmodified")

	list := buildListRequest("/documents")
	req, err = list.toHTTPRequest(ctx, base)
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/webdav/documents", req.URL.String())
	assert.Equal(t, "1", req.Header.Get("Depth"))
	body, _ = io.ReadAll(req.Body)
	for _, prop := range []string{"resourcetype", "getcontentlength", "getlastmodified", "displayname"} {
		assert.Contains(t, string(body), "<D:"+prop+"/>")
	}

	put := buildPutRequest("/a.txt", []byte("hello"))
	req, err = put.toHTTPRequest(ctx, base)
	assert.NoError(t, err)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, int64(5), req.ContentLength)
	assert.Contains(t, req.Header.Get("Content-Type"), "text/plain")

	for _, spec := range []*requestSpec{buildGetRequest("/a"), buildDeleteRequest("/a"), buildMkcolRequest("/a")} {
		req, err = spec.toHTTPRequest(ctx, base)
		assert.NoError(t, err)
		assert.Equal(t, spec.method, req.Method)
		assert.Nil(t, req.Body)
		assert.Empty(t, req.Header.Get("Depth"))
	}
}

func TestBasicAuthValue(t *testing.T) {
	v := basicAuthValue("user", "p@ss:word")
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("user:p@ss:word")), v)
}
