package davclient

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/xxxsen/davsync/utils"
)

const (
	MethodPropfind = "PROPFIND"
	MethodMkcol    = "MKCOL"

	depthSelf     = "0"
	depthChildren = "1"

	xmlContentType = "application/xml; charset=utf-8"
)

const (
	probePropfindBody = `<?xml version="1.0" encoding="utf-8" ?>
<D:propfind xmlns:D="DAV:">
	<D:prop>
		<D:resourcetype/>
	</D:prop>
</D:propfind>`

	listPropfindBody = `<?xml version="1.0" encoding="utf-8" ?>
<D:propfind xmlns:D="DAV:">
	<D:prop>
		<D:resourcetype/>
		<D:getcontentlength/>
		<D:getlastmodified/>
		<D:displayname/>
	</D:prop>
</D:propfind>`
)

// JoinURL trims one leading slash from p and one trailing slash from base,
// then joins them with a single slash.
func JoinURL(base string, p string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(p, "/")
}

type requestSpec struct {
	method string
	path   string
	header map[string]string
	body   []byte
}

func buildProbeRequest() *requestSpec {
	return &requestSpec{
		method: MethodPropfind,
		path:   "",
		header: map[string]string{
			"Depth":        depthSelf,
			"Content-Type": xmlContentType,
		},
		body: []byte(probePropfindBody),
	}
}

func buildListRequest(p string) *requestSpec {
	return &requestSpec{
		method: MethodPropfind,
		path:   p,
		header: map[string]string{
			"Depth":        depthChildren,
			"Content-Type": xmlContentType,
		},
		body: []byte(listPropfindBody),
	}
}

func buildPutRequest(p string, data []byte) *requestSpec {
	return &requestSpec{
		method: http.MethodPut,
		path:   p,
		header: map[string]string{
			"Content-Type": utils.DetermineMimeType(p),
		},
		body: data,
	}
}

func buildGetRequest(p string) *requestSpec {
	return &requestSpec{method: http.MethodGet, path: p}
}

func buildDeleteRequest(p string) *requestSpec {
	return &requestSpec{method: http.MethodDelete, path: p}
}

func buildMkcolRequest(p string) *requestSpec {
	return &requestSpec{method: MethodMkcol, path: p}
}

// targetURL resolves p against base. The path is joined on the decoded form
// so that names with spaces, '#' or '?' are escaped on the wire.
func targetURL(base *url.URL, p string) *url.URL {
	u := *base
	u.Path = JoinURL(base.Path, p)
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return &u
}

func (s *requestSpec) toHTTPRequest(ctx context.Context, base *url.URL) (*http.Request, error) {
	target := targetURL(base, s.path)
	var body *bytes.Reader
	if s.body != nil {
		body = bytes.NewReader(s.body)
	}
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, s.method, target.String(), body)
	} else {
		req, err = http.NewRequestWithContext(ctx, s.method, target.String(), nil)
	}
	if err != nil {
		return nil, err
	}
	for k, v := range s.header {
		req.Header.Set(k, v)
	}
	return req, nil
}
