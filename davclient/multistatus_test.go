package davclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xxxsen/davsync/daverr"
)

const sampleMultistatus = `<?xml version="1.0" encoding="utf-8"?>
<D:multistatus xmlns:D="DAV:">
  <D:response>
    <D:href>/webdav/documents/</D:href>
    <D:propstat>
      <D:prop><D:resourcetype><D:collection/></D:resourcetype></D:prop>
      <D:status>HTTP/1.1 200 OK</D:status>
    </D:propstat>
  </D:response>
  <D:response>
    <D:href>/webdav/documents/report.pdf</D:href>
    <D:propstat>
      <D:prop>
        <D:resourcetype/>
        <D:getcontentlength>1024</D:getcontentlength>
        <D:getlastmodified>Mon, 01 Jan 2024 10:00:00 GMT</D:getlastmodified>
      </D:prop>
      <D:status>HTTP/1.1 200 OK</D:status>
    </D:propstat>
  </D:response>
  <D:response>
    <D:href>/webdav/documents/archive/</D:href>
    <D:propstat>
      <D:prop><D:resourcetype><D:collection/></D:resourcetype></D:prop>
      <D:status>HTTP/1.1 200 OK</D:status>
    </D:propstat>
  </D:response>
</D:multistatus>`

func TestParseMultistatusSample(t *testing.T) {
	ents, err := ParseMultistatus([]byte(sampleMultistatus), "/webdav", "/webdav/documents")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(ents))

	file := ents[0]
	assert.Equal(t, "/documents/report.pdf", file.Path)
	assert.Equal(t, "report.pdf", file.Name)
	assert.False(t, file.IsDir)
	assert.Equal(t, int64(1024), file.Size)
	assert.True(t, file.HasModTime())
	assert.True(t, file.ModTime.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))

	dir := ents[1]
	assert.Equal(t, "/documents/archive", dir.Path)
	assert.Equal(t, "archive", dir.Name)
	assert.True(t, dir.IsDir)
	assert.Equal(t, int64(0), dir.Size)
	assert.False(t, dir.HasModTime())
}

func TestParseMultistatusPrefixes(t *testing.T) {
	bodies := []string{
		`<d:multistatus xmlns:d="DAV:"><d:response><d:href>/a.txt</d:href><d:propstat><d:prop><d:getcontentlength>7</d:getcontentlength></d:prop><d:status>HTTP/1.1 200 OK</d:status></d:propstat></d:response></d:multistatus>`,
		`<D:multistatus xmlns:D="DAV:" xmlns:lp1="DAV:"><D:response><D:href>/a.txt</D:href><D:propstat><D:prop><lp1:getcontentlength>7</lp1:getcontentlength></D:prop><D:status>HTTP/1.1 200 OK</D:status></D:propstat></D:response></D:multistatus>`,
		`<multistatus xmlns="DAV:"><response><href>/a.txt</href><propstat><prop><getcontentlength>7</getcontentlength></prop><status>HTTP/1.1 200 OK</status></propstat></response></multistatus>`,
	}
	for _, body := range bodies {
		ents, err := ParseMultistatus([]byte(body), "", "/")
		assert.NoError(t, err)
		assert.Equal(t, 1, len(ents))
		assert.Equal(t, "a.txt", ents[0].Name)
		assert.Equal(t, int64(7), ents[0].Size)
	}
}

func TestParseMultistatusInvalid(t *testing.T) {
	_, err := ParseMultistatus([]byte("<not-closed"), "", "/")
	assert.True(t, daverr.IsKind(err, daverr.KindProtocol))

	_, err = ParseMultistatus([]byte("not xml at all"), "", "/")
	assert.True(t, daverr.IsKind(err, daverr.KindProtocol))

	noHref := `<D:multistatus xmlns:D="DAV:"><D:response><D:propstat><D:prop/><D:status>HTTP/1.1 200 OK</D:status></D:propstat></D:response></D:multistatus>`
	_, err = ParseMultistatus([]byte(noHref), "", "/")
	assert.True(t, daverr.IsKind(err, daverr.KindProtocol))
	assert.Contains(t, err.Error(), "no href")

	emptyHref := `<D:multistatus xmlns:D="DAV:"><D:response><D:href>  </D:href></D:response></D:multistatus>`
	_, err = ParseMultistatus([]byte(emptyHref), "", "/")
	assert.True(t, daverr.IsKind(err, daverr.KindProtocol))
}

func TestParseMultistatusEmpty(t *testing.T) {
	ents, err := ParseMultistatus([]byte(`<D:multistatus xmlns:D="DAV:"></D:multistatus>`), "", "/")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(ents))
}

func TestParseMultistatusPropstatStatus(t *testing.T) {
	body := `<D:multistatus xmlns:D="DAV:">
<D:response><D:href>/a.txt</D:href>
  <D:propstat><D:prop><D:getcontentlength>12</D:getcontentlength></D:prop><D:status>HTTP/1.1 200 OK</D:status></D:propstat>
  <D:propstat><D:prop><D:getlastmodified>Mon, 01 Jan 2024 10:00:00 GMT</D:getlastmodified><D:resourcetype><D:collection/></D:resourcetype></D:prop><D:status>HTTP/1.1 404 Not Found</D:status></D:propstat>
</D:response>
</D:multistatus>`
	ents, err := ParseMultistatus([]byte(body), "", "/")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(ents))
	assert.False(t, ents[0].IsDir)
	assert.Equal(t, int64(12), ents[0].Size)
	assert.False(t, ents[0].HasModTime())
}

func TestParseMultistatusMemberStatus(t *testing.T) {
	body := `<D:multistatus xmlns:D="DAV:">
<D:response><D:href>/dav/docs/</D:href><D:propstat><D:prop><D:resourcetype><D:collection/></D:resourcetype></D:prop><D:status>HTTP/1.1 200 OK</D:status></D:propstat></D:response>
<D:response><D:href>/dav/docs/a.txt</D:href><D:propstat><D:prop><D:getcontentlength>1</D:getcontentlength></D:prop><D:status>HTTP/1.1 200 OK</D:status></D:propstat></D:response>
<D:response><D:href>/dav/docs/locked.txt</D:href><D:status>HTTP/1.1 423 Locked</D:status></D:response>
</D:multistatus>`
	ents, err := ParseMultistatus([]byte(body), "/dav", "/dav/docs")
	assert.Nil(t, ents)
	assert.True(t, daverr.IsKind(err, daverr.KindProtocol))
	assert.Equal(t, 423, daverr.StatusCodeOf(err))
	assert.Contains(t, err.Error(), "/docs/locked.txt")

	gone := `<D:multistatus xmlns:D="DAV:">
<D:response><D:href>/gone.txt</D:href><D:status>HTTP/1.1 404 Not Found</D:status></D:response>
</D:multistatus>`
	_, err = ParseMultistatus([]byte(gone), "", "/")
	assert.Equal(t, 404, daverr.StatusCodeOf(err))

	ok := `<D:multistatus xmlns:D="DAV:">
<D:response><D:href>/plain.txt</D:href><D:status>HTTP/1.1 200 OK</D:status></D:response>
</D:multistatus>`
	ents, err = ParseMultistatus([]byte(ok), "", "/")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(ents))
}

func TestParseMultistatusCharset(t *testing.T) {
	body := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		`<D:multistatus xmlns:D="DAV:">
<D:response><D:href>/dav/docs/</D:href><D:propstat><D:prop><D:resourcetype><D:collection/></D:resourcetype></D:prop><D:status>HTTP/1.1 200 OK</D:status></D:propstat></D:response>
<D:response><D:href>/dav/docs/caf%C3%A9.txt</D:href><D:propstat><D:prop><D:displayname>caf` + "\xe9" + `.txt</D:displayname><D:getcontentlength>4</D:getcontentlength></D:prop><D:status>HTTP/1.1 200 OK</D:status></D:propstat></D:response>
</D:multistatus>`
	ents, err := ParseMultistatus([]byte(body), "/dav", "/dav/docs")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(ents))
	assert.Equal(t, "/docs/café.txt", ents[0].Path)
	assert.Equal(t, int64(4), ents[0].Size)
}

func TestParseMultistatusSelfRepeatedSlash(t *testing.T) {
	body := `<D:multistatus xmlns:D="DAV:">
<D:response><D:href>/dav/docs/</D:href><D:propstat><D:prop><D:resourcetype><D:collection/></D:resourcetype></D:prop><D:status>HTTP/1.1 200 OK</D:status></D:propstat></D:response>
<D:response><D:href>/dav/docs/a.txt</D:href><D:propstat><D:prop><D:getcontentlength>1</D:getcontentlength></D:prop><D:status>HTTP/1.1 200 OK</D:status></D:propstat></D:response>
</D:multistatus>`
	for _, q := range []string{"/dav//docs", "/dav/docs//", "//dav/./docs"} {
		ents, err := ParseMultistatus([]byte(body), "/dav", q)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(ents))
		assert.Equal(t, "/docs/a.txt", ents[0].Path)
	}
	ents, err := ParseMultistatus([]byte(body), "/dav/", "/dav/docs")
	assert.NoError(t, err)
	assert.Equal(t, "/docs/a.txt", ents[0].Path)
}

func TestParseMultistatusHrefForms(t *testing.T) {
	body := `<D:multistatus xmlns:D="DAV:">
<D:response><D:href>https://example.com/remote.php/dav/files/u/</D:href><D:propstat><D:prop><D:resourcetype><D:collection/></D:resourcetype></D:prop><D:status>HTTP/1.1 200 OK</D:status></D:propstat></D:response>
<D:response><D:href>https://example.com/remote.php/dav/files/u/my%20notes.txt</D:href><D:propstat><D:prop><D:getcontentlength>3</D:getcontentlength></D:prop><D:status>HTTP/1.1 200 OK</D:status></D:propstat></D:response>
<D:response><D:href>/remote.php/dav/files/u/%E4%B8%AD%E6%96%87/</D:href><D:propstat><D:prop><D:resourcetype><D:collection/></D:resourcetype></D:prop><D:status>HTTP/1.1 200 OK</D:status></D:propstat></D:response>
</D:multistatus>`
	ents, err := ParseMultistatus([]byte(body), "/remote.php/dav/files/u", "/remote.php/dav/files/u/")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(ents))
	assert.Equal(t, "/my notes.txt", ents[0].Path)
	assert.Equal(t, "my notes.txt", ents[0].Name)
	assert.Equal(t, "/中文", ents[1].Path)
	assert.Equal(t, "中文", ents[1].Name)
	assert.True(t, ents[1].IsDir)
}

func TestParseModTime(t *testing.T) {
	expect := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	assert.True(t, parseModTime("Mon, 01 Jan 2024 10:00:00 GMT").Equal(expect))
	assert.True(t, parseModTime("2024-01-01T10:00:00Z").Equal(expect))
	assert.True(t, parseModTime("Monday, 01-Jan-24 10:00:00 GMT").Equal(expect))
	assert.True(t, parseModTime("garbage").IsZero())
	assert.True(t, parseModTime("").IsZero())
}

func TestParseContentLength(t *testing.T) {
	assert.Equal(t, int64(10), parseContentLength(" 10 "))
	assert.Equal(t, int64(0), parseContentLength("-1"))
	assert.Equal(t, int64(0), parseContentLength("abc"))
	assert.Equal(t, int64(0), parseContentLength(""))
}

func TestRelativeTo(t *testing.T) {
	assert.Equal(t, "/a/b", relativeTo("/webdav", "/webdav/a/b/"))
	assert.Equal(t, "/", relativeTo("/webdav/", "/webdav"))
	assert.Equal(t, "/webdavx/a", relativeTo("/webdav", "/webdavx/a"))
	assert.Equal(t, "/a", relativeTo("", "a"))
	assert.Equal(t, "/a/b", relativeTo("/webdav//", "/webdav//a//b"))
}

func TestParseStatusLine(t *testing.T) {
	assert.Equal(t, 200, parseStatusLine(""))
	assert.Equal(t, 404, parseStatusLine("HTTP/1.1 404 Not Found"))
	assert.Equal(t, 0, parseStatusLine("HTTP/1.1"))
	assert.Equal(t, 0, parseStatusLine("HTTP/1.1 abc"))
}
