package davclient

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/xxxsen/davsync/daverr"
	"golang.org/x/net/html/charset"
)

// FileEntry is one remote item returned by a listing.
type FileEntry struct {
	Path    string    `json:"path"` // relative to the client base url, starts with '/'
	Name    string    `json:"name"`
	IsDir   bool      `json:"is_dir"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"` // zero when the server did not report it
}

func (e *FileEntry) HasModTime() bool {
	return !e.ModTime.IsZero()
}

// xml models below match elements by local name only, so any namespace
// prefix (D:, d:, lp1:, none) is accepted.

type msMultistatus struct {
	XMLName   xml.Name      `xml:"multistatus"`
	Responses []*msResponse `xml:"response"`
}

type msResponse struct {
	Hrefs     []string      `xml:"href"`
	Status    string        `xml:"status"`
	Propstats []*msPropstat `xml:"propstat"`
}

type msPropstat struct {
	Prop   msProp `xml:"prop"`
	Status string `xml:"status"`
}

type msProp struct {
	ResourceType  *msResourceType `xml:"resourcetype"`
	ContentLength string          `xml:"getcontentlength"`
	LastModified  string          `xml:"getlastmodified"`
	DisplayName   string          `xml:"displayname"`
}

type msResourceType struct {
	Collection *struct{} `xml:"collection"`
}

// parseStatusLine reads the code out of "HTTP/1.1 200 OK". An empty line
// counts as success.
func parseStatusLine(line string) int {
	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return http.StatusOK
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return code
}

func isSuccessStatusLine(line string) bool {
	code := parseStatusLine(line)
	return code >= 200 && code < 300
}

// normalizePath returns the cleaned absolute form of p without a trailing slash.
func normalizePath(p string) string {
	return path.Clean("/" + p)
}

func decodeHref(href string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return u.Path, nil
}

func relativeTo(basePath string, full string) string {
	base := strings.TrimRight(normalizePath(basePath), "/")
	full = normalizePath(full)
	if len(base) > 0 && (full == base || strings.HasPrefix(full, base+"/")) {
		full = full[len(base):]
	}
	return normalizePath(full)
}

func lastSegment(p string) string {
	p = strings.TrimRight(p, "/")
	idx := strings.LastIndex(p, "/")
	return p[idx+1:]
}

func parseModTime(v string) time.Time {
	v = strings.TrimSpace(v)
	if len(v) == 0 {
		return time.Time{}
	}
	if t, err := http.ParseTime(v); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t
	}
	return time.Time{}
}

func parseContentLength(v string) int64 {
	sz, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || sz < 0 {
		return 0
	}
	return sz
}

// mergeProps folds every successful propstat of a response into one prop set.
func mergeProps(pss []*msPropstat) *msProp {
	rs := &msProp{}
	for _, ps := range pss {
		if !isSuccessStatusLine(ps.Status) {
			continue
		}
		if ps.Prop.ResourceType != nil {
			rs.ResourceType = ps.Prop.ResourceType
		}
		if len(ps.Prop.ContentLength) > 0 {
			rs.ContentLength = ps.Prop.ContentLength
		}
		if len(ps.Prop.LastModified) > 0 {
			rs.LastModified = ps.Prop.LastModified
		}
		if len(ps.Prop.DisplayName) > 0 {
			rs.DisplayName = ps.Prop.DisplayName
		}
	}
	return rs
}

// ParseMultistatus extracts the members of a Depth 1 PROPFIND body.
// basePath is the path of the client base url, queryPath the decoded path
// that was listed; the entry describing queryPath itself is dropped.
func ParseMultistatus(body []byte, basePath string, queryPath string) ([]*FileEntry, error) {
	ms := &msMultistatus{}
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(ms); err != nil {
		e := daverr.Protocol(http.StatusMultiStatus, "failed to parse multistatus body")
		e.Err = err
		return nil, e
	}
	self := normalizePath(queryPath)
	rs := make([]*FileEntry, 0, len(ms.Responses))
	for idx, resp := range ms.Responses {
		if len(resp.Hrefs) == 0 || len(strings.TrimSpace(resp.Hrefs[0])) == 0 {
			return nil, daverr.Protocol(http.StatusMultiStatus, "response #%d has no href", idx)
		}
		full, err := decodeHref(resp.Hrefs[0])
		if err != nil {
			e := daverr.Protocol(http.StatusMultiStatus, "response #%d has invalid href", idx)
			e.Err = err
			return nil, e
		}
		if normalizePath(full) == self {
			continue
		}
		if len(resp.Propstats) == 0 && !isSuccessStatusLine(resp.Status) {
			code := parseStatusLine(resp.Status)
			return nil, daverr.Protocol(code, "member %s returned status %d %s", relativeTo(basePath, full), code, statusText(code))
		}
		prop := mergeProps(resp.Propstats)
		ent := &FileEntry{
			Path:    relativeTo(basePath, full),
			ModTime: parseModTime(prop.LastModified),
		}
		ent.Name = lastSegment(ent.Path)
		ent.IsDir = prop.ResourceType != nil && prop.ResourceType.Collection != nil
		if !ent.IsDir {
			ent.Size = parseContentLength(prop.ContentLength)
		}
		rs = append(rs, ent)
	}
	return rs, nil
}
