package davtest

import (
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davsync/utils"
	"go.uber.org/zap"
)

func (s *Server) handleMkcol(c *gin.Context, rel string) {
	ctx := c.Request.Context()
	if c.Request.ContentLength > 0 {
		logutil.GetLogger(ctx).Error("mkcol with body is not supported")
		c.AbortWithStatus(http.StatusUnsupportedMediaType)
		return
	}
	err := s.store.mkdir(rel)
	switch {
	case errors.Is(err, errExist):
		c.AbortWithStatus(http.StatusMethodNotAllowed)
	case errors.Is(err, errNoParent):
		c.AbortWithStatus(http.StatusConflict)
	case err != nil:
		c.AbortWithStatus(http.StatusInternalServerError)
	default:
		c.Status(http.StatusCreated)
	}
}

func (s *Server) handlePut(c *gin.Context, rel string) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	created, err := s.store.put(rel, raw)
	switch {
	case errors.Is(err, errNoParent):
		c.AbortWithStatus(http.StatusConflict)
	case errors.Is(err, errIsDir), errors.Is(err, errInvalidPath):
		c.AbortWithStatus(http.StatusMethodNotAllowed)
	case err != nil:
		c.AbortWithStatus(http.StatusInternalServerError)
	case created:
		c.Status(http.StatusCreated)
	default:
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) handleGet(c *gin.Context, rel string) {
	n, err := s.store.get(rel)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	if n.isDir {
		c.AbortWithStatus(http.StatusMethodNotAllowed)
		return
	}
	c.Writer.Header().Set("Last-Modified", n.mtime.UTC().Format(http.TimeFormat))
	c.Data(http.StatusOK, utils.DetermineMimeType(n.name), n.data)
}

func (s *Server) handleDelete(c *gin.Context, rel string) {
	err := s.store.remove(rel)
	switch {
	case errors.Is(err, errNotExist):
		c.AbortWithStatus(http.StatusNotFound)
	case errors.Is(err, errRootReadonly):
		c.AbortWithStatus(http.StatusForbidden)
	case err != nil:
		c.AbortWithStatus(http.StatusInternalServerError)
	default:
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) handlePropfind(c *gin.Context, rel string) {
	ctx := c.Request.Context()
	base, err := s.store.get(rel)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	depth := c.GetHeader("Depth")
	if depth == "infinity" {
		//infinite depth is not served, same as most public servers
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	ms := &Multistatus{XMLNS: "DAV:"}
	ms.Responses = append(ms.Responses, s.convertNodeToResponse(rel, base))
	if base.isDir && depth == "1" {
		for _, n := range s.store.children(rel) {
			ms.Responses = append(ms.Responses, s.convertNodeToResponse(path.Join(rel, n.name), n))
		}
	}
	raw, err := xml.Marshal(ms)
	if err != nil {
		logutil.GetLogger(ctx).Error("encode multistatus failed", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusMultiStatus, "application/xml; charset=utf-8", append([]byte(xml.Header), raw...))
}

func (s *Server) buildHref(rel string, isDir bool) string {
	full := path.Join("/", strings.TrimSuffix(s.c.root, "/"), rel)
	if isDir && !strings.HasSuffix(full, "/") {
		full += "/"
	}
	return (&url.URL{Path: full}).EscapedPath()
}

func (s *Server) convertNodeToResponse(rel string, n *node) *Response {
	resp := &Response{
		Href: s.buildHref(rel, n.isDir),
		Propstat: Propstat{
			Prop: Prop{
				DisplayName:  n.name,
				LastModified: n.mtime.UTC().Format(http.TimeFormat),
			},
			Status: "HTTP/1.1 200 OK",
		},
	}
	if n.isDir {
		resp.Propstat.Prop.ResourceType.Collection = &struct{}{}
		return resp
	}
	resp.Propstat.Prop.ContentLength = int64(len(n.data))
	resp.Propstat.Prop.ContentType = utils.DetermineMimeType(n.name)
	return resp
}
