// Package davtest runs a small in-memory WebDAV server for tests. Responses
// can be scripted per method and path to reproduce the behaviour of
// different server implementations.
package davtest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	MethodPropfind = "PROPFIND"
	MethodMkcol    = "MKCOL"
)

var AllowMethods = []string{
	http.MethodGet, http.MethodPut, http.MethodDelete, MethodPropfind, MethodMkcol,
}

func init() {
	gin.SetMode(gin.TestMode)
}

// Fault replaces the normal handling of one method on one path.
type Fault struct {
	Status int
	Header map[string]string
	Body   string
}

// RecordedRequest keeps what the client put on the wire, minus the body.
type RecordedRequest struct {
	Method        string
	Path          string
	Depth         string
	ContentType   string
	Authorization string
	ContentLength int64
}

type Server struct {
	c      *config
	store  *memStore
	svr    *httptest.Server
	mu     sync.Mutex
	faults map[string]*Fault
	reqs   []*RecordedRequest
}

func New(opts ...Option) *Server {
	c := applyOpts(opts...)
	s := &Server{
		c:      c,
		store:  newMemStore(),
		faults: make(map[string]*Fault),
	}
	engine := gin.New()
	engine.Use(s.recordMiddleware, s.headerMiddleware, s.delayMiddleware, s.faultMiddleware, s.authMiddleware)
	for _, m := range AllowMethods {
		engine.Handle(m, "/*path", s.dispatch)
	}
	if c.tls {
		s.svr = httptest.NewTLSServer(engine)
	} else {
		s.svr = httptest.NewServer(engine)
	}
	return s
}

// URL returns the base url of the dav tree, including the root prefix.
func (s *Server) URL() string {
	return strings.TrimSuffix(s.svr.URL, "/") + strings.TrimSuffix(s.c.root, "/")
}

func (s *Server) HTTPServer() *httptest.Server {
	return s.svr
}

func (s *Server) Close() {
	s.svr.Close()
}

func faultKey(method, p string) string {
	return method + " " + cleanPath(p)
}

// SetFault scripts the response of method on p (relative to the root).
// A nil fault removes the script.
func (s *Server) SetFault(method string, p string, f *Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f == nil {
		delete(s.faults, faultKey(method, p))
		return
	}
	s.faults[faultKey(method, p)] = f
}

func (s *Server) Requests() []*RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs := make([]*RecordedRequest, len(s.reqs))
	copy(rs, s.reqs)
	return rs
}

func (s *Server) LastRequest() *RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.reqs) == 0 {
		return nil
	}
	return s.reqs[len(s.reqs)-1]
}

// MustMkdir and MustPut seed the tree without going through http.
func (s *Server) MustMkdir(p string) {
	if err := s.store.mkdir(p); err != nil && err != errExist {
		panic(err)
	}
}

func (s *Server) MustPut(p string, data []byte) {
	if _, err := s.store.put(p, data); err != nil {
		panic(err)
	}
}

// ReadFile returns the stored content of p.
func (s *Server) ReadFile(p string) ([]byte, bool) {
	n, err := s.store.get(p)
	if err != nil || n.isDir {
		return nil, false
	}
	return n.data, true
}

func (s *Server) Exists(p string) bool {
	_, err := s.store.get(p)
	return err == nil
}

// relPath strips the root prefix; ok is false outside of the dav tree.
func (s *Server) relPath(urlPath string) (string, bool) {
	root := strings.TrimSuffix(s.c.root, "/")
	if len(root) == 0 {
		return cleanPath(urlPath), true
	}
	if urlPath != root && !strings.HasPrefix(urlPath, root+"/") {
		return "", false
	}
	return cleanPath(strings.TrimPrefix(urlPath, root)), true
}

func (s *Server) recordMiddleware(c *gin.Context) {
	s.mu.Lock()
	s.reqs = append(s.reqs, &RecordedRequest{
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		Depth:         c.GetHeader("Depth"),
		ContentType:   c.GetHeader("Content-Type"),
		Authorization: c.GetHeader("Authorization"),
		ContentLength: c.Request.ContentLength,
	})
	s.mu.Unlock()
	c.Next()
}

func (s *Server) headerMiddleware(c *gin.Context) {
	for k, v := range s.c.header {
		c.Writer.Header().Set(k, v)
	}
	c.Next()
}

func (s *Server) delayMiddleware(c *gin.Context) {
	if s.c.delay <= 0 {
		c.Next()
		return
	}
	select {
	case <-time.After(s.c.delay):
		c.Next()
	case <-c.Request.Context().Done():
		c.Abort()
	}
}

func (s *Server) faultMiddleware(c *gin.Context) {
	rel, ok := s.relPath(c.Request.URL.Path)
	if !ok {
		c.Next()
		return
	}
	s.mu.Lock()
	f, ok := s.faults[faultKey(c.Request.Method, rel)]
	s.mu.Unlock()
	if !ok {
		c.Next()
		return
	}
	for k, v := range f.Header {
		c.Writer.Header().Set(k, v)
	}
	c.Data(f.Status, "application/xml; charset=utf-8", []byte(f.Body))
	c.Abort()
}

func (s *Server) authMiddleware(c *gin.Context) {
	if len(s.c.userMap) == 0 {
		c.Next()
		return
	}
	ctx := c.Request.Context()
	ak, sk, ok := c.Request.BasicAuth()
	if !ok {
		c.Writer.Header().Set("WWW-Authenticate", `Basic realm="davtest"`)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	usk, ok := s.c.userMap[ak]
	if !ok || usk != sk {
		logutil.GetLogger(ctx).Debug("basic auth not match", zap.String("user", ak))
		c.Writer.Header().Set("WWW-Authenticate", `Basic realm="davtest"`)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Next()
}

func (s *Server) dispatch(c *gin.Context) {
	rel, ok := s.relPath(c.Request.URL.Path)
	if !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	switch c.Request.Method {
	case http.MethodGet:
		s.handleGet(c, rel)
	case http.MethodPut:
		s.handlePut(c, rel)
	case http.MethodDelete:
		s.handleDelete(c, rel)
	case MethodPropfind:
		s.handlePropfind(c, rel)
	case MethodMkcol:
		s.handleMkcol(c, rel)
	default:
		c.AbortWithStatus(http.StatusMethodNotAllowed)
	}
}
