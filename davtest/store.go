package davtest

import (
	"errors"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	errNotExist     = errors.New("not exist")
	errExist        = errors.New("already exist")
	errNoParent     = errors.New("parent collection not exist")
	errIsDir        = errors.New("is a collection")
	errInvalidPath  = errors.New("invalid path")
	errRootReadonly = errors.New("root could not be removed")
)

type node struct {
	name  string
	isDir bool
	data  []byte
	mtime time.Time
}

// memStore is a flat path => node tree, "/" always exists.
type memStore struct {
	mu    sync.RWMutex
	nodes map[string]*node
}

func newMemStore() *memStore {
	return &memStore{
		nodes: map[string]*node{
			"/": {name: "", isDir: true, mtime: time.Now()},
		},
	}
}

func cleanPath(p string) string {
	return path.Clean("/" + p)
}

func (m *memStore) parentDir(p string) (*node, bool) {
	pn, ok := m.nodes[path.Dir(p)]
	if !ok || !pn.isDir {
		return nil, false
	}
	return pn, true
}

func (m *memStore) mkdir(p string) error {
	p = cleanPath(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[p]; ok {
		return errExist
	}
	if _, ok := m.parentDir(p); !ok {
		return errNoParent
	}
	m.nodes[p] = &node{name: path.Base(p), isDir: true, mtime: time.Now()}
	return nil
}

// put returns true when a new file was created.
func (m *memStore) put(p string, data []byte) (bool, error) {
	p = cleanPath(p)
	if p == "/" {
		return false, errInvalidPath
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.parentDir(p); !ok {
		return false, errNoParent
	}
	old, exist := m.nodes[p]
	if exist && old.isDir {
		return false, errIsDir
	}
	m.nodes[p] = &node{name: path.Base(p), data: data, mtime: time.Now()}
	return !exist, nil
}

func (m *memStore) get(p string) (*node, error) {
	p = cleanPath(p)
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[p]
	if !ok {
		return nil, errNotExist
	}
	return n, nil
}

func (m *memStore) remove(p string) error {
	p = cleanPath(p)
	if p == "/" {
		return errRootReadonly
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[p]; !ok {
		return errNotExist
	}
	prefix := p + "/"
	for k := range m.nodes {
		if k == p || strings.HasPrefix(k, prefix) {
			delete(m.nodes, k)
		}
	}
	return nil
}

// children lists the direct members of dir, collections first.
func (m *memStore) children(dir string) []*node {
	dir = cleanPath(dir)
	m.mu.RLock()
	defer m.mu.RUnlock()
	rs := make([]*node, 0, 16)
	for k, n := range m.nodes {
		if k == "/" || path.Dir(k) != dir {
			continue
		}
		rs = append(rs, n)
	}
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].isDir != rs[j].isDir {
			return rs[i].isDir
		}
		return rs[i].name < rs[j].name
	})
	return rs
}
