package transfer

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davsync/davclient"
	"github.com/xxxsen/davsync/daverr"
	"go.uber.org/zap"
)

func normalizeRemote(p string) string {
	p = path.Clean("/" + strings.TrimSpace(p))
	return p
}

// ensureRemoteDir creates p. A 405 from MKCOL means the collection exists.
func (t *Transfer) ensureRemoteDir(ctx context.Context, p string) error {
	_, err := t.withRetry(ctx, "mkdir:"+p, func(ctx context.Context) error {
		return t.c.Client.Mkdir(ctx, p)
	})
	if err == nil {
		return nil
	}
	if daverr.IsKind(err, daverr.KindProtocol) && daverr.StatusCodeOf(err) == http.StatusMethodNotAllowed {
		logutil.GetLogger(ctx).Debug("remote dir exists", zap.String("remote", p))
		return nil
	}
	return fmt.Errorf("create remote dir failed, remote:%s, err:%w", p, err)
}

// PushDir uploads the tree under localDir into remoteDir, creating the
// collections on the way.
func (t *Transfer) PushDir(ctx context.Context, localDir string, remoteDir string) ([]*TaskResult, error) {
	st, err := os.Stat(localDir)
	if err != nil {
		return nil, daverr.LocalIO(err, "stat local dir failed, path:%s", localDir)
	}
	if !st.IsDir() {
		return nil, daverr.LocalIO(fmt.Errorf("not a directory"), "invalid local dir, path:%s", localDir)
	}
	remoteDir = normalizeRemote(remoteDir)
	dirs := make([]string, 0, 16)
	tasks := make([]*Task, 0, 64)
	if err := filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		remote := path.Join(remoteDir, filepath.ToSlash(rel))
		if d.IsDir() {
			dirs = append(dirs, remote)
			return nil
		}
		if !d.Type().IsRegular() {
			logutil.GetLogger(ctx).Debug("skip non regular file", zap.String("path", p))
			return nil
		}
		tasks = append(tasks, &Task{Local: p, Remote: remote})
		return nil
	}); err != nil {
		return nil, daverr.LocalIO(err, "walk local dir failed, path:%s", localDir)
	}
	// WalkDir visits a parent before its children
	for _, d := range dirs {
		if d == "/" {
			continue
		}
		if err := t.ensureRemoteDir(ctx, d); err != nil {
			return nil, err
		}
	}
	logutil.GetLogger(ctx).Info("push dir", zap.String("local", localDir), zap.String("remote", remoteDir), zap.Int("dir_count", len(dirs)), zap.Int("file_count", len(tasks)))
	return t.UploadFiles(ctx, tasks)
}

// safeRelPath returns entPath relative to dir, rejecting anything that would
// escape dir once joined to a local path.
func safeRelPath(dir string, entPath string) (string, bool) {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	if !strings.HasPrefix(entPath, prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(entPath, prefix)
	if len(rel) == 0 || rel != path.Clean(rel) || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// PullDir downloads the tree under remoteDir into localDir. Collections are
// walked one level at a time with Depth 1 listings.
func (t *Transfer) PullDir(ctx context.Context, remoteDir string, localDir string) ([]*TaskResult, error) {
	remoteDir = normalizeRemote(remoteDir)
	if err := os.MkdirAll(localDir, 0755); err != nil {
		return nil, daverr.LocalIO(err, "create local dir failed, path:%s", localDir)
	}
	queue := []string{remoteDir}
	visited := map[string]bool{remoteDir: true}
	tasks := make([]*Task, 0, 64)
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]
		var ents []*davclient.FileEntry
		if _, err := t.withRetry(ctx, "list:"+dir, func(ctx context.Context) error {
			rs, err := t.c.Client.List(ctx, dir)
			if err != nil {
				return err
			}
			ents = rs
			return nil
		}); err != nil {
			return nil, fmt.Errorf("list remote dir failed, remote:%s, err:%w", dir, err)
		}
		for _, ent := range ents {
			rel, ok := safeRelPath(remoteDir, ent.Path)
			if !ok {
				logutil.GetLogger(ctx).Error("skip remote entry outside of dir", zap.String("dir", remoteDir), zap.String("path", ent.Path))
				continue
			}
			local := filepath.Join(localDir, filepath.FromSlash(rel))
			if ent.IsDir {
				if err := os.MkdirAll(local, 0755); err != nil {
					return nil, daverr.LocalIO(err, "create local dir failed, path:%s", local)
				}
				if !visited[ent.Path] {
					visited[ent.Path] = true
					queue = append(queue, ent.Path)
				}
				continue
			}
			tasks = append(tasks, &Task{Local: local, Remote: ent.Path})
		}
	}
	logutil.GetLogger(ctx).Info("pull dir", zap.String("remote", remoteDir), zap.String("local", localDir), zap.Int("file_count", len(tasks)))
	return t.DownloadFiles(ctx, tasks)
}
