package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/retry"
	"github.com/xxxsen/davsync/daverr"
	"github.com/xxxsen/davsync/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task moves one file between Local and Remote; the direction depends on the
// call it is passed to.
type Task struct {
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

type TaskResult struct {
	Task    *Task         `json:"task"`
	Size    int64         `json:"size"`
	Cost    time.Duration `json:"cost"`
	Speed   string        `json:"speed"`
	Digest  string        `json:"digest"` // xxhash64 of the content
	Attempt int           `json:"attempt"`
}

// Transfer runs batches of uploads and downloads on top of one client. The
// client never retries by itself, Transfer retries transport errors only.
type Transfer struct {
	c *config
}

func New(opts ...Option) (*Transfer, error) {
	c := &config{
		Thread:        defaultThread,
		Retry:         defaultRetry,
		RetryInterval: defaultRetryInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Client == nil {
		return nil, fmt.Errorf("no client found")
	}
	if c.Thread <= 0 {
		c.Thread = defaultThread
	}
	if c.Retry <= 0 {
		c.Retry = 1
	}
	return &Transfer{c: c}, nil
}

func formatSpeed(size int64, cost time.Duration) string {
	ms := int64(cost / time.Millisecond)
	if ms <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(float64(size)*1000/float64(ms))) + "/s"
}

// withRetry runs fn until it succeeds, fails with a non transport error or
// the attempts are used up. It returns the number of attempts made.
func (t *Transfer) withRetry(ctx context.Context, name string, fn func(ctx context.Context) error) (int, error) {
	var attempt int
	var fatal error
	err := retry.RetryDo(ctx, t.c.Retry, t.c.RetryInterval, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !daverr.IsKind(err, daverr.KindTransport) {
			fatal = err
			return nil
		}
		logutil.GetLogger(ctx).Error("transfer task failed, wait retry", zap.String("task", name), zap.Int("attempt", attempt), zap.Error(err))
		return err
	})
	if fatal != nil {
		return attempt, fatal
	}
	return attempt, err
}

func (t *Transfer) uploadOne(ctx context.Context, task *Task) (*TaskResult, error) {
	start := time.Now()
	attempt, err := t.withRetry(ctx, "upload:"+task.Remote, func(ctx context.Context) error {
		return t.c.Client.Upload(ctx, task.Local, task.Remote)
	})
	if err != nil {
		return nil, fmt.Errorf("upload file failed, local:%s, remote:%s, err:%w", task.Local, task.Remote, err)
	}
	cost := time.Since(start)
	digest, size, err := utils.DigestFile(task.Local)
	if err != nil {
		return nil, daverr.LocalIO(err, "digest local file failed, path:%s", task.Local)
	}
	return &TaskResult{
		Task:    task,
		Size:    size,
		Cost:    cost,
		Speed:   formatSpeed(size, cost),
		Digest:  digest,
		Attempt: attempt,
	}, nil
}

func (t *Transfer) downloadOne(ctx context.Context, task *Task) (*TaskResult, error) {
	start := time.Now()
	attempt, err := t.withRetry(ctx, "download:"+task.Remote, func(ctx context.Context) error {
		return t.c.Client.Download(ctx, task.Remote, task.Local)
	})
	if err != nil {
		return nil, fmt.Errorf("download file failed, remote:%s, local:%s, err:%w", task.Remote, task.Local, err)
	}
	cost := time.Since(start)
	digest, size, err := utils.DigestFile(task.Local)
	if err != nil {
		return nil, daverr.LocalIO(err, "digest local file failed, path:%s", task.Local)
	}
	return &TaskResult{
		Task:    task,
		Size:    size,
		Cost:    cost,
		Speed:   formatSpeed(size, cost),
		Digest:  digest,
		Attempt: attempt,
	}, nil
}

type taskFunc func(ctx context.Context, task *Task) (*TaskResult, error)

// runTasks runs fn over tasks with at most Thread in flight. The first
// failure cancels the tasks not yet finished; results keep the order of tasks
// and are nil for tasks that did not complete.
func (t *Transfer) runTasks(ctx context.Context, action string, tasks []*Task, fn taskFunc) ([]*TaskResult, error) {
	rs := make([]*TaskResult, len(tasks))
	eg, subctx := errgroup.WithContext(ctx)
	eg.SetLimit(t.c.Thread)
	logutil.GetLogger(ctx).Debug("start transfer tasks", zap.String("action", action), zap.Int("count", len(tasks)), zap.Int("thread", t.c.Thread))
	for i, task := range tasks {
		idx := i
		tk := task
		eg.Go(func() error {
			res, err := fn(subctx, tk)
			if err != nil {
				return err
			}
			rs[idx] = res
			logutil.GetLogger(ctx).Debug("transfer task finish", zap.String("action", action), zap.String("remote", tk.Remote),
				zap.Int64("size", res.Size), zap.Duration("cost", res.Cost), zap.String("speed", res.Speed), zap.Int("attempt", res.Attempt))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		logutil.GetLogger(ctx).Error("transfer tasks failed", zap.String("action", action), zap.Error(err))
		return rs, err
	}
	return rs, nil
}

func (t *Transfer) UploadFiles(ctx context.Context, tasks []*Task) ([]*TaskResult, error) {
	return t.runTasks(ctx, "upload", tasks, t.uploadOne)
}

func (t *Transfer) DownloadFiles(ctx context.Context, tasks []*Task) ([]*TaskResult, error) {
	return t.runTasks(ctx, "download", tasks, t.downloadOne)
}

// Summary sums up results, skipping the nil ones.
func Summary(rs []*TaskResult) (int, int64) {
	var cnt int
	var total int64
	for _, r := range rs {
		if r == nil {
			continue
		}
		cnt++
		total += r.Size
	}
	return cnt, total
}
