package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davsync/davclient"
	"github.com/xxxsen/davsync/transfer"
	"go.uber.org/zap"
)

func runSingleTransfer(ctx context.Context, c *Context, cli davclient.IClient, local string, remote string, upload bool) error {
	tr, err := c.newTransfer(cli)
	if err != nil {
		return err
	}
	tasks := []*transfer.Task{{Local: local, Remote: remote}}
	var rs []*transfer.TaskResult
	if upload {
		rs, err = tr.UploadFiles(ctx, tasks)
	} else {
		rs, err = tr.DownloadFiles(ctx, tasks)
	}
	if err != nil {
		return err
	}
	r := rs[0]
	logutil.GetLogger(ctx).Info("transfer file succ", zap.String("local", local), zap.String("remote", remote), zap.Bool("upload", upload),
		zap.String("size", humanize.IBytes(uint64(r.Size))), zap.Duration("cost", r.Cost), zap.String("speed", r.Speed), zap.String("digest", r.Digest))
	return nil
}

func logBatch(ctx context.Context, action string, start time.Time, rs []*transfer.TaskResult) {
	cnt, total := transfer.Summary(rs)
	logutil.GetLogger(ctx).Info(action+" finish", zap.Int("file_count", cnt), zap.String("total_size", humanize.IBytes(uint64(total))), zap.Duration("cost", time.Since(start)))
}

func NewPushCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "push <server> <localDir> <remoteDir>",
		Short: "Upload a local directory tree",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := context.Background()
			cli, err := c.openClient(ctx, argv[0])
			if err != nil {
				return err
			}
			defer cli.Close()
			tr, err := c.newTransfer(cli)
			if err != nil {
				return err
			}
			start := time.Now()
			rs, err := tr.PushDir(ctx, argv[1], argv[2])
			logBatch(ctx, "push", start, rs)
			if err != nil {
				return fmt.Errorf("push dir failed, err:%w", err)
			}
			return nil
		},
	}
}

func NewPullCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "pull <server> <remoteDir> <localDir>",
		Short: "Download a remote collection tree",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := context.Background()
			cli, err := c.openClient(ctx, argv[0])
			if err != nil {
				return err
			}
			defer cli.Close()
			tr, err := c.newTransfer(cli)
			if err != nil {
				return err
			}
			start := time.Now()
			rs, err := tr.PullDir(ctx, argv[1], argv[2])
			logBatch(ctx, "pull", start, rs)
			if err != nil {
				return fmt.Errorf("pull dir failed, err:%w", err)
			}
			return nil
		},
	}
}

func init() {
	register(NewPushCmd)
	register(NewPullCmd)
}
