package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davsync/davclient"
	"go.uber.org/zap"
)

func printEntries(out io.Writer, ents []*davclient.FileEntry) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, ent := range ents {
		size := humanize.IBytes(uint64(ent.Size))
		name := ent.Name
		if ent.IsDir {
			size = "-"
			name += "/"
		}
		mtime := "-"
		if ent.HasModTime() {
			mtime = ent.ModTime.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", size, mtime, name)
	}
	return w.Flush()
}

func NewLsCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "ls <server> [path]",
		Short: "List a remote collection",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := context.Background()
			p := "/"
			if len(argv) > 1 {
				p = argv[1]
			}
			cli, err := c.openClient(ctx, argv[0])
			if err != nil {
				return err
			}
			defer cli.Close()
			ents, err := cli.List(ctx, p)
			if err != nil {
				return fmt.Errorf("list remote dir failed, path:%s, err:%w", p, err)
			}
			return printEntries(cmd.OutOrStdout(), ents)
		},
	}
}

func NewUploadCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <server> <local> <remote>",
		Short: "Upload a file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := context.Background()
			cli, err := c.openClient(ctx, argv[0])
			if err != nil {
				return err
			}
			defer cli.Close()
			return runSingleTransfer(ctx, c, cli, argv[1], argv[2], true)
		},
	}
}

func NewDownloadCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "download <server> <remote> <local>",
		Short: "Download a file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := context.Background()
			cli, err := c.openClient(ctx, argv[0])
			if err != nil {
				return err
			}
			defer cli.Close()
			return runSingleTransfer(ctx, c, cli, argv[2], argv[1], false)
		},
	}
}

func NewRmCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <server> <path>",
		Short: "Delete a remote file or collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := context.Background()
			cli, err := c.openClient(ctx, argv[0])
			if err != nil {
				return err
			}
			defer cli.Close()
			if err := cli.Delete(ctx, argv[1]); err != nil {
				return fmt.Errorf("delete remote path failed, path:%s, err:%w", argv[1], err)
			}
			logutil.GetLogger(ctx).Info("delete succ", zap.String("path", argv[1]))
			return nil
		},
	}
}

func NewMkdirCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <server> <path>",
		Short: "Create a remote collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := context.Background()
			cli, err := c.openClient(ctx, argv[0])
			if err != nil {
				return err
			}
			defer cli.Close()
			if err := cli.Mkdir(ctx, argv[1]); err != nil {
				return fmt.Errorf("create remote dir failed, path:%s, err:%w", argv[1], err)
			}
			logutil.GetLogger(ctx).Info("mkdir succ", zap.String("path", argv[1]))
			return nil
		},
	}
}

func init() {
	register(NewLsCmd)
	register(NewUploadCmd)
	register(NewDownloadCmd)
	register(NewRmCmd)
	register(NewMkdirCmd)
}
