package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davsync/entity"
	"github.com/xxxsen/davsync/servermgr"
	"go.uber.org/zap"
)

const (
	defaultPasswordEnv = "DAVC_PASSWORD"
)

type serverArgs struct {
	name     string
	url      string
	username string
	password string
	timeout  int
	disabled bool
}

func (a *serverArgs) bindFlags(c *cobra.Command) {
	c.Flags().StringVarP(&a.name, "name", "n", "", "server name")
	c.Flags().StringVarP(&a.url, "url", "u", "", "webdav url, e.g. https://example.com/remote.php/webdav")
	c.Flags().StringVar(&a.username, "username", "", "login user")
	c.Flags().StringVarP(&a.password, "password", "p", "", "login password, read from $"+defaultPasswordEnv+" when empty")
	c.Flags().IntVarP(&a.timeout, "timeout", "t", 0, "request timeout in seconds, config default_timeout when 0")
	c.Flags().BoolVar(&a.disabled, "disabled", false, "store the server as disabled")
}

func (a *serverArgs) toInput(c *Context) *servermgr.ServerInput {
	timeout := a.timeout
	if timeout == 0 {
		timeout = c.Config.DefaultTimeout
	}
	useTLS := false
	if u, err := url.Parse(a.url); err == nil {
		useTLS = strings.EqualFold(u.Scheme, "https")
	}
	return &servermgr.ServerInput{
		Name:     a.name,
		URL:      a.url,
		Username: a.username,
		UseTLS:   useTLS,
		Timeout:  timeout,
		Enabled:  !a.disabled,
	}
}

func (a *serverArgs) secret() string {
	if len(a.password) > 0 {
		return a.password
	}
	v, _ := os.LookupEnv(defaultPasswordEnv)
	return v
}

func newServerAddCmd(c *Context) *cobra.Command {
	args := &serverArgs{}
	subc := &cobra.Command{
		Use:   "add",
		Short: "Add a webdav server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			item, err := c.Manager.AddServer(ctx, args.toInput(c), args.secret())
			if err != nil {
				return fmt.Errorf("add server failed, err:%w", err)
			}
			logutil.GetLogger(ctx).Info("add server succ", zap.String("server_id", item.ServerId), zap.String("name", item.Name))
			fmt.Fprintln(cmd.OutOrStdout(), item.ServerId)
			return nil
		},
	}
	args.bindFlags(subc)
	return subc
}

func newServerUpdateCmd(c *Context) *cobra.Command {
	args := &serverArgs{}
	subc := &cobra.Command{
		Use:   "update <server>",
		Short: "Update a webdav server, unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := context.Background()
			item, err := c.resolveServer(ctx, argv[0])
			if err != nil {
				return err
			}
			in := &servermgr.ServerInput{
				Name:     item.Name,
				URL:      item.URL,
				Username: item.Username,
				UseTLS:   item.IsUseTLS(),
				Timeout:  int(item.Timeout),
				Enabled:  item.IsEnabled(),
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = args.name
			}
			if flags.Changed("url") {
				in.URL = args.url
				in.UseTLS = args.toInput(c).UseTLS
			}
			if flags.Changed("username") {
				in.Username = args.username
			}
			if flags.Changed("timeout") {
				in.Timeout = args.timeout
			}
			if flags.Changed("disabled") {
				in.Enabled = !args.disabled
			}
			var secret *string
			if flags.Changed("password") {
				secret = &args.password
			}
			if _, err := c.Manager.UpdateServer(ctx, item.ServerId, in, secret); err != nil {
				return fmt.Errorf("update server failed, err:%w", err)
			}
			logutil.GetLogger(ctx).Info("update server succ", zap.String("server_id", item.ServerId))
			return nil
		},
	}
	args.bindFlags(subc)
	return subc
}

func newServerListCmd(c *Context) *cobra.Command {
	var enabledOnly bool
	subc := &cobra.Command{
		Use:   "list",
		Short: "List webdav servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := c.Manager.ListServers(context.Background(), enabledOnly)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tURL\tUSER\tTYPE\tENABLED\tLAST_TEST")
			for _, s := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\t%s\n", s.ServerId, s.Name, s.URL, s.Username, s.ServerType, s.IsEnabled(), formatLastTest(s))
			}
			return w.Flush()
		},
	}
	subc.Flags().BoolVar(&enabledOnly, "enabled", false, "list enabled servers only")
	return subc
}

func formatLastTest(s *entity.ServerItem) string {
	if s.LastTestAt == 0 {
		return s.LastTestStatus
	}
	return fmt.Sprintf("%s (%s)", s.LastTestStatus, humanize.Time(time.Unix(s.LastTestAt, 0)))
}

func newServerRemoveCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <server>",
		Short: "Remove a webdav server and its password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := context.Background()
			item, err := c.resolveServer(ctx, argv[0])
			if err != nil {
				return err
			}
			if err := c.Manager.RemoveServer(ctx, item.ServerId); err != nil {
				return fmt.Errorf("remove server failed, err:%w", err)
			}
			logutil.GetLogger(ctx).Info("remove server succ", zap.String("server_id", item.ServerId), zap.String("name", item.Name))
			return nil
		},
	}
}

func newServerTestCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "test <server>",
		Short: "Test the connection of a webdav server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := context.Background()
			item, err := c.resolveServer(ctx, argv[0])
			if err != nil {
				return err
			}
			rs, err := c.Manager.TestConnection(ctx, item.ServerId)
			if err != nil {
				return fmt.Errorf("test connection failed, err:%w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), rs.Message)
			if !rs.Success {
				return fmt.Errorf("connection test failed, server:%s", item.Name)
			}
			return nil
		},
	}
}

func NewServerCmd(c *Context) *cobra.Command {
	subc := &cobra.Command{
		Use:   "server",
		Short: "Manage webdav servers",
	}
	subc.AddCommand(
		newServerAddCmd(c),
		newServerListCmd(c),
		newServerUpdateCmd(c),
		newServerRemoveCmd(c),
		newServerTestCmd(c),
	)
	return subc
}

func init() {
	register(NewServerCmd)
}
