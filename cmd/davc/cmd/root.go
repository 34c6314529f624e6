package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/davsync/config"
	"github.com/xxxsen/davsync/credential"
	"github.com/xxxsen/davsync/dao"
	"github.com/xxxsen/davsync/dao/cache"
	"github.com/xxxsen/davsync/davclient"
	"github.com/xxxsen/davsync/daverr"
	"github.com/xxxsen/davsync/db"
	"github.com/xxxsen/davsync/entity"
	"github.com/xxxsen/davsync/servermgr"
	"github.com/xxxsen/davsync/transfer"
)

const (
	defaultConfigFileEnv = "DAVC_CONFIG"
	defaultConfigFile    = "/etc/davc/davc_config.json"
)

var cmds []CreateFunc

type Context struct {
	Config  *config.Config
	Manager *servermgr.Manager
}

type CreateFunc func(ctx *Context) *cobra.Command

func register(cr CreateFunc) {
	cmds = append(cmds, cr)
}

func loadConfig(cfgs []string) (*config.Config, error) {
	var lastErr error
	for _, cfg := range cfgs {
		if len(cfg) == 0 {
			continue
		}
		c, err := config.Parse(cfg)
		if err != nil {
			lastErr = fmt.Errorf("parse config failed, file:%s, err:%w", cfg, err)
			continue
		}
		return c, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no config file specified")
	}
	return nil, fmt.Errorf("no valid config file found, last err:%w", lastErr)
}

func initContext(ctx *Context, cfgs []string) error {
	c, err := loadConfig(cfgs)
	if err != nil {
		return err
	}
	ctx.Config = c
	logitem := c.LogInfo
	logger.Init(logitem.File, logitem.Level, int(logitem.FileCount), int(logitem.FileSize), int(logitem.KeepDays), logitem.Console)
	if err := db.InitDB(c.DBFile); err != nil {
		return fmt.Errorf("init db failed, err:%w", err)
	}
	opts := []servermgr.Option{}
	if len(c.UserAgent) > 0 {
		opts = append(opts, servermgr.WithClientOption(davclient.WithUserAgent(c.UserAgent)))
	}
	ctx.Manager = servermgr.New(cache.NewServerDao(dao.NewServerDao(db.GetClient())), credential.NewFileProvider(c.CredentialFile), opts...)
	return nil
}

// resolveServer accepts a server id or a server name.
func (c *Context) resolveServer(ctx context.Context, key string) (*entity.ServerItem, error) {
	item, err := c.Manager.GetServer(ctx, key)
	if err == nil {
		return item, nil
	}
	if !daverr.IsKind(err, daverr.KindNotFound) {
		return nil, err
	}
	list, err := c.Manager.ListServers(ctx, false)
	if err != nil {
		return nil, err
	}
	var found *entity.ServerItem
	for _, s := range list {
		if s.Name != key {
			continue
		}
		if found != nil {
			return nil, daverr.Config("server name:%s is ambiguous, use server id instead", key)
		}
		found = s
	}
	if found == nil {
		return nil, daverr.NotFound("server not found, key:%s", key)
	}
	return found, nil
}

func (c *Context) openClient(ctx context.Context, key string) (*davclient.Client, error) {
	item, err := c.resolveServer(ctx, key)
	if err != nil {
		return nil, err
	}
	if !item.IsEnabled() {
		return nil, daverr.Config("server:%s is disabled", item.Name)
	}
	return c.Manager.OpenClient(ctx, item.ServerId)
}

func (c *Context) newTransfer(cli davclient.IClient) (*transfer.Transfer, error) {
	return transfer.New(
		transfer.WithClient(cli),
		transfer.WithThread(c.Config.Thread),
		transfer.WithRetry(c.Config.Retry, time.Duration(c.Config.RetryIntervalMs)*time.Millisecond),
	)
}

func NewRoot() *cobra.Command {
	var configFile string
	ctx := &Context{}
	var rootCmd = &cobra.Command{
		Use:           "davc",
		Short:         "WebDAV CLI tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	for _, cr := range cmds {
		rootCmd.AddCommand(cr(ctx))
	}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		envConfigFile, _ := os.LookupEnv(defaultConfigFileEnv)
		return initContext(ctx, []string{configFile, envConfigFile, defaultConfigFile})
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file")
	return rootCmd
}
