package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/davsync/profile"
)

type Config struct {
	LogInfo         logger.LogConfig `json:"log_info"`
	DBFile          string           `json:"db_file"`
	CredentialFile  string           `json:"credential_file"`
	Thread          int              `json:"thread"`
	Retry           int              `json:"retry"`
	RetryIntervalMs int64            `json:"retry_interval_ms"`
	DefaultTimeout  int              `json:"default_timeout"`
	UserAgent       string           `json:"user_agent"`
}

func Parse(f string) (*Config, error) {
	raw, err := os.ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("read file:%w", err)
	}
	c := &Config{
		LogInfo: logger.LogConfig{
			Level:   "info",
			Console: true,
		},
		DBFile:          "./davc.db",
		CredentialFile:  "./davc_secret.json",
		Thread:          4,
		Retry:           3,
		RetryIntervalMs: 1000,
		DefaultTimeout:  profile.DefaultTimeout,
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("decode json failed, err:%w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if len(c.DBFile) == 0 {
		return fmt.Errorf("no db_file found")
	}
	if len(c.CredentialFile) == 0 {
		return fmt.Errorf("no credential_file found")
	}
	if c.Thread <= 0 {
		return fmt.Errorf("invalid thread:%d", c.Thread)
	}
	if c.DefaultTimeout < profile.MinTimeout || c.DefaultTimeout > profile.MaxTimeout {
		return fmt.Errorf("invalid default_timeout:%d, should be in [%d, %d]", c.DefaultTimeout, profile.MinTimeout, profile.MaxTimeout)
	}
	return nil
}
