package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, data string) string {
	f := filepath.Join(t.TempDir(), "davc_config.json")
	assert.NoError(t, os.WriteFile(f, []byte(data), 0644))
	return f
}

func TestParseDefault(t *testing.T) {
	c, err := Parse(writeConfig(t, `{"db_file":"/tmp/a.db"}`))
	assert.NoError(t, err)
	assert.Equal(t, "/tmp/a.db", c.DBFile)
	assert.Equal(t, "./davc_secret.json", c.CredentialFile)
	assert.Equal(t, 4, c.Thread)
	assert.Equal(t, 3, c.Retry)
	assert.Equal(t, int64(1000), c.RetryIntervalMs)
	assert.Equal(t, 30, c.DefaultTimeout)
	assert.Equal(t, "info", c.LogInfo.Level)
	assert.True(t, c.LogInfo.Console)
}

func TestParseOverride(t *testing.T) {
	c, err := Parse(writeConfig(t, `{
		"credential_file": "/tmp/s.json",
		"thread": 8,
		"retry": 5,
		"retry_interval_ms": 200,
		"default_timeout": 60,
		"user_agent": "davc/2"
	}`))
	assert.NoError(t, err)
	assert.Equal(t, "/tmp/s.json", c.CredentialFile)
	assert.Equal(t, 8, c.Thread)
	assert.Equal(t, 5, c.Retry)
	assert.Equal(t, int64(200), c.RetryIntervalMs)
	assert.Equal(t, 60, c.DefaultTimeout)
	assert.Equal(t, "davc/2", c.UserAgent)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
	_, err = Parse(writeConfig(t, `{`))
	assert.Error(t, err)
	_, err = Parse(writeConfig(t, `{"thread": 0}`))
	assert.Error(t, err)
	_, err = Parse(writeConfig(t, `{"default_timeout": 301}`))
	assert.Error(t, err)
	_, err = Parse(writeConfig(t, `{"db_file": ""}`))
	assert.Error(t, err)
}
