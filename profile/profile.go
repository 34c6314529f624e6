package profile

import (
	"net/url"
	"strings"
	"time"

	"github.com/xxxsen/davsync/daverr"
)

const (
	MinTimeout     = 1
	MaxTimeout     = 300
	DefaultTimeout = 30
)

// ServerProfile describes one remote WebDAV endpoint. It is validated once
// and never mutated afterwards.
type ServerProfile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Username string `json:"username"`
	UseTLS   bool   `json:"use_tls"`
	Timeout  int    `json:"timeout"` // seconds
}

func (p *ServerProfile) TimeoutDuration() time.Duration {
	return time.Duration(p.Timeout) * time.Second
}

func (p *ServerProfile) ValidateURL() error {
	if len(strings.TrimSpace(p.URL)) == 0 {
		return daverr.Config("invalid server config: url cannot be empty")
	}
	u, err := url.Parse(p.URL)
	if err != nil {
		return daverr.Config("invalid server config: invalid url format")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return daverr.Config("invalid server config: url must use http or https protocol, found:%q", u.Scheme)
	}
	if len(u.Hostname()) == 0 {
		return daverr.Config("invalid server config: url must contain a valid host")
	}
	if u.User != nil {
		return daverr.Config("invalid server config: url must not embed credentials")
	}
	return nil
}

func (p *ServerProfile) ValidateUsername() error {
	if len(strings.TrimSpace(p.Username)) == 0 {
		return daverr.Config("invalid server config: username cannot be empty")
	}
	return nil
}

func (p *ServerProfile) ValidateTimeout() error {
	if p.Timeout < MinTimeout || p.Timeout > MaxTimeout {
		return daverr.Config("invalid server config: timeout must be between %d and %d seconds, got:%d", MinTimeout, MaxTimeout, p.Timeout)
	}
	return nil
}

// Validate runs every check the client needs before any network I/O.
func (p *ServerProfile) Validate() error {
	if p == nil {
		return daverr.Config("invalid server config: nil profile")
	}
	if err := p.ValidateURL(); err != nil {
		return err
	}
	if err := p.ValidateUsername(); err != nil {
		return err
	}
	if err := p.ValidateTimeout(); err != nil {
		return err
	}
	return nil
}

// ValidateForStore additionally requires a display name, which only the
// persisted profile list needs.
func (p *ServerProfile) ValidateForStore() error {
	if p == nil {
		return daverr.Config("invalid server config: nil profile")
	}
	if len(strings.TrimSpace(p.Name)) == 0 {
		return daverr.Config("invalid server config: server name cannot be empty")
	}
	return p.Validate()
}

// ValidateSecret rejects empty or whitespace-only secrets.
func ValidateSecret(secret string) error {
	if len(strings.TrimSpace(secret)) == 0 {
		return daverr.Config("Password cannot be empty")
	}
	return nil
}
