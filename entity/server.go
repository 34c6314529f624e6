package entity

import "github.com/xxxsen/davsync/profile"

const (
	TestStatusUnknown = "unknown"
	TestStatusSuccess = "success"
	TestStatusFailed  = "failed"
)

// ServerItem is one row of webdav_server_tab. The secret is never part of it.
type ServerItem struct {
	Id             uint64 `json:"id"`
	ServerId       string `json:"server_id"`
	Name           string `json:"name"`
	URL            string `json:"url"`
	Username       string `json:"username"`
	UseTLS         int32  `json:"use_tls"`
	Timeout        int32  `json:"timeout"`
	LastTestAt     int64  `json:"last_test_at"` // unix seconds, 0 when never tested
	LastTestStatus string `json:"last_test_status"`
	LastTestError  string `json:"last_test_error"`
	ServerType     string `json:"server_type"`
	Enabled        int32  `json:"enabled"`
	Ctime          int64  `json:"ctime"`
	Mtime          int64  `json:"mtime"`
}

func (s *ServerItem) IsEnabled() bool {
	return s.Enabled != 0
}

func (s *ServerItem) IsUseTLS() bool {
	return s.UseTLS != 0
}

func (s *ServerItem) ToProfile() *profile.ServerProfile {
	return &profile.ServerProfile{
		ID:       s.ServerId,
		Name:     s.Name,
		URL:      s.URL,
		Username: s.Username,
		UseTLS:   s.IsUseTLS(),
		Timeout:  int(s.Timeout),
	}
}

func BoolToInt(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

type CreateServerRequest struct {
	Item *ServerItem
}

type CreateServerResponse struct {
	ServerId string
}

type GetServerRequest struct {
	ServerIds []string
}

type GetServerResponse struct {
	List []*ServerItem
}

type ListServerRequest struct {
	EnabledOnly bool
}

type ListServerResponse struct {
	List []*ServerItem
}

type UpdateServerRequest struct {
	ServerId string
	Name     string
	URL      string
	Username string
	UseTLS   bool
	Timeout  int32
	Enabled  bool
}

type UpdateServerResponse struct {
}

type DeleteServerRequest struct {
	ServerId string
}

type DeleteServerResponse struct {
}

type UpdateTestResultRequest struct {
	ServerId   string
	TestAt     int64
	Status     string
	Error      string
	ServerType string
}

type UpdateTestResultResponse struct {
}
