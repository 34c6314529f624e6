package servermgr

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davsync/credential"
	"github.com/xxxsen/davsync/dao"
	"github.com/xxxsen/davsync/davclient"
	"github.com/xxxsen/davsync/daverr"
	"github.com/xxxsen/davsync/entity"
	"github.com/xxxsen/davsync/profile"
	"go.uber.org/zap"
)

// ServerInput carries the editable fields of a server. Id, timestamps and
// test results are owned by the manager.
type ServerInput struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Username string `json:"username"`
	UseTLS   bool   `json:"use_tls"`
	Timeout  int    `json:"timeout"`
	Enabled  bool   `json:"enabled"`
}

func (in *ServerInput) toProfile(id string) *profile.ServerProfile {
	return &profile.ServerProfile{
		ID:       id,
		Name:     in.Name,
		URL:      in.URL,
		Username: in.Username,
		UseTLS:   in.UseTLS,
		Timeout:  in.Timeout,
	}
}

type ConnectionTestResult struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	ServerType davclient.ServerType `json:"server_type,omitempty"`
	TestAt     int64                `json:"test_at"`
}

type Manager struct {
	c    *config
	dao  dao.IServerDao
	cred credential.IProvider
}

func New(d dao.IServerDao, cred credential.IProvider, opts ...Option) *Manager {
	c := &config{
		nowFn: func() int64 { return time.Now().Unix() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return &Manager{c: c, dao: d, cred: cred}
}

func (m *Manager) GetServer(ctx context.Context, id string) (*entity.ServerItem, error) {
	rsp, err := m.dao.GetServer(ctx, &entity.GetServerRequest{ServerIds: []string{id}})
	if err != nil {
		return nil, fmt.Errorf("get server failed, id:%s, err:%w", id, err)
	}
	if len(rsp.List) == 0 {
		return nil, daverr.NotFound("server not found, id:%s", id)
	}
	return rsp.List[0], nil
}

func (m *Manager) ListServers(ctx context.Context, enabledOnly bool) ([]*entity.ServerItem, error) {
	rsp, err := m.dao.ListServer(ctx, &entity.ListServerRequest{EnabledOnly: enabledOnly})
	if err != nil {
		return nil, fmt.Errorf("list server failed, err:%w", err)
	}
	return rsp.List, nil
}

// AddServer stores the profile and its secret. When the secret can not be
// stored the profile row is removed again, so both exist or neither does.
func (m *Manager) AddServer(ctx context.Context, in *ServerInput, secret string) (*entity.ServerItem, error) {
	sid := uuid.NewString()
	if err := in.toProfile(sid).ValidateForStore(); err != nil {
		return nil, err
	}
	if err := profile.ValidateSecret(secret); err != nil {
		return nil, err
	}
	if _, err := m.dao.CreateServer(ctx, &entity.CreateServerRequest{
		Item: &entity.ServerItem{
			ServerId: sid,
			Name:     in.Name,
			URL:      in.URL,
			Username: in.Username,
			UseTLS:   entity.BoolToInt(in.UseTLS),
			Timeout:  int32(in.Timeout),
			Enabled:  entity.BoolToInt(in.Enabled),
		},
	}); err != nil {
		return nil, fmt.Errorf("create server failed, err:%w", err)
	}
	if err := m.cred.Put(ctx, sid, secret); err != nil {
		logutil.GetLogger(ctx).Error("store secret failed, rollback server", zap.String("server_id", sid), zap.Error(err))
		if _, rerr := m.dao.DeleteServer(ctx, &entity.DeleteServerRequest{ServerId: sid}); rerr != nil {
			return nil, fmt.Errorf("store secret failed, err:%w, rollback server failed, id:%s, rollback_err:%w", err, sid, rerr)
		}
		return nil, fmt.Errorf("store secret failed, server not added, err:%w", err)
	}
	logutil.GetLogger(ctx).Info("add server succ", zap.String("server_id", sid), zap.String("name", in.Name), zap.String("url", in.URL))
	return m.GetServer(ctx, sid)
}

// UpdateServer replaces the editable fields of id, then the secret when one
// is given. Both inputs are validated before anything is written.
func (m *Manager) UpdateServer(ctx context.Context, id string, in *ServerInput, secret *string) (*entity.ServerItem, error) {
	if err := in.toProfile(id).ValidateForStore(); err != nil {
		return nil, err
	}
	if secret != nil {
		if err := profile.ValidateSecret(*secret); err != nil {
			return nil, err
		}
	}
	if _, err := m.dao.UpdateServer(ctx, &entity.UpdateServerRequest{
		ServerId: id,
		Name:     in.Name,
		URL:      in.URL,
		Username: in.Username,
		UseTLS:   in.UseTLS,
		Timeout:  int32(in.Timeout),
		Enabled:  in.Enabled,
	}); err != nil {
		return nil, fmt.Errorf("update server failed, id:%s, err:%w", id, err)
	}
	if secret != nil {
		if err := m.cred.Put(ctx, id, *secret); err != nil {
			return nil, fmt.Errorf("server updated but update secret failed, id:%s, err:%w", id, err)
		}
	}
	return m.GetServer(ctx, id)
}

// RemoveServer deletes the profile, then its secret. A secret that is
// already gone is not an error.
func (m *Manager) RemoveServer(ctx context.Context, id string) error {
	if _, err := m.dao.DeleteServer(ctx, &entity.DeleteServerRequest{ServerId: id}); err != nil {
		return fmt.Errorf("delete server failed, id:%s, err:%w", id, err)
	}
	if err := m.cred.Delete(ctx, id); err != nil {
		if daverr.IsKind(err, daverr.KindNotFound) {
			logutil.GetLogger(ctx).Warn("secret of removed server not found", zap.String("server_id", id))
			return nil
		}
		return fmt.Errorf("server removed but delete secret failed, id:%s, err:%w", id, err)
	}
	return nil
}

func (m *Manager) OpenClient(ctx context.Context, id string) (*davclient.Client, error) {
	item, err := m.GetServer(ctx, id)
	if err != nil {
		return nil, err
	}
	secret, err := m.cred.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load secret failed, id:%s, err:%w", id, err)
	}
	return davclient.New(item.ToProfile(), secret, m.c.clientOpts...)
}

// TestConnection probes the server and records the outcome on its row. A
// failed probe is a result, not an error; errors mean the probe could not
// run or its outcome could not be recorded.
func (m *Manager) TestConnection(ctx context.Context, id string) (*ConnectionTestResult, error) {
	cli, err := m.OpenClient(ctx, id)
	if err != nil {
		return nil, err
	}
	defer cli.Close()
	logger := logutil.GetLogger(ctx).With(zap.String("server_id", id), zap.String("url", cli.URL()))
	rs := &ConnectionTestResult{TestAt: m.c.nowFn()}
	req := &entity.UpdateTestResultRequest{ServerId: id, TestAt: rs.TestAt}
	st, err := cli.TestConnection(ctx)
	if err != nil {
		logger.Warn("connection test failed", zap.Error(err))
		rs.Message = err.Error()
		req.Status = entity.TestStatusFailed
		req.Error = rs.Message
	} else {
		logger.Info("connection test succ", zap.String("server_type", st.String()))
		rs.Success = true
		rs.ServerType = st
		rs.Message = fmt.Sprintf("Successfully connected to %s server", st)
		req.Status = entity.TestStatusSuccess
		req.ServerType = st.String()
	}
	if _, err := m.dao.UpdateTestResult(ctx, req); err != nil {
		return nil, fmt.Errorf("record test result failed, id:%s, err:%w", id, err)
	}
	return rs, nil
}
