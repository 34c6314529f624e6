package dao

import (
	"context"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/google/uuid"
	"github.com/xxxsen/common/database"
	"github.com/xxxsen/common/database/dbkit"
	"github.com/xxxsen/davsync/daverr"
	"github.com/xxxsen/davsync/entity"
)

type IServerDao interface {
	CreateServer(ctx context.Context, req *entity.CreateServerRequest) (*entity.CreateServerResponse, error)
	GetServer(ctx context.Context, req *entity.GetServerRequest) (*entity.GetServerResponse, error)
	ListServer(ctx context.Context, req *entity.ListServerRequest) (*entity.ListServerResponse, error)
	UpdateServer(ctx context.Context, req *entity.UpdateServerRequest) (*entity.UpdateServerResponse, error)
	DeleteServer(ctx context.Context, req *entity.DeleteServerRequest) (*entity.DeleteServerResponse, error)
	UpdateTestResult(ctx context.Context, req *entity.UpdateTestResultRequest) (*entity.UpdateTestResultResponse, error)
}

type serverDaoImpl struct {
	dbc database.IDatabase
}

func NewServerDao(dbc database.IDatabase) IServerDao {
	return &serverDaoImpl{
		dbc: dbc,
	}
}

func (s *serverDaoImpl) table() string {
	return "webdav_server_tab"
}

func (s *serverDaoImpl) CreateServer(ctx context.Context, req *entity.CreateServerRequest) (*entity.CreateServerResponse, error) {
	item := req.Item
	sid := item.ServerId
	if len(sid) == 0 {
		sid = uuid.NewString()
	}
	status := item.LastTestStatus
	if len(status) == 0 {
		status = entity.TestStatusUnknown
	}
	serverType := item.ServerType
	if len(serverType) == 0 {
		serverType = "generic"
	}
	now := time.Now().Unix()
	data := []map[string]interface{}{
		{
			"server_id":        sid,
			"name":             item.Name,
			"url":              item.URL,
			"username":         item.Username,
			"use_tls":          item.UseTLS,
			"timeout":          item.Timeout,
			"last_test_at":     0,
			"last_test_status": status,
			"last_test_error":  "",
			"server_type":      serverType,
			"enabled":          item.Enabled,
			"ctime":            now,
			"mtime":            now,
		},
	}
	sql, args, err := builder.BuildInsert(s.table(), data)
	if err != nil {
		return nil, err
	}
	if _, err := s.dbc.ExecContext(ctx, sql, args...); err != nil {
		return nil, err
	}
	return &entity.CreateServerResponse{ServerId: sid}, nil
}

func (s *serverDaoImpl) GetServer(ctx context.Context, req *entity.GetServerRequest) (*entity.GetServerResponse, error) {
	if len(req.ServerIds) == 0 {
		return &entity.GetServerResponse{}, nil
	}
	where := map[string]interface{}{
		"server_id in": req.ServerIds,
	}
	rs := make([]*entity.ServerItem, 0, len(req.ServerIds))
	if err := dbkit.SimpleQuery(ctx, s.dbc, s.table(), where, &rs, dbkit.ScanWithTagName("json")); err != nil {
		return nil, err
	}
	return &entity.GetServerResponse{List: rs}, nil
}

func (s *serverDaoImpl) ListServer(ctx context.Context, req *entity.ListServerRequest) (*entity.ListServerResponse, error) {
	where := map[string]interface{}{
		"_orderby": "id asc",
	}
	if req.EnabledOnly {
		where["enabled"] = 1
	}
	rs := make([]*entity.ServerItem, 0, 16)
	if err := dbkit.SimpleQuery(ctx, s.dbc, s.table(), where, &rs, dbkit.ScanWithTagName("json")); err != nil {
		return nil, err
	}
	return &entity.ListServerResponse{List: rs}, nil
}

func (s *serverDaoImpl) execUpdate(ctx context.Context, sid string, update map[string]interface{}) error {
	where := map[string]interface{}{
		"server_id": sid,
	}
	update["mtime"] = time.Now().Unix()
	sql, args, err := builder.BuildUpdate(s.table(), where, update)
	if err != nil {
		return err
	}
	res, err := s.dbc.ExecContext(ctx, sql, args...)
	if err != nil {
		return err
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if cnt == 0 {
		return daverr.NotFound("server not found, id:%s", sid)
	}
	return nil
}

func (s *serverDaoImpl) UpdateServer(ctx context.Context, req *entity.UpdateServerRequest) (*entity.UpdateServerResponse, error) {
	update := map[string]interface{}{
		"name":     req.Name,
		"url":      req.URL,
		"username": req.Username,
		"use_tls":  entity.BoolToInt(req.UseTLS),
		"timeout":  req.Timeout,
		"enabled":  entity.BoolToInt(req.Enabled),
	}
	if err := s.execUpdate(ctx, req.ServerId, update); err != nil {
		return nil, err
	}
	return &entity.UpdateServerResponse{}, nil
}

func (s *serverDaoImpl) UpdateTestResult(ctx context.Context, req *entity.UpdateTestResultRequest) (*entity.UpdateTestResultResponse, error) {
	update := map[string]interface{}{
		"last_test_at":     req.TestAt,
		"last_test_status": req.Status,
		"last_test_error":  req.Error,
	}
	// a failed probe keeps the last detected type
	if len(req.ServerType) > 0 {
		update["server_type"] = req.ServerType
	}
	if err := s.execUpdate(ctx, req.ServerId, update); err != nil {
		return nil, err
	}
	return &entity.UpdateTestResultResponse{}, nil
}

func (s *serverDaoImpl) DeleteServer(ctx context.Context, req *entity.DeleteServerRequest) (*entity.DeleteServerResponse, error) {
	where := map[string]interface{}{
		"server_id": req.ServerId,
	}
	sql, args, err := builder.BuildDelete(s.table(), where)
	if err != nil {
		return nil, err
	}
	res, err := s.dbc.ExecContext(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if cnt == 0 {
		return nil, daverr.NotFound("server not found, id:%s", req.ServerId)
	}
	return &entity.DeleteServerResponse{}, nil
}
