package cache

import (
	"context"
	"time"

	"github.com/xxxsen/davsync/cacheapi"
	cachewrap "github.com/xxxsen/davsync/cacheapi/adaptor"
	"github.com/xxxsen/davsync/dao"
	"github.com/xxxsen/davsync/entity"
)

const (
	defaultMaxServerDaoCacheSize     = 1000
	defaultServerDaoCacheExpireTime  = 10 * time.Minute
	defaultServerListCacheExpireTime = time.Minute
)

type serverDao struct {
	dao.IServerDao
	cache     cacheapi.ICache[string, *entity.ServerItem]
	listCache cacheapi.IPurgeableCache[bool, []*entity.ServerItem] // keyed by enabled_only
}

func NewServerDao(impl dao.IServerDao) dao.IServerDao {
	return &serverDao{
		IServerDao: impl,
		cache:      cachewrap.NewExpirableLruCache[string, *entity.ServerItem](defaultMaxServerDaoCacheSize, defaultServerDaoCacheExpireTime),
		listCache:  cachewrap.NewExpirableLruCache[bool, []*entity.ServerItem](2, defaultServerListCacheExpireTime),
	}
}

func copyServerList(in []*entity.ServerItem) []*entity.ServerItem {
	rs := make([]*entity.ServerItem, 0, len(in))
	for _, item := range in {
		cp := *item
		rs = append(rs, &cp)
	}
	return rs
}

func (s *serverDao) GetServer(ctx context.Context, req *entity.GetServerRequest) (*entity.GetServerResponse, error) {
	m, err := cacheapi.LoadMany(ctx, s.cache, req.ServerIds, func(ctx context.Context, miss []string) (map[string]*entity.ServerItem, error) {
		res, err := s.IServerDao.GetServer(ctx, &entity.GetServerRequest{
			ServerIds: miss,
		})
		if err != nil {
			return nil, err
		}
		rs := make(map[string]*entity.ServerItem, len(res.List))
		for _, item := range res.List {
			rs[item.ServerId] = item
		}
		return rs, nil
	})
	if err != nil {
		return nil, err
	}
	rsp := &entity.GetServerResponse{}
	for _, sid := range req.ServerIds {
		v, ok := m[sid]
		if !ok {
			continue
		}
		cp := *v
		rsp.List = append(rsp.List, &cp)
	}
	return rsp, nil
}

func (s *serverDao) ListServer(ctx context.Context, req *entity.ListServerRequest) (*entity.ListServerResponse, error) {
	list, _, err := cacheapi.Load(ctx, s.listCache, req.EnabledOnly, func(ctx context.Context, miss []bool) (map[bool][]*entity.ServerItem, error) {
		rs := make(map[bool][]*entity.ServerItem, len(miss))
		for _, enabledOnly := range miss {
			res, err := s.IServerDao.ListServer(ctx, &entity.ListServerRequest{EnabledOnly: enabledOnly})
			if err != nil {
				return nil, err
			}
			rs[enabledOnly] = res.List
		}
		return rs, nil
	})
	if err != nil {
		return nil, err
	}
	return &entity.ListServerResponse{List: copyServerList(list)}, nil
}

func (s *serverDao) invalidate(ctx context.Context, sids ...string) {
	cacheapi.DelMany[string](ctx, s.cache, sids...)
	_ = s.listCache.Purge(ctx)
}

func (s *serverDao) CreateServer(ctx context.Context, req *entity.CreateServerRequest) (*entity.CreateServerResponse, error) {
	defer s.invalidate(ctx)
	return s.IServerDao.CreateServer(ctx, req)
}

func (s *serverDao) UpdateServer(ctx context.Context, req *entity.UpdateServerRequest) (*entity.UpdateServerResponse, error) {
	defer s.invalidate(ctx, req.ServerId)
	return s.IServerDao.UpdateServer(ctx, req)
}

func (s *serverDao) UpdateTestResult(ctx context.Context, req *entity.UpdateTestResultRequest) (*entity.UpdateTestResultResponse, error) {
	defer s.invalidate(ctx, req.ServerId)
	return s.IServerDao.UpdateTestResult(ctx, req)
}

func (s *serverDao) DeleteServer(ctx context.Context, req *entity.DeleteServerRequest) (*entity.DeleteServerResponse, error) {
	defer s.invalidate(ctx, req.ServerId)
	return s.IServerDao.DeleteServer(ctx, req)
}
