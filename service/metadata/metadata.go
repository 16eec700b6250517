package metadata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lendex/core"
	"lendex/pkg/resthttp"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/logger"
	"golang.org/x/sync/singleflight"
)

const listKey = "deals:all"

type dealsResponse struct {
	Docs []*core.DealMetadata `json:"docs"`
}

type metadataService struct {
	endpoint string
	cache    gcache.Cache
	sf       *singleflight.Group
}

// New new cms backed metadata service
func New(cfg core.CMS) core.MetadataService {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &metadataService{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		cache:    gcache.New(1024).LRU().Expiration(ttl).Build(),
		sf:       &singleflight.Group{},
	}
}

func (s *metadataService) pull(ctx context.Context, query map[string]string) ([]*core.DealMetadata, error) {
	url := fmt.Sprintf("%s/api/deals", s.endpoint)
	resp, err := resthttp.Request(ctx).SetQueryParams(query).Get(url)
	if err != nil {
		return nil, err
	}

	var body dealsResponse
	if err := resthttp.ParseResponse(resp, &body); err != nil {
		return nil, err
	}

	for _, deal := range body.Docs {
		deal.ID = core.NormalizeAddress(deal.ID)
	}

	return body.Docs, nil
}

func (s *metadataService) Find(ctx context.Context, id string) (*core.DealMetadata, error) {
	id = core.NormalizeAddress(id)
	if v, err := s.cache.Get(id); err == nil {
		return v.(*core.DealMetadata), nil
	}

	v, err, _ := s.sf.Do(id, func() (interface{}, error) {
		deals, err := s.pull(ctx, map[string]string{"where[id][equals]": id})
		if err != nil {
			return nil, err
		}

		for _, deal := range deals {
			if deal.ID == id {
				_ = s.cache.Set(id, deal)
				return deal, nil
			}
		}

		return nil, core.ErrNotFound
	})

	if err != nil {
		return nil, err
	}

	return v.(*core.DealMetadata), nil
}

func (s *metadataService) List(ctx context.Context) ([]*core.DealMetadata, error) {
	if v, err := s.cache.Get(listKey); err == nil {
		return v.([]*core.DealMetadata), nil
	}

	v, err, _ := s.sf.Do(listKey, func() (interface{}, error) {
		deals, err := s.pull(ctx, map[string]string{"limit": "1000"})
		if err != nil {
			return nil, err
		}

		for _, deal := range deals {
			_ = s.cache.Set(deal.ID, deal)
		}

		_ = s.cache.Set(listKey, deals)
		logger.FromContext(ctx).Debugf("cms: cached %d deals", len(deals))
		return deals, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]*core.DealMetadata), nil
}
