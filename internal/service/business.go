package service

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"

	"github.com/rentstack/rentstack/internal/api/dto"
	"github.com/rentstack/rentstack/internal/domain/business"
)

const nameCacheTTL = 5 * time.Minute

// BusinessService serves read side lookups on the business aggregate.
type BusinessService interface {
	GetBusiness(ctx context.Context, id string) (*dto.BusinessResponse, error)
	ListBusinesses(ctx context.Context) (*dto.ListBusinessesResponse, error)
	SearchNames(ctx context.Context, query string) (*dto.ListBusinessNamesResponse, error)
	PaidEmployeesCount(ctx context.Context, id string) (*dto.PaidEmployeesCountResponse, error)
}

type businessService struct {
	ServiceParams
	nameCache *cache.Cache
}

// NewBusinessService creates the business read service
func NewBusinessService(params ServiceParams) BusinessService {
	return &businessService{
		ServiceParams: params,
		nameCache:     cache.New(nameCacheTTL, 10*time.Minute),
	}
}

func (s *businessService) GetBusiness(ctx context.Context, id string) (*dto.BusinessResponse, error) {
	biz, err := s.BusinessRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewBusinessResponse(biz), nil
}

// ListBusinesses returns every business projection. The staff directory is
// small; results are cached on the same short TTL as name lookups.
func (s *businessService) ListBusinesses(ctx context.Context) (*dto.ListBusinessesResponse, error) {
	if cached, ok := s.nameCache.Get("list"); ok {
		return cached.(*dto.ListBusinessesResponse), nil
	}

	all, err := s.BusinessRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListBusinessesResponse{
		Items: lo.Map(all, func(b *business.Business, _ int) *dto.BusinessResponse {
			return dto.NewBusinessResponse(b)
		}),
		Total: len(all),
	}

	s.nameCache.Set("list", resp, cache.DefaultExpiration)
	return resp, nil
}

// SearchNames returns id and name pairs matching the query. Results are
// cached briefly since the admin UI fires a lookup per keystroke.
func (s *businessService) SearchNames(ctx context.Context, query string) (*dto.ListBusinessNamesResponse, error) {
	cacheKey := fmt.Sprintf("names:%s", query)
	if cached, ok := s.nameCache.Get(cacheKey); ok {
		return cached.(*dto.ListBusinessNamesResponse), nil
	}

	matches, err := s.BusinessRepo.SearchNames(ctx, query)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListBusinessNamesResponse{
		Names: lo.Map(matches, func(b *business.Business, _ int) dto.BusinessNameResponse {
			return dto.BusinessNameResponse{ID: b.ID, Name: b.Name}
		}),
	}

	s.nameCache.Set(cacheKey, resp, cache.DefaultExpiration)
	return resp, nil
}

func (s *businessService) PaidEmployeesCount(ctx context.Context, id string) (*dto.PaidEmployeesCountResponse, error) {
	biz, err := s.BusinessRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PaidEmployeesCountResponse{Count: biz.PaidEmployeesCount}, nil
}
