package repository

import (
	"context"

	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/domain"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/usecase"
)

type CodeCache interface {
	Get(ctx context.Context, code string) (int64, bool)
	Set(ctx context.Context, code string, id int64)
}

// CachedIdentityRepository memoizes code resolution. Codes never change once assigned.
type CachedIdentityRepository struct {
	usecase.IdentityRepository
	cache CodeCache
}

func NewCachedIdentityRepository(base usecase.IdentityRepository, cache CodeCache) *CachedIdentityRepository {
	return &CachedIdentityRepository{IdentityRepository: base, cache: cache}
}

func (r *CachedIdentityRepository) Create(ctx context.Context, identity domain.Identity) (domain.Identity, error) {
	stored, err := r.IdentityRepository.Create(ctx, identity)
	if err != nil {
		return domain.Identity{}, err
	}
	r.cache.Set(ctx, stored.Code, stored.ID)
	return stored, nil
}

func (r *CachedIdentityRepository) ResolveByCode(ctx context.Context, code string) (int64, error) {
	if id, ok := r.cache.Get(ctx, code); ok {
		return id, nil
	}
	id, err := r.IdentityRepository.ResolveByCode(ctx, code)
	if err != nil {
		return 0, err
	}
	r.cache.Set(ctx, code, id)
	return id, nil
}

var _ usecase.IdentityRepository = (*CachedIdentityRepository)(nil)
