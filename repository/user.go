package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-drive-service/entity"
	"github.com/tnqbao/gau-drive-service/infra"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByIDs(ids []uuid.UUID) ([]entity.User, error) {
	var users []entity.User
	err := r.db.Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) ListAll() ([]entity.User, error) {
	var users []entity.User
	err := r.db.Order("username ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

const (
	directoryCacheKey = "drive:directory:users"
	directoryCacheTTL = 5 * time.Minute
)

// CachedUserRepository serves the full directory through Redis. The directory
// is owned by the account service and moves slowly, so a short TTL is enough
// and no invalidation is needed here.
type CachedUserRepository struct {
	*UserRepository
	cache *infra.RedisClient
}

func NewCachedUserRepository(repo *UserRepository, cache *infra.RedisClient) *CachedUserRepository {
	return &CachedUserRepository{
		UserRepository: repo,
		cache:          cache,
	}
}

func (r *CachedUserRepository) ListAll() ([]entity.User, error) {
	ctx := context.Background()

	var users []entity.User
	if err := r.cache.Get(ctx, directoryCacheKey, &users); err == nil {
		return users, nil
	}

	users, err := r.UserRepository.ListAll()
	if err != nil {
		return nil, err
	}

	// Cache failures only cost the next lookup a query.
	_ = r.cache.Set(ctx, directoryCacheKey, users, directoryCacheTTL)

	return users, nil
}
