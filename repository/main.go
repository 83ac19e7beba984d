package repository

import (
	"github.com/tnqbao/gau-drive-service/infra"
	"gorm.io/gorm"
)

type Repository struct {
	ObjectRepo *ObjectRepository
	UserRepo   *CachedUserRepository
}

var repository *Repository

func InitRepository(infra *infra.Infra) *Repository {
	repository = &Repository{
		ObjectRepo: NewObjectRepository(infra.Postgres.DB),
		UserRepo:   NewCachedUserRepository(NewUserRepository(infra.Postgres.DB), infra.Redis),
	}
	return repository
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}

func (r *Repository) WithTransaction(tx *gorm.DB) *Repository {
	return &Repository{
		ObjectRepo: NewObjectRepository(tx),
		UserRepo:   repository.UserRepo,
	}
}
