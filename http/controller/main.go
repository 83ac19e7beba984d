package controller

import (
	"github.com/tnqbao/gau-drive-service/config"
	"github.com/tnqbao/gau-drive-service/infra"
	"github.com/tnqbao/gau-drive-service/provider"
	"github.com/tnqbao/gau-drive-service/repository"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
	Objects    *provider.ObjectProvider
}

func NewController(config *config.Config, infra *infra.Infra, repo *repository.Repository) *Controller {
	if repo == nil {
		panic("Failed to initialize Repository")
	}

	objects := provider.NewObjectProvider(
		repo.ObjectRepo,
		repo.UserRepo,
		infra.Minio,
		infra.Produce.NotificationService,
		infra.Produce.ReconcileService,
		infra.Logger,
		config.EnvConfig.Sharing.OpenRoster,
		config.EnvConfig.DomainName,
	)

	return &Controller{
		Config:     config,
		Infra:      infra,
		Repository: repo,
		Objects:    objects,
	}
}
