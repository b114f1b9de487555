package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/models"
)

const siteConfigID = 1

func (r GormRepo) GetSiteConfig(ctx context.Context) (*models.SiteConfig, error) {
	var cfg models.SiteConfig
	err := r.DB.WithContext(ctx).Where("id = ?", siteConfigID).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r GormRepo) SaveSiteConfig(ctx context.Context, cfg *models.SiteConfig) error {
	cfg.ID = siteConfigID
	return r.DB.WithContext(ctx).Save(cfg).Error
}
