package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/models"
)

var (
	ErrNotFound = gorm.ErrRecordNotFound

	// ErrDuplicate surfaces unique-index violations. Requires the
	// connection to be opened with gorm's TranslateError.
	ErrDuplicate = gorm.ErrDuplicatedKey
)

func (r GormRepo) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.DB.WithContext(ctx).Preload("Profile").Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r GormRepo) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	err := r.DB.WithContext(ctx).Preload("Profile").Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r GormRepo) FindAdminAccount(ctx context.Context) (*models.Account, error) {
	var account models.Account
	err := r.DB.WithContext(ctx).Where("role = ?", models.RoleAdmin).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r GormRepo) CreateAccount(ctx context.Context, account *models.Account) error {
	return r.DB.WithContext(ctx).Create(account).Error
}

func (r GormRepo) SaveAccount(ctx context.Context, account *models.Account) error {
	return r.DB.WithContext(ctx).Save(account).Error
}

func (r GormRepo) FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r GormRepo) GetProfile(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r GormRepo) CreateProfile(ctx context.Context, profile *models.Profile) error {
	return r.DB.WithContext(ctx).Create(profile).Error
}

func (r GormRepo) SaveProfile(ctx context.Context, profile *models.Profile) error {
	return r.DB.WithContext(ctx).Save(profile).Error
}

func (r GormRepo) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}
