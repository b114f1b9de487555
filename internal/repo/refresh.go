package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/models"
)

func (r GormRepo) StoreRefresh(ctx context.Context, accountID uint, jti string, expiresAt time.Time) error {
	row := models.RefreshToken{
		AccountID: accountID,
		JTI:       jti,
		ExpiresAt: expiresAt,
		Revoked:   false,
	}
	return r.DB.WithContext(ctx).Create(&row).Error
}

func (r GormRepo) FindRefreshByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var row models.RefreshToken
	err := r.DB.WithContext(ctx).Where("jti = ?", jti).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ConsumeRefresh flips revoked on a still-active row and reports whether
// this caller won the flip. A concurrent refresh of the same token sees
// zero rows affected and must fail, so a token is never rotated twice.
func (r GormRepo) ConsumeRefresh(ctx context.Context, jti string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("jti = ? AND revoked = ?", jti, false).
		Update("revoked", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RevokeAllForAccount bulk-revokes every active row. Idempotent.
func (r GormRepo) RevokeAllForAccount(ctx context.Context, accountID uint) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("account_id = ? AND revoked = ?", accountID, false).
		Update("revoked", true).Error
}

// PurgeExpiredRefresh drops rows past their expiry. Opportunistic cleanup:
// validation checks expires_at regardless.
func (r GormRepo) PurgeExpiredRefresh(ctx context.Context) error {
	return r.DB.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&models.RefreshToken{}).Error
}
