package repo

import (
	"context"

	"gorm.io/gorm"
)

type GormRepo struct {
	DB *gorm.DB
}

// Transaction runs fn against a repo bound to a single transaction. Every
// auth flow that touches more than one row goes through here.
func (r GormRepo) Transaction(ctx context.Context, fn func(tx GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(GormRepo{DB: tx})
	})
}
