package repo

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/models"
)

func newAccountRepo(t *testing.T) GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}))
	return GormRepo{DB: db}
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	t.Parallel()

	r := newAccountRepo(t)
	ctx := context.Background()

	first := &models.Account{
		Nome:         "Maria",
		Email:        "maria@example.com",
		Role:         models.RoleUser,
		PasswordHash: "x",
		PasswordAlgo: models.AlgoBcrypt,
	}
	require.NoError(t, r.CreateAccount(ctx, first))

	second := &models.Account{
		Nome:         "Impostora",
		Email:        "maria@example.com",
		Role:         models.RoleUser,
		PasswordHash: "y",
		PasswordAlgo: models.AlgoBcrypt,
	}
	err := r.CreateAccount(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicate)
}
