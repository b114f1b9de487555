package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/config"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/hash"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/logging"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/models"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/repo"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/util"
)

// DefaultSiteConfig seeds the storefront appearance on first boot.
var DefaultSiteConfig = models.SiteConfig{
	ID:             1,
	SiteName:       "LojaControl",
	Tagline:        "Painel comercial e compras online",
	HeroTitle:      "Gestao em tempo real",
	HeroSubtitle:   "Um sistema unico para admin e clientes.",
	AccentColor:    "#1ec8a5",
	HighlightColor: "#1ea4d8",
}

type legacyUser struct {
	ID    *uint    `json:"id"`
	Nome  string   `json:"nome"`
	Email string   `json:"email"`
	Saldo *float64 `json:"saldo"`
}

type legacyProduct struct {
	ID        *uint    `json:"id"`
	Nome      string   `json:"nome"`
	Descricao string   `json:"descricao"`
	Preco     *float64 `json:"preco"`
}

type legacyAccount struct {
	ID           *uint   `json:"id"`
	Nome         string  `json:"nome"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	UsuarioID    *uint   `json:"usuario_id"`
	PasswordHash string  `json:"password_hash"`
	Salt         *string `json:"salt"`
}

type legacyOrder struct {
	ID          *uint    `json:"id"`
	UsuarioID   *uint    `json:"usuario_id"`
	ProdutosIDs []uint   `json:"produtos_ids"`
	Total       *float64 `json:"total"`
	CreatedAt   string   `json:"created_at"`
}

type legacyPayload struct {
	Usuarios   []legacyUser      `json:"usuarios"`
	Produtos   []legacyProduct   `json:"produtos"`
	Contas     []legacyAccount   `json:"contas"`
	Pedidos    []legacyOrder     `json:"pedidos"`
	SiteConfig map[string]string `json:"site_config"`
}

// Initialize migrates the schema, imports the legacy JSON snapshot into an
// empty store, and guarantees the singleton site config plus one admin
// account exist. Safe to run on every boot.
func Initialize(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&models.Profile{},
		&models.Account{},
		&models.RefreshToken{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.SiteConfig{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repo.GormRepo{DB: tx}

		empty, err := databaseIsEmpty(ctx, tx)
		if err != nil {
			return err
		}
		if empty && !cfg.SkipLegacyImport {
			if err := importLegacyData(ctx, r, cfg.LegacyDataFile); err != nil {
				return err
			}
		}

		if err := ensureSiteConfig(ctx, r); err != nil {
			return err
		}
		return ensureAdminAccount(ctx, r, cfg)
	})
}

func databaseIsEmpty(ctx context.Context, tx *gorm.DB) (bool, error) {
	for _, model := range []any{&models.Profile{}, &models.Account{}, &models.Product{}, &models.Order{}} {
		var count int64
		if err := tx.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return false, nil
		}
	}
	return true, nil
}

// ensureSiteConfig creates the singleton row when missing. Existing rows
// are left alone so admin edits survive restarts.
func ensureSiteConfig(ctx context.Context, r repo.GormRepo) error {
	existing, err := r.GetSiteConfig(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	seed := DefaultSiteConfig
	return r.SaveSiteConfig(ctx, &seed)
}

// ensureAdminAccount guarantees exactly one usable admin login. An
// existing account under the configured email is promoted rather than
// duplicated.
func ensureAdminAccount(ctx context.Context, r repo.GormRepo, cfg *config.Config) error {
	l := logging.FromContext(ctx)

	admin, err := r.FindAdminAccount(ctx)
	if err != nil {
		return err
	}
	if admin != nil {
		if admin.PasswordHash == "" {
			hashed, err := hash.HashPassword(cfg.AdminPassword)
			if err != nil {
				return err
			}
			admin.PasswordHash = hashed
			admin.PasswordAlgo = models.AlgoBcrypt
			admin.PasswordSalt = nil
			return r.SaveAccount(ctx, admin)
		}
		return nil
	}

	sameEmail, err := r.FindAccountByEmail(ctx, cfg.AdminEmail)
	if err != nil {
		return err
	}
	if sameEmail != nil {
		sameEmail.Role = models.RoleAdmin
		sameEmail.ProfileID = nil
		sameEmail.Profile = nil
		if sameEmail.PasswordHash == "" {
			hashed, err := hash.HashPassword(cfg.AdminPassword)
			if err != nil {
				return err
			}
			sameEmail.PasswordHash = hashed
			sameEmail.PasswordAlgo = models.AlgoBcrypt
			sameEmail.PasswordSalt = nil
		}
		l.Info("admin_account_promoted", "email", cfg.AdminEmail)
		return r.SaveAccount(ctx, sameEmail)
	}

	hashed, err := hash.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	l.Info("admin_account_created", "email", cfg.AdminEmail)
	return r.CreateAccount(ctx, &models.Account{
		Nome:         "Administrador",
		Email:        cfg.AdminEmail,
		Role:         models.RoleAdmin,
		PasswordHash: hashed,
		PasswordAlgo: models.AlgoBcrypt,
	})
}

func loadLegacyPayload(path string) (*legacyPayload, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var payload legacyPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse legacy file %s: %w", path, err)
	}
	return &payload, nil
}

func importLegacyData(ctx context.Context, r repo.GormRepo, path string) error {
	l := logging.FromContext(ctx)

	payload, err := loadLegacyPayload(path)
	if err != nil {
		l.Warn("legacy_import_skipped", "error", err)
		return nil
	}
	if payload == nil {
		return nil
	}

	if err := importLegacyUsers(ctx, r, payload.Usuarios); err != nil {
		return err
	}
	if err := importLegacyProducts(ctx, r, payload.Produtos); err != nil {
		return err
	}
	if err := importLegacyAccounts(ctx, r, payload.Contas); err != nil {
		return err
	}
	if err := importLegacyOrders(ctx, r, payload.Pedidos); err != nil {
		return err
	}
	if len(payload.SiteConfig) > 0 {
		if err := importLegacySiteConfig(ctx, r, payload.SiteConfig); err != nil {
			return err
		}
	}

	l.Info("legacy_import_done",
		"usuarios", len(payload.Usuarios),
		"produtos", len(payload.Produtos),
		"contas", len(payload.Contas),
		"pedidos", len(payload.Pedidos),
	)
	return nil
}

func importLegacyUsers(ctx context.Context, r repo.GormRepo, users []legacyUser) error {
	for _, item := range users {
		email := strings.ToLower(strings.TrimSpace(item.Email))
		nome := strings.TrimSpace(item.Nome)
		if email == "" || nome == "" {
			continue
		}

		saldo := 0.0
		if item.Saldo != nil {
			saldo = util.RoundMoney(*item.Saldo)
		}

		existing, err := r.FindProfileByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.Nome = nome
			existing.Saldo = saldo
			if err := r.SaveProfile(ctx, existing); err != nil {
				return err
			}
			continue
		}

		profile := models.Profile{Nome: nome, Email: email, Saldo: saldo}
		if item.ID != nil {
			profile.ID = *item.ID
		}
		if err := r.CreateProfile(ctx, &profile); err != nil {
			return err
		}
	}
	return nil
}

func importLegacyProducts(ctx context.Context, r repo.GormRepo, products []legacyProduct) error {
	for _, item := range products {
		nome := strings.TrimSpace(item.Nome)
		if nome == "" {
			continue
		}

		preco := 0.0
		if item.Preco != nil {
			preco = util.RoundMoney(*item.Preco)
		}

		product := models.Product{
			Nome:      nome,
			Descricao: strings.TrimSpace(item.Descricao),
			Preco:     preco,
		}
		if item.ID != nil {
			existing, err := r.GetProduct(ctx, *item.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				existing.Nome = product.Nome
				existing.Descricao = product.Descricao
				existing.Preco = product.Preco
				if err := r.SaveProduct(ctx, existing); err != nil {
					return err
				}
				continue
			}
			product.ID = *item.ID
		}
		if err := r.CreateProduct(ctx, &product); err != nil {
			return err
		}
	}
	return nil
}

func importLegacyAccounts(ctx context.Context, r repo.GormRepo, accounts []legacyAccount) error {
	for _, item := range accounts {
		email := strings.ToLower(strings.TrimSpace(item.Email))
		if email == "" || strings.TrimSpace(item.PasswordHash) == "" {
			continue
		}

		existing, err := r.FindAccountByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		role := strings.ToLower(strings.TrimSpace(item.Role))
		if role != models.RoleAdmin && role != models.RoleUser {
			role = models.RoleUser
		}

		var profileID *uint
		if item.UsuarioID != nil {
			profile, err := r.GetProfile(ctx, *item.UsuarioID)
			if err != nil {
				return err
			}
			if profile != nil {
				profileID = item.UsuarioID
			}
		}

		nome := strings.TrimSpace(item.Nome)
		if nome == "" {
			nome = "Usuario"
		}

		var salt *string
		algo := models.AlgoBcrypt
		if item.Salt != nil && strings.TrimSpace(*item.Salt) != "" {
			trimmed := strings.TrimSpace(*item.Salt)
			salt = &trimmed
			algo = models.AlgoPBKDF2
		}

		account := models.Account{
			Nome:         nome,
			Email:        email,
			Role:         role,
			ProfileID:    profileID,
			PasswordHash: strings.TrimSpace(item.PasswordHash),
			PasswordSalt: salt,
			PasswordAlgo: algo,
		}
		if item.ID != nil {
			account.ID = *item.ID
		}
		if err := r.CreateAccount(ctx, &account); err != nil {
			return err
		}
	}
	return nil
}

func parseLegacyTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}

func importLegacyOrders(ctx context.Context, r repo.GormRepo, orders []legacyOrder) error {
	for _, item := range orders {
		if item.UsuarioID == nil {
			continue
		}
		profile, err := r.GetProfile(ctx, *item.UsuarioID)
		if err != nil {
			return err
		}
		if profile == nil {
			continue
		}
		if item.ID != nil {
			existing, err := r.GetOrder(ctx, *item.ID)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return err
			}
			if existing != nil {
				continue
			}
		}

		var total float64
		items := make([]models.OrderItem, 0, len(item.ProdutosIDs))
		for _, pid := range item.ProdutosIDs {
			product, err := r.GetProduct(ctx, pid)
			if err != nil {
				return err
			}
			if product == nil {
				continue
			}
			total += product.Preco
			items = append(items, models.OrderItem{ProductID: pid})
		}
		if len(items) == 0 {
			continue
		}
		total = util.RoundMoney(total)
		if item.Total != nil && *item.Total > 0 {
			total = util.RoundMoney(*item.Total)
		}

		order := models.Order{
			ProfileID: profile.ID,
			Total:     total,
			CreatedAt: parseLegacyTimestamp(item.CreatedAt),
			Items:     items,
		}
		if item.ID != nil {
			order.ID = *item.ID
		}
		if err := r.CreateOrder(ctx, &order); err != nil {
			return err
		}
	}
	return nil
}

func importLegacySiteConfig(ctx context.Context, r repo.GormRepo, overrides map[string]string) error {
	seed := DefaultSiteConfig
	if v := overrides["site_name"]; v != "" {
		seed.SiteName = v
	}
	if v := overrides["tagline"]; v != "" {
		seed.Tagline = v
	}
	if v := overrides["hero_title"]; v != "" {
		seed.HeroTitle = v
	}
	if v := overrides["hero_subtitle"]; v != "" {
		seed.HeroSubtitle = v
	}
	if v := overrides["accent_color"]; v != "" {
		seed.AccentColor = v
	}
	if v := overrides["highlight_color"]; v != "" {
		seed.HighlightColor = v
	}
	return r.SaveSiteConfig(ctx, &seed)
}
