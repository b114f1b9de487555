package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/logging"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/models"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/repo"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/util"
)

type AdminService struct {
	Repo repo.GormRepo
}

type SummaryView struct {
	Usuarios    int64   `json:"usuarios"`
	Produtos    int64   `json:"produtos"`
	Pedidos     int64   `json:"pedidos"`
	Faturamento float64 `json:"faturamento"`
	SaldoTotal  float64 `json:"saldo_total"`
}

type ProductCreateInput struct {
	Nome      string  `json:"nome"`
	Descricao string  `json:"descricao"`
	Preco     float64 `json:"preco"`
}

type ProductUpdateInput struct {
	Nome      *string  `json:"nome"`
	Descricao *string  `json:"descricao"`
	Preco     *float64 `json:"preco"`
}

type SiteConfigInput struct {
	SiteName       string `json:"site_name"`
	Tagline        string `json:"tagline"`
	HeroTitle      string `json:"hero_title"`
	HeroSubtitle   string `json:"hero_subtitle"`
	AccentColor    string `json:"accent_color"`
	HighlightColor string `json:"highlight_color"`
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func (s *AdminService) GetSummary(ctx context.Context) (*SummaryView, error) {
	sum, err := s.Repo.Summarize(ctx)
	if err != nil {
		return nil, err
	}
	return &SummaryView{
		Usuarios:    sum.Usuarios,
		Produtos:    sum.Produtos,
		Pedidos:     sum.Pedidos,
		Faturamento: util.RoundMoney(sum.Revenue),
		SaldoTotal:  util.RoundMoney(sum.TotalSaldo),
	}, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]ProfileView, error) {
	profiles, err := s.Repo.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ProfileView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, ProfileView{
			ID:    p.ID,
			Nome:  p.Nome,
			Email: p.Email,
			Saldo: util.RoundMoney(p.Saldo),
		})
	}
	return views, nil
}

func (s *AdminService) ListProducts(ctx context.Context) ([]ProductView, error) {
	products, err := s.Repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, ProductPayload(&products[i]))
	}
	return views, nil
}

func validateProductCreate(in ProductCreateInput) error {
	nome := strings.TrimSpace(in.Nome)
	if len(nome) < 2 || len(nome) > 120 {
		return fmt.Errorf("%w: nome deve ter entre 2 e 120 caracteres", ErrValidation)
	}
	if len(in.Descricao) > 300 {
		return fmt.Errorf("%w: descricao deve ter ate 300 caracteres", ErrValidation)
	}
	if in.Preco <= 0 {
		return fmt.Errorf("%w: preco deve ser positivo", ErrValidation)
	}
	return nil
}

func (s *AdminService) CreateProduct(ctx context.Context, in ProductCreateInput) (*ProductView, error) {
	if err := validateProductCreate(in); err != nil {
		return nil, err
	}
	product := &models.Product{
		Nome:      strings.TrimSpace(in.Nome),
		Descricao: strings.TrimSpace(in.Descricao),
		Preco:     util.RoundMoney(in.Preco),
	}
	if err := s.Repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	view := ProductPayload(product)
	logging.FromContext(ctx).Info("product_created", "product_id", product.ID)
	return &view, nil
}

func (s *AdminService) UpdateProduct(ctx context.Context, id uint, in ProductUpdateInput) (*ProductView, error) {
	product, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: produto nao encontrado", ErrNotFound)
	}

	if in.Nome != nil {
		nome := strings.TrimSpace(*in.Nome)
		if len(nome) < 2 || len(nome) > 120 {
			return nil, fmt.Errorf("%w: nome deve ter entre 2 e 120 caracteres", ErrValidation)
		}
		product.Nome = nome
	}
	if in.Descricao != nil {
		if len(*in.Descricao) > 300 {
			return nil, fmt.Errorf("%w: descricao deve ter ate 300 caracteres", ErrValidation)
		}
		product.Descricao = strings.TrimSpace(*in.Descricao)
	}
	if in.Preco != nil {
		if *in.Preco <= 0 {
			return nil, fmt.Errorf("%w: preco deve ser positivo", ErrValidation)
		}
		product.Preco = util.RoundMoney(*in.Preco)
	}

	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		return nil, err
	}
	view := ProductPayload(product)
	return &view, nil
}

// DeleteProduct refuses to remove a product that was ever sold; order
// history keeps pointing at it.
func (s *AdminService) DeleteProduct(ctx context.Context, id uint) (*ProductView, error) {
	var view ProductView
	err := s.Repo.Transaction(ctx, func(tx repo.GormRepo) error {
		product, err := tx.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: produto nao encontrado", ErrNotFound)
		}

		sold, err := tx.CountProductSales(ctx, id)
		if err != nil {
			return err
		}
		if sold > 0 {
			return fmt.Errorf("%w: nao e possivel remover produto ja vendido", ErrConflict)
		}

		view = ProductPayload(product)
		return tx.DeleteProduct(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *AdminService) ListOrders(ctx context.Context) ([]OrderView, error) {
	orders, err := s.Repo.ListAllOrders(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, OrderPayload(&orders[i]))
	}
	return views, nil
}

func (s *AdminService) GetSiteConfig(ctx context.Context) (*models.SiteConfig, error) {
	cfg, err := s.Repo.GetSiteConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuracao do site nao encontrada")
	}
	return cfg, nil
}

func validateSiteConfig(in SiteConfigInput) error {
	bounds := []struct {
		value string
		max   int
		field string
	}{
		{in.SiteName, 60, "site_name"},
		{in.Tagline, 120, "tagline"},
		{in.HeroTitle, 80, "hero_title"},
		{in.HeroSubtitle, 180, "hero_subtitle"},
	}
	for _, b := range bounds {
		if len(b.value) < 2 || len(b.value) > b.max {
			return fmt.Errorf("%w: %s fora dos limites", ErrValidation, b.field)
		}
	}
	if !hexColor.MatchString(in.AccentColor) || !hexColor.MatchString(in.HighlightColor) {
		return fmt.Errorf("%w: cor deve estar no formato #RRGGBB", ErrValidation)
	}
	return nil
}

func (s *AdminService) UpdateSiteConfig(ctx context.Context, in SiteConfigInput) (*models.SiteConfig, error) {
	if err := validateSiteConfig(in); err != nil {
		return nil, err
	}

	cfg, err := s.Repo.GetSiteConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuracao do site nao encontrada")
	}

	cfg.SiteName = in.SiteName
	cfg.Tagline = in.Tagline
	cfg.HeroTitle = in.HeroTitle
	cfg.HeroSubtitle = in.HeroSubtitle
	cfg.AccentColor = in.AccentColor
	cfg.HighlightColor = in.HighlightColor

	if err := s.Repo.SaveSiteConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
