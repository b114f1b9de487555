package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/logging"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/models"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/repo"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/util"
)

type ShopService struct {
	Repo repo.GormRepo
}

type ProductView struct {
	ID        uint    `json:"id"`
	Nome      string  `json:"nome"`
	Descricao string  `json:"descricao"`
	Preco     float64 `json:"preco"`
}

type OrderProductView struct {
	ID    uint    `json:"id"`
	Nome  string  `json:"nome"`
	Preco float64 `json:"preco"`
}

type OrderView struct {
	ID          uint               `json:"id"`
	UsuarioID   uint               `json:"usuario_id"`
	UsuarioNome string             `json:"usuario_nome"`
	ProdutosIDs []uint             `json:"produtos_ids"`
	Produtos    []OrderProductView `json:"produtos"`
	Total       float64            `json:"total"`
	CreatedAt   string             `json:"created_at"`
}

type ProfileView struct {
	ID    uint    `json:"id"`
	Nome  string  `json:"nome"`
	Email string  `json:"email"`
	Saldo float64 `json:"saldo"`
}

type Page struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Pages int64 `json:"pages"`
}

func ProductPayload(p *models.Product) ProductView {
	return ProductView{
		ID:        p.ID,
		Nome:      p.Nome,
		Descricao: p.Descricao,
		Preco:     util.RoundMoney(p.Preco),
	}
}

func OrderPayload(order *models.Order) OrderView {
	view := OrderView{
		ID:          order.ID,
		UsuarioID:   order.ProfileID,
		UsuarioNome: "Desconhecido",
		ProdutosIDs: make([]uint, 0, len(order.Items)),
		Produtos:    make([]OrderProductView, 0, len(order.Items)),
		Total:       util.RoundMoney(order.Total),
		CreatedAt:   order.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
	if order.Profile != nil {
		view.UsuarioNome = order.Profile.Nome
	}
	for _, item := range order.Items {
		view.ProdutosIDs = append(view.ProdutosIDs, item.ProductID)
		if item.Product == nil {
			continue
		}
		view.Produtos = append(view.Produtos, OrderProductView{
			ID:    item.Product.ID,
			Nome:  item.Product.Nome,
			Preco: util.RoundMoney(item.Product.Preco),
		})
	}
	return view
}

// profileForAccount is the user-role gate in front of every shop flow.
func (s *ShopService) profileForAccount(ctx context.Context, tx repo.GormRepo, account *models.Account) (*models.Profile, error) {
	if account.Role != models.RoleUser {
		return nil, fmt.Errorf("%w: acesso restrito a usuarios", ErrForbidden)
	}
	if account.ProfileID == nil {
		return nil, fmt.Errorf("%w: conta sem perfil vinculado", ErrValidation)
	}
	profile, err := tx.GetProfile(ctx, *account.ProfileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: perfil de usuario nao encontrado", ErrNotFound)
	}
	return profile, nil
}

func (s *ShopService) ListProducts(ctx context.Context) ([]ProductView, error) {
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

func (s *ShopService) ListProductsPage(ctx context.Context, page, size int, filter repo.ProductFilter) (*Page, error) {
	offset, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	total, items, err := s.Repo.ListProductsPage(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, 0, len(items))
	for i := range items {
		views = append(views, ProductPayload(&items[i]))
	}
	return &Page{
		Items: views,
		Total: total,
		Page:  page,
		Size:  limit,
		Pages: util.Pages(total, limit),
	}, nil
}

func (s *ShopService) GetUserProfile(ctx context.Context, account *models.Account) (*ProfileView, error) {
	profile, err := s.profileForAccount(ctx, s.Repo, account)
	if err != nil {
		return nil, err
	}
	return &ProfileView{
		ID:    profile.ID,
		Nome:  profile.Nome,
		Email: profile.Email,
		Saldo: util.RoundMoney(profile.Saldo),
	}, nil
}

func (s *ShopService) RechargeBalance(ctx context.Context, account *models.Account, valor float64) (float64, error) {
	if valor <= 0 {
		return 0, fmt.Errorf("%w: valor deve ser positivo", ErrValidation)
	}

	var saldo float64
	err := s.Repo.Transaction(ctx, func(tx repo.GormRepo) error {
		profile, err := s.profileForAccount(ctx, tx, account)
		if err != nil {
			return err
		}
		profile.Saldo = util.RoundMoney(profile.Saldo + valor)
		if err := tx.SaveProfile(ctx, profile); err != nil {
			return err
		}
		saldo = profile.Saldo
		return nil
	})
	if err != nil {
		return 0, err
	}
	return saldo, nil
}

// Checkout debits the balance and records the order atomically. Unknown
// product ids fail the whole purchase.
func (s *ShopService) Checkout(ctx context.Context, account *models.Account, produtosIDs []uint) (*OrderView, error) {
	l := logging.FromContext(ctx).With("svc", "shop.checkout")
	if len(produtosIDs) == 0 {
		return nil, fmt.Errorf("%w: nenhum produto informado", ErrValidation)
	}

	var view OrderView
	err := s.Repo.Transaction(ctx, func(tx repo.GormRepo) error {
		profile, err := s.profileForAccount(ctx, tx, account)
		if err != nil {
			return err
		}

		lookup := make(map[uint]*models.Product)
		var invalid []string
		for _, id := range produtosIDs {
			if _, seen := lookup[id]; seen {
				continue
			}
			product, err := tx.GetProduct(ctx, id)
			if err != nil {
				return err
			}
			if product == nil {
				invalid = append(invalid, fmt.Sprint(id))
				continue
			}
			lookup[id] = product
		}
		if len(invalid) > 0 {
			sort.Strings(invalid)
			return fmt.Errorf("%w: produto(s) invalido(s): %s", ErrNotFound, strings.Join(invalid, ", "))
		}

		var total float64
		items := make([]models.OrderItem, 0, len(produtosIDs))
		for _, id := range produtosIDs {
			total += lookup[id].Preco
			items = append(items, models.OrderItem{ProductID: id})
		}
		total = util.RoundMoney(total)

		if profile.Saldo < total {
			missing := util.RoundMoney(total - profile.Saldo)
			return fmt.Errorf("%w: saldo insuficiente, faltam R$ %.2f", ErrValidation, missing)
		}

		profile.Saldo = util.RoundMoney(profile.Saldo - total)
		if err := tx.SaveProfile(ctx, profile); err != nil {
			return err
		}

		order := &models.Order{
			ProfileID: profile.ID,
			Total:     total,
			CreatedAt: time.Now().UTC(),
			Items:     items,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		reloaded, err := tx.GetOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		view = OrderPayload(reloaded)
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Info("checkout_success", "order_id", view.ID, "total", view.Total)
	return &view, nil
}

func (s *ShopService) ListUserOrders(ctx context.Context, account *models.Account) ([]OrderView, error) {
	profile, err := s.profileForAccount(ctx, s.Repo, account)
	if err != nil {
		return nil, err
	}
	orders, err := s.Repo.ListOrdersForProfile(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, OrderPayload(&orders[i]))
	}
	return views, nil
}

func (s *ShopService) ListUserOrdersPage(ctx context.Context, account *models.Account, page, size int) (*Page, error) {
	profile, err := s.profileForAccount(ctx, s.Repo, account)
	if err != nil {
		return nil, err
	}

	offset, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}
	total, orders, err := s.Repo.ListOrdersForProfilePage(ctx, profile.ID, offset, limit)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, OrderPayload(&orders[i]))
	}
	return &Page{
		Items: views,
		Total: total,
		Page:  page,
		Size:  limit,
		Pages: util.Pages(total, limit),
	}, nil
}
