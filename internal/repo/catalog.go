package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/models"
)

// ProductFilter narrows paginated product listings. Zero values mean "no
// constraint".
type ProductFilter struct {
	Search   string
	MinPreco *float64
	MaxPreco *float64
}

func (r GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r GormRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r GormRepo) ListProductsPage(ctx context.Context, filter ProductFilter, offset, limit int) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(nome) LIKE ?", pattern)
	}
	if filter.MinPreco != nil {
		q = q.Where("preco >= ?", *filter.MinPreco)
	}
	if filter.MaxPreco != nil {
		q = q.Where("preco <= ?", *filter.MaxPreco)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r GormRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Create(product).Error
}

func (r GormRepo) SaveProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Save(product).Error
}

func (r GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountProductSales reports how many order items reference the product.
func (r GormRepo) CountProductSales(ctx context.Context, productID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.OrderItem{}).
		Where("product_id = ?", productID).Count(&count).Error
	return count, err
}
