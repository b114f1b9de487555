package repo

import (
	"context"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/models"
)

func (r GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Profile").
		Preload("Items").
		Preload("Items.Product").
		Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r GormRepo) ListOrdersForProfile(ctx context.Context, profileID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Profile").
		Preload("Items").
		Preload("Items.Product").
		Where("profile_id = ?", profileID).
		Order("id DESC").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r GormRepo) ListOrdersForProfilePage(ctx context.Context, profileID uint, offset, limit int) (int64, []models.Order, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("profile_id = ?", profileID).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Profile").
		Preload("Items").
		Preload("Items.Product").
		Where("profile_id = ?", profileID).
		Order("id DESC").Offset(offset).Limit(limit).Find(&orders).Error
	if err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r GormRepo) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Profile").
		Preload("Items").
		Preload("Items.Product").
		Order("id DESC").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Summary aggregates for the admin dashboard.
type Summary struct {
	Usuarios   int64
	Produtos   int64
	Pedidos    int64
	Revenue    float64
	TotalSaldo float64
}

func (r GormRepo) Summarize(ctx context.Context) (*Summary, error) {
	var s Summary
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.Profile{}).Count(&s.Usuarios).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Product{}).Count(&s.Produtos).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).Count(&s.Pedidos).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0)").Scan(&s.Revenue).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Profile{}).
		Select("COALESCE(SUM(saldo), 0)").Scan(&s.TotalSaldo).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
