// Package store reads orders and shop settings through gorm.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"order-fulfillment/order-processing/types"
)

var (
	ErrOrderNotFound    = errors.New("order_not_found")
	ErrSettingsNotFound = errors.New("shop_settings_not_found")
)

// OrderRepository loads orders with their item collection
type OrderRepository struct {
	db      *gorm.DB
	pending *pendingNotifications
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// FindOrder returns the order with its items preloaded
func (r *OrderRepository) FindOrder(ctx context.Context, id int64) (types.Order, error) {
	var row OrderRow
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return types.Order{}, fmt.Errorf("find order %d: %w", id, err)
	}
	return row.toDomain(), nil
}

// CreateOrder inserts an order with its items in one statement. Registered
// create hooks see the items and run after commit.
func (r *OrderRepository) CreateOrder(ctx context.Context, order types.Order) (types.Order, error) {
	row := orderRowFromDomain(order)
	if err := r.db.WithContext(withPending(ctx, r.pending)).Create(&row).Error; err != nil {
		return types.Order{}, fmt.Errorf("create order: %w", err)
	}
	return row.toDomain(), nil
}

// Transaction runs fn against a repository bound to one transaction. Orders
// created through it are announced after the commit and dropped on rollback.
func (r *OrderRepository) Transaction(ctx context.Context, fn func(tx *OrderRepository) error) error {
	pending := &pendingNotifications{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&OrderRepository{db: tx, pending: pending})
	})
	if err != nil {
		return err
	}
	pending.flush()
	return nil
}

// LoadItems refetches the item collection of a just-created order
func (r *OrderRepository) LoadItems(ctx context.Context, orderID int64) ([]types.OrderItem, error) {
	order, err := r.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Items == nil {
		return []types.OrderItem{}, nil
	}
	return order.Items, nil
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// SettingsStore reads the shop settings single record
type SettingsStore struct {
	db *gorm.DB
}

func NewSettingsStore(db *gorm.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) OrdersEmail(ctx context.Context) (string, error) {
	var shops []ShopRow
	err := s.db.WithContext(ctx).
		Select("id", "orders_email").
		Order("id ASC").
		Limit(1).
		Find(&shops).Error
	if err != nil {
		return "", fmt.Errorf("read shop settings: %w", err)
	}
	if len(shops) == 0 {
		return "", ErrSettingsNotFound
	}
	return types.Value(shops[0].OrdersEmail), nil
}
