package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	cartdomain "github.com/tienda/tienda-backend/internal/cart/domain"
	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
	"github.com/tienda/tienda-backend/internal/order/domain"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM-based order repository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Place persists the order, decrements stock for every line and clears
// the source cart in one transaction. Any failed stock decrement rolls
// back the whole order.
func (r *GormOrderRepository) Place(ctx context.Context, order *domain.Order, cartID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			res := tx.Model(&catalogdomain.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to reserve stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				var product catalogdomain.Product
				if err := tx.First(&product, item.ProductID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return catalogdomain.ErrProductNotFound
					}
					return err
				}
				return &catalogdomain.InsufficientStockError{
					ProductID: product.ID,
					Name:      product.Name,
					Requested: item.Quantity,
					Available: product.Stock,
				}
			}
		}

		number, err := nextOrderNumber(tx, time.Now().UTC())
		if err != nil {
			return err
		}
		order.OrderNumber = number

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if err := tx.Where("cart_id = ?", cartID).Delete(&cartdomain.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		return nil
	})
}

// nextOrderNumber allocates the next ORD-YYYYMMDD-NNNN number via an
// atomic per-day counter upsert.
func nextOrderNumber(tx *gorm.DB, now time.Time) (string, error) {
	day := now.Format("20060102")

	var seq int64
	err := tx.Raw(
		`INSERT INTO order_counters (day, seq) VALUES (?, 1)
		 ON CONFLICT (day) DO UPDATE SET seq = order_counters.seq + 1
		 RETURNING seq`, day,
	).Scan(&seq).Error
	if err != nil {
		return "", fmt.Errorf("failed to allocate order number: %w", err)
	}

	return fmt.Sprintf("ORD-%s-%04d", day, seq), nil
}

// FindByID retrieves an order with its items and status history
func (r *GormOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_history.timestamp ASC, order_status_history.id ASC")
		}).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumber retrieves an order by its public order number
func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_history.timestamp ASC, order_status_history.id ASC")
		}).
		Where("order_number = ?", number).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByUser retrieves a user's orders, newest first
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID uint, limit, offset int) ([]domain.Order, int64, error) {
	var orders []domain.Order
	var total int64

	base := r.db.WithContext(ctx).Model(&domain.Order{}).Where("user_id = ?", userID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// FindAll retrieves orders across all users, optionally filtered by status
func (r *GormOrderRepository) FindAll(ctx context.Context, status string, limit, offset int) ([]domain.Order, int64, error) {
	var orders []domain.Order
	var total int64

	base := r.db.WithContext(ctx).Model(&domain.Order{})
	query := r.db.WithContext(ctx).Preload("Items")
	if status != "" {
		base = base.Where("status = ?", status)
		query = query.Where("status = ?", status)
	}

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Transition moves the order to a new status with a guarded update so a
// concurrent transition cannot apply twice. Restocking happens in the
// same transaction, which makes it exactly-once per order.
func (r *GormOrderRepository) Transition(ctx context.Context, id uint, from []string, to, note string, restock bool) (*domain.Order, error) {
	var result *domain.Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		updates := map[string]interface{}{
			"status":     to,
			"updated_at": now,
		}
		if to == domain.StatusDelivered {
			updates["delivered_at"] = now
		}

		res := tx.Model(&domain.Order{}).
			Where("id = ? AND status IN ?", id, from).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update order status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var order domain.Order
			if err := tx.First(&order, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrOrderNotFound
				}
				return err
			}
			return &domain.InvalidTransitionError{From: order.Status, To: to}
		}

		change := domain.StatusChange{
			OrderID:   id,
			Status:    to,
			Timestamp: now,
			Note:      note,
		}
		if err := tx.Create(&change).Error; err != nil {
			return fmt.Errorf("failed to record status change: %w", err)
		}

		if restock {
			var items []domain.OrderItem
			if err := tx.Where("order_id = ?", id).Find(&items).Error; err != nil {
				return err
			}
			for _, item := range items {
				err := tx.Model(&catalogdomain.Product{}).
					Where("id = ?", item.ProductID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
				if err != nil {
					return fmt.Errorf("failed to restock product %d: %w", item.ProductID, err)
				}
			}
		}

		var order domain.Order
		if err := tx.Preload("Items").Preload("StatusHistory").First(&order, id).Error; err != nil {
			return err
		}
		result = &order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete soft-deletes a pending order and returns its reserved stock.
// The status guard runs inside the transaction so a concurrent
// confirmation cannot race the delete.
func (r *GormOrderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []domain.OrderItem
		if err := tx.Where("order_id = ?", id).Find(&items).Error; err != nil {
			return err
		}

		res := tx.Where("id = ? AND status = ?", id, domain.StatusPending).Delete(&domain.Order{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var order domain.Order
			if err := tx.First(&order, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrOrderNotFound
				}
				return err
			}
			return domain.ErrOrderNotPending
		}

		for _, item := range items {
			err := tx.Model(&catalogdomain.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
			if err != nil {
				return fmt.Errorf("failed to restock product %d: %w", item.ProductID, err)
			}
		}

		return nil
	})
}

// Stats aggregates order counts per status and the revenue of
// non-cancelled orders.
func (r *GormOrderRepository) Stats(ctx context.Context) (*domain.OrderStats, error) {
	stats := &domain.OrderStats{ByStatus: make(map[string]int64)}

	rows := []struct {
		Status string
		Count  int64
	}{}
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
		stats.TotalOrders += row.Count
	}

	revenue := struct {
		Total   float64
		Average float64
	}{}
	err = r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("status <> ?", domain.StatusCancelled).
		Select("COALESCE(SUM(total), 0) as total, COALESCE(AVG(total), 0) as average").
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = revenue.Total
	stats.AverageOrder = revenue.Average

	return stats, nil
}

// UserHasDelivered reports whether the user has received the product in
// a delivered order.
func (r *GormOrderRepository) UserHasDelivered(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			userID, domain.StatusDelivered, productID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
