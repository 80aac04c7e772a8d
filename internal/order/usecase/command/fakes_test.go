package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	cartdomain "github.com/tienda/tienda-backend/internal/cart/domain"
	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
	"github.com/tienda/tienda-backend/internal/order/domain"
	"github.com/tienda/tienda-backend/kafka"
)

// fakeProductRepository keeps products in memory
type fakeProductRepository struct {
	mu       sync.Mutex
	products map[uint]*catalogdomain.Product
}

func newFakeProductRepository(products ...*catalogdomain.Product) *fakeProductRepository {
	f := &fakeProductRepository{products: make(map[uint]*catalogdomain.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductRepository) Create(_ context.Context, p *catalogdomain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepository) FindByID(_ context.Context, id uint) (*catalogdomain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, catalogdomain.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProductRepository) FindBySKU(_ context.Context, sku string) (*catalogdomain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.SKU == sku {
			copied := *p
			return &copied, nil
		}
	}
	return nil, catalogdomain.ErrProductNotFound
}

func (f *fakeProductRepository) FindByIDs(_ context.Context, ids []uint) ([]catalogdomain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []catalogdomain.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepository) FindAll(_ context.Context, _ string, _, _ int) ([]catalogdomain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []catalogdomain.Product
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProductRepository) Count(_ context.Context, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.products)), nil
}

func (f *fakeProductRepository) Update(_ context.Context, p *catalogdomain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepository) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepository) DecrementStock(_ context.Context, id uint, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return catalogdomain.ErrProductNotFound
	}
	if p.Stock < quantity {
		return &catalogdomain.InsufficientStockError{ProductID: id, Name: p.Name, Requested: quantity, Available: p.Stock}
	}
	p.Stock -= quantity
	return nil
}

func (f *fakeProductRepository) RestoreStock(_ context.Context, id uint, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return catalogdomain.ErrProductNotFound
	}
	p.Stock += quantity
	return nil
}

func (f *fakeProductRepository) UpdateRating(_ context.Context, id uint, average float64, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return catalogdomain.ErrProductNotFound
	}
	p.RatingAverage = average
	p.RatingCount = count
	return nil
}

// fakeCartRepository keeps carts in memory keyed by user
type fakeCartRepository struct {
	mu     sync.Mutex
	carts  map[uint]*cartdomain.Cart
	nextID uint
}

func newFakeCartRepository() *fakeCartRepository {
	return &fakeCartRepository{carts: make(map[uint]*cartdomain.Cart), nextID: 1}
}

func (f *fakeCartRepository) seed(userID uint, items ...cartdomain.CartItem) uint {
	cart := &cartdomain.Cart{ID: f.nextID, UserID: userID}
	f.nextID++
	for i := range items {
		items[i].CartID = cart.ID
	}
	cart.Items = items
	f.carts[userID] = cart
	return cart.ID
}

func (f *fakeCartRepository) FindByUserID(_ context.Context, userID uint) (*cartdomain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[userID]
	if !ok {
		return nil, cartdomain.ErrCartNotFound
	}
	copied := *cart
	copied.Items = append([]cartdomain.CartItem(nil), cart.Items...)
	return &copied, nil
}

func (f *fakeCartRepository) Create(_ context.Context, cart *cartdomain.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart.ID = f.nextID
	f.nextID++
	f.carts[cart.UserID] = cart
	return nil
}

func (f *fakeCartRepository) SaveItem(_ context.Context, item *cartdomain.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cart := range f.carts {
		if cart.ID != item.CartID {
			continue
		}
		for i := range cart.Items {
			if cart.Items[i].ProductID == item.ProductID {
				cart.Items[i] = *item
				return nil
			}
		}
		cart.Items = append(cart.Items, *item)
		return nil
	}
	return cartdomain.ErrCartNotFound
}

func (f *fakeCartRepository) DeleteItem(_ context.Context, cartID, productID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cart := range f.carts {
		if cart.ID != cartID {
			continue
		}
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
				return nil
			}
		}
		return cartdomain.ErrItemNotFound
	}
	return cartdomain.ErrCartNotFound
}

func (f *fakeCartRepository) ReplaceItems(_ context.Context, cartID uint, items []cartdomain.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cart := range f.carts {
		if cart.ID == cartID {
			cart.Items = append([]cartdomain.CartItem(nil), items...)
			return nil
		}
	}
	return cartdomain.ErrCartNotFound
}

func (f *fakeCartRepository) ClearItems(_ context.Context, cartID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cart := range f.carts {
		if cart.ID == cartID {
			cart.Items = nil
			return nil
		}
	}
	return cartdomain.ErrCartNotFound
}

// fakeOrderRepository mirrors the transactional guarantees of the real
// repository: Place is all-or-nothing over stock and the cart, and
// Transition applies at most once.
type fakeOrderRepository struct {
	mu       sync.Mutex
	orders   map[uint]*domain.Order
	products *fakeProductRepository
	carts    *fakeCartRepository
	nextID   uint
	seq      int64
}

func newFakeOrderRepository(products *fakeProductRepository, carts *fakeCartRepository) *fakeOrderRepository {
	return &fakeOrderRepository{
		orders:   make(map[uint]*domain.Order),
		products: products,
		carts:    carts,
		nextID:   1,
	}
}

func (f *fakeOrderRepository) Place(ctx context.Context, order *domain.Order, cartID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var decremented []domain.OrderItem
	for _, item := range order.Items {
		if err := f.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			for _, d := range decremented {
				_ = f.products.RestoreStock(ctx, d.ProductID, d.Quantity)
			}
			return err
		}
		decremented = append(decremented, item)
	}

	f.seq++
	order.ID = f.nextID
	f.nextID++
	order.OrderNumber = fmt.Sprintf("ORD-%s-%04d", time.Now().UTC().Format("20060102"), f.seq)

	f.orders[order.ID] = order

	return f.carts.ClearItems(ctx, cartID)
}

func (f *fakeOrderRepository) FindByID(_ context.Context, id uint) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepository) FindByNumber(_ context.Context, number string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.OrderNumber == number {
			copied := *order
			return &copied, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (f *fakeOrderRepository) FindByUser(_ context.Context, userID uint, _, _ int) ([]domain.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepository) FindAll(_ context.Context, status string, _, _ int) ([]domain.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, order := range f.orders {
		if status == "" || order.Status == status {
			out = append(out, *order)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepository) Transition(ctx context.Context, id uint, from []string, to, note string, restock bool) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	allowed := false
	for _, s := range from {
		if order.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &domain.InvalidTransitionError{From: order.Status, To: to}
	}

	now := time.Now().UTC()
	order.Status = to
	if to == domain.StatusDelivered {
		order.DeliveredAt = &now
	}
	order.StatusHistory = append(order.StatusHistory, domain.StatusChange{
		OrderID:   id,
		Status:    to,
		Timestamp: now,
		Note:      note,
	})

	if restock {
		for _, item := range order.Items {
			_ = f.products.RestoreStock(ctx, item.ProductID, item.Quantity)
		}
	}

	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepository) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if order.Status != domain.StatusPending {
		return domain.ErrOrderNotPending
	}
	for _, item := range order.Items {
		_ = f.products.RestoreStock(ctx, item.ProductID, item.Quantity)
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderRepository) Stats(_ context.Context) (*domain.OrderStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &domain.OrderStats{ByStatus: make(map[string]int64)}
	var counted int64
	for _, order := range f.orders {
		stats.ByStatus[order.Status]++
		stats.TotalOrders++
		if order.Status != domain.StatusCancelled {
			stats.TotalRevenue += order.Total
			counted++
		}
	}
	if counted > 0 {
		stats.AverageOrder = stats.TotalRevenue / float64(counted)
	}
	return stats, nil
}

func (f *fakeOrderRepository) UserHasDelivered(_ context.Context, userID, productID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.UserID != userID || order.Status != domain.StatusDelivered {
			continue
		}
		for _, item := range order.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

// recordingPublisher captures published events
type recordingPublisher struct {
	placed    []kafka.OrderPlacedEvent
	cancelled []kafka.OrderCancelledEvent
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, event kafka.OrderPlacedEvent) error {
	p.placed = append(p.placed, event)
	return nil
}

func (p *recordingPublisher) PublishOrderCancelled(_ context.Context, event kafka.OrderCancelledEvent) error {
	p.cancelled = append(p.cancelled, event)
	return nil
}
