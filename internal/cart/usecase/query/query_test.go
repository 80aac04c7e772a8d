package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tienda/tienda-backend/internal/cart/domain"
	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
)

// fakeCartRepository keeps carts in memory keyed by user
type fakeCartRepository struct {
	carts  map[uint]*domain.Cart
	nextID uint
}

func newFakeCartRepository() *fakeCartRepository {
	return &fakeCartRepository{carts: make(map[uint]*domain.Cart), nextID: 1}
}

func (f *fakeCartRepository) FindByUserID(_ context.Context, userID uint) (*domain.Cart, error) {
	cart, ok := f.carts[userID]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	copied := *cart
	copied.Items = append([]domain.CartItem(nil), cart.Items...)
	return &copied, nil
}

func (f *fakeCartRepository) Create(_ context.Context, cart *domain.Cart) error {
	cart.ID = f.nextID
	f.nextID++
	f.carts[cart.UserID] = cart
	return nil
}

func (f *fakeCartRepository) SaveItem(_ context.Context, item *domain.CartItem) error {
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
	return domain.ErrCartNotFound
}

func (f *fakeCartRepository) DeleteItem(_ context.Context, cartID, productID uint) error {
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
		return domain.ErrItemNotFound
	}
	return domain.ErrCartNotFound
}

func (f *fakeCartRepository) ReplaceItems(_ context.Context, cartID uint, items []domain.CartItem) error {
	for _, cart := range f.carts {
		if cart.ID == cartID {
			cart.Items = append([]domain.CartItem(nil), items...)
			return nil
		}
	}
	return domain.ErrCartNotFound
}

func (f *fakeCartRepository) ClearItems(_ context.Context, cartID uint) error {
	return f.ReplaceItems(context.Background(), cartID, nil)
}

func (f *fakeCartRepository) seed(userID uint, items ...domain.CartItem) {
	cart := &domain.Cart{ID: f.nextID, UserID: userID}
	f.nextID++
	for i := range items {
		items[i].CartID = cart.ID
	}
	cart.Items = items
	f.carts[userID] = cart
}

// fakeProductRepository serves a fixed product set
type fakeProductRepository struct {
	products map[uint]*catalogdomain.Product
}

func newFakeProductRepository(products ...*catalogdomain.Product) *fakeProductRepository {
	f := &fakeProductRepository{products: make(map[uint]*catalogdomain.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductRepository) Create(_ context.Context, product *catalogdomain.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepository) FindByID(_ context.Context, id uint) (*catalogdomain.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, catalogdomain.ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (f *fakeProductRepository) FindBySKU(_ context.Context, sku string) (*catalogdomain.Product, error) {
	for _, p := range f.products {
		if p.SKU == sku {
			copied := *p
			return &copied, nil
		}
	}
	return nil, catalogdomain.ErrProductNotFound
}

func (f *fakeProductRepository) FindByIDs(_ context.Context, ids []uint) ([]catalogdomain.Product, error) {
	var out []catalogdomain.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepository) FindAll(_ context.Context, _ string, _, _ int) ([]catalogdomain.Product, error) {
	var out []catalogdomain.Product
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProductRepository) Count(_ context.Context, _ string) (int64, error) {
	return int64(len(f.products)), nil
}

func (f *fakeProductRepository) Update(_ context.Context, product *catalogdomain.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepository) Delete(_ context.Context, id uint) error {
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepository) DecrementStock(_ context.Context, id uint, quantity int) error {
	product, ok := f.products[id]
	if !ok {
		return catalogdomain.ErrProductNotFound
	}
	if product.Stock < quantity {
		return &catalogdomain.InsufficientStockError{ProductID: id, Name: product.Name, Requested: quantity, Available: product.Stock}
	}
	product.Stock -= quantity
	return nil
}

func (f *fakeProductRepository) RestoreStock(_ context.Context, id uint, quantity int) error {
	product, ok := f.products[id]
	if !ok {
		return catalogdomain.ErrProductNotFound
	}
	product.Stock += quantity
	return nil
}

func (f *fakeProductRepository) UpdateRating(_ context.Context, id uint, average float64, count int) error {
	product, ok := f.products[id]
	if !ok {
		return catalogdomain.ErrProductNotFound
	}
	product.RatingAverage = average
	product.RatingCount = count
	return nil
}

func TestGetCartCreatesEmptyCartOnFirstAccess(t *testing.T) {
	carts := newFakeCartRepository()
	handler := NewGetCartHandler(carts, newFakeProductRepository(), domain.DefaultPricing())

	view, err := handler.Handle(context.Background(), GetCartQuery{UserID: 3})
	require.NoError(t, err)

	assert.True(t, view.Cart.IsEmpty())
	assert.Equal(t, domain.Totals{}, view.Totals)
	assert.Equal(t, 0, view.TotalItems)

	// The cart row now exists
	_, err = carts.FindByUserID(context.Background(), 3)
	assert.NoError(t, err)
}

func TestGetCartComputesTotalsPerRead(t *testing.T) {
	carts := newFakeCartRepository()
	products := newFakeProductRepository(
		&catalogdomain.Product{ID: 1, Name: "A", Price: 100, Stock: 10, IsActive: true},
	)
	carts.seed(3, domain.CartItem{ProductID: 1, Quantity: 2, UnitPrice: 100})

	handler := NewGetCartHandler(carts, products, domain.DefaultPricing())
	view, err := handler.Handle(context.Background(), GetCartQuery{UserID: 3})
	require.NoError(t, err)

	assert.Equal(t, 200.0, view.Totals.Subtotal)
	assert.Equal(t, 32.0, view.Totals.Tax)
	assert.Equal(t, 50.0, view.Totals.Shipping)
	assert.Equal(t, 282.0, view.Totals.Total)
	assert.Equal(t, 2, view.TotalItems)
}

func TestGetCartPrunesDeadLines(t *testing.T) {
	inactive := &catalogdomain.Product{ID: 2, Name: "B", Price: 10, Stock: 5, IsActive: false}
	outOfStock := &catalogdomain.Product{ID: 3, Name: "C", Price: 10, Stock: 0, IsActive: true}
	alive := &catalogdomain.Product{ID: 1, Name: "A", Price: 100, Stock: 10, IsActive: true}

	carts := newFakeCartRepository()
	carts.seed(3,
		domain.CartItem{ProductID: 1, Quantity: 1, UnitPrice: 100},
		domain.CartItem{ProductID: 2, Quantity: 1, UnitPrice: 10},
		domain.CartItem{ProductID: 3, Quantity: 1, UnitPrice: 10},
		domain.CartItem{ProductID: 4, Quantity: 1, UnitPrice: 10}, // deleted product
	)

	handler := NewGetCartHandler(carts, newFakeProductRepository(alive, inactive, outOfStock), domain.DefaultPricing())
	view, err := handler.Handle(context.Background(), GetCartQuery{UserID: 3})
	require.NoError(t, err)

	require.Len(t, view.Cart.Items, 1)
	assert.Equal(t, uint(1), view.Cart.Items[0].ProductID)
}

func TestCheckAvailabilityPartitionsProblems(t *testing.T) {
	carts := newFakeCartRepository()
	carts.seed(3,
		domain.CartItem{ProductID: 1, Quantity: 2, UnitPrice: 100},
		domain.CartItem{ProductID: 2, Quantity: 1, UnitPrice: 10},
		domain.CartItem{ProductID: 3, Quantity: 5, UnitPrice: 10},
	)
	products := newFakeProductRepository(
		&catalogdomain.Product{ID: 1, Name: "A", Price: 100, Stock: 10, IsActive: true},
		&catalogdomain.Product{ID: 2, Name: "B", Price: 10, Stock: 5, IsActive: false},
		&catalogdomain.Product{ID: 3, Name: "C", Price: 10, Stock: 2, IsActive: true},
	)

	handler := NewCheckAvailabilityHandler(carts, products)
	report, err := handler.Handle(context.Background(), CheckAvailabilityQuery{UserID: 3})
	require.NoError(t, err)

	assert.False(t, report.Available)
	require.Len(t, report.Unavailable, 1)
	assert.Equal(t, uint(2), report.Unavailable[0].ProductID)
	require.Len(t, report.ShortStock, 1)
	assert.Equal(t, 5, report.ShortStock[0].Requested)
	assert.Equal(t, 2, report.ShortStock[0].Available)
}

func TestCheckAvailabilityEmptyCart(t *testing.T) {
	carts := newFakeCartRepository()
	carts.seed(3)

	handler := NewCheckAvailabilityHandler(carts, newFakeProductRepository())
	report, err := handler.Handle(context.Background(), CheckAvailabilityQuery{UserID: 3})
	require.NoError(t, err)

	assert.False(t, report.Available)
	assert.Empty(t, report.Unavailable)
	assert.Empty(t, report.ShortStock)
}

func TestCheckAvailabilityAllGood(t *testing.T) {
	carts := newFakeCartRepository()
	carts.seed(3, domain.CartItem{ProductID: 1, Quantity: 2, UnitPrice: 100})
	products := newFakeProductRepository(
		&catalogdomain.Product{ID: 1, Name: "A", Price: 100, Stock: 10, IsActive: true},
	)

	handler := NewCheckAvailabilityHandler(carts, products)
	report, err := handler.Handle(context.Background(), CheckAvailabilityQuery{UserID: 3})
	require.NoError(t, err)

	assert.True(t, report.Available)
}
