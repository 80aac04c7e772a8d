package command

import (
	"context"

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

// fakeProductRepository keeps products in memory
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
		return &catalogdomain.InsufficientStockError{
			ProductID: id,
			Name:      product.Name,
			Requested: quantity,
			Available: product.Stock,
		}
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
