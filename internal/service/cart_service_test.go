package service

import (
	"context"
	"testing"

	"points-mall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCartStore struct {
	products map[string]*models.Product
	items    []models.CartItem
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{products: map[string]*models.Product{}}
}

func (f *fakeCartStore) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCartStore) CartByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, it := range f.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeCartStore) UpsertCartItem(ctx context.Context, item *models.CartItem) error {
	for i := range f.items {
		if f.items[i].UserID == item.UserID &&
			f.items[i].ProductID == item.ProductID &&
			f.items[i].Size == item.Size {
			f.items[i].Quantity += item.Quantity
			return nil
		}
	}
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeCartStore) ChangeCartItemQuantity(ctx context.Context, userID, productID, size string, delta int) error {
	for i := range f.items {
		if f.items[i].UserID == userID &&
			f.items[i].ProductID == productID &&
			f.items[i].Size == size {
			f.items[i].Quantity += delta
			if f.items[i].Quantity <= 0 {
				f.items = append(f.items[:i], f.items[i+1:]...)
			}
			return nil
		}
	}
	return nil
}

func (f *fakeCartStore) ClearCart(ctx context.Context, userID string) error {
	var rest []models.CartItem
	for _, it := range f.items {
		if it.UserID != userID {
			rest = append(rest, it)
		}
	}
	f.items = rest
	return nil
}

func TestCartAddSnapshotsPrice(t *testing.T) {
	st := newFakeCartStore()
	st.products["p1"] = &models.Product{ID: "p1", Name: "Latte", Image: "latte.png", Price: 300}

	svc := NewCartService(st, 200)

	require.NoError(t, svc.Add(context.Background(), "u1", "p1", ""))

	items, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.SizeStandard, items[0].Size)
	assert.Equal(t, int64(300), items[0].UnitPrice)
	assert.Equal(t, "Latte", items[0].ProductName)

	// later product edits must not change what the carted item costs
	st.products["p1"].Price = 999
	items, err = svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), items[0].UnitPrice)
}

func TestCartAddLargeSizeSurcharge(t *testing.T) {
	st := newFakeCartStore()
	st.products["p1"] = &models.Product{ID: "p1", Price: 300}

	svc := NewCartService(st, 200)

	require.NoError(t, svc.Add(context.Background(), "u1", "p1", models.SizeLarge))

	items, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(500), items[0].UnitPrice)
}

func TestCartAddInvalidSize(t *testing.T) {
	st := newFakeCartStore()
	st.products["p1"] = &models.Product{ID: "p1", Price: 300}

	svc := NewCartService(st, 200)
	assert.Error(t, svc.Add(context.Background(), "u1", "p1", "venti"))
}

func TestCartAddUnknownProduct(t *testing.T) {
	svc := NewCartService(newFakeCartStore(), 200)
	err := svc.Add(context.Background(), "u1", "ghost", "")
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestCartSizesAreSeparateLines(t *testing.T) {
	st := newFakeCartStore()
	st.products["p1"] = &models.Product{ID: "p1", Price: 300}

	svc := NewCartService(st, 200)

	require.NoError(t, svc.Add(context.Background(), "u1", "p1", models.SizeStandard))
	require.NoError(t, svc.Add(context.Background(), "u1", "p1", models.SizeLarge))
	require.NoError(t, svc.Add(context.Background(), "u1", "p1", models.SizeStandard))

	items, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestCartChangeQuantityRemovesAtZero(t *testing.T) {
	st := newFakeCartStore()
	st.products["p1"] = &models.Product{ID: "p1", Price: 300}

	svc := NewCartService(st, 200)

	require.NoError(t, svc.Add(context.Background(), "u1", "p1", ""))
	require.NoError(t, svc.ChangeQuantity(context.Background(), "u1", "p1", "", -1))

	items, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
}
