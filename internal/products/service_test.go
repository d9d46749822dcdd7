package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jordanvelez/shopcore-backend/pkg/db/models"
	pkgerrors "github.com/jordanvelez/shopcore-backend/pkg/errors"
	"github.com/jordanvelez/shopcore-backend/pkg/pagination"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  category TEXT,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  images TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	return db
}

func newProductsService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(setupProductsTestDB(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func seedProduct(t *testing.T, repo *Repository, name, category, price string, active bool, createdAt time.Time) *models.Product {
	t.Helper()
	p, err := decimal.NewFromString(price)
	require.NoError(t, err)
	product := &models.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     p,
		Category:  category,
		IsActive:  active,
		CreatedAt: createdAt,
	}
	_, err = repo.Create(context.Background(), product)
	require.NoError(t, err)
	return product
}

func TestCreateProduct(t *testing.T) {
	svc, _ := newProductsService(t)

	got, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:          "  Widget  ",
		Description:   "A fine widget",
		Price:         decimal.NewFromFloat(12.34),
		Category:      "tools",
		StockQuantity: 5,
		Images:        []string{"https://cdn.example.com/widget.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.True(t, got.Price.Equal(decimal.NewFromFloat(12.34)))
	assert.True(t, got.IsActive)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newProductsService(t)

	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{"empty name", CreateProductInput{Name: " ", Price: decimal.NewFromInt(1)}},
		{"zero price", CreateProductInput{Name: "Widget", Price: decimal.Zero}},
		{"negative stock", CreateProductInput{Name: "Widget", Price: decimal.NewFromInt(1), StockQuantity: -1}},
		{"too many images", CreateProductInput{Name: "Widget", Price: decimal.NewFromInt(1), Images: make([]string, 11)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed, "expected typed error")
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestUpdateProductPartial(t *testing.T) {
	svc, repo := newProductsService(t)
	product := seedProduct(t, repo, "Widget", "tools", "10.00", true, time.Now().UTC())

	newName := "Improved Widget"
	newPrice := decimal.NewFromFloat(15.00)
	got, err := svc.UpdateProduct(context.Background(), product.ID, UpdateProductInput{
		Name:  &newName,
		Price: &newPrice,
	})
	require.NoError(t, err)
	assert.Equal(t, "Improved Widget", got.Name)
	assert.True(t, got.Price.Equal(newPrice))
	assert.Equal(t, "tools", got.Category)
}

func TestUpdateProductNotFound(t *testing.T) {
	svc, _ := newProductsService(t)

	name := "Whatever"
	_, err := svc.UpdateProduct(context.Background(), uuid.New(), UpdateProductInput{Name: &name})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDeleteProductDeactivates(t *testing.T) {
	svc, repo := newProductsService(t)
	product := seedProduct(t, repo, "Widget", "tools", "10.00", true, time.Now().UTC())

	require.NoError(t, svc.DeleteProduct(context.Background(), product.ID))

	// Deactivated products stay resolvable for carts holding them.
	stored, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestListProductsFiltersInactive(t *testing.T) {
	svc, repo := newProductsService(t)
	base := time.Now().UTC().Add(-time.Hour)
	seedProduct(t, repo, "Visible", "tools", "10.00", true, base)
	seedProduct(t, repo, "Hidden", "tools", "10.00", false, base.Add(time.Minute))

	got, err := svc.ListProducts(context.Background(), ListProductsInput{})
	require.NoError(t, err)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "Visible", got.Products[0].Name)
}

func TestListProductsCategoryAndPriceFilters(t *testing.T) {
	svc, repo := newProductsService(t)
	base := time.Now().UTC().Add(-time.Hour)
	seedProduct(t, repo, "Cheap Tool", "tools", "5.00", true, base)
	seedProduct(t, repo, "Pricey Tool", "tools", "50.00", true, base.Add(time.Minute))
	seedProduct(t, repo, "Book", "books", "5.00", true, base.Add(2*time.Minute))

	min := decimal.NewFromInt(1)
	max := decimal.NewFromInt(10)
	got, err := svc.ListProducts(context.Background(), ListProductsInput{
		Filters: ListFilters{Category: "tools", PriceMin: &min, PriceMax: &max},
	})
	require.NoError(t, err)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "Cheap Tool", got.Products[0].Name)
}

func TestListProductsRejectsInvertedPriceRange(t *testing.T) {
	svc, _ := newProductsService(t)

	min := decimal.NewFromInt(10)
	max := decimal.NewFromInt(1)
	_, err := svc.ListProducts(context.Background(), ListProductsInput{
		Filters: ListFilters{PriceMin: &min, PriceMax: &max},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestListProductsCursorPagination(t *testing.T) {
	svc, repo := newProductsService(t)
	base := time.Now().UTC().Add(-time.Hour)
	category := uuid.NewString()
	for i := 0; i < 5; i++ {
		seedProduct(t, repo, "Item", category, "10.00", true, base.Add(time.Duration(i)*time.Minute))
	}

	first, err := svc.ListProducts(context.Background(), ListProductsInput{
		Filters:    ListFilters{Category: category},
		Pagination: pagination.Params{Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, first.Products, 2)
	require.True(t, first.HasMore)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.ListProducts(context.Background(), ListProductsInput{
		Filters:    ListFilters{Category: category},
		Pagination: pagination.Params{Limit: 2, Cursor: first.NextCursor},
	})
	require.NoError(t, err)
	require.Len(t, second.Products, 2)

	seen := map[uuid.UUID]bool{}
	for _, p := range append(first.Products, second.Products...) {
		assert.False(t, seen[p.ID], "pages must not overlap")
		seen[p.ID] = true
	}
}
