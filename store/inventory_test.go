package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/config"
	"salesledger/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := config.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestUpsertProduct_Create(t *testing.T) {
	s := NewInventoryStore(newTestDB(t))
	ctx := context.Background()

	p, err := s.UpsertProduct(ctx, "Rice", 50, price("20.00"), "Grains")
	require.NoError(t, err)

	assert.Equal(t, "rice", p.Name, "names are stored lower-cased")
	assert.Equal(t, "grains", p.Category)
	assert.Equal(t, 50, p.Quantity)
	assert.True(t, p.TotalValue.Equal(price("1000")), "total_value = quantity * unit_price, got %s", p.TotalValue)
	assert.False(t, p.CreatedAt.IsZero(), "created_at is read back from the row")

	found, err := s.FindByName(ctx, "rice")
	require.NoError(t, err)
	assert.False(t, found.CreatedAt.IsZero())
}

func TestUpsertProduct_MergeOnMatch(t *testing.T) {
	s := NewInventoryStore(newTestDB(t))
	ctx := context.Background()

	first, err := s.UpsertProduct(ctx, "rice", 50, price("20"), "grains")
	require.NoError(t, err)

	// Same name (different case), same price, same category: merge.
	merged, err := s.UpsertProduct(ctx, "RICE", 25, price("20"), "Grains")
	require.NoError(t, err)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 75, merged.Quantity)
	assert.True(t, merged.TotalValue.Equal(price("1500")))

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestUpsertProduct_NewRowOnPriceMismatch(t *testing.T) {
	s := NewInventoryStore(newTestDB(t))
	ctx := context.Background()

	_, err := s.UpsertProduct(ctx, "rice", 50, price("20"), "grains")
	require.NoError(t, err)

	// Same name and category but a different price creates a second row.
	other, err := s.UpsertProduct(ctx, "rice", 10, price("22.50"), "grains")
	require.NoError(t, err)
	assert.Equal(t, 10, other.Quantity)

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestUpsertProduct_Validation(t *testing.T) {
	s := NewInventoryStore(newTestDB(t))
	ctx := context.Background()

	testCases := []struct {
		name     string
		product  string
		quantity int
		price    decimal.Decimal
	}{
		{"zero quantity", "rice", 0, price("20")},
		{"negative quantity", "rice", -3, price("20")},
		{"zero price", "rice", 5, price("0")},
		{"negative price", "rice", 5, price("-1")},
		{"empty name", "  ", 5, price("20")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.UpsertProduct(ctx, tc.product, tc.quantity, tc.price, "")
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestEditProduct(t *testing.T) {
	s := NewInventoryStore(newTestDB(t))
	ctx := context.Background()

	p, err := s.UpsertProduct(ctx, "rice", 50, price("20"), "")
	require.NoError(t, err)

	edited, err := s.EditProduct(ctx, p.ID, 30, price("25"))
	require.NoError(t, err)
	assert.Equal(t, 30, edited.Quantity)
	assert.True(t, edited.UnitPrice.Equal(price("25")))
	assert.True(t, edited.TotalValue.Equal(price("750")))
}

func TestEditProduct_Unknown(t *testing.T) {
	s := NewInventoryStore(newTestDB(t))

	_, err := s.EditProduct(context.Background(), 99, 10, price("5"))
	assert.ErrorIs(t, err, models.ErrUnknownProduct)
}

func TestAdjustQuantity(t *testing.T) {
	s := NewInventoryStore(newTestDB(t))
	ctx := context.Background()

	_, err := s.UpsertProduct(ctx, "rice", 10, price("20"), "")
	require.NoError(t, err)

	p, err := s.AdjustQuantity(ctx, "rice", -4)
	require.NoError(t, err)
	assert.Equal(t, 6, p.Quantity)
	assert.True(t, p.TotalValue.Equal(price("120")))

	p, err = s.AdjustQuantity(ctx, "rice", 4)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Quantity)
}

func TestAdjustQuantity_Insufficient(t *testing.T) {
	s := NewInventoryStore(newTestDB(t))
	ctx := context.Background()

	_, err := s.UpsertProduct(ctx, "rice", 10, price("20"), "")
	require.NoError(t, err)

	_, err = s.AdjustQuantity(ctx, "rice", -15)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	// Stock untouched by the failed adjustment.
	p, err := s.FindByName(ctx, "rice")
	require.NoError(t, err)
	assert.Equal(t, 10, p.Quantity)
}

func TestFindByName_CaseInsensitive(t *testing.T) {
	s := NewInventoryStore(newTestDB(t))
	ctx := context.Background()

	_, err := s.UpsertProduct(ctx, "Basmati Rice", 5, price("90"), "")
	require.NoError(t, err)

	p, err := s.FindByName(ctx, "BASMATI rice")
	require.NoError(t, err)
	assert.Equal(t, "basmati rice", p.Name)

	_, err = s.FindByName(ctx, "wheat")
	assert.ErrorIs(t, err, models.ErrUnknownProduct)
}

func TestDeleteProduct(t *testing.T) {
	s := NewInventoryStore(newTestDB(t))
	ctx := context.Background()

	p, err := s.UpsertProduct(ctx, "rice", 5, price("20"), "")
	require.NoError(t, err)

	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, s.DeleteProduct(ctx, p.ID), models.ErrUnknownProduct)
}
