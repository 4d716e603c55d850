package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"salesledger/models"
)

type InventoryStore struct {
	db DBTX
}

func NewInventoryStore(db DBTX) *InventoryStore {
	return &InventoryStore{db: db}
}

// UpsertProduct merges quantityDelta into an existing product row when
// name, unit price and category all match (names compared
// case-insensitively), or creates a new row. Names and categories are
// stored lower-cased.
func (s *InventoryStore) UpsertProduct(ctx context.Context, name string, quantityDelta int, unitPrice decimal.Decimal, category string) (*models.Product, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	category = strings.ToLower(strings.TrimSpace(category))

	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", models.ErrValidation)
	}
	if quantityDelta <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than 0", models.ErrValidation)
	}
	if !unitPrice.IsPositive() {
		return nil, fmt.Errorf("%w: unit price must be greater than 0", models.ErrValidation)
	}

	// Price is stored as text, so the match on unit price is done in
	// Go with decimal equality rather than in SQL.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, quantity, unit_price, total_value, category, created_at
		FROM inventory
		WHERE LOWER(name) = ? AND LOWER(category) = ?`, name, category)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		if !p.UnitPrice.Equal(unitPrice) {
			continue
		}
		if err := rows.Close(); err != nil {
			return nil, fmt.Errorf("close inventory rows: %w", err)
		}
		return s.setQuantityAndPrice(ctx, p.ID, p.Quantity+quantityDelta, p.UnitPrice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan inventory: %w", err)
	}

	totalValue := unitPrice.Mul(decimal.NewFromInt(int64(quantityDelta)))
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory (name, quantity, unit_price, total_value, category)
		VALUES (?, ?, ?, ?, ?)`,
		name, quantityDelta, unitPrice.String(), totalValue.String(), category)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("product id: %w", err)
	}
	return s.GetByID(ctx, int(id))
}

// EditProduct overwrites quantity and unit price and recomputes the
// total value. No historical trace is kept.
func (s *InventoryStore) EditProduct(ctx context.Context, id, newQuantity int, newUnitPrice decimal.Decimal) (*models.Product, error) {
	if newQuantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", models.ErrValidation)
	}
	if newUnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price cannot be negative", models.ErrValidation)
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.setQuantityAndPrice(ctx, id, newQuantity, newUnitPrice)
}

// DeleteProduct removes the row. Ledger rows that reference the
// product by name are left alone; reads treat the missing product as
// rate 0.
func (s *InventoryStore) DeleteProduct(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM inventory WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return models.ErrUnknownProduct
	}
	return nil
}

// AdjustQuantity adds delta (negative on issue, positive on return) to
// the product's stock and recomputes the total value.
func (s *InventoryStore) AdjustQuantity(ctx context.Context, name string, delta int) (*models.Product, error) {
	p, err := s.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	newQuantity := p.Quantity + delta
	if newQuantity < 0 {
		return nil, fmt.Errorf("%w: %d requested, %d available for %q",
			models.ErrInsufficientStock, -delta, p.Quantity, p.Name)
	}
	return s.setQuantityAndPrice(ctx, p.ID, newQuantity, p.UnitPrice)
}

// FindByName looks a product up case-insensitively.
func (s *InventoryStore) FindByName(ctx context.Context, name string) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, quantity, unit_price, total_value, category, created_at
		FROM inventory
		WHERE LOWER(name) = LOWER(?)`, strings.TrimSpace(name))
	return productFromRow(row)
}

func (s *InventoryStore) GetByID(ctx context.Context, id int) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, quantity, unit_price, total_value, category, created_at
		FROM inventory
		WHERE id = ?`, id)
	return productFromRow(row)
}

func (s *InventoryStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, quantity, unit_price, total_value, category, created_at
		FROM inventory
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *InventoryStore) setQuantityAndPrice(ctx context.Context, id, quantity int, unitPrice decimal.Decimal) (*models.Product, error) {
	totalValue := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	_, err := s.db.ExecContext(ctx, `
		UPDATE inventory
		SET quantity = ?, unit_price = ?, total_value = ?
		WHERE id = ?`,
		quantity, unitPrice.String(), totalValue.String(), id)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.GetByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(r rowScanner) (*models.Product, error) {
	var p models.Product
	var createdAt string
	if err := r.Scan(&p.ID, &p.Name, &p.Quantity, &p.UnitPrice, &p.TotalValue, &p.Category, &createdAt); err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	t, err := time.Parse(sqliteTimeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse product created_at: %w", err)
	}
	p.CreatedAt = t
	return &p, nil
}

func productFromRow(row *sql.Row) (*models.Product, error) {
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUnknownProduct
		}
		return nil, err
	}
	return p, nil
}
