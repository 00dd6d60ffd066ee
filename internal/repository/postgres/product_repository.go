package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/campuskart/marketplace/internal/domain/errors"
	"github.com/campuskart/marketplace/internal/domain/product"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductRepository implements product.Repository using PostgreSQL.
//
// Every quantity/availability mutation is a single conditional UPDATE so
// that concurrent sales of the last unit resolve to exactly one winner;
// there is no read-then-write anywhere in this file.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const productColumns = `id, name, description, price_minor, quantity, is_available, seller_id, sold_out_notified, created_at, updated_at`

// Create inserts a new product listing.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO products
		 (id, name, description, price_minor, quantity, is_available, seller_id, sold_out_notified, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.Name, p.Description, p.PriceMinor, p.Quantity, p.IsAvailable,
		p.SellerID, p.SoldOutNotified, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	return r.scanProduct(r.db(ctx).QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

// CheckAvailable returns the availability flag and remaining quantity.
func (r *ProductRepository) CheckAvailable(ctx context.Context, id uuid.UUID) (product.Availability, error) {
	var a product.Availability
	err := r.db(ctx).QueryRow(ctx,
		`SELECT is_available, quantity FROM products WHERE id = $1`, id,
	).Scan(&a.Available, &a.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Availability{}, domainErrors.ErrProductNotFound
		}
		return product.Availability{}, fmt.Errorf("check availability: %w", err)
	}
	return a, nil
}

// DecrementOnSale atomically decrements quantity by 1 where a unit remains,
// recomputing the availability flag in the same statement. The WHERE clause
// re-checks the precondition at commit time, closing the race between order
// creation and payment completion.
func (r *ProductRepository) DecrementOnSale(ctx context.Context, id uuid.UUID) (int, error) {
	var newQuantity int
	err := r.db(ctx).QueryRow(ctx,
		`UPDATE products
		 SET quantity = quantity - 1,
		     is_available = quantity - 1 > 0,
		     updated_at = NOW()
		 WHERE id = $1 AND quantity > 0 AND is_available
		 RETURNING quantity`, id,
	).Scan(&newQuantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the product does not exist or no unit remained.
			if _, checkErr := r.CheckAvailable(ctx, id); checkErr != nil {
				return 0, checkErr
			}
			return 0, domainErrors.ErrOutOfStock
		}
		return 0, fmt.Errorf("decrement product quantity: %w", err)
	}
	return newQuantity, nil
}

// ClaimSoldOutNotification flips sold_out_notified for a sold-out product.
// The conditional update makes the claim a one-shot: of all racing callers,
// at most one observes claimed == true.
func (r *ProductRepository) ClaimSoldOutNotification(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE products
		 SET sold_out_notified = TRUE, updated_at = NOW()
		 WHERE id = $1 AND quantity = 0 AND NOT sold_out_notified`, id,
	)
	if err != nil {
		return false, fmt.Errorf("claim sold-out notification: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Relist resets a sold-out product to the given quantity. The zero-quantity
// guard is part of the UPDATE so a concurrent sale cannot be overwritten.
func (r *ProductRepository) Relist(ctx context.Context, id uuid.UUID, quantity int) (*product.Product, error) {
	row := r.db(ctx).QueryRow(ctx,
		`UPDATE products
		 SET quantity = $2,
		     is_available = TRUE,
		     sold_out_notified = FALSE,
		     updated_at = NOW()
		 WHERE id = $1 AND quantity = 0 AND NOT is_available
		 RETURNING `+productColumns, id, quantity,
	)
	p, err := r.scanProduct(row)
	if err != nil {
		if errors.Is(err, domainErrors.ErrProductNotFound) {
			// Distinguish a missing product from one that still has stock.
			if _, checkErr := r.CheckAvailable(ctx, id); checkErr != nil {
				return nil, checkErr
			}
			return nil, domainErrors.ErrProductStillInStock
		}
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) scanProduct(s scanner) (*product.Product, error) {
	p := &product.Product{}
	err := s.Scan(
		&p.ID, &p.Name, &p.Description, &p.PriceMinor, &p.Quantity, &p.IsAvailable,
		&p.SellerID, &p.SoldOutNotified, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}
