package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/campuskart/marketplace/internal/domain/errors"
	"github.com/campuskart/marketplace/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository implements transaction.Repository using PostgreSQL.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func (r *TransactionRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

const transactionColumns = `id, product_id, buyer_id, seller_id, price_minor, currency,
	        status, payment_status, payment_method,
	        gateway_order_id, gateway_payment_id, gateway_signature,
	        notes, created_at, updated_at, completed_at`

// Create inserts a new transaction.
func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO transactions
		 (id, product_id, buyer_id, seller_id, price_minor, currency,
		  status, payment_status, payment_method,
		  gateway_order_id, gateway_payment_id, gateway_signature,
		  notes, created_at, updated_at, completed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		t.ID, t.ProductID, t.BuyerID, t.SellerID, t.PriceMinor, t.Currency,
		string(t.Status), string(t.PaymentStatus), string(t.PaymentMethod),
		t.GatewayOrderID, t.GatewayPaymentID, t.GatewaySignature,
		t.Notes, t.CreatedAt, t.UpdatedAt, t.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by its ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	t, err := r.scanTransaction(r.db(ctx).QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrTransactionNotFound
		}
		return nil, err
	}
	return t, nil
}

// GetByGatewayOrderID retrieves a transaction by its gateway order id.
// Returns nil, nil when no transaction is correlated to the order.
func (r *TransactionRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*transaction.Transaction, error) {
	t, err := r.scanTransaction(r.db(ctx).QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE gateway_order_id = $1`, gatewayOrderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// Update updates an existing transaction.
func (r *TransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE transactions SET
		  status=$1, payment_status=$2,
		  gateway_order_id=$3, gateway_payment_id=$4, gateway_signature=$5,
		  notes=$6, updated_at=$7, completed_at=$8
		 WHERE id=$9`,
		string(t.Status), string(t.PaymentStatus),
		t.GatewayOrderID, t.GatewayPaymentID, t.GatewaySignature,
		t.Notes, t.UpdatedAt, t.CompletedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrTransactionNotFound
	}
	return nil
}

// UpdateIfStatus updates the transaction only while its stored status still
// matches expected. The conditional WHERE clause makes the status transition
// itself the guard: of two concurrent writers exactly one sees a row claimed.
func (r *TransactionRepository) UpdateIfStatus(ctx context.Context, t *transaction.Transaction, expected transaction.Status) (bool, error) {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE transactions SET
		  status=$1, payment_status=$2,
		  gateway_order_id=$3, gateway_payment_id=$4, gateway_signature=$5,
		  notes=$6, updated_at=$7, completed_at=$8
		 WHERE id=$9 AND status=$10`,
		string(t.Status), string(t.PaymentStatus),
		t.GatewayOrderID, t.GatewayPaymentID, t.GatewaySignature,
		t.Notes, t.UpdatedAt, t.CompletedAt, t.ID, string(expected),
	)
	if err != nil {
		return false, fmt.Errorf("update transaction: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List lists transactions with optional filters, newest first.
func (r *TransactionRepository) List(ctx context.Context, f transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	args := []any{}
	argIdx := 1

	switch {
	case f.BuyerID != nil && f.SellerID != nil:
		query += fmt.Sprintf(" AND (buyer_id = $%d OR seller_id = $%d)", argIdx, argIdx+1)
		args = append(args, *f.BuyerID, *f.SellerID)
		argIdx += 2
	case f.BuyerID != nil:
		query += fmt.Sprintf(" AND buyer_id = $%d", argIdx)
		args = append(args, *f.BuyerID)
		argIdx++
	case f.SellerID != nil:
		query += fmt.Sprintf(" AND seller_id = $%d", argIdx)
		args = append(args, *f.SellerID)
		argIdx++
	}
	if f.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, string(*f.Status))
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction
	for rows.Next() {
		t, err := r.scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *TransactionRepository) scanTransaction(s scanner) (*transaction.Transaction, error) {
	t := &transaction.Transaction{}
	var (
		status        string
		paymentStatus string
		paymentMethod string
	)
	err := s.Scan(
		&t.ID, &t.ProductID, &t.BuyerID, &t.SellerID, &t.PriceMinor, &t.Currency,
		&status, &paymentStatus, &paymentMethod,
		&t.GatewayOrderID, &t.GatewayPaymentID, &t.GatewaySignature,
		&t.Notes, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	t.Status = transaction.Status(status)
	t.PaymentStatus = transaction.PaymentStatus(paymentStatus)
	t.PaymentMethod = transaction.PaymentMethod(paymentMethod)
	return t, nil
}
