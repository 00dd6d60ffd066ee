package service

import (
	"context"
	"errors"

	domainErrors "github.com/campuskart/marketplace/internal/domain/errors"
	"github.com/campuskart/marketplace/internal/domain/product"
	"github.com/campuskart/marketplace/internal/infrastructure/observability"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InventoryService owns the product quantity ledger. All mutations go
// through the repository's atomic conditional updates; this service never
// reads a quantity and writes it back.
type InventoryService struct {
	productRepo product.Repository
	metrics     *observability.Metrics
	logger      zerolog.Logger
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(productRepo product.Repository, metrics *observability.Metrics, logger zerolog.Logger) *InventoryService {
	return &InventoryService{
		productRepo: productRepo,
		metrics:     metrics,
		logger:      logger.With().Str("component", "inventory_service").Logger(),
	}
}

// CheckAvailable returns the current availability of a product. The result
// is advisory only: a concurrent sale can invalidate it immediately, so
// callers must still rely on DecrementOnSale for the authoritative answer.
func (s *InventoryService) CheckAvailable(ctx context.Context, productID uuid.UUID) (product.Availability, error) {
	return s.productRepo.CheckAvailable(ctx, productID)
}

// DecrementOnSale commits one unit of a sale. On the transition to zero it
// also claims the one-shot sold-out notification flag, so exactly one caller
// across all instances observes BecameSoldOut.
func (s *InventoryService) DecrementOnSale(ctx context.Context, productID uuid.UUID) (product.DecrementResult, error) {
	newQty, err := s.productRepo.DecrementOnSale(ctx, productID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrOutOfStock) {
			s.metrics.InventoryDecrements.WithLabelValues("out_of_stock").Inc()
		} else {
			s.metrics.InventoryDecrements.WithLabelValues("error").Inc()
		}
		return product.DecrementResult{}, err
	}
	s.metrics.InventoryDecrements.WithLabelValues("success").Inc()

	result := product.DecrementResult{NewQuantity: newQty}
	if newQty == 0 {
		claimed, err := s.productRepo.ClaimSoldOutNotification(ctx, productID)
		if err != nil {
			return product.DecrementResult{}, err
		}
		result.BecameSoldOut = claimed
		if claimed {
			s.metrics.SoldOutTotal.Inc()
			s.logger.Info().Str("product_id", productID.String()).Msg("product sold out")
		}
	}
	return result, nil
}

// Relist resets a sold-out product owned by userID back to the given
// quantity. A product with stock remaining cannot be re-listed.
func (s *InventoryService) Relist(ctx context.Context, productID, userID uuid.UUID, quantity int) (*product.Product, error) {
	if quantity < 1 {
		return nil, domainErrors.NewValidationError("quantity", "must be at least 1")
	}

	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(userID) {
		return nil, domainErrors.ErrForbidden
	}
	if !p.CanRelist() {
		return nil, domainErrors.ErrProductStillInStock
	}

	relisted, err := s.productRepo.Relist(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	s.metrics.RelistTotal.Inc()
	s.logger.Info().
		Str("product_id", productID.String()).
		Int("quantity", quantity).
		Msg("product re-listed")
	return relisted, nil
}
