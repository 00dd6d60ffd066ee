package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainErrors "github.com/campuskart/marketplace/internal/domain/errors"
	"github.com/campuskart/marketplace/internal/domain/outbox"
	"github.com/campuskart/marketplace/internal/domain/product"
	"github.com/campuskart/marketplace/internal/domain/transaction"
	"github.com/campuskart/marketplace/internal/gateway"
	"github.com/campuskart/marketplace/internal/infrastructure/observability"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// OrderService drives a transaction through its lifecycle: order creation
// against the payment gateway, payment verification, webhook reconciliation
// and manual status overrides. Inventory is committed exactly once, by
// VerifyPayment; the webhook path never touches stock.
type OrderService struct {
	transactionRepo transaction.Repository
	productRepo     product.Repository
	outboxRepo      outbox.Repository
	inventory       *InventoryService
	txManager       TransactionManager
	gateway         gateway.Client
	breaker         *gobreaker.CircuitBreaker[*gateway.Order]
	verifier        *gateway.SignatureVerifier
	currency        string
	metrics         *observability.Metrics
	logger          zerolog.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	transactionRepo transaction.Repository,
	productRepo product.Repository,
	outboxRepo outbox.Repository,
	inventory *InventoryService,
	txManager TransactionManager,
	gw gateway.Client,
	breaker *gobreaker.CircuitBreaker[*gateway.Order],
	verifier *gateway.SignatureVerifier,
	currency string,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		transactionRepo: transactionRepo,
		productRepo:     productRepo,
		outboxRepo:      outboxRepo,
		inventory:       inventory,
		txManager:       txManager,
		gateway:         gw,
		breaker:         breaker,
		verifier:        verifier,
		currency:        currency,
		metrics:         metrics,
		logger:          logger.With().Str("component", "order_service").Logger(),
	}
}

// CreateOrderRequest holds the input for creating a gateway-backed order.
type CreateOrderRequest struct {
	BuyerID    uuid.UUID
	ProductID  uuid.UUID
	SellerID   uuid.UUID
	PriceMinor int64
	Notes      string
}

// CreateOrderResponse holds the created transaction and the gateway order
// handle the client completes checkout against.
type CreateOrderResponse struct {
	Transaction *transaction.Transaction
	Order       *gateway.Order
}

// CreateOrder validates the purchase, requests a gateway order handle and
// persists a payment_initiated transaction correlated to it. Inventory is
// only precondition-checked here; the decrement happens at verification.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	if req.BuyerID == req.SellerID {
		return nil, domainErrors.ErrSelfPurchase
	}
	if req.PriceMinor <= 0 {
		return nil, domainErrors.NewValidationError("price", "must be greater than 0")
	}

	p, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if p.SellerID != req.SellerID {
		return nil, domainErrors.NewValidationError("seller_id", "does not match the product's seller")
	}
	if !p.IsAvailable || p.Quantity == 0 {
		return nil, domainErrors.ErrOutOfStock
	}

	receipt := "rcpt_" + uuid.New().String()[:8]
	order, err := s.breaker.Execute(func() (*gateway.Order, error) {
		return s.gateway.CreateOrder(ctx, gateway.CreateOrderRequest{
			AmountMinor: req.PriceMinor,
			Currency:    s.currency,
			Receipt:     receipt,
			Notes: map[string]string{
				"product_id": req.ProductID.String(),
				"buyer_id":   req.BuyerID.String(),
			},
		})
	})
	if err != nil {
		s.metrics.GatewayRequests.WithLabelValues("create_order", "failure").Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit breaker open", domainErrors.ErrGatewayUnavailable)
		}
		return nil, err
	}
	s.metrics.GatewayRequests.WithLabelValues("create_order", "success").Inc()

	t, err := transaction.NewGatewayOrder(p.ID, req.BuyerID, p.SellerID, req.PriceMinor, s.currency, req.Notes, order.ID)
	if err != nil {
		return nil, err
	}
	if err := s.transactionRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.metrics.OrdersTotal.WithLabelValues(string(t.PaymentMethod), string(t.Status)).Inc()
	s.logger.Info().
		Str("transaction_id", t.ID.String()).
		Str("gateway_order_id", order.ID).
		Str("product_id", p.ID.String()).
		Msg("order created")

	return &CreateOrderResponse{Transaction: t, Order: order}, nil
}

// VerifyPaymentRequest carries the gateway's checkout result back for
// server-side verification.
type VerifyPaymentRequest struct {
	TransactionID    uuid.UUID
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
}

// errVerifyRaced reports that a concurrent verification completed the
// transaction first; the losing writer rolls back and replays.
var errVerifyRaced = errors.New("transaction completed by concurrent verification")

// VerifyPayment authenticates a reported payment and, on success, commits
// the inventory decrement, finalizes the transaction and records the
// notification side effects in the outbox, all in one database transaction.
//
// The operation is idempotent per transaction id: a replay with the same
// payment id returns the stored transaction without touching inventory. The
// guard is the status transition itself, a conditional update claiming the
// row while it is still payment_initiated; a writer that loses that claim
// rolls back its decrement and takes the replay path.
// A signature mismatch leaves the transaction unmodified so the caller can
// retry, but only with the payment id the order was created for.
func (s *OrderService) VerifyPayment(ctx context.Context, buyerID uuid.UUID, req VerifyPaymentRequest) (*transaction.Transaction, error) {
	t, err := s.transactionRepo.GetByID(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}

	if t.GatewayOrderID == nil || *t.GatewayOrderID != req.GatewayOrderID {
		s.metrics.PaymentVerifications.WithLabelValues("order_mismatch").Inc()
		return nil, domainErrors.ErrPaymentVerificationFailed
	}
	if !s.verifier.VerifyPayment(req.GatewayOrderID, req.GatewayPaymentID, req.GatewaySignature) {
		s.metrics.PaymentVerifications.WithLabelValues("invalid_signature").Inc()
		s.logger.Warn().
			Str("transaction_id", t.ID.String()).
			Msg("payment signature mismatch")
		return nil, domainErrors.ErrPaymentVerificationFailed
	}
	if t.BuyerID != buyerID {
		return nil, domainErrors.ErrForbidden
	}

	if t.Status == transaction.StatusPaymentCompleted {
		return s.replayOutcome(t, req)
	}
	if t.Status != transaction.StatusPaymentInitiated {
		return nil, domainErrors.NewDomainError(
			"invalid_transition",
			"transaction is not awaiting payment verification",
			domainErrors.ErrInvalidStateTransition,
		)
	}

	p, err := s.productRepo.GetByID(ctx, t.ProductID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		result, err := s.inventory.DecrementOnSale(txCtx, t.ProductID)
		if err != nil {
			return err
		}
		if err := t.MarkPaymentCompleted(req.GatewayPaymentID, req.GatewaySignature); err != nil {
			return err
		}
		claimed, err := s.transactionRepo.UpdateIfStatus(txCtx, t, transaction.StatusPaymentInitiated)
		if err != nil {
			return err
		}
		if !claimed {
			return errVerifyRaced
		}
		if err := s.outboxRepo.Insert(txCtx, soldEntry(t, p)); err != nil {
			return err
		}
		if result.BecameSoldOut {
			if err := s.outboxRepo.Insert(txCtx, soldOutEntry(t, p)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errVerifyRaced) {
			stored, err := s.transactionRepo.GetByID(ctx, req.TransactionID)
			if err != nil {
				return nil, err
			}
			if stored.Status != transaction.StatusPaymentCompleted {
				return nil, domainErrors.NewDomainError(
					"invalid_transition",
					"transaction is not awaiting payment verification",
					domainErrors.ErrInvalidStateTransition,
				)
			}
			return s.replayOutcome(stored, req)
		}
		if errors.Is(err, domainErrors.ErrOutOfStock) {
			return nil, s.failUnfulfillable(ctx, t)
		}
		s.metrics.PaymentVerifications.WithLabelValues("error").Inc()
		return nil, err
	}

	s.metrics.PaymentVerifications.WithLabelValues("success").Inc()
	s.metrics.OrdersTotal.WithLabelValues(string(t.PaymentMethod), string(t.Status)).Inc()
	s.logger.Info().
		Str("transaction_id", t.ID.String()).
		Str("gateway_payment_id", req.GatewayPaymentID).
		Msg("payment verified")
	return t, nil
}

// replayOutcome resolves a verify call against an already-completed
// transaction. Replays presenting the payment id that completed the
// transaction succeed without side effects; any other payment id is
// rejected.
func (s *OrderService) replayOutcome(t *transaction.Transaction, req VerifyPaymentRequest) (*transaction.Transaction, error) {
	if t.GatewayPaymentID != nil && *t.GatewayPaymentID != req.GatewayPaymentID {
		s.metrics.PaymentVerifications.WithLabelValues("payment_mismatch").Inc()
		return nil, domainErrors.ErrPaymentVerificationFailed
	}
	s.metrics.PaymentVerifications.WithLabelValues("replay").Inc()
	return t, nil
}

// failUnfulfillable handles the charged-but-unfulfillable edge: the gateway
// captured funds but the last unit was sold to a concurrent buyer. The
// transaction is marked payment_failed while keeping the captured payment
// status visible for manual remediation; no automatic refund is issued.
func (s *OrderService) failUnfulfillable(ctx context.Context, t *transaction.Transaction) error {
	if err := t.MarkPaymentFailed(transaction.PaymentCaptured, "out of stock at verification time"); err != nil {
		return err
	}
	if err := s.transactionRepo.Update(ctx, t); err != nil {
		return err
	}
	s.metrics.PaymentVerifications.WithLabelValues("out_of_stock").Inc()
	s.logger.Error().
		Str("transaction_id", t.ID.String()).
		Str("product_id", t.ProductID.String()).
		Msg("payment captured but product out of stock, manual refund required")
	return domainErrors.ErrOutOfStockAfterCapture
}

// WebhookEvent is the parsed gateway callback payload.
type WebhookEvent struct {
	Event            string
	GatewayOrderID   string
	GatewayPaymentID string
}

// HandleWebhook reconciles the gateway's asynchronous view of a payment.
// It only adjusts payment status: committing inventory and completing the
// transaction stay with VerifyPayment, so the two paths can never
// double-decrement. Events for unknown orders and unknown event types are
// ignored.
func (s *OrderService) HandleWebhook(ctx context.Context, event WebhookEvent) error {
	t, err := s.transactionRepo.GetByGatewayOrderID(ctx, event.GatewayOrderID)
	if err != nil {
		return err
	}
	if t == nil {
		s.logger.Warn().
			Str("gateway_order_id", event.GatewayOrderID).
			Str("event", event.Event).
			Msg("webhook for unknown gateway order, ignoring")
		return nil
	}

	// Writes are conditional on the status the event was read against: if a
	// concurrent verification moves the transaction first, the webhook's
	// stale view must not overwrite it.
	loadedStatus := t.Status
	switch event.Event {
	case "payment.captured":
		if t.PaymentStatus == transaction.PaymentCaptured {
			return nil
		}
		t.PaymentStatus = transaction.PaymentCaptured
		if t.GatewayPaymentID == nil && event.GatewayPaymentID != "" {
			t.GatewayPaymentID = &event.GatewayPaymentID
		}
		t.UpdatedAt = time.Now()
		claimed, err := s.transactionRepo.UpdateIfStatus(ctx, t, loadedStatus)
		if err != nil {
			return err
		}
		if !claimed {
			s.logger.Info().
				Str("transaction_id", t.ID.String()).
				Msg("transaction moved during webhook processing, skipping reconciliation")
			return nil
		}
		s.logger.Info().
			Str("transaction_id", t.ID.String()).
			Msg("webhook reconciled payment capture")
	case "payment.failed":
		if t.IsTerminal() || t.Status == transaction.StatusPaymentCompleted {
			return nil
		}
		if err := t.MarkPaymentFailed(transaction.PaymentFailed, "gateway reported payment failure"); err != nil {
			return err
		}
		claimed, err := s.transactionRepo.UpdateIfStatus(ctx, t, loadedStatus)
		if err != nil {
			return err
		}
		if !claimed {
			s.logger.Info().
				Str("transaction_id", t.ID.String()).
				Msg("transaction moved during webhook processing, skipping failure mark")
			return nil
		}
		s.logger.Info().
			Str("transaction_id", t.ID.String()).
			Msg("webhook marked payment failed")
	default:
		s.logger.Debug().Str("event", event.Event).Msg("ignoring webhook event type")
	}
	return nil
}

// GetStatus returns a transaction to its buyer or seller.
func (s *OrderService) GetStatus(ctx context.Context, requesterID, transactionID uuid.UUID) (*transaction.Transaction, error) {
	t, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !t.IsParty(requesterID) {
		return nil, domainErrors.ErrForbidden
	}
	return t, nil
}

// UpdateStatus is the manual override for buyer or seller, used to settle
// cash transactions or cancel abandoned ones. Transitions into
// payment_completed and payment_failed are reserved for the verification
// and webhook paths and are rejected here.
func (s *OrderService) UpdateStatus(ctx context.Context, requesterID, transactionID uuid.UUID, newStatus transaction.Status) (*transaction.Transaction, error) {
	if !transaction.ValidStatus(newStatus) {
		return nil, domainErrors.NewValidationError("status", "unknown status")
	}
	if newStatus == transaction.StatusPaymentCompleted || newStatus == transaction.StatusPaymentFailed {
		return nil, domainErrors.NewValidationError("status", "cannot be set manually")
	}

	t, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !t.IsParty(requesterID) {
		return nil, domainErrors.ErrForbidden
	}
	if err := t.TransitionTo(newStatus); err != nil {
		return nil, err
	}
	if err := s.transactionRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("transaction_id", t.ID.String()).
		Str("status", string(newStatus)).
		Msg("transaction status updated")
	return t, nil
}

// CreateCashTransaction records a pending in-person sale. No gateway order
// is created and no inventory is committed; the parties settle by hand and
// close the transaction through UpdateStatus.
func (s *OrderService) CreateCashTransaction(ctx context.Context, buyerID, productID uuid.UUID, priceMinor int64, notes string) (*transaction.Transaction, error) {
	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	t, err := transaction.NewCashTransaction(p.ID, buyerID, p.SellerID, priceMinor, s.currency, notes)
	if err != nil {
		return nil, err
	}
	if err := s.transactionRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.metrics.OrdersTotal.WithLabelValues(string(t.PaymentMethod), string(t.Status)).Inc()
	return t, nil
}

// ListTransactions returns the requester's transaction history.
// Side selects the view: "purchases", "sales", or "" for both.
func (s *OrderService) ListTransactions(ctx context.Context, requesterID uuid.UUID, side string, limit, offset int) ([]*transaction.Transaction, error) {
	filter := transaction.ListFilter{Limit: limit, Offset: offset}
	switch side {
	case "purchases":
		filter.BuyerID = &requesterID
	case "sales":
		filter.SellerID = &requesterID
	default:
		filter.BuyerID = &requesterID
		filter.SellerID = &requesterID
	}
	return s.transactionRepo.List(ctx, filter)
}

func soldEntry(t *transaction.Transaction, p *product.Product) *outbox.Entry {
	return outbox.NewEntry("transaction", t.ID, "product.sold", map[string]any{
		"recipient_id":   t.SellerID.String(),
		"type":           "product_sold",
		"title":          "Product sold",
		"message":        fmt.Sprintf("Your product %q has been sold", p.Name),
		"product_id":     p.ID.String(),
		"transaction_id": t.ID.String(),
	})
}

func soldOutEntry(t *transaction.Transaction, p *product.Product) *outbox.Entry {
	return outbox.NewEntry("product", p.ID, "product.sold_out", map[string]any{
		"recipient_id": t.SellerID.String(),
		"type":         "product_sold_out",
		"title":        "Product sold out",
		"message":      fmt.Sprintf("Your product %q is now sold out", p.Name),
		"product_id":   p.ID.String(),
	})
}
