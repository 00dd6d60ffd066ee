package testutil

import (
	"context"
	"sync"

	domainErrors "github.com/campuskart/marketplace/internal/domain/errors"
	"github.com/campuskart/marketplace/internal/domain/notification"
	"github.com/campuskart/marketplace/internal/domain/outbox"
	"github.com/campuskart/marketplace/internal/domain/product"
	"github.com/campuskart/marketplace/internal/domain/transaction"
	"github.com/google/uuid"
)

// --- Product Repository Mock ---

// MockProductRepository is a mock implementation of product.Repository.
// DecrementOnSale, ClaimSoldOutNotification and Relist keep the conditional
// update semantics of the real store: the check and the mutation happen under
// one lock, so concurrent callers contend the way they would against the
// database.
type MockProductRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]*product.Product

	CreateFunc         func(ctx context.Context, p *product.Product) error
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*product.Product, error)
	CheckAvailableFunc func(ctx context.Context, id uuid.UUID) (product.Availability, error)
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{products: make(map[uuid.UUID]*product.Product)}
}

// AddProduct pre-populates the mock with a product.
func (m *MockProductRepository) AddProduct(p *product.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

// GetProductByID returns the stored product (test helper, no context needed).
func (m *MockProductRepository) GetProductByID(id uuid.UUID) *product.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id]
}

func (m *MockProductRepository) Create(ctx context.Context, p *product.Product) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
	return nil
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, domainErrors.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProductRepository) CheckAvailable(ctx context.Context, id uuid.UUID) (product.Availability, error) {
	if m.CheckAvailableFunc != nil {
		return m.CheckAvailableFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return product.Availability{}, domainErrors.ErrProductNotFound
	}
	return product.Availability{Available: p.IsAvailable, Quantity: p.Quantity}, nil
}

func (m *MockProductRepository) DecrementOnSale(ctx context.Context, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return 0, domainErrors.ErrProductNotFound
	}
	if p.Quantity <= 0 || !p.IsAvailable {
		return 0, domainErrors.ErrOutOfStock
	}
	p.Quantity--
	p.IsAvailable = p.Quantity > 0
	return p.Quantity, nil
}

func (m *MockProductRepository) ClaimSoldOutNotification(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return false, domainErrors.ErrProductNotFound
	}
	if p.Quantity != 0 || p.SoldOutNotified {
		return false, nil
	}
	p.SoldOutNotified = true
	return true, nil
}

func (m *MockProductRepository) Relist(ctx context.Context, id uuid.UUID, quantity int) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, domainErrors.ErrProductNotFound
	}
	if p.Quantity != 0 || p.IsAvailable {
		return nil, domainErrors.ErrProductStillInStock
	}
	p.Quantity = quantity
	p.IsAvailable = true
	p.SoldOutNotified = false
	cp := *p
	return &cp, nil
}

// --- Transaction Repository Mock ---

// MockTransactionRepository is a mock implementation of transaction.Repository.
// Reads return copies and writes store copies, mirroring row-scan semantics:
// a caller holding a loaded transaction does not observe later writes, so
// concurrency tests race the way they would against the database.
type MockTransactionRepository struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]*transaction.Transaction

	CreateFunc func(ctx context.Context, t *transaction.Transaction) error
	UpdateFunc func(ctx context.Context, t *transaction.Transaction) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{transactions: make(map[uuid.UUID]*transaction.Transaction)}
}

// AddTransaction pre-populates the mock with a transaction.
func (m *MockTransactionRepository) AddTransaction(t *transaction.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[t.ID] = t
}

func (m *MockTransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[t.ID] = t
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return nil, domainErrors.ErrTransactionNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTransactionRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*transaction.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.transactions {
		if t.GatewayOrderID != nil && *t.GatewayOrderID == gatewayOrderID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockTransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[t.ID]; !ok {
		return domainErrors.ErrTransactionNotFound
	}
	cp := *t
	m.transactions[t.ID] = &cp
	return nil
}

func (m *MockTransactionRepository) UpdateIfStatus(ctx context.Context, t *transaction.Transaction, expected transaction.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.transactions[t.ID]
	if !ok {
		return false, domainErrors.ErrTransactionNotFound
	}
	if stored.Status != expected {
		return false, nil
	}
	cp := *t
	m.transactions[t.ID] = &cp
	return true, nil
}

func (m *MockTransactionRepository) List(ctx context.Context, f transaction.ListFilter) ([]*transaction.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*transaction.Transaction
	for _, t := range m.transactions {
		if f.BuyerID != nil && f.SellerID != nil {
			if t.BuyerID != *f.BuyerID && t.SellerID != *f.SellerID {
				continue
			}
		} else if f.BuyerID != nil && t.BuyerID != *f.BuyerID {
			continue
		} else if f.SellerID != nil && t.SellerID != *f.SellerID {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

// --- Notification Repository Mock ---

// MockNotificationRepository is a mock implementation of notification.Repository.
type MockNotificationRepository struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]*notification.Notification

	CreateFunc func(ctx context.Context, n *notification.Notification) error
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{notifications: make(map[uuid.UUID]*notification.Notification)}
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Conflict-tolerant on id, as in the real store.
	if _, ok := m.notifications[n.ID]; ok {
		return nil
	}
	m.notifications[n.ID] = n
	return nil
}

func (m *MockNotificationRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*notification.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) (*notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return nil, domainErrors.ErrNotificationNotFound
	}
	n.IsRead = true
	return n, nil
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (m *MockNotificationRepository) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, n := range m.notifications {
		if n.UserID == userID {
			delete(m.notifications, id)
		}
	}
	return nil
}

// Count returns the number of stored notifications (test helper).
func (m *MockNotificationRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notifications)
}

// --- Outbox Repository Mock ---

// MockOutboxRepository is a recording mock implementation of outbox.Repository.
type MockOutboxRepository struct {
	mu      sync.Mutex
	entries []*outbox.Entry

	InsertFunc        func(ctx context.Context, entry *outbox.Entry) error
	GetPendingFunc    func(ctx context.Context, limit int) ([]*outbox.Entry, error)
	MarkPublishedFunc func(ctx context.Context, id uuid.UUID) error
	MarkFailedFunc    func(ctx context.Context, id uuid.UUID) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Insert(ctx context.Context, entry *outbox.Entry) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Entry, error) {
	if m.GetPendingFunc != nil {
		return m.GetPendingFunc(ctx, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []*outbox.Entry
	for _, e := range m.entries {
		if e.Status == outbox.StatusPending {
			pending = append(pending, e)
			if len(pending) == limit {
				break
			}
		}
	}
	return pending, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			e.Status = outbox.StatusPublished
		}
	}
	return nil
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			e.RetryCount++
			if e.RetryCount >= e.MaxRetries {
				e.Status = outbox.StatusFailed
			}
		}
	}
	return nil
}

// Entries returns the recorded entries (test helper).
func (m *MockOutboxRepository) Entries() []*outbox.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*outbox.Entry(nil), m.entries...)
}

// EntriesOfType returns the recorded entries with the given event type.
func (m *MockOutboxRepository) EntriesOfType(eventType string) []*outbox.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*outbox.Entry
	for _, e := range m.entries {
		if e.EventType == eventType {
			result = append(result, e)
		}
	}
	return result
}

// --- Transaction Manager Mock ---

// MockTransactionManager is a mock implementation of service.TransactionManager.
type MockTransactionManager struct {
	WithTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}
