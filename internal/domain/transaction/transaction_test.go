package transaction

import (
	"testing"

	domainErrors "github.com/campuskart/marketplace/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCashTx(t *testing.T) *Transaction {
	t.Helper()
	tx, err := NewCashTransaction(uuid.New(), uuid.New(), uuid.New(), 1000, "INR", "")
	require.NoError(t, err)
	return tx
}

func TestNewCashTransaction(t *testing.T) {
	tx := newCashTx(t)
	assert.Equal(t, StatusPending, tx.Status)
	assert.Equal(t, PaymentPending, tx.PaymentStatus)
	assert.Equal(t, MethodCash, tx.PaymentMethod)
	assert.Nil(t, tx.GatewayOrderID)
	assert.Nil(t, tx.CompletedAt)
}

func TestNewGatewayOrder(t *testing.T) {
	tx, err := NewGatewayOrder(uuid.New(), uuid.New(), uuid.New(), 5000, "INR", "", "order_abc")
	require.NoError(t, err)
	assert.Equal(t, StatusPaymentInitiated, tx.Status)
	assert.Equal(t, MethodGateway, tx.PaymentMethod)
	require.NotNil(t, tx.GatewayOrderID)
	assert.Equal(t, "order_abc", *tx.GatewayOrderID)
}

func TestNewTransaction_Validation(t *testing.T) {
	buyer := uuid.New()
	seller := uuid.New()

	_, err := NewCashTransaction(uuid.New(), buyer, buyer, 1000, "INR", "")
	assert.ErrorIs(t, err, domainErrors.ErrSelfPurchase)

	var validationErr *domainErrors.ValidationError
	_, err = NewCashTransaction(uuid.Nil, buyer, seller, 1000, "INR", "")
	assert.ErrorAs(t, err, &validationErr)
	_, err = NewCashTransaction(uuid.New(), buyer, seller, 0, "INR", "")
	assert.ErrorAs(t, err, &validationErr)
	_, err = NewCashTransaction(uuid.New(), buyer, seller, -5, "INR", "")
	assert.ErrorAs(t, err, &validationErr)
	_, err = NewCashTransaction(uuid.New(), buyer, seller, 1000, "", "")
	assert.ErrorAs(t, err, &validationErr)
}

func TestTransitions_Allowed(t *testing.T) {
	cases := []struct {
		from Status
		to   Status
	}{
		{StatusPending, StatusPaymentInitiated},
		{StatusPending, StatusCompleted},
		{StatusPending, StatusCancelled},
		{StatusPending, StatusPaymentFailed},
		{StatusPaymentInitiated, StatusPaymentCompleted},
		{StatusPaymentInitiated, StatusPaymentFailed},
		{StatusPaymentInitiated, StatusCancelled},
		{StatusPaymentCompleted, StatusCompleted},
	}
	for _, c := range cases {
		tx := newCashTx(t)
		tx.Status = c.from
		assert.True(t, tx.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
		assert.NoError(t, tx.TransitionTo(c.to))
		assert.Equal(t, c.to, tx.Status)
	}
}

func TestTransitions_NoBackwardEdges(t *testing.T) {
	cases := []struct {
		from Status
		to   Status
	}{
		{StatusPaymentInitiated, StatusPending},
		{StatusPaymentCompleted, StatusPending},
		{StatusPaymentCompleted, StatusPaymentInitiated},
		{StatusPaymentCompleted, StatusCancelled},
		{StatusPending, StatusPaymentCompleted},
	}
	for _, c := range cases {
		tx := newCashTx(t)
		tx.Status = c.from
		assert.False(t, tx.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
		assert.ErrorIs(t, tx.TransitionTo(c.to), domainErrors.ErrInvalidStateTransition)
		assert.Equal(t, c.from, tx.Status)
	}
}

func TestTransitions_TerminalStatesAreFinal(t *testing.T) {
	all := []Status{
		StatusPending, StatusPaymentInitiated, StatusPaymentCompleted,
		StatusPaymentFailed, StatusCompleted, StatusCancelled,
	}
	for _, terminal := range []Status{StatusCompleted, StatusCancelled, StatusPaymentFailed} {
		tx := newCashTx(t)
		tx.Status = terminal
		assert.True(t, tx.IsTerminal())
		for _, to := range all {
			assert.False(t, tx.CanTransitionTo(to), "%s -> %s", terminal, to)
		}
	}
}

func TestTransitionTo_SetsCompletedAt(t *testing.T) {
	for _, to := range []Status{StatusCompleted, StatusCancelled, StatusPaymentFailed} {
		tx := newCashTx(t)
		require.NoError(t, tx.TransitionTo(to))
		assert.NotNil(t, tx.CompletedAt, "CompletedAt after %s", to)
	}
}

func TestMarkPaymentCompleted(t *testing.T) {
	tx, err := NewGatewayOrder(uuid.New(), uuid.New(), uuid.New(), 5000, "INR", "", "order_1")
	require.NoError(t, err)

	require.NoError(t, tx.MarkPaymentCompleted("pay_1", "sig_1"))
	assert.Equal(t, StatusPaymentCompleted, tx.Status)
	assert.Equal(t, PaymentCaptured, tx.PaymentStatus)
	require.NotNil(t, tx.GatewayPaymentID)
	assert.Equal(t, "pay_1", *tx.GatewayPaymentID)
	require.NotNil(t, tx.GatewaySignature)
	assert.Equal(t, "sig_1", *tx.GatewaySignature)

	// Completion is one-way.
	assert.ErrorIs(t, tx.MarkPaymentCompleted("pay_2", "sig_2"), domainErrors.ErrInvalidStateTransition)
	assert.Equal(t, "pay_1", *tx.GatewayPaymentID)
}

func TestMarkPaymentFailed_KeepsCapturedStatus(t *testing.T) {
	tx, err := NewGatewayOrder(uuid.New(), uuid.New(), uuid.New(), 5000, "INR", "", "order_1")
	require.NoError(t, err)

	require.NoError(t, tx.MarkPaymentFailed(PaymentCaptured, "out of stock at verification time"))
	assert.Equal(t, StatusPaymentFailed, tx.Status)
	assert.Equal(t, PaymentCaptured, tx.PaymentStatus)
	assert.Equal(t, "out of stock at verification time", tx.Notes)
	assert.True(t, tx.IsTerminal())
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusPending))
	assert.True(t, ValidStatus(StatusCancelled))
	assert.False(t, ValidStatus(Status("refund_pending")))
	assert.False(t, ValidStatus(Status("")))
}

func TestIsParty(t *testing.T) {
	buyer := uuid.New()
	seller := uuid.New()
	tx, err := NewCashTransaction(uuid.New(), buyer, seller, 1000, "INR", "")
	require.NoError(t, err)

	assert.True(t, tx.IsParty(buyer))
	assert.True(t, tx.IsParty(seller))
	assert.False(t, tx.IsParty(uuid.New()))
}
