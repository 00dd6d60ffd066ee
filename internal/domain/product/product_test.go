package product

import (
	"testing"

	domainErrors "github.com/campuskart/marketplace/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	sellerID := uuid.New()
	p, err := NewProduct("mechanics textbook", 35000, 2, sellerID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Quantity)
	assert.True(t, p.IsAvailable)
	assert.False(t, p.SoldOutNotified)
	assert.Equal(t, sellerID, p.SellerID)
}

func TestNewProduct_Validation(t *testing.T) {
	sellerID := uuid.New()
	var validationErr *domainErrors.ValidationError

	_, err := NewProduct("", 100, 1, sellerID)
	assert.ErrorAs(t, err, &validationErr)
	_, err = NewProduct("x", 0, 1, sellerID)
	assert.ErrorAs(t, err, &validationErr)
	_, err = NewProduct("x", 100, 0, sellerID)
	assert.ErrorAs(t, err, &validationErr)
	_, err = NewProduct("x", 100, 1, uuid.Nil)
	assert.ErrorAs(t, err, &validationErr)
}

func TestCanRelist(t *testing.T) {
	p, err := NewProduct("bike lock", 1500, 1, uuid.New())
	require.NoError(t, err)
	assert.False(t, p.CanRelist())

	p.Quantity = 0
	p.IsAvailable = false
	assert.True(t, p.CanRelist())
}

func TestIsOwnedBy(t *testing.T) {
	sellerID := uuid.New()
	p, err := NewProduct("kettle", 2000, 1, sellerID)
	require.NoError(t, err)
	assert.True(t, p.IsOwnedBy(sellerID))
	assert.False(t, p.IsOwnedBy(uuid.New()))
}
