package controller

import (
	"net/http"

	"github.com/campuskart/marketplace/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ProductController exposes the inventory operations: availability reads
// and owner-initiated re-listing of sold-out products.
type ProductController struct {
	inventoryService *service.InventoryService
}

// NewProductController creates a new ProductController.
func NewProductController(inventoryService *service.InventoryService) *ProductController {
	return &ProductController{inventoryService: inventoryService}
}

// Availability handles GET /products/{id}/availability.
func (h *ProductController) Availability(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid product id", Code: "invalid_id"})
		return
	}

	avail, err := h.inventoryService.CheckAvailable(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AvailabilityResponse{
		Available: avail.Available,
		Quantity:  avail.Quantity,
	})
}

// Relist handles POST /products/{id}/relist.
func (h *ProductController) Relist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid product id", Code: "invalid_id"})
		return
	}

	var req RelistRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.inventoryService.Relist(r.Context(), id, userID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromProduct(p))
}
