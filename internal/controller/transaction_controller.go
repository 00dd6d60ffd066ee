package controller

import (
	"net/http"
	"strconv"

	"github.com/campuskart/marketplace/internal/domain/transaction"
	"github.com/campuskart/marketplace/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// TransactionController handles cash transactions, history views and the
// manual status override.
type TransactionController struct {
	orderService *service.OrderService
}

// NewTransactionController creates a new TransactionController.
func NewTransactionController(orderService *service.OrderService) *TransactionController {
	return &TransactionController{orderService: orderService}
}

// Create handles POST /transactions (cash sale).
func (h *TransactionController) Create(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid product_id", Code: "invalid_id"})
		return
	}

	t, err := h.orderService.CreateCashTransaction(r.Context(), buyerID, productID, req.Price, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromTransaction(t))
}

// List handles GET /transactions (both sides of the requester's history).
func (h *TransactionController) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "")
}

// ListPurchases handles GET /transactions/purchases.
func (h *TransactionController) ListPurchases(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "purchases")
}

// ListSales handles GET /transactions/sales.
func (h *TransactionController) ListSales(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "sales")
}

func (h *TransactionController) list(w http.ResponseWriter, r *http.Request, side string) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	transactions, err := h.orderService.ListTransactions(r.Context(), userID, side, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		resp = append(resp, FromTransaction(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /transactions/{id}.
func (h *TransactionController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid transaction id", Code: "invalid_id"})
		return
	}

	t, err := h.orderService.GetStatus(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromTransaction(t))
}

// UpdateStatus handles PUT /transactions/{id}/status.
func (h *TransactionController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid transaction id", Code: "invalid_id"})
		return
	}

	var req UpdateStatusRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	t, err := h.orderService.UpdateStatus(r.Context(), userID, id, transaction.Status(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromTransaction(t))
}
