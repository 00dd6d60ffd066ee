package controller

import (
	"net/http"

	"github.com/campuskart/marketplace/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// NotificationController exposes the recipient-scoped notification surface.
type NotificationController struct {
	notificationService *service.NotificationService
}

// NewNotificationController creates a new NotificationController.
func NewNotificationController(notificationService *service.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// List handles GET /notifications.
func (h *NotificationController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	notifications, err := h.notificationService.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp = append(resp, FromNotification(n))
	}
	writeJSON(w, http.StatusOK, resp)
}

// MarkRead handles POST /notifications/{id}/read.
func (h *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid notification id", Code: "invalid_id"})
		return
	}

	n, err := h.notificationService.MarkRead(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromNotification(n))
}

// MarkAllRead handles POST /notifications/read-all.
func (h *NotificationController) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllRead(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DeleteAll handles DELETE /notifications.
func (h *NotificationController) DeleteAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.notificationService.DeleteAll(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
