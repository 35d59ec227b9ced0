package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/harbourbee/harbourbee-backend/internal/model"
	"github.com/harbourbee/harbourbee-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type NotificationResponse struct {
	ID             uint64 `json:"id"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	ObjectType     string `json:"objectType"`
	ObjectID       string `json:"objectId,omitempty"`
	Priority       string `json:"priority"`
	PriorityWeight int    `json:"priorityWeight"`
	IsRead         bool   `json:"isRead"`
	VesselIMO      string `json:"vesselImo,omitempty"`
	VendorID       string `json:"vendorId,omitempty"`
	CreatedAt      string `json:"createdAt"`
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:             n.ID,
		Title:          n.Title,
		Message:        n.Message,
		ObjectType:     n.ObjectType,
		ObjectID:       n.ObjectID,
		Priority:       string(n.Priority),
		PriorityWeight: n.PriorityWeight,
		IsRead:         n.IsRead,
		VesselIMO:      n.VesselIMO,
		VendorID:       n.VendorID,
		CreatedAt:      n.CreatedAt.Format(time.RFC3339),
	}
}

func (h *NotificationHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	p := service.ListParams{
		Priority:   c.QueryParam("priority"),
		ObjectType: c.QueryParam("objectType"),
		ObjectID:   c.QueryParam("objectId"),
		ReadStatus: c.QueryParam("readStatus"),
		VesselIMO:  c.QueryParam("vesselIMO"),
		VendorID:   c.QueryParam("vendorId"),
		Cursor:     c.QueryParam("cursor"),
	}
	if lStr := c.QueryParam("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil && l > 0 {
			p.Limit = l
		}
	}
	page, err := h.svc.List(c.Request().Context(), uid, p)
	if err != nil {
		return mapServiceError(c, err, "failed to fetch notifications")
	}
	resp := make([]NotificationResponse, 0, len(page.Items))
	for _, n := range page.Items {
		resp = append(resp, toNotificationResponse(n))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": resp,
		"nextCursor":    page.NextCursor,
		"hasMore":       page.HasMore,
	})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid notification id"))
	}
	if err := h.svc.MarkRead(c.Request().Context(), uid, id); err != nil {
		return mapServiceError(c, err, "failed to mark notification read")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// mapServiceError translates service sentinels into the shared error
// envelope. Anything unrecognized is a 500 with the fallback message.
func mapServiceError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "not authenticated"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "not found"))
	case errors.Is(err, service.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, NewErrorResponse("invalid_transition", "status transition not allowed"))
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", fallback))
}
