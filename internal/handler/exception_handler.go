package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/harbourbee/harbourbee-backend/internal/model"
	"github.com/harbourbee/harbourbee-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type ExceptionHandler struct {
	svc service.ExceptionService
}

func NewExceptionHandler(svc service.ExceptionService) *ExceptionHandler {
	return &ExceptionHandler{svc: svc}
}

type ExceptionResponse struct {
	ID             uint64 `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	ObjectType     string `json:"objectType"`
	ObjectID       string `json:"objectId,omitempty"`
	Severity       string `json:"severity"`
	SeverityWeight int    `json:"severityWeight"`
	Status         string `json:"status"`
	DetectedAt     string `json:"detectedAt"`
	VesselIMO      string `json:"vesselImo,omitempty"`
	VendorID       string `json:"vendorId,omitempty"`
}

func toExceptionResponse(e model.Exception) ExceptionResponse {
	return ExceptionResponse{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		ObjectType:     e.ObjectType,
		ObjectID:       e.ObjectID,
		Severity:       string(e.Severity),
		SeverityWeight: e.SeverityWeight,
		Status:         string(e.Status),
		DetectedAt:     e.DetectedAt.Format(time.RFC3339),
		VesselIMO:      e.VesselIMO,
		VendorID:       e.VendorID,
	}
}

func (h *ExceptionHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	p := service.ExceptionListParams{
		Severity:   c.QueryParam("severity"),
		Status:     c.QueryParam("status"),
		ObjectType: c.QueryParam("objectType"),
		ObjectID:   c.QueryParam("objectId"),
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
		return mapServiceError(c, err, "failed to fetch exceptions")
	}
	resp := make([]ExceptionResponse, 0, len(page.Items))
	for _, e := range page.Items {
		resp = append(resp, toExceptionResponse(e))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"exceptions": resp,
		"nextCursor": page.NextCursor,
		"hasMore":    page.HasMore,
	})
}

func (h *ExceptionHandler) Defaults(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	d, err := h.svc.Defaults(c.Request().Context(), uid)
	if err != nil {
		return mapServiceError(c, err, "failed to resolve default filters")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *ExceptionHandler) Report(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		ObjectType  string `json:"objectType"`
		ObjectID    string `json:"objectId"`
		Severity    string `json:"severity"`
		VesselIMO   string `json:"vesselImo"`
		VendorID    string `json:"vendorId"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid payload"))
	}
	e := &model.Exception{
		Title:       body.Title,
		Description: body.Description,
		ObjectType:  body.ObjectType,
		ObjectID:    body.ObjectID,
		Severity:    model.ExceptionSeverity(body.Severity),
		DetectedAt:  time.Now(),
		VesselIMO:   body.VesselIMO,
		VendorID:    body.VendorID,
	}
	if err := h.svc.Report(c.Request().Context(), uid, e); err != nil {
		return mapServiceError(c, err, "failed to report exception")
	}
	return c.JSON(http.StatusCreated, toExceptionResponse(*e))
}

func (h *ExceptionHandler) AdvanceStatus(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid exception id"))
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil || body.Status == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "status is required"))
	}
	e, err := h.svc.AdvanceStatus(c.Request().Context(), uid, id, model.ExceptionStatus(body.Status))
	if err != nil {
		return mapServiceError(c, err, "failed to update exception")
	}
	return c.JSON(http.StatusOK, toExceptionResponse(*e))
}
