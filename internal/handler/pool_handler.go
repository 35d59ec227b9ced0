package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/harbourbee/harbourbee-backend/internal/model"
	"github.com/harbourbee/harbourbee-backend/internal/pricing"
	"github.com/harbourbee/harbourbee-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type PoolHandler struct {
	svc service.PoolService
}

func NewPoolHandler(svc service.PoolService) *PoolHandler {
	return &PoolHandler{svc: svc}
}

type PoolResponse struct {
	ID         uint64  `json:"id"`
	Port       string  `json:"port"`
	Status     string  `json:"status"`
	OrderCount int     `json:"orderCount"`
	TargetDate string  `json:"targetDate"`
	TotalValue float64 `json:"totalValue"`
	DeliveryID string  `json:"deliveryId,omitempty"`
}

func toPoolResponse(p *model.Pool) PoolResponse {
	return PoolResponse{
		ID:         p.ID,
		Port:       p.Port,
		Status:     string(p.Status),
		OrderCount: p.OrderCount,
		TargetDate: p.TargetDate.Format(time.RFC3339),
		TotalValue: p.TotalValue,
		DeliveryID: p.DeliveryID,
	}
}

type PoolProgressResponse struct {
	Pool  PoolResponse     `json:"pool"`
	Quote pricing.FeeQuote `json:"quote"`
}

func (h *PoolHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	status := model.PoolStatus(c.QueryParam("status"))
	pools, err := h.svc.List(c.Request().Context(), uid, status)
	if err != nil {
		return mapServiceError(c, err, "failed to fetch pools")
	}
	resp := make([]PoolResponse, 0, len(pools))
	for i := range pools {
		resp = append(resp, toPoolResponse(&pools[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"pools": resp})
}

func (h *PoolHandler) Progress(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid pool id"))
	}
	pool, quote, err := h.svc.Progress(c.Request().Context(), uid, id)
	if err != nil {
		return mapServiceError(c, err, "failed to fetch pool progress")
	}
	return c.JSON(http.StatusOK, PoolProgressResponse{Pool: toPoolResponse(pool), Quote: quote})
}

func (h *PoolHandler) Close(c echo.Context) error {
	return h.mutate(c, h.svc.Close)
}

func (h *PoolHandler) Dispatch(c echo.Context) error {
	return h.mutate(c, h.svc.Dispatch)
}

func (h *PoolHandler) Deliver(c echo.Context) error {
	return h.mutate(c, h.svc.Deliver)
}

func (h *PoolHandler) Cancel(c echo.Context) error {
	return h.mutate(c, h.svc.Cancel)
}

func (h *PoolHandler) mutate(c echo.Context, op func(ctx context.Context, uid string, poolID uint64) (*model.Pool, error)) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid pool id"))
	}
	pool, err := op(c.Request().Context(), uid, id)
	if err != nil {
		return mapServiceError(c, err, "failed to update pool")
	}
	return c.JSON(http.StatusOK, toPoolResponse(pool))
}
