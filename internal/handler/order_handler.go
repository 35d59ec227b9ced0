package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/harbourbee/harbourbee-backend/internal/model"
	"github.com/harbourbee/harbourbee-backend/internal/pricing"
	"github.com/harbourbee/harbourbee-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	svc service.OrderService
}

func NewOrderHandler(svc service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type OrderItemResponse struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type OrderResponse struct {
	ID                     uint64              `json:"id"`
	VesselIMO              string              `json:"vesselImo"`
	Port                   string              `json:"port"`
	PoolID                 *uint64             `json:"poolId,omitempty"`
	Status                 string              `json:"status"`
	Items                  []OrderItemResponse `json:"items"`
	Subtotal               float64             `json:"subtotal"`
	DeliveryFeeProvisional float64             `json:"deliveryFeeProvisional"`
	DeliveryFeeFinal       *float64            `json:"deliveryFeeFinal,omitempty"`
	PaymentStatus          string              `json:"paymentStatus"`
	CreatedAt              string              `json:"createdAt"`
}

func toOrderResponse(o *model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return OrderResponse{
		ID:                     o.ID,
		VesselIMO:              o.VesselIMO,
		Port:                   o.Port,
		PoolID:                 o.PoolID,
		Status:                 string(o.Status),
		Items:                  items,
		Subtotal:               o.Subtotal,
		DeliveryFeeProvisional: pricing.DisplayFee(o.DeliveryFeeProvisional),
		DeliveryFeeFinal:       o.DeliveryFeeFinal,
		PaymentStatus:          string(o.PaymentStatus),
		CreatedAt:              o.CreatedAt.Format(time.RFC3339),
	}
}

func (h *OrderHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body struct {
		Port  string                   `json:"port"`
		Items []service.OrderItemInput `json:"items"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid payload"))
	}
	o, err := h.svc.CreateDraft(c.Request().Context(), uid, body.Port, body.Items)
	if err != nil {
		return mapServiceError(c, err, "failed to create order")
	}
	return c.JSON(http.StatusCreated, toOrderResponse(o))
}

func (h *OrderHandler) Checkout(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	res, err := h.svc.Checkout(c.Request().Context(), uid, id)
	if err != nil {
		return mapServiceError(c, err, "failed to checkout order")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"order": toOrderResponse(res.Order),
		"pool":  toPoolResponse(res.Pool),
		"quote": res.Quote,
	})
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	orders, err := h.svc.ListMine(c.Request().Context(), uid)
	if err != nil {
		return mapServiceError(c, err, "failed to fetch orders")
	}
	resp := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"orders": resp})
}
