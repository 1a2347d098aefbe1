package handlers

import (
	"net/http"

	"table-order-api/middleware"
	"table-order-api/models"
	"table-order-api/ordering"
	"table-order-api/repository"
	"table-order-api/statemachine"

	"github.com/gin-gonic/gin"
)

type ComponentRequest struct {
	ProductID string   `json:"productId" binding:"required"`
	Quantity  int      `json:"quantity" binding:"required,min=1"`
	Toppings  []string `json:"toppings"`
}

type OrderItemRequest struct {
	ProductID  string             `json:"productId" binding:"required"`
	Quantity   int                `json:"quantity" binding:"required,min=1"`
	Toppings   []string           `json:"toppings"`
	Components []ComponentRequest `json:"components" binding:"dive"`
}

type CreateOrderRequest struct {
	SessionToken   string             `json:"sessionToken" binding:"required"`
	IdempotencyKey string             `json:"idempotencyKey" binding:"required,max=128"`
	Items          []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (r CreateOrderRequest) input() ordering.CreateOrderInput {
	in := ordering.CreateOrderInput{
		SessionToken:   r.SessionToken,
		IdempotencyKey: r.IdempotencyKey,
		Items:          make([]ordering.ItemRequest, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		req := ordering.ItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Toppings:  item.Toppings,
		}
		for _, comp := range item.Components {
			req.Components = append(req.Components, ordering.ComponentRequest{
				ProductID: comp.ProductID,
				Quantity:  comp.Quantity,
				Toppings:  comp.Toppings,
			})
		}
		in.Items = append(in.Items, req)
	}
	return in
}

// CreateOrder places a table order. A replayed idempotency key answers 200
// with the original order instead of 201.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": ordering.CodeInvalidRequest})
		return
	}

	res, err := h.Orders.CreateOrder(c.Request.Context(), req.input())
	if err != nil {
		if code := ordering.CodeOf(err); code != "" {
			c.JSON(statusFor(code), gin.H{"error": err.Error(), "code": code})
			return
		}
		h.internalError(c, "Failed to create order", err)
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, res.Order)
}

// ListOrders returns orders newest first, optionally filtered by status and table
func (h *Handler) ListOrders(c *gin.Context) {
	filter := repository.OrderFilter{TableNo: c.Query("tableNo")}
	if status := models.OrderStatus(c.Query("status")); statemachine.IsKnown(status) {
		filter.Status = status
	}

	orders, err := h.OrderStore.List(c.Request.Context(), filter)
	if err != nil {
		h.internalError(c, "Failed to fetch orders", err)
		return
	}

	summary := map[models.OrderStatus]int{}
	for _, o := range orders {
		summary[o.Status]++
	}
	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"count":         len(orders),
		"orders":        orders,
	})
}

// GetOrder returns one order with its items and status history
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.OrderStore.FindByID(c.Request.Context(), c.Param("id"))
	if isNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		h.internalError(c, "Failed to fetch order", err)
		return
	}
	history, err := h.OrderStore.History(c.Request.Context(), order.ID)
	if err != nil {
		h.internalError(c, "Failed to fetch order", err)
		return
	}
	order.StatusHistory = history
	c.JSON(http.StatusOK, order)
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// UpdateOrderStatus moves an order along the payment/serving state machine
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !statemachine.IsKnown(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	ctx := c.Request.Context()
	order, err := h.OrderStore.FindByID(ctx, c.Param("id"))
	if isNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		h.internalError(c, "Failed to update order status", err)
		return
	}

	if err := statemachine.CanTransition(order.Status, req.Status, middleware.GetRole(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Invalid state transition",
			"current_status":    order.Status,
			"requested":         req.Status,
			"reason":            err.Error(),
			"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
		})
		return
	}

	prevStatus := order.Status
	if err := h.OrderStore.UpdateStatus(ctx, order, req.Status, middleware.GetUserID(c), req.Note, h.Clock().UTC()); err != nil {
		h.internalError(c, "Failed to update order status", err)
		return
	}
	updated, err := h.OrderStore.FindByID(ctx, order.ID)
	if err != nil {
		h.internalError(c, "Failed to update order status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status updated",
		"previous_status": prevStatus,
		"current_status":  updated.Status,
		"order":           updated,
	})
}

// GetStateMachineInfo lists every allowed status transition
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state_machine": statemachine.GetAllTransitions(),
		"statuses":      []models.OrderStatus{models.StatusUnpaid, models.StatusPaid, models.StatusServed},
		"description":   "Table order payment and serving lifecycle",
	})
}
