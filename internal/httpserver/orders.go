package httpserver

import (
	"net/http"

	ordersvc "storefront/internal/service/order"

	"github.com/gin-gonic/gin"
)

type updateOrderRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

// checkout returns the new order and where to find its payment details.
func (h *handlers) checkout(c *gin.Context) {
	o, err := h.Checkout.Checkout(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, err, "/cart")
		return
	}
	payment := "/orders/" + o.ID + "/payment"
	c.Header("Location", payment)
	c.JSON(http.StatusCreated, gin.H{
		"order":    toOrderView(*o),
		"redirect": payment,
	})
}

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.Orders.ListForUser(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, err, "/")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": mapSlice(orders, toOrderView)})
}

func (h *handlers) getOrder(c *gin.Context) {
	o, err := h.Orders.GetForUser(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "/orders")
		return
	}
	c.JSON(http.StatusOK, toOrderView(*o))
}

func (h *handlers) paymentInstructions(c *gin.Context) {
	p, err := h.Orders.PaymentInstructions(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "/orders")
		return
	}
	c.JSON(http.StatusOK, toPaymentView(*p))
}

func (h *handlers) adminListOrders(c *gin.Context) {
	orders, err := h.Orders.ListAll(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.writeError(c, err, "/admin/orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": mapSlice(orders, toOrderView)})
}

func (h *handlers) adminUpdateOrder(c *gin.Context) {
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", "/admin/orders")
		return
	}
	o, err := h.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), ordersvc.UpdateStatusInput{
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		h.writeError(c, err, "/admin/orders")
		return
	}
	c.JSON(http.StatusOK, toOrderView(*o))
}
