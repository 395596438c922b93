package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	ItemType string `json:"itemType"`
	ItemID   string `json:"itemId"`
}

type quantityRequest struct {
	Quantity json.Number `json:"quantity"`
}

func (h *handlers) viewCart(c *gin.Context) {
	cart, err := h.Carts.View(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, err, "/")
		return
	}
	c.JSON(http.StatusOK, toCartView(*cart))
}

func (h *handlers) cartCount(c *gin.Context) {
	n, err := h.Carts.Count(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, err, "/")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", "/cart")
		return
	}
	itemType, err := domain.ParseItemType(req.ItemType)
	if err != nil {
		h.writeError(c, err, "/cart")
		return
	}
	res, err := h.Carts.AddItem(c.Request.Context(), userID(c), itemType, req.ItemID)
	if err != nil {
		h.writeError(c, err, catalogPath(itemType))
		return
	}
	writeAddResult(c, res, "Already in cart.")
}

func (h *handlers) incrementProduct(c *gin.Context) {
	res, err := h.Carts.IncrementOrAddProduct(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "/products")
		return
	}
	writeAddResult(c, res, "Cart quantity updated.")
}

func (h *handlers) setCartItemQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quantity must be a whole number", "/cart")
		return
	}
	quantity, err := strconv.Atoi(req.Quantity.String())
	if err != nil {
		badRequest(c, "quantity must be a whole number", "/cart")
		return
	}
	item, err := h.Carts.SetQuantity(c.Request.Context(), userID(c), c.Param("itemId"), quantity)
	if err != nil {
		h.writeError(c, err, "/cart")
		return
	}
	if item == nil {
		c.JSON(http.StatusOK, gin.H{"removed": true, "message": "Item removed from cart."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": false, "item": toCartItemView(*item)})
}

func (h *handlers) removeCartItem(c *gin.Context) {
	if err := h.Carts.RemoveItem(c.Request.Context(), userID(c), c.Param("itemId")); err != nil {
		h.writeError(c, err, "/cart")
		return
	}
	c.Status(http.StatusNoContent)
}

func writeAddResult(c *gin.Context, res *cartsvc.AddResult, existingMsg string) {
	status := http.StatusCreated
	msg := "Added to cart."
	if !res.Created {
		status = http.StatusOK
		msg = existingMsg
	}
	c.JSON(status, addItemView{Item: toCartItemView(*res.Item), Created: res.Created, Message: msg})
}

func catalogPath(t domain.ItemType) string {
	if t == domain.ItemTypeCourse {
		return "/courses"
	}
	return "/products"
}
