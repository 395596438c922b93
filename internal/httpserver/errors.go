package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	usersvc "storefront/internal/service/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorBody is the JSON shape of every failed request. Redirect names the
// safe view a client should return to.
type errorBody struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{domain.ErrNotFound, http.StatusNotFound, "not_found", "The requested item could not be found."},
	{domain.ErrOutOfStock, http.StatusConflict, "out_of_stock", "This product is out of stock."},
	{domain.ErrInsufficientStock, http.StatusConflict, "insufficient_stock", "Not enough stock for the requested quantity."},
	{domain.ErrEmptyCart, http.StatusUnprocessableEntity, "empty_cart", "Your cart is empty."},
	{domain.ErrInvalidTransition, http.StatusConflict, "invalid_transition", "The order cannot move to that status."},
	{domain.ErrAlreadyExists, http.StatusConflict, "already_exists", "An account with this email already exists."},
	{usersvc.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password."},
	{usersvc.ErrInvalidToken, http.StatusUnauthorized, "unauthorized", "Your session has expired. Please sign in again."},
}

// writeError recovers err into a user-visible message. Validation errors
// carry their own message; anything unrecognised is a generic 500 and is
// logged.
func (h *handlers) writeError(c *gin.Context, err error, redirect string) {
	if errors.Is(err, domain.ErrValidation) {
		c.JSON(http.StatusBadRequest, errorBody{Error: "validation_error", Message: err.Error(), Redirect: redirect})
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			c.JSON(m.status, errorBody{Error: m.code, Message: m.message, Redirect: redirect})
			return
		}
	}
	h.logger.Error("http: unhandled error",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, errorBody{Error: "internal_error", Message: "Something went wrong. Please try again.", Redirect: redirect})
}

func badRequest(c *gin.Context, msg, redirect string) {
	c.JSON(http.StatusBadRequest, errorBody{Error: "validation_error", Message: msg, Redirect: redirect})
}
