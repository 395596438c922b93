package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productItem(qty int) *domain.CartItem {
	stock := 4
	return &domain.CartItem{
		ID:        "ci-1",
		Item:      domain.ProductRef("p-1"),
		Quantity:  qty,
		Name:      "Soil sensor",
		UnitPrice: decimal.RequireFromString("7.5"),
		Stock:     &stock,
		Active:    true,
	}
}

func TestAddCartItem(t *testing.T) {
	deps := newTestDeps()
	deps.carts.addResult = &cartsvc.AddResult{Item: productItem(1), Created: true}
	router := deps.router(t)

	rec := authed(router, http.MethodPost, "/cart/items", `{"itemType":"product","itemId":"p-1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, testUser.ID, deps.carts.lastUser)
	assert.Equal(t, domain.ItemTypeProduct, deps.carts.lastType)
	assert.Equal(t, "p-1", deps.carts.lastID)

	var body addItemView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Created)
	assert.Equal(t, "Added to cart.", body.Message)
	assert.Equal(t, "7.50", body.Item.UnitPrice)
	assert.Equal(t, "product", body.Item.ItemType)
}

func TestAddCartItemAlreadyPresent(t *testing.T) {
	deps := newTestDeps()
	deps.carts.addResult = &cartsvc.AddResult{Item: productItem(2), Created: false}
	router := deps.router(t)

	rec := authed(router, http.MethodPost, "/cart/items", `{"itemType":"product","itemId":"p-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var body addItemView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Created)
	assert.Equal(t, "Already in cart.", body.Message)
}

func TestIncrementProductMessage(t *testing.T) {
	deps := newTestDeps()
	deps.carts.addResult = &cartsvc.AddResult{Item: productItem(3), Created: false}
	router := deps.router(t)

	rec := authed(router, http.MethodPost, "/cart/products/p-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body addItemView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Cart quantity updated.", body.Message)
	assert.Equal(t, 3, body.Item.Quantity)
}

func TestAddCartItemErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		status   int
		redirect string
	}{
		{"out of stock", `{"itemType":"product","itemId":"p-1"}`, domain.ErrOutOfStock, http.StatusConflict, "/products"},
		{"unknown course", `{"itemType":"course","itemId":"c-1"}`, domain.ErrNotFound, http.StatusNotFound, "/courses"},
		{"bad item type", `{"itemType":"ebook","itemId":"x"}`, nil, http.StatusBadRequest, "/cart"},
		{"malformed body", `{`, nil, http.StatusBadRequest, "/cart"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deps := newTestDeps()
			deps.carts.err = tc.err
			router := deps.router(t)

			rec := authed(router, http.MethodPost, "/cart/items", tc.body)
			require.Equal(t, tc.status, rec.Code)
			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.redirect, body.Redirect)
		})
	}
}

func TestSetCartItemQuantity(t *testing.T) {
	deps := newTestDeps()
	deps.carts.setItem = productItem(3)
	router := deps.router(t)

	rec := authed(router, http.MethodPut, "/cart/items/ci-1", `{"quantity":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, deps.carts.lastQty)
	assert.Equal(t, "ci-1", deps.carts.lastID)

	rec = authed(router, http.MethodPut, "/cart/items/ci-1", `{"quantity":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = authed(router, http.MethodPut, "/cart/items/ci-1", `{"quantity":1.5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetCartItemQuantityZeroRemoves(t *testing.T) {
	deps := newTestDeps()
	router := deps.router(t)

	rec := authed(router, http.MethodPut, "/cart/items/ci-1", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Removed bool `json:"removed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Removed)
	assert.Equal(t, 0, deps.carts.lastQty)
}

func TestSetCartItemQuantityInsufficientStock(t *testing.T) {
	deps := newTestDeps()
	deps.carts.err = domain.ErrInsufficientStock
	router := deps.router(t)

	rec := authed(router, http.MethodPut, "/cart/items/ci-1", `{"quantity":9}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestViewCart(t *testing.T) {
	deps := newTestDeps()
	deps.carts.cart = &domain.Cart{
		ID:     "cart-1",
		UserID: testUser.ID,
		Items: []domain.CartItem{
			*productItem(2),
			{ID: "ci-2", Item: domain.CourseRef("c-1"), Quantity: 1, Name: "IoT", UnitPrice: decimal.RequireFromString("10"), Active: true},
		},
	}
	router := deps.router(t)

	rec := authed(router, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body cartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Exists)
	assert.Equal(t, 3, body.TotalItems)
	assert.Equal(t, "25.00", body.TotalPrice)
	require.Len(t, body.Items, 2)
	assert.Equal(t, "15.00", body.Items[0].TotalPrice)

	rec = authed(router, http.MethodGet, "/cart/count", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":3}`, rec.Body.String())
}

func TestViewEmptyCart(t *testing.T) {
	deps := newTestDeps()
	deps.carts.cart = &domain.Cart{UserID: testUser.ID, Items: []domain.CartItem{}}
	router := deps.router(t)

	rec := authed(router, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"exists":false,"items":[],"totalItems":0,"totalPrice":"0.00"}`, rec.Body.String())
}

func TestRemoveCartItem(t *testing.T) {
	deps := newTestDeps()
	router := deps.router(t)

	rec := authed(router, http.MethodDelete, "/cart/items/ci-1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "ci-1", deps.carts.lastID)

	deps.carts.err = domain.ErrNotFound
	rec = authed(router, http.MethodDelete, "/cart/items/ci-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
