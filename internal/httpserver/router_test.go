package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHealthz(t *testing.T) {
	router := newTestDeps().router(t)

	rec := do(router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBuildRouterRequiresServices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, err := buildRouter(zap.NewNop(), nil, Deps{})
	assert.Error(t, err)
}

func TestAuthRequired(t *testing.T) {
	router := newTestDeps().router(t)

	for _, path := range []string{"/cart", "/orders", "/me"} {
		rec := do(router, http.MethodGet, path, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
		var body errorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "unauthorized", body.Error)
		assert.Equal(t, "/login", body.Redirect)
	}

	rec := do(router, http.MethodGet, "/cart", "", "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesNeedToken(t *testing.T) {
	deps := newTestDeps()
	router := deps.router(t)

	rec := do(router, http.MethodGet, "/admin/orders", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(router, http.MethodGet, "/admin/orders", "", "Authorization", "Bearer "+testToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(router, http.MethodGet, "/admin/orders?status=paid", "", adminTokenHeader, "admin-secret")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "paid", deps.orders.lastStatus)
}

func TestAdminDisabledWithoutToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps := newTestDeps()
	router, err := buildRouter(zap.NewNop(), nil, Deps{
		Catalog:  deps.catalog,
		Users:    deps.users,
		Carts:    deps.carts,
		Checkout: deps.checkout,
		Orders:   deps.orders,
	})
	require.NoError(t, err)

	rec := do(router, http.MethodGet, "/admin/orders", "", adminTokenHeader, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken("abc"))
}
