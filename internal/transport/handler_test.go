package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"abc-retailers/internal/auth"
	"abc-retailers/internal/cart"
	"abc-retailers/internal/category"
	"abc-retailers/internal/home"
	"abc-retailers/internal/metrics"
	"abc-retailers/internal/middleware"
	"abc-retailers/internal/order"
	"abc-retailers/internal/product"
	"abc-retailers/internal/user"
	"abc-retailers/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	customer = identity{userID: uuid.New(), role: utils.RoleCustomer, session: "sess-1"}
	admin    = identity{userID: uuid.New(), role: utils.RoleAdmin, session: "sess-2"}
	guest    = identity{session: "sess-3"}
)

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponse {
	t.Helper()
	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{product.ErrProductNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: only 1 left", cart.ErrInsufficientStock), http.StatusConflict},
		{order.ErrOrderFinalized, http.StatusConflict},
		{order.ErrForbidden, http.StatusForbidden},
		{order.ErrInvalidStatus, http.StatusBadRequest},
		{user.ErrInvalidCredentials, http.StatusUnauthorized},
		{user.ErrEmailExists, http.StatusConflict},
		{product.ErrNoUploader, http.StatusServiceUnavailable},
		{errors.New("boom"), 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestRespondError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	t.Run("CartChanged", func(t *testing.T) {
		w := httptest.NewRecorder()
		respondError(w, req, &order.CartChangedError{Warnings: []string{"removed"}}, "x")

		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, []interface{}{"removed"}, resp.Error.Details["warnings"])
	})

	t.Run("Unknown error is hidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		respondError(w, req, errors.New("pq: connection refused"), "failed to do thing")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "failed to do thing", decodeError(t, w).Error.Message)
	})
}

func TestContextHelpers(t *testing.T) {
	_, ok := viewerFrom(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "", sessionFrom(context.Background()))

	id := uuid.New()
	ctx := utils.SetUserContext(context.Background(), id, "a@b.c", utils.RoleAdmin)
	ctx = utils.SetSessionID(ctx, "sid")

	v, ok := viewerFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, order.Viewer{UserID: id, Admin: true}, v)
	assert.Equal(t, "sid", sessionFrom(ctx))
}

func TestProductHandler(t *testing.T) {
	t.Run("List active by category", func(t *testing.T) {
		svc := new(MockProductService)
		svc.On("ListActive", mock.Anything, mock.MatchedBy(func(c *string) bool {
			return c != nil && *c == "mugs"
		})).Return([]*product.Product{{ID: "p1", Name: "Mug"}}, nil)

		w := doJSON(t, newRouter(guest, NewProductHandler(svc)), http.MethodGet, "/api/products?category=mugs", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"Mug"`)
	})

	t.Run("Get not found", func(t *testing.T) {
		svc := new(MockProductService)
		svc.On("Get", mock.Anything, "missing").Return(nil, product.ErrProductNotFound)

		w := doJSON(t, newRouter(guest, NewProductHandler(svc)), http.MethodGet, "/api/products/missing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Create requires admin", func(t *testing.T) {
		svc := new(MockProductService)

		w := doJSON(t, newRouter(customer, NewProductHandler(svc)), http.MethodPost, "/api/products",
			map[string]interface{}{"name": "Mug", "price": "5.00", "stock": 1})
		assert.Equal(t, http.StatusForbidden, w.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Create as admin", func(t *testing.T) {
		svc := new(MockProductService)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(in product.Input) bool {
			return in.Name == "Mug" && in.Price.Equal(decimal.RequireFromString("5"))
		})).Return(&product.Product{ID: "p1", Name: "Mug"}, nil)

		w := doJSON(t, newRouter(admin, NewProductHandler(svc)), http.MethodPost, "/api/products",
			map[string]interface{}{"name": "Mug", "price": "5.00", "stock": 1})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Create validation", func(t *testing.T) {
		svc := new(MockProductService)

		w := doJSON(t, newRouter(admin, NewProductHandler(svc)), http.MethodPost, "/api/products",
			map[string]interface{}{"price": "5.00", "stock": -1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NotNil(t, decodeError(t, w).Error.Details["validation_errors"])
	})

	t.Run("Upload image", func(t *testing.T) {
		svc := new(MockProductService)
		url := "https://cdn/mug.png"
		svc.On("AttachImage", mock.Anything, "p1", "mug.png", mock.Anything).
			Return(&product.Product{ID: "p1", ImageURL: &url}, nil)

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("image", "mug.png")
		require.NoError(t, err)
		_, _ = fw.Write([]byte("png-bytes"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/products/p1/image", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		newRouter(admin, NewProductHandler(svc)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), url)
	})
}

type stubLookup map[string]*product.Product

func (s stubLookup) FindActive(_ context.Context, id string) (*product.Product, error) {
	return s[id], nil
}

func TestCategoryHandler(t *testing.T) {
	t.Run("List with query", func(t *testing.T) {
		svc := new(MockCategoryService)
		svc.On("List", mock.Anything, mock.MatchedBy(func(f *string) bool {
			return f != nil && *f == "cloth"
		})).Return([]*category.Category{{Name: "Clothing", ProductCount: 4}}, nil)

		w := doJSON(t, newRouter(guest, NewCategoryHandler(svc)), http.MethodGet, "/api/categories?q=cloth", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var got []category.Category
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Clothing", got[0].Name)
		assert.EqualValues(t, 4, got[0].ProductCount)
		svc.AssertExpectations(t)
	})

	t.Run("Error", func(t *testing.T) {
		svc := new(MockCategoryService)
		svc.On("List", mock.Anything, (*string)(nil)).Return(nil, errors.New("db down"))

		w := doJSON(t, newRouter(guest, NewCategoryHandler(svc)), http.MethodGet, "/api/categories", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "failed to list categories", decodeError(t, w).Error.Message)
	})
}

func TestHomeHandler(t *testing.T) {
	t.Run("Feed", func(t *testing.T) {
		svc := new(MockHomeService)
		svc.On("Feed", mock.Anything).Return(&home.Feed{
			FeaturedProducts: []*product.Product{{ID: "p1", Name: "Kettle"}},
			Stats:            home.Stats{ProductCount: 3, CustomerCount: 2, OrderCount: 1},
		}, nil)

		w := doJSON(t, newRouter(guest, NewHomeHandler(svc)), http.MethodGet, "/api/home", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.EqualValues(t, 3, body["productCount"])
		assert.EqualValues(t, 2, body["customerCount"])
		assert.Len(t, body["featuredProducts"], 1)
	})

	t.Run("Error", func(t *testing.T) {
		svc := new(MockHomeService)
		svc.On("Feed", mock.Anything).Return(nil, errors.New("db down"))

		w := doJSON(t, newRouter(guest, NewHomeHandler(svc)), http.MethodGet, "/api/home", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "failed to load home page", decodeError(t, w).Error.Message)
	})
}

func TestCartHandler(t *testing.T) {
	lookup := stubLookup{
		"p1": {ID: "p1", Name: "Mug", Price: decimal.RequireFromString("25.00"), Stock: 3, IsActive: true},
	}
	carts := cart.NewService(cart.NewMemoryStore(time.Hour), lookup, metrics.NewRegistry())
	router := newRouter(guest, NewCartHandler(carts))

	w := doJSON(t, router, http.MethodPost, "/api/cart/items", map[string]interface{}{"productId": "p1", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/cart/count", nil)
	assert.JSONEq(t, `{"count":2}`, w.Body.String())

	t.Run("Over stock", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/cart/items", map[string]interface{}{"productId": "p1", "quantity": 2})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, decodeError(t, w).Error.Message, "only 3 of 'Mug' available")
	})

	t.Run("Unknown product", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/cart/items", map[string]interface{}{"productId": "nope", "quantity": 1})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Summary shows warnings after price change", func(t *testing.T) {
		lookup["p1"].Price = decimal.RequireFromString("30.00")

		w := doJSON(t, router, http.MethodGet, "/api/cart", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var summary cart.Summary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
		require.Len(t, summary.Warnings, 1)
		assert.Contains(t, summary.Warnings[0], "has changed to $30.00")
		assert.True(t, summary.Subtotal.Equal(decimal.RequireFromString("60")))
	})

	t.Run("Update to zero removes", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/api/cart/items/p1", map[string]interface{}{"quantity": 0})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"totalItems":0`)
	})

	t.Run("Clear", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, "/api/cart", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestCheckoutHandler(t *testing.T) {
	details := map[string]interface{}{
		"customerName":    "Jane",
		"customerEmail":   "jane@example.com",
		"shippingAddress": "1 Main Rd",
	}

	t.Run("Requires login", func(t *testing.T) {
		h := NewCheckoutHandler(nil, new(MockOrderService))
		w := doJSON(t, newRouter(guest, h), http.MethodPost, "/api/checkout", details)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Success", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("Checkout", mock.Anything, customer.session, customer.userID, mock.Anything).
			Return(&order.Order{OrderNumber: "ORD-20260305-0001"}, nil)

		w := doJSON(t, newRouter(customer, NewCheckoutHandler(nil, orders)), http.MethodPost, "/api/checkout", details)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "ORD-20260305-0001")
	})

	t.Run("Cart changed", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("Checkout", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &order.CartChangedError{Warnings: []string{"price changed"}})

		w := doJSON(t, newRouter(customer, NewCheckoutHandler(nil, orders)), http.MethodPost, "/api/checkout", details)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Invalid details", func(t *testing.T) {
		orders := new(MockOrderService)
		w := doJSON(t, newRouter(customer, NewCheckoutHandler(nil, orders)), http.MethodPost, "/api/checkout",
			map[string]interface{}{"customerName": "Jane"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		orders.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Review empty cart", func(t *testing.T) {
		carts := cart.NewService(cart.NewMemoryStore(time.Hour), stubLookup{}, nil)
		w := doJSON(t, newRouter(customer, NewCheckoutHandler(carts, nil)), http.MethodGet, "/api/checkout", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler(t *testing.T) {
	id := uuid.New()

	t.Run("List uses viewer", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("List", mock.Anything, order.Viewer{UserID: customer.userID}).Return([]*order.Order{}, nil)

		w := doJSON(t, newRouter(customer, NewOrderHandler(orders)), http.MethodGet, "/api/orders", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		orders.AssertExpectations(t)
	})

	t.Run("Bad id", func(t *testing.T) {
		w := doJSON(t, newRouter(customer, NewOrderHandler(new(MockOrderService))), http.MethodGet, "/api/orders/not-a-uuid", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Forbidden detail", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("Detail", mock.Anything, id, mock.Anything).Return(nil, order.ErrForbidden)

		w := doJSON(t, newRouter(customer, NewOrderHandler(orders)), http.MethodGet, "/api/orders/"+id.String(), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Cancel finalized", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("Cancel", mock.Anything, id, mock.Anything).Return(nil, order.ErrOrderFinalized)

		w := doJSON(t, newRouter(customer, NewOrderHandler(orders)), http.MethodPost, "/api/orders/"+id.String()+"/cancel", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Status update admin only", func(t *testing.T) {
		orders := new(MockOrderService)
		w := doJSON(t, newRouter(customer, NewOrderHandler(orders)), http.MethodPost,
			"/api/orders/"+id.String()+"/status", map[string]string{"status": "Shipped"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Status update", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("UpdateStatus", mock.Anything, id, "Shipped").
			Return(&order.Order{ID: id, Status: order.StatusShipped}, nil)

		w := doJSON(t, newRouter(admin, NewOrderHandler(orders)), http.MethodPost,
			"/api/orders/"+id.String()+"/status", map[string]string{"status": "Shipped"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"Shipped"`)
	})

	t.Run("Edit invalid status", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("Edit", mock.Anything, id, order.EditInput{Status: "Lost"}).Return(nil, order.ErrInvalidStatus)

		w := doJSON(t, newRouter(admin, NewOrderHandler(orders)), http.MethodPut,
			"/api/orders/"+id.String(), map[string]string{"status": "Lost"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler(t *testing.T) {
	t.Run("Login sets cookie", func(t *testing.T) {
		users := new(MockUserService)
		u := &user.User{ID: uuid.New(), Email: "john@example.com"}
		users.On("Login", mock.Anything, "john@example.com", "password123").Return("tok", u, nil)

		w := doJSON(t, newRouter(guest, NewUserHandler(users, false)), http.MethodPost, "/api/auth/login",
			map[string]string{"email": "john@example.com", "password": "password123"})
		require.Equal(t, http.StatusOK, w.Code)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, auth.AccessTokenCookie, cookies[0].Name)
		assert.Equal(t, "tok", cookies[0].Value)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("Login invalid", func(t *testing.T) {
		users := new(MockUserService)
		users.On("Login", mock.Anything, mock.Anything, mock.Anything).Return("", nil, user.ErrInvalidCredentials)

		w := doJSON(t, newRouter(guest, NewUserHandler(users, false)), http.MethodPost, "/api/auth/login",
			map[string]string{"email": "john@example.com", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Register conflict", func(t *testing.T) {
		users := new(MockUserService)
		users.On("Register", mock.Anything, mock.Anything).Return("", nil, user.ErrUsernameExists)

		w := doJSON(t, newRouter(guest, NewUserHandler(users, false)), http.MethodPost, "/api/auth/register",
			map[string]string{
				"username": "jdoe", "email": "john@example.com", "password": "password123",
				"firstName": "John", "lastName": "Doe",
			})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Profile requires login", func(t *testing.T) {
		w := doJSON(t, newRouter(guest, NewUserHandler(new(MockUserService), false)), http.MethodGet, "/api/account/profile", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Profile", func(t *testing.T) {
		users := new(MockUserService)
		users.On("GetProfile", mock.Anything, customer.userID).Return(&user.User{ID: customer.userID, FirstName: "Jane"}, nil)

		w := doJSON(t, newRouter(customer, NewUserHandler(users, false)), http.MethodGet, "/api/account/profile", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"firstName":"Jane"`)
	})

	t.Run("Logout clears cookie", func(t *testing.T) {
		w := doJSON(t, newRouter(guest, NewUserHandler(new(MockUserService), false)), http.MethodPost, "/api/auth/logout", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.True(t, strings.Contains(w.Header().Get("Set-Cookie"), "Max-Age=0"))
	})
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	reg := metrics.NewRegistry()
	reg.Inc(metrics.OrdersCreated)

	t.Run("Healthy", func(t *testing.T) {
		w := doJSON(t, newRouter(guest, NewHealthHandler(stubPinger{}, reg)), http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("DB down", func(t *testing.T) {
		w := doJSON(t, newRouter(guest, NewHealthHandler(stubPinger{err: errors.New("down")}, reg)), http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("Metrics", func(t *testing.T) {
		w := doJSON(t, newRouter(guest, NewHealthHandler(nil, reg)), http.MethodGet, "/metrics", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var snap metrics.Snapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
		assert.Equal(t, uint64(1), snap.Counters[metrics.OrdersCreated])
	})
}
