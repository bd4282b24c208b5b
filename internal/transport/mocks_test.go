package transport

import (
	"context"
	"io"
	"net/http"

	"abc-retailers/internal/category"
	"abc-retailers/internal/home"
	"abc-retailers/internal/order"
	"abc-retailers/internal/product"
	"abc-retailers/internal/user"
	"abc-retailers/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) List(ctx context.Context, filter *string) ([]*category.Category, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*category.Category), args.Error(1)
}

type MockHomeService struct {
	mock.Mock
}

func (m *MockHomeService) Feed(ctx context.Context) (*home.Feed, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*home.Feed), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) ListActive(ctx context.Context, category *string) ([]*product.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductService) ListAll(ctx context.Context) ([]*product.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductService) Latest(ctx context.Context, n int) ([]*product.Product, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id string) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) FindActive(ctx context.Context, id string) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, input product.Input) (*product.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id string, input product.Input) (*product.Product, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) AttachImage(ctx context.Context, id, filename string, r io.Reader) (*product.Product, error) {
	args := m.Called(ctx, id, filename, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) result(args mock.Arguments) (*order.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Checkout(ctx context.Context, sessionID string, userID uuid.UUID, details order.CustomerDetails) (*order.Order, error) {
	return m.result(m.Called(ctx, sessionID, userID, details))
}

func (m *MockOrderService) CreateManualOrder(ctx context.Context, input order.ManualOrderInput) (*order.Order, error) {
	return m.result(m.Called(ctx, input))
}

func (m *MockOrderService) List(ctx context.Context, viewer order.Viewer) ([]*order.Order, error) {
	args := m.Called(ctx, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) Detail(ctx context.Context, id uuid.UUID, viewer order.Viewer) (*order.Order, error) {
	return m.result(m.Called(ctx, id, viewer))
}

func (m *MockOrderService) Edit(ctx context.Context, id uuid.UUID, input order.EditInput) (*order.Order, error) {
	return m.result(m.Called(ctx, id, input))
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*order.Order, error) {
	return m.result(m.Called(ctx, id, status))
}

func (m *MockOrderService) Cancel(ctx context.Context, id uuid.UUID, viewer order.Viewer) (*order.Order, error) {
	return m.result(m.Called(ctx, id, viewer))
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, input user.RegisterInput) (string, *user.User, error) {
	args := m.Called(ctx, input)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*user.User), args.Error(2)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*user.User), args.Error(2)
}

func (m *MockUserService) GetProfile(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input user.ProfileInput) (*user.User, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

// identity stands in for the auth and session middlewares.
type identity struct {
	userID  uuid.UUID
	role    string
	session string
}

func (id identity) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id.userID != uuid.Nil {
			ctx = utils.SetUserContext(ctx, id.userID, "test@example.com", id.role)
		}
		if id.session != "" {
			ctx = utils.SetSessionID(ctx, id.session)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type routeRegistrar interface {
	RegisterRoutes(r chi.Router)
}

func newRouter(id identity, handlers ...routeRegistrar) chi.Router {
	r := chi.NewRouter()
	r.Use(id.middleware)
	for _, h := range handlers {
		h.RegisterRoutes(r)
	}
	return r
}
