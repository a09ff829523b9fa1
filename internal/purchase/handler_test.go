package purchase

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/auth"
)

type MockPurchaser struct{ mock.Mock }

func (m *MockPurchaser) PayForItems(ctx context.Context, sessionID, userID int, cart Cart) (*Receipt, error) {
	args := m.Called(ctx, sessionID, userID, cart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Receipt), args.Error(1)
}

func (m *MockPurchaser) PayForGroupItems(ctx context.Context, groupID, userID int, cart Cart) (*Receipt, error) {
	args := m.Called(ctx, groupID, userID, cart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Receipt), args.Error(1)
}

func (m *MockPurchaser) Checkout(ctx context.Context, userID int, cart Cart) (*Receipt, error) {
	args := m.Called(ctx, userID, cart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Receipt), args.Error(1)
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetIdentity(c, 7, auth.RoleMember)
		c.Next()
	})
	r.POST("/sessions/:sessionID/items", h.PayForItems)
	r.POST("/group-sessions/:groupID/items", h.PayForGroupItems)
	r.POST("/market/checkout", h.Checkout)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_PayForItems(t *testing.T) {
	svc := new(MockPurchaser)
	cart := Cart{Items: []CartLine{{ItemID: 1, Quantity: 2}}}
	svc.On("PayForItems", mock.Anything, 10, 7, cart).Return(&Receipt{Charged: decimal.NewFromInt(10)}, nil)

	w := post(newTestRouter(NewHandler(svc)), "/sessions/10/items", `{"items":[{"item_id":1,"quantity":2}]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"charged":"10"`)
}

func TestHandler_CartValidation(t *testing.T) {
	svc := new(MockPurchaser)
	router := newTestRouter(NewHandler(svc))

	for _, body := range []string{`{"items":[]}`, `{"items":[{"item_id":1,"quantity":0}]}`, `not json`} {
		w := post(router, "/market/checkout", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	svc.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_InsufficientFunds(t *testing.T) {
	svc := new(MockPurchaser)
	svc.On("PayForGroupItems", mock.Anything, 3, 7, mock.Anything).Return(nil, apperr.ErrInsufficientFunds)

	w := post(newTestRouter(NewHandler(svc)), "/group-sessions/3/items", `{"items":[{"item_id":1,"quantity":1}]}`)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}
