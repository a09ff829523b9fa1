package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qwerty-development/gym-webapp-sub000/internal/auth"
)

type MockRepository struct{ mock.Mock }

func (m *MockRepository) Append(ctx context.Context, q sqlx.ExtContext, txs []Transaction) error {
	return m.Called(ctx, q, txs).Error(0)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID int, limit, offset int) ([]Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Transaction), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, f Filter) ([]Transaction, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Transaction), args.Error(1)
}

func (m *MockRepository) Summary(ctx context.Context, from, to time.Time) ([]SummaryRow, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SummaryRow), args.Error(1)
}

func newTestRouter(h *Handler, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetIdentity(c, userID, auth.RoleAdmin)
		c.Next()
	})
	r.GET("/wallet/transactions", h.ListMine)
	r.GET("/admin/transactions", h.ListAll)
	r.GET("/admin/transactions/summary", h.Summary)
	return r
}

func TestHandler_ListMine(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListByUser", mock.Anything, 7, 10, 0).Return([]Transaction{
		New(7, CurrencyCredits, decimal.NewFromInt(50), CancelType(KindIndividual, PaymentCredit), "refund"),
	}, nil)

	w := httptest.NewRecorder()
	newTestRouter(NewHandler(repo), 7).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wallet/transactions?limit=10", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body []Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, Type("individual_cancel_credit"), body[0].Type)
	repo.AssertExpectations(t)
}

func TestHandler_ListAll_Filters(t *testing.T) {
	repo := new(MockRepository)
	repo.On("List", mock.Anything, mock.MatchedBy(func(f Filter) bool {
		return f.UserID != nil && *f.UserID == 4 &&
			f.Currency == CurrencySemiPrivateToken &&
			f.Type == TypeTokenUpdate &&
			f.From != nil && f.To == nil
	})).Return([]Transaction{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/admin/transactions?user_id=4&currency=semiPrivate_token&type=token_update&from=2026-10-01T00:00:00Z", nil)
	newTestRouter(NewHandler(repo), 1).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestHandler_ListAll_BadInput(t *testing.T) {
	router := newTestRouter(NewHandler(new(MockRepository)), 1)

	for _, q := range []string{"user_id=abc", "type=bogus", "currency=euros", "from=yesterday"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/transactions?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestHandler_Summary(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Summary", mock.Anything, mock.Anything, mock.Anything).Return([]SummaryRow{
		{Type: TypeMarketRefund, Currency: CurrencyCredits, Count: 2, Total: decimal.NewFromInt(15)},
	}, nil)
	router := newTestRouter(NewHandler(repo), 1)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/transactions/summary?from=2026-10-01T00:00:00Z&to=2026-11-01T00:00:00Z", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "market_refund")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/transactions/summary", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
