package bundle

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/ledger"
	"github.com/qwerty-development/gym-webapp-sub000/internal/mocks"
	"github.com/qwerty-development/gym-webapp-sub000/internal/wallet"
)

type MockRepository struct{ mock.Mock }

func (m *MockRepository) Create(ctx context.Context, b Bundle) (*Bundle, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Bundle), args.Error(1)
}

func (m *MockRepository) ListActive(ctx context.Context) ([]Bundle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Bundle), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, q sqlx.QueryerContext, id int) (*Bundle, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Bundle), args.Error(1)
}

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestService() (*service, *mocks.Tx, *MockRepository, *mocks.WalletRepo, *mocks.LedgerRepo) {
	tx := &mocks.Tx{}
	repo := new(MockRepository)
	wallets := new(mocks.WalletRepo)
	led := new(mocks.LedgerRepo)
	svc := NewService(tx, repo, wallets, led).(*service)
	svc.now = func() time.Time { return now }
	return svc, tx, repo, wallets, led
}

func TestPurchase_GrantsTokens(t *testing.T) {
	svc, tx, repo, wallets, led := newTestService()
	bal := &wallet.Balance{UserID: 7, Credits: decimal.NewFromInt(100), PublicToken: 1}

	wallets.On("GetForUpdate", mock.Anything, mock.Anything, 7).Return(bal, nil)
	repo.On("Get", mock.Anything, mock.Anything, 3).Return(&Bundle{
		ID: 3, Kind: KindClass, Name: "Class pack", Price: decimal.NewFromInt(60),
		PublicToken: 5, ShakeToken: 1, Active: true,
	}, nil)
	wallets.On("Save", mock.Anything, mock.Anything, bal).Return(nil)
	led.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	out, err := svc.Purchase(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(out.Credits))
	assert.Equal(t, 6, out.PublicToken)
	assert.Equal(t, 1, out.ShakeToken)
	assert.Nil(t, out.EssentialTill)

	txs := led.Appended()
	require.Len(t, txs, 3)
	assert.Equal(t, ledger.TypeBundlePurchase, txs[0].Type)
	assert.True(t, decimal.NewFromInt(-60).Equal(txs[0].Amount))
	assert.Equal(t, ledger.TypeBundleClass, txs[1].Type)
	assert.Equal(t, ledger.CurrencyPublicToken, txs[1].Currency)
	assert.Equal(t, ledger.CurrencyShakeToken, txs[2].Currency)
	assert.Equal(t, 1, tx.Commits)
}

func TestPurchase_EssentialsExtendFromLaterDate(t *testing.T) {
	tests := []struct {
		name    string
		current *time.Time
		want    time.Time
	}{
		{"no essentials yet", nil, now.AddDate(0, 0, 30)},
		{"expired essentials restart today", timePtr(now.AddDate(0, 0, -3)), now.AddDate(0, 0, 30)},
		{"active essentials stack", timePtr(now.AddDate(0, 0, 10)), now.AddDate(0, 0, 40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, repo, wallets, led := newTestService()
			bal := &wallet.Balance{UserID: 7, Credits: decimal.NewFromInt(50), EssentialTill: tt.current}

			wallets.On("GetForUpdate", mock.Anything, mock.Anything, 7).Return(bal, nil)
			repo.On("Get", mock.Anything, mock.Anything, 4).Return(&Bundle{
				ID: 4, Kind: KindEssential, Name: "Essentials 30", Price: decimal.NewFromInt(50), EssentialDays: 30, Active: true,
			}, nil)
			wallets.On("Save", mock.Anything, mock.Anything, bal).Return(nil)
			led.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil)

			out, err := svc.Purchase(context.Background(), 7, 4)
			require.NoError(t, err)
			require.NotNil(t, out.EssentialTill)
			assert.True(t, tt.want.Equal(*out.EssentialTill), out.EssentialTill.String())
			assert.Equal(t, ledger.TypeBundleEssential, led.Appended()[1].Type)
		})
	}
}

func TestPurchase_Failures(t *testing.T) {
	t.Run("short on credits", func(t *testing.T) {
		svc, tx, repo, wallets, led := newTestService()
		wallets.On("GetForUpdate", mock.Anything, mock.Anything, 7).Return(&wallet.Balance{UserID: 7, Credits: decimal.NewFromInt(5)}, nil)
		repo.On("Get", mock.Anything, mock.Anything, 3).Return(&Bundle{ID: 3, Kind: KindShake, Price: decimal.NewFromInt(20), ShakeToken: 5, Active: true}, nil)

		_, err := svc.Purchase(context.Background(), 7, 3)
		assert.ErrorIs(t, err, apperr.ErrInsufficientFunds)
		assert.Equal(t, 1, tx.Rollbacks)
		led.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("retired bundle", func(t *testing.T) {
		svc, _, repo, wallets, _ := newTestService()
		wallets.On("GetForUpdate", mock.Anything, mock.Anything, 7).Return(&wallet.Balance{UserID: 7, Credits: decimal.NewFromInt(500)}, nil)
		repo.On("Get", mock.Anything, mock.Anything, 3).Return(&Bundle{ID: 3, Kind: KindShake, Active: false}, nil)

		_, err := svc.Purchase(context.Background(), 7, 3)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestCreate_Validation(t *testing.T) {
	svc, _, repo, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateRequest{Kind: "gold", Name: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Create(context.Background(), CreateRequest{Kind: KindVista, Name: "x", Price: decimal.NewFromInt(-1), PublicToken: 1})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Create(context.Background(), CreateRequest{Kind: KindVista, Name: "Empty", Price: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(b Bundle) bool { return b.Active && b.WorkoutDayToken == 4 })).
		Return(&Bundle{ID: 8}, nil)
	b, err := svc.Create(context.Background(), CreateRequest{Kind: KindWorkout, Name: "Workout days", Price: decimal.NewFromInt(40), WorkoutDayToken: 4})
	require.NoError(t, err)
	assert.Equal(t, 8, b.ID)
}

func timePtr(t time.Time) *time.Time { return &t }
