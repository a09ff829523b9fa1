package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		kind string
	}{
		{"nil", nil, http.StatusOK, "ok"},
		{"not found", fmt.Errorf("session 4: %w", ErrNotFound), http.StatusNotFound, "not_found"},
		{"unauthorized", fmt.Errorf("not the owner: %w", ErrUnauthorized), http.StatusForbidden, "unauthorized"},
		{"funds", fmt.Errorf("wallet: %w", ErrInsufficientFunds), http.StatusPaymentRequired, "insufficient_funds"},
		{"validation", fmt.Errorf("cart: %w", ErrValidation), http.StatusBadRequest, "validation"},
		{"store write", fmt.Errorf("update wallet: %w", ErrStoreWrite), http.StatusInternalServerError, "store_write"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
			assert.Equal(t, tt.kind, Kind(tt.err))
		})
	}
}

func TestStoreWrite(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := StoreWrite("update wallet", cause)

	assert.ErrorIs(t, err, ErrStoreWrite)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "update wallet: store write failure: deadlock detected", err.Error())
}
