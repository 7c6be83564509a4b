package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"nil", nil, ErrorClassPermanent},
		{"serialization", &pq.Error{Code: "40001"}, ErrorClassSerialization},
		{"deadlock", &pq.Error{Code: "40P01"}, ErrorClassDeadlock},
		{"lock not available", &pq.Error{Code: "55P03"}, ErrorClassTransient},
		{"unique", &pq.Error{Code: "23505"}, ErrorClassPermanent},
		{"wrapped serialization", fmt.Errorf("insert order: %w", &pq.Error{Code: "40001"}), ErrorClassSerialization},
		{"no rows", sql.ErrNoRows, ErrorClassPermanent},
		{"domain error", ErrEmptyCart, ErrorClassPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pq.Error{Code: "40001"}))
	assert.True(t, IsRetryable(&pq.Error{Code: "40P01"}))
	assert.False(t, IsRetryable(&pq.Error{Code: "23505"}))
	assert.False(t, IsRetryable(ErrDuplicateSale))
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert sale: %w", &pq.Error{Code: "23505", Constraint: "sales_order_id_key"})

	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "sales_order_id_key"))
	assert.False(t, IsUniqueViolation(err, "orders_order_number_key"))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
}

func TestConstraintHelpers(t *testing.T) {
	assert.True(t, IsForeignKeyViolation(&pq.Error{Code: "23503"}))
	assert.True(t, IsCheckViolation(&pq.Error{Code: "23514"}))
	assert.True(t, IsLockNotAvailable(&pq.Error{Code: "55P03"}))
	assert.False(t, IsLockNotAvailable(&pq.Error{Code: "40001"}))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrCartItemNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("load: %w", ErrOrderNotFound)))
	assert.False(t, IsNotFound(ErrEmptyCart))
}
