package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
	codeSerializationFail   = "40001"
	codeDeadlockDetected    = "40P01"
	codeLockNotAvailable    = "55P03"
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeSerializationFail:
			return ErrorClassSerialization
		case codeDeadlockDetected:
			return ErrorClassDeadlock
		case codeLockNotAvailable:
			return ErrorClassTransient
		case codeUniqueViolation, codeForeignKeyViolation, codeNotNullViolation, codeCheckViolation:
			return ErrorClassPermanent
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrorClassPermanent
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	class := ClassifyError(err)
	return class == ErrorClassTransient ||
		class == ErrorClassDeadlock ||
		class == ErrorClassSerialization
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint,
// optionally restricted to one named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func IsForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

func IsCheckViolation(err error) bool {
	return hasCode(err, codeCheckViolation)
}

func IsLockNotAvailable(err error) bool {
	return hasCode(err, codeLockNotAvailable)
}

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrTypeNotFound     = errors.New("type not found")
	ErrPetNotFound      = errors.New("pet not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrSaleNotFound     = errors.New("sale not found")

	ErrInvalidInput           = errors.New("invalid input")
	ErrProductUnavailable     = errors.New("product unavailable")
	ErrPetRequiresContact     = errors.New("pets cannot be added to the cart; contact the store to reserve one")
	ErrPetUnavailable         = errors.New("pet is not available")
	ErrInvalidQuantity        = errors.New("quantity must be between 1 and 999")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrCartInactive           = errors.New("cart already checked out")
	ErrInvalidStatus          = errors.New("invalid order status")
	ErrInvalidPetStatus       = errors.New("invalid pet status")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
	ErrDuplicateSale          = errors.New("order already has a sale")
	ErrInvalidSeller          = errors.New("seller must be an admin or employee")
	ErrInvalidRole            = errors.New("invalid role")
	ErrForbidden              = errors.New("forbidden")
	ErrDuplicateName          = errors.New("name already exists")
	ErrInUse                  = errors.New("record is referenced by other records")
	ErrConcurrentModification = errors.New("record was modified concurrently")
	ErrLockTimeout            = errors.New("lock timeout")
)

// IsNotFound groups the per-entity not-found errors so callers can treat
// them alike.
func IsNotFound(err error) bool {
	for _, target := range []error{
		ErrUserNotFound, ErrProductNotFound, ErrCategoryNotFound, ErrTypeNotFound,
		ErrPetNotFound, ErrCartItemNotFound, ErrCartNotFound, ErrOrderNotFound, ErrSaleNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
