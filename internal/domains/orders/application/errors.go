package application

import (
	"errors"
	"fmt"

	"github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
)

// ErrInvalidInput signals the request violated an order invariant.
var ErrInvalidInput = errors.New("invalid order input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrMissingUser) ||
		errors.Is(err, domain.ErrNoItems) ||
		errors.Is(err, domain.ErrInvalidItem) ||
		errors.Is(err, domain.ErrInvalidTotal) ||
		errors.Is(err, domain.ErrInvalidMethod) ||
		errors.Is(err, domain.ErrTotalMismatch) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
