package entities

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInsufficientStock is returned when an allocation asks for more units than stock supports
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidRecipe is returned when recipe lines fail validation
	ErrInvalidRecipe = errors.New("invalid recipe")
	// ErrInvalidUnits is returned when a production quantity is not a positive integer
	ErrInvalidUnits = errors.New("units must be positive")
	// ErrConcurrentModification is returned when a stock write lost a version race
	ErrConcurrentModification = errors.New("concurrent stock modification")
	ErrMaterialNotFound       = errors.New("material not found")
	ErrProductNotFound        = errors.New("product not found")
	ErrOrderNotFound          = errors.New("purchase order not found")
	// ErrInvalidOrder is returned when a purchase order has no lines or bad amounts
	ErrInvalidOrder = errors.New("invalid purchase order")
	// ErrOrderNotPending is returned when receiving an order that was already received
	ErrOrderNotPending = errors.New("purchase order is not pending")
)

// InsufficientStockError carries the requested and producible units
type InsufficientStockError struct {
	ProductID  ProductID
	Requested  int64
	Producible int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d units, producible %d",
		e.ProductID, e.Requested, e.Producible)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// InvalidRecipeError lists every problem found in a recipe
type InvalidRecipeError struct {
	ProductID ProductID
	Problems  []string
}

func (e *InvalidRecipeError) Error() string {
	return fmt.Sprintf("invalid recipe for product %s: %s", e.ProductID, strings.Join(e.Problems, "; "))
}

func (e *InvalidRecipeError) Unwrap() error {
	return ErrInvalidRecipe
}
