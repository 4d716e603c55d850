package models

import "errors"

// Domain errors. Commands surface exactly one of these (or a wrapped
// persistence error); a failed command leaves stored state unchanged.
var (
	ErrValidation        = errors.New("validation failed")
	ErrUnknownProduct    = errors.New("product not found")
	ErrUnknownSalesman   = errors.New("salesman not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateSalesman = errors.New("salesman already exists")
)
