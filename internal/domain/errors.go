package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrStorage         = errors.New("storage failure")
	ErrVendor          = errors.New("vendor failure")
	ErrInvalidEncoding = errors.New("invalid encoding")
	ErrInvalidPath     = errors.New("invalid path")
)
