package domain

import "errors"

var (
	ErrUnsupportedPair = errors.New("unsupported pair")
	ErrInvalidRate     = errors.New("invalid rate")
)
