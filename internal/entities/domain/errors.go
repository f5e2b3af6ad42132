package domain

import "errors"

var (
	ErrValidation = errors.New("invalid entity")
	ErrPersist    = errors.New("failed to persist entity")
	ErrNotFound   = errors.New("entity not found")
)
