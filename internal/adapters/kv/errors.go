package kv

import "errors"

// Sentinel kinds for persistence errors.
var (
	ErrNotFound   = errors.New("key not found")
	ErrInvalidKey = errors.New("invalid key")
)
