package identity

import "errors"

// Sentinel kinds for identity errors.
var (
	ErrNotFound  = errors.New("item not found")
	ErrInvalidID = errors.New("item id must be a positive integer")
	ErrEmptyName = errors.New("display name is empty")
)
