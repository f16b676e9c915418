package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidSessionID = errors.New("invalid cart session id")
	ErrInvalidOwnerID   = errors.New("invalid store owner id")

	// -- Resource State --
	ErrProductUnavailable = errors.New("product is not available for sale")

	// -- Storage --
	ErrFailedLoadCart = errors.New("failed to load cart")
	ErrFailedSaveCart = errors.New("failed to save cart")
)
