package category

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidName  = errors.New("category name cannot be empty")
	ErrMissingOwner = errors.New("category owner is required")

	// -- Resource State --
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
)
