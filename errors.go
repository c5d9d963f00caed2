package sommelier

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable signals that the dataset could not be fetched.
	ErrSourceUnavailable = errors.New("dataset source unavailable")
	// ErrDataFormat signals missing or malformed dataset columns.
	ErrDataFormat = errors.New("dataset format error")
	// ErrValidation signals a bad request.
	ErrValidation = errors.New("validation error")
	// ErrMissingQuery is the validation error for a request without query.
	ErrMissingQuery = fmt.Errorf("missing query: %w", ErrValidation)
	// ErrUpstream signals an embedding API failure or a malformed embedding.
	ErrUpstream = errors.New("embedding upstream error")
)
