package retire

import "errors"

var (
	// ErrInvalidAsset reports an asset class without a configured return model.
	ErrInvalidAsset = errors.New("invalid asset class")
	// ErrInvalidConfiguration reports simulation settings that cannot be run:
	// no iterations, a negative horizon or inflation, negative weights, etc.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrMalformedInput reports request fields that are missing or of the wrong shape.
	ErrMalformedInput = errors.New("malformed input")
)
