package types

import "errors"

// Domain errors for schema source decoding
var (
	ErrMalformedSource = errors.New("malformed schema source")
	ErrInvalidOccurs   = errors.New("invalid occurrence bound")
)
