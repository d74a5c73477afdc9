package apperrors

import "errors"

var (
	ErrUnknownReport        = errors.New("unknown report")
	ErrUnsupportedDialect   = errors.New("unsupported datasource dialect")
	ErrInvalidScope         = errors.New("invalid report scope")
	ErrMissingReferenceTime = errors.New("reference time is required")
	ErrInvalidOutputFormat  = errors.New("invalid output format")
)
