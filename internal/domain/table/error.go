package table

import (
	"errors"
)

var (
	ErrNotFound      = errors.New("row not found")
	ErrInvalidData   = errors.New("invalid row data")
	ErrUnknownTable  = errors.New("unknown table")
	ErrReadOnlyTable = errors.New("table is read-only")
	ErrInvalidFilter = errors.New("invalid filter")
	ErrForbidden     = errors.New("row does not belong to user")
)
