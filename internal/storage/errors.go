package storage

import "errors"

var (
	// ErrAliasNotFound is returned when an alias row is not found
	ErrAliasNotFound = errors.New("alias not found")

	// ErrEmptyCatalog is returned when the catalog table has no enabled rows
	ErrEmptyCatalog = errors.New("catalog table is empty")
)
