package search

import "errors"

var (
	// ErrEmptyQuery is returned when a matcher is compiled for an empty query.
	ErrEmptyQuery = errors.New("search query is empty")

	// ErrQueryTooLong is returned when the query exceeds MaxQueryLength runes.
	ErrQueryTooLong = errors.New("search query too long")

	// ErrInvalidPattern is returned when the escaped query cannot be compiled.
	ErrInvalidPattern = errors.New("invalid search pattern")
)
