package model

import "github.com/rotisserie/eris"

// Sentinel errors for data-contract violations. Callers wrap these with
// eris and check them with eris.Is.
var (
	// ErrInvalidCategory indicates a categorical value outside the
	// column's declared level set (including empty values).
	ErrInvalidCategory = eris.New("invalid category value")

	// ErrInvalidOrdinal indicates an ordinal value outside the raw
	// {1,2} coding (including empty values and already-recoded data).
	ErrInvalidOrdinal = eris.New("invalid ordinal value")

	// ErrInsufficientData indicates a degenerate input to a diagnostic
	// or model fit: empty columns, mismatched lengths, or a
	// non-positive bin count.
	ErrInsufficientData = eris.New("insufficient data")
)
