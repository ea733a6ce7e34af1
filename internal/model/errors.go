package model

import "errors"

var (
	// ErrInsufficientHistory means an indicator or sizing model was asked for
	// a value before enough bars were available. No partial output is emitted.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrDegenerateInput marks a rejected bar series. The error applies to one
	// symbol only; other symbols keep processing.
	ErrDegenerateInput = errors.New("degenerate input")
)
