package inspection

import (
	"errors"
	"fmt"
)

var (
	ErrPendingNotFound            = errors.New("pending record not found")
	ErrFunctionalLocationRequired = errors.New("functional location is required")
	ErrApproverRequired           = errors.New("approving user is required")
	ErrInvalidAction              = errors.New("invalid approval action")
	ErrInvalidPendingID           = errors.New("invalid pending record id")
)

// ParseError is fatal to a whole batch: the source could not be read.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("parse input: %v", e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RowError reports a failure confined to one row of a batch.
type RowError struct {
	Index              int
	FunctionalLocation string
	Err                error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Index, e.FunctionalLocation, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// StoreError marks a failed unit of work; its transaction was rolled back.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
