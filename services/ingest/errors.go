package ingest

import (
	"errors"
	"fmt"
)

// Reason is the machine-readable cause of a rejected file.
type Reason string

const (
	ReasonOversized         Reason = "oversized"
	ReasonNullByte          Reason = "null-byte-detected"
	ReasonUnsupportedFormat Reason = "unsupported-format"
	ReasonUnreadable        Reason = "unreadable"
	ReasonDecodeFailure     Reason = "decode-failure"
)

var (
	ErrOversized         = errors.New("file too large")
	ErrNullByte          = errors.New("file contains null bytes")
	ErrUnsupportedFormat = errors.New("unsupported or corrupt file format")
	ErrUnreadable        = errors.New("empty or unreadable file")
	ErrDecodeFailure     = errors.New("could not decode file content")
)

var reasonErrors = map[Reason]error{
	ReasonOversized:         ErrOversized,
	ReasonNullByte:          ErrNullByte,
	ReasonUnsupportedFormat: ErrUnsupportedFormat,
	ReasonUnreadable:        ErrUnreadable,
	ReasonDecodeFailure:     ErrDecodeFailure,
}

// RejectionError reports why a single file was not ingested. Its message
// never includes the underlying library error.
type RejectionError struct {
	Filename string
	Reason   Reason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Filename, reasonErrors[e.Reason])
}

func (e *RejectionError) Is(target error) bool {
	return target == reasonErrors[e.Reason]
}

func reject(filename string, reason Reason) *RejectionError {
	return &RejectionError{Filename: filename, Reason: reason}
}

// reasonFor maps an extraction error onto a rejection reason.
func reasonFor(err error) Reason {
	switch {
	case errors.Is(err, ErrDecodeFailure):
		return ReasonDecodeFailure
	case errors.Is(err, ErrUnsupportedFormat):
		return ReasonUnsupportedFormat
	default:
		return ReasonUnreadable
	}
}
