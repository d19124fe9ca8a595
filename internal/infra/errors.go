// Package infra provides shared infrastructure used across newsdesk:
// the upstream HTTP client, typed fetch errors, rate limiting, retry and
// logging setup.
package infra

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmpty is returned when an upstream answered but carried no usable data.
var ErrEmpty = errors.New("no data returned")

// TransportError covers DNS, connect, timeout and non-2xx HTTP failures.
type TransportError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Status     string
	Body       string // first KiB of an error response
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.URL)
	}
	return fmt.Sprintf("network error: %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError is returned when a response body could not be decoded.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Kind is the outcome class of an upstream fetch.
type Kind int

const (
	KindOK Kind = iota
	KindEmpty
	KindTransport
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindEmpty:
		return "empty"
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Classify maps an error returned by this package's helpers to its Kind.
// Unrecognised errors count as transport failures.
func Classify(err error) Kind {
	if err == nil {
		return KindOK
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return KindParse
	}
	if errors.Is(err, ErrEmpty) {
		return KindEmpty
	}
	return KindTransport
}

// Canceled reports whether err stems from the caller giving up.
func Canceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
