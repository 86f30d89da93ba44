package grocery

import (
	"errors"
	"fmt"
)

var (
	ErrNoProducts     = errors.New("no product links found")
	ErrTooManyMatches = errors.New("more than 1 matching value")
	ErrNoPriceValue   = errors.New("no price value")
	ErrNoDescription  = errors.New("description header has no content sibling")
	ErrMalformedURI   = errors.New("malformed uri")
)

type Field string

const (
	FieldTitle       Field = "title"
	FieldPrice       Field = "price"
	FieldDescription Field = "description"
)

// FetchError is returned when a page could not be retrieved, StatusCode is 0 when
// no response was received.
type FetchError struct {
	URI        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s", e.URI, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URI, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParsingFailure is returned when a structural rule did not find exactly one
// match on a product page.
type ParsingFailure struct {
	Field Field
	URI   string
	Found int
	Err   error
}

func (e *ParsingFailure) Error() string {
	switch {
	case errors.Is(e.Err, ErrTooManyMatches):
		return fmt.Sprintf("found %d matching %s values on page %s, expected 1", e.Found, e.Field, e.URI)
	case e.Err != nil:
		return fmt.Sprintf("parse %s on page %s: %s", e.Field, e.URI, e.Err)
	}
	return fmt.Sprintf("expected 1 %s on page %s but found %d", e.Field, e.URI, e.Found)
}

func (e *ParsingFailure) Unwrap() error {
	return e.Err
}
