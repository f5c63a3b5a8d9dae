// Package svcerr classifies service failures as exposed or opaque.
//
// An exposed error carries an HTTP status and a detail string that may be
// shown to the caller verbatim. An opaque error is a server fault: callers
// only ever see a generic 500, while the full cause stays available to logs
// through Unwrap.
package svcerr

import (
	"errors"
	"net/http"
)

// InternalDetail is the public detail of every opaque or unclassified error.
const InternalDetail = "internal server error"

type exposedError struct {
	err    error
	status int
	detail string
}

func (e *exposedError) Error() string {
	if e.err == nil {
		return e.detail
	}
	return e.detail + ": " + e.err.Error()
}

func (e *exposedError) Unwrap() error { return e.err }

type opaqueError struct {
	err error
}

func (e *opaqueError) Error() string { return e.err.Error() }

func (e *opaqueError) Unwrap() error { return e.err }

// ToExposed marks err as safe to show: the caller gets status and detail.
// err may be nil when the condition has no underlying cause.
func ToExposed(err error, status int, detail string) error {
	return &exposedError{err: err, status: status, detail: detail}
}

// ToOpaque marks err as a server fault. A nil err yields nil.
func ToOpaque(err error) error {
	if err == nil {
		return nil
	}
	var o *opaqueError
	if errors.As(err, &o) {
		return err
	}
	return &opaqueError{err: err}
}

// BadRequest is shorthand for an exposed 400.
func BadRequest(detail string) error {
	return ToExposed(nil, http.StatusBadRequest, detail)
}

// IsExposed reports whether err, or anything it wraps, is exposed.
func IsExposed(err error) bool {
	var e *exposedError
	return errors.As(err, &e)
}

// IsOpaque reports whether err, or anything it wraps, is opaque.
func IsOpaque(err error) bool {
	var o *opaqueError
	return errors.As(err, &o)
}

// Public returns what a client may learn about err. Only exposed errors
// reveal their status and detail; anything else is a 500.
func Public(err error) (status int, detail string) {
	if err == nil {
		return http.StatusOK, ""
	}
	if IsOpaque(err) {
		return http.StatusInternalServerError, InternalDetail
	}
	var e *exposedError
	if errors.As(err, &e) {
		return e.status, e.detail
	}
	return http.StatusInternalServerError, InternalDetail
}
