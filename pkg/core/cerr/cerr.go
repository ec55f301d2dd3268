// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cerr defines the core error kinds. Each kind wraps an error
// and carries the HTTP status code which should be reported by the
// REST adapters, so use cases can classify failures without depending
// on any web framework.
package cerr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Err            error
	HTTPStatusCode int
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.HTTPStatusCode, e.Err.Error())
}

// BadRequest marks err as a validation error. Validation errors are
// reported before any state mutation.
func BadRequest(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusBadRequest}
}

// NotFound marks err as a reference to a missing entity, e.g., a queue
// entry which was claimed or removed concurrently.
func NotFound(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusNotFound}
}

// Conflict marks err as a collision with the current state, e.g., a
// plate which is already queued.
func Conflict(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusConflict}
}

// Unavailable marks err as a persistence or transport failure. The
// failed operation had no effect and may be retried.
func Unavailable(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusServiceUnavailable}
}

// Is reports whether any error in the err chain is an *Error with the
// given HTTP status code.
func Is(err error, httpStatusCode int) bool {
	var ce *Error
	if !errors.As(err, &ce) {
		return false
	}
	return ce.HTTPStatusCode == httpStatusCode
}

// IsNotFound reports whether err is (or wraps) a NotFound error.
func IsNotFound(err error) bool {
	return Is(err, http.StatusNotFound)
}
