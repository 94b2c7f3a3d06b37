// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-webauthn-client.
//
// go-webauthn-client is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package client

import (
	"errors"
	"fmt"
)

var (
	// ErrMethodNotAllowed is returned when Send is invoked with any verb
	// other than POST. This is a programmer error, not a network failure.
	ErrMethodNotAllowed = errors.New("client: only POST is supported")

	// ErrMalformedResponse is returned when a reply body cannot be parsed
	// into the expected wire-array-wrapped shape.
	ErrMalformedResponse = errors.New("client: malformed response body")
)

// TransportError reports a transport-level failure: a non-success status
// code or an underlying HTTP failure. It is distinct from a validation
// failure on the message itself.
type TransportError struct {
	// StatusCode is the HTTP status, or zero when the call never
	// produced a response.
	StatusCode int

	// Body is the reply body, when one was read.
	Body string

	// Err is the underlying transport failure, if any.
	Err error
}

// Error returns the error message.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("client: transport failure: %v", e.Err)
	}
	return fmt.Sprintf("client: server returned status %d: %s", e.StatusCode, e.Body)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a server reply whose status is "failed". It
// carries the server-supplied message verbatim.
type ProtocolError struct {
	// Message is the server's errorMessage field.
	Message string
}

// Error returns the error message.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("client: server rejected request: %s", e.Message)
}
