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

package ceremony

import (
	"errors"
	"fmt"
)

// Sentinel errors for ceremony flows.
var (
	// ErrNotConfigured is returned when the service was not built
	// through NewService.
	ErrNotConfigured = errors.New("ceremony service not configured")
)

// CeremonyError wraps an error with the flow step that failed.
type CeremonyError struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

// Error returns the error message.
func (e *CeremonyError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *CeremonyError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches.
func (e *CeremonyError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new CeremonyError with the given operation and error.
func NewError(op string, err error) error {
	return &CeremonyError{
		Op:  op,
		Err: err,
	}
}

// WrapError wraps an error with an operation name if it's not nil.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(op, err)
}
