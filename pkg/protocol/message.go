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

package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-webauthn-client/pkg/validation"
)

// ErrMalformedMessage is returned when wire text cannot be parsed into a
// message shape at all.
var ErrMalformedMessage = errors.New("protocol: malformed message")

// Message is the contract implemented by every protocol message.
type Message interface {
	// Validate applies every required and optional format rule for the
	// message's declared fields. It fails fast on the first violation.
	Validate() error

	// EncodeBinaryFields replaces the raw bytes of every binary field
	// with base64url wire text. It must be called before serialization.
	EncodeBinaryFields() error

	// DecodeBinaryFields replaces the base64url text of every binary
	// field with decoded bytes. It must be called after wire-form
	// validation and before the message reaches credential operations.
	DecodeBinaryFields() error
}

// Response is a server reply: a Message carrying the ServerResponse
// envelope.
type Response interface {
	Message

	// Envelope returns the embedded server response envelope.
	Envelope() *ServerResponse
}

// Parse decodes wire text into the message type M. Only declared fields
// are copied; unknown keys are ignored, not errors. Parse never runs
// validation or binary coercion - those are separate, explicit steps, so
// a structurally-parsed-but-unvalidated message can still be inspected.
func Parse[M any](data []byte) (*M, error) {
	var msg M
	if err := json.Unmarshal(data, &msg); err != nil {
		if errors.Is(err, ErrMalformedMessage) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return &msg, nil
}

// Status is the outcome reported by a server reply.
type Status string

const (
	// StatusOK indicates the server accepted the request.
	StatusOK Status = "ok"

	// StatusFailed indicates the server rejected the request.
	StatusFailed Status = "failed"
)

// statusValues are the allowed wire values for the status field.
var statusValues = []string{string(StatusOK), string(StatusFailed)}

// ServerResponse is the envelope present on every server reply.
// Successful replies carry no error message; failed replies must say why.
type ServerResponse struct {
	Status       Status `json:"status,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Validate checks the envelope invariant: "ok" with an empty error
// message, or "failed" with a non-empty one.
func (r *ServerResponse) Validate() error {
	if err := validation.RequireEnum("status", string(r.Status), statusValues); err != nil {
		return err
	}
	switch r.Status {
	case StatusOK:
		if r.ErrorMessage != "" {
			return &validation.FieldError{Field: "errorMessage", Expected: "empty error message when status is ok"}
		}
	case StatusFailed:
		if r.ErrorMessage == "" {
			return &validation.FieldError{Field: "errorMessage", Expected: "non-empty error message when status is failed"}
		}
	}
	return nil
}

// EncodeBinaryFields is a no-op; the envelope carries no binary fields.
func (r *ServerResponse) EncodeBinaryFields() error { return nil }

// DecodeBinaryFields is a no-op; the envelope carries no binary fields.
func (r *ServerResponse) DecodeBinaryFields() error { return nil }

// Envelope returns the envelope itself.
func (r *ServerResponse) Envelope() *ServerResponse { return r }

// Failed reports whether the server rejected the request.
func (r *ServerResponse) Failed() bool {
	return r.Status == StatusFailed
}

// StripEnvelope clears the envelope fields. Options handed to a
// credential collaborator must carry the pure options shape only.
func (r *ServerResponse) StripEnvelope() {
	r.Status = ""
	r.ErrorMessage = ""
}
