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

// Package validation provides the format rules applied to protocol message
// fields before a message is trusted or transmitted. Every rule fails closed:
// a violation is reported as a FieldError naming the field and the expected
// format, and no rule ever repairs or coerces a value.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
)

// base64URLPattern matches URL-safe base64 text. Padding is tolerated on
// input even though the encoder never emits it.
var base64URLPattern = regexp.MustCompile(`^[A-Za-z0-9\-_]+={0,2}$`)

// Allowed values for the enumerated message fields.
var (
	// AttestationConveyances are the attestation conveyance preferences.
	AttestationConveyances = []string{"direct", "none", "indirect"}

	// UserVerificationLevels are the user verification requirements.
	UserVerificationLevels = []string{"required", "preferred", "discouraged"}

	// AuthenticatorAttachments are the authenticator attachment modalities.
	AuthenticatorAttachments = []string{"platform", "cross-platform"}

	// ResidentKeyRequirements are the resident key (passkey) preferences.
	ResidentKeyRequirements = []string{"required", "preferred", "discouraged"}

	// CredentialTransports are the transports a credential descriptor may hint.
	CredentialTransports = []string{"usb", "nfc", "ble"}
)

// FieldError reports a field that failed its format rule.
type FieldError struct {
	// Field is the wire name of the offending field.
	Field string

	// Expected describes the format the field was required to have.
	Expected string
}

// Error returns the error message.
func (e *FieldError) Error() string {
	return fmt.Sprintf("validation: field %q: expected %s", e.Field, e.Expected)
}

// RequireString validates that value is a non-empty string.
func RequireString(field, value string) error {
	if value == "" {
		return &FieldError{Field: field, Expected: "non-empty string"}
	}
	return nil
}

// RequireBase64 validates that value is base64url text (padded or not).
func RequireBase64(field, value string) error {
	if !base64URLPattern.MatchString(value) {
		return &FieldError{Field: field, Expected: "base64url string"}
	}
	return nil
}

// OptionalBase64 validates base64url text, passing when the field is absent.
func OptionalBase64(field, value string) error {
	if value == "" {
		return nil
	}
	return RequireBase64(field, value)
}

// RequirePositiveInt validates that value is a non-negative integer
// representable in 32 bits.
func RequirePositiveInt(field string, value int64) error {
	if value < 0 || value > math.MaxInt32 {
		return &FieldError{Field: field, Expected: "positive 32-bit integer"}
	}
	return nil
}

// RequireEnum validates that value is a member of the allowed set.
func RequireEnum(field, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return &FieldError{Field: field, Expected: "one of [" + strings.Join(allowed, " ") + "]"}
	}
	return nil
}

// OptionalEnum validates enum membership, passing when the field is absent.
func OptionalEnum(field, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	return RequireEnum(field, value, allowed)
}

// SanitizeForLog sanitizes a server-supplied string for safe logging
// (prevents log injection).
func SanitizeForLog(s string) string {
	// Remove control characters and null bytes
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)

	// Limit length to prevent log flooding
	if len(s) > 1000 {
		s = s[:1000] + "...[truncated]"
	}

	return s
}
