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
	"github.com/jeremyhahn/go-webauthn-client/pkg/validation"
)

// WebAuthnOptions is a preference overlay applied on top of
// server-supplied ceremony options.
type WebAuthnOptions struct {
	Timeout int64 `json:"timeout,omitempty"`
}

// Merge fills this instance's unset fields from other. When preferOther
// is set, fields present on other overwrite this instance's values
// instead.
func (o *WebAuthnOptions) Merge(other *WebAuthnOptions, preferOther bool) {
	if other == nil {
		return
	}
	if preferOther {
		if other.Timeout != 0 {
			o.Timeout = other.Timeout
		}
		return
	}
	if o.Timeout == 0 {
		o.Timeout = other.Timeout
	}
}

// Validate applies the overlay's format rules.
func (o *WebAuthnOptions) Validate() error {
	return validation.RequirePositiveInt("timeout", o.Timeout)
}

// EncodeBinaryFields is a no-op; the overlay carries no binary fields.
func (o *WebAuthnOptions) EncodeBinaryFields() error { return nil }

// DecodeBinaryFields is a no-op; the overlay carries no binary fields.
func (o *WebAuthnOptions) DecodeBinaryFields() error { return nil }
