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

package encoding

import "errors"

var (
	// ErrInvalidBase64 is returned when text cannot be decoded as base64url
	ErrInvalidBase64 = errors.New("encoding: invalid base64url data")

	// ErrInvalidPadding is returned when text carries more than two trailing
	// padding characters
	ErrInvalidPadding = errors.New("encoding: invalid base64url padding")
)
