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

// Package encoding converts between the canonical byte form and the
// URL-safe base64 text form that binary WebAuthn fields (challenges,
// credential IDs, attestation and assertion payloads) use on the wire.
package encoding

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// EncodeBinary encodes raw bytes as URL-safe base64 text without padding.
// The output never contains '+', '/' or '='.
func EncodeBinary(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeBinary decodes URL-safe base64 text into raw bytes. Up to two
// trailing '=' padding characters are tolerated on input even though
// EncodeBinary never emits them.
func DecodeBinary(text string) ([]byte, error) {
	trimmed := strings.TrimRight(text, "=")
	if len(text)-len(trimmed) > 2 {
		return nil, ErrInvalidPadding
	}

	data, err := base64.RawURLEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	return data, nil
}
