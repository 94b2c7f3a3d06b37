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

package authenticator

import "errors"

// Sentinel errors for credential operations.
var (
	// ErrUnsupportedAlgorithm is returned when the server accepts none
	// of the algorithms this authenticator can produce.
	ErrUnsupportedAlgorithm = errors.New("no supported public key algorithm offered")

	// ErrCredentialExcluded is returned when registration options list
	// this authenticator's credential in excludeCredentials.
	ErrCredentialExcluded = errors.New("credential already registered")

	// ErrCredentialNotAllowed is returned when authentication options
	// carry an allow list that does not include this authenticator's
	// credential.
	ErrCredentialNotAllowed = errors.New("credential not in allow list")
)
