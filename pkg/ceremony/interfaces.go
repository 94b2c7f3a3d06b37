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
	"context"

	"github.com/jeremyhahn/go-webauthn-client/pkg/protocol"
)

// Transport carries protocol messages to and from the relying-party
// server. *client.Client satisfies this interface.
type Transport interface {
	// Send transmits msg to path and reconstructs the reply into out.
	Send(ctx context.Context, method, path string, msg protocol.Message, out protocol.Response) error
}

// Authenticator is the host credential subsystem. Options handed to it
// have all binary fields decoded to raw bytes and the server-response
// envelope stripped; results come back with raw bytes in their binary
// fields. The authenticator enforces the ceremony timeout, not the
// orchestrator.
type Authenticator interface {
	// CreateCredential creates a new credential key pair for the given
	// registration options and returns the attestation result.
	CreateCredential(ctx context.Context, options *protocol.CreateOptions) (*protocol.CredentialAttestation, error)

	// GetCredential produces an assertion over the given authentication
	// options with an existing credential.
	GetCredential(ctx context.Context, options *protocol.GetOptions) (*protocol.CredentialAssertion, error)
}
