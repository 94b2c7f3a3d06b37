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

// GetOptionsRequest asks the server to begin an authentication ceremony
// for the named account.
type GetOptionsRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// Validate applies the request's format rules.
func (m *GetOptionsRequest) Validate() error {
	if err := validation.RequireString("username", m.Username); err != nil {
		return err
	}
	return validation.RequireString("displayName", m.DisplayName)
}

// EncodeBinaryFields is a no-op; the request carries no binary fields.
func (m *GetOptionsRequest) EncodeBinaryFields() error { return nil }

// DecodeBinaryFields is a no-op; the request carries no binary fields.
func (m *GetOptionsRequest) DecodeBinaryFields() error { return nil }

// GetOptions is the server's authentication parameters: the challenge to
// sign and the credentials allowed to sign it.
type GetOptions struct {
	ServerResponse

	Challenge        Binary                 `json:"challenge,omitzero"`
	Timeout          int64                  `json:"timeout,omitempty"`
	RelyingPartyID   string                 `json:"rpId,omitempty"`
	AllowCredentials []CredentialDescriptor `json:"allowCredentials,omitempty"`
	UserVerification string                 `json:"userVerification,omitempty"`
	Extensions       map[string]any         `json:"extensions,omitempty"`
}

// Validate checks the envelope first, then every authentication option.
func (m *GetOptions) Validate() error {
	if err := m.ServerResponse.Validate(); err != nil {
		return err
	}
	if err := requireBinaryField("challenge", m.Challenge); err != nil {
		return err
	}
	if err := validation.RequirePositiveInt("timeout", m.Timeout); err != nil {
		return err
	}
	if err := validateDescriptors("allowCredentials", m.AllowCredentials); err != nil {
		return err
	}
	return validation.OptionalEnum("userVerification", m.UserVerification, validation.UserVerificationLevels)
}

// EncodeBinaryFields encodes the challenge and allow-list identifiers to
// wire text.
func (m *GetOptions) EncodeBinaryFields() error {
	m.Challenge.Encode()
	encodeDescriptors(m.AllowCredentials)
	return nil
}

// DecodeBinaryFields decodes the challenge and allow-list identifiers to
// raw bytes.
func (m *GetOptions) DecodeBinaryFields() error {
	if err := m.Challenge.Decode(); err != nil {
		return coercionError("challenge", err)
	}
	return decodeDescriptors("allowCredentials", m.AllowCredentials)
}

// AssertionResponse carries the authenticator's output from an
// authentication ceremony. The user handle is nullable: null and absent
// are distinct wire states, and both decode to an empty byte sequence.
type AssertionResponse struct {
	AuthenticatorData Binary `json:"authenticatorData,omitzero"`
	ClientDataJSON    Binary `json:"clientDataJSON,omitzero"`
	Signature         Binary `json:"signature,omitzero"`
	UserHandle        Binary `json:"userHandle,omitzero"`
}

// CredentialAssertion is the client's result message for an
// authentication ceremony: the credential identifier plus the signed
// assertion output.
type CredentialAssertion struct {
	RawID    Binary            `json:"rawId,omitzero"`
	Response AssertionResponse `json:"response"`
}

// Validate applies the assertion's format rules.
func (m *CredentialAssertion) Validate() error {
	if err := requireBinaryField("rawId", m.RawID); err != nil {
		return err
	}
	if err := requireBinaryField("response.authenticatorData", m.Response.AuthenticatorData); err != nil {
		return err
	}
	if err := requireBinaryField("response.clientDataJSON", m.Response.ClientDataJSON); err != nil {
		return err
	}
	if err := requireBinaryField("response.signature", m.Response.Signature); err != nil {
		return err
	}
	return nullableBinaryField("response.userHandle", m.Response.UserHandle)
}

// EncodeBinaryFields encodes the credential identifier and the assertion
// payloads to wire text. A user handle that was null before decoding
// returns to null, not an empty string.
func (m *CredentialAssertion) EncodeBinaryFields() error {
	m.RawID.Encode()
	m.Response.AuthenticatorData.Encode()
	m.Response.ClientDataJSON.Encode()
	m.Response.Signature.Encode()
	m.Response.UserHandle.Encode()
	return nil
}

// DecodeBinaryFields decodes the credential identifier and the assertion
// payloads to raw bytes. A null user handle decodes to an empty byte
// sequence.
func (m *CredentialAssertion) DecodeBinaryFields() error {
	if err := m.RawID.Decode(); err != nil {
		return coercionError("rawId", err)
	}
	if err := m.Response.AuthenticatorData.Decode(); err != nil {
		return coercionError("response.authenticatorData", err)
	}
	if err := m.Response.ClientDataJSON.Decode(); err != nil {
		return coercionError("response.clientDataJSON", err)
	}
	if err := m.Response.Signature.Decode(); err != nil {
		return coercionError("response.signature", err)
	}
	if err := m.Response.UserHandle.Decode(); err != nil {
		return coercionError("response.userHandle", err)
	}
	return nil
}
