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

// CreateOptionsRequest asks the server to begin a registration ceremony
// for the named account.
type CreateOptionsRequest struct {
	Username               string                  `json:"username"`
	DisplayName            string                  `json:"displayName"`
	AuthenticatorSelection *AuthenticatorSelection `json:"authenticatorSelection,omitempty"`
	Attestation            string                  `json:"attestation,omitempty"`
}

// Validate applies the request's format rules.
func (m *CreateOptionsRequest) Validate() error {
	if err := validation.RequireString("username", m.Username); err != nil {
		return err
	}
	if err := validation.RequireString("displayName", m.DisplayName); err != nil {
		return err
	}
	if m.AuthenticatorSelection != nil {
		if err := m.AuthenticatorSelection.validate("authenticatorSelection"); err != nil {
			return err
		}
	}
	return validation.OptionalEnum("attestation", m.Attestation, validation.AttestationConveyances)
}

// EncodeBinaryFields is a no-op; the request carries no binary fields.
func (m *CreateOptionsRequest) EncodeBinaryFields() error { return nil }

// DecodeBinaryFields is a no-op; the request carries no binary fields.
func (m *CreateOptionsRequest) DecodeBinaryFields() error { return nil }

// CreateOptions is the server's registration parameters: the challenge
// to sign, the user and relying-party identities, and the credential
// algorithms the server accepts.
type CreateOptions struct {
	ServerResponse

	RelyingParty           RelyingPartyEntity      `json:"rp"`
	User                   UserEntity              `json:"user"`
	Challenge              Binary                  `json:"challenge,omitzero"`
	PubKeyCredParams       []CredentialParameter   `json:"pubKeyCredParams"`
	Timeout                int64                   `json:"timeout,omitempty"`
	ExcludeCredentials     []CredentialDescriptor  `json:"excludeCredentials,omitempty"`
	AuthenticatorSelection *AuthenticatorSelection `json:"authenticatorSelection,omitempty"`
	Attestation            string                  `json:"attestation,omitempty"`
	Extensions             map[string]any          `json:"extensions,omitempty"`
}

// Validate checks the envelope first, then every registration option.
func (m *CreateOptions) Validate() error {
	if err := m.ServerResponse.Validate(); err != nil {
		return err
	}
	if err := m.RelyingParty.validate("rp"); err != nil {
		return err
	}
	if err := m.User.validate("user"); err != nil {
		return err
	}
	if err := requireBinaryField("challenge", m.Challenge); err != nil {
		return err
	}
	if len(m.PubKeyCredParams) == 0 {
		return &validation.FieldError{Field: "pubKeyCredParams", Expected: "non-empty parameter list"}
	}
	for i := range m.PubKeyCredParams {
		if err := m.PubKeyCredParams[i].validate("pubKeyCredParams"); err != nil {
			return err
		}
	}
	if err := validation.RequirePositiveInt("timeout", m.Timeout); err != nil {
		return err
	}
	if err := validateDescriptors("excludeCredentials", m.ExcludeCredentials); err != nil {
		return err
	}
	if m.AuthenticatorSelection != nil {
		if err := m.AuthenticatorSelection.validate("authenticatorSelection"); err != nil {
			return err
		}
	}
	return validation.OptionalEnum("attestation", m.Attestation, validation.AttestationConveyances)
}

// EncodeBinaryFields encodes the user handle, challenge and exclude-list
// identifiers to wire text.
func (m *CreateOptions) EncodeBinaryFields() error {
	m.User.ID.Encode()
	m.Challenge.Encode()
	encodeDescriptors(m.ExcludeCredentials)
	return nil
}

// DecodeBinaryFields decodes the user handle, challenge and exclude-list
// identifiers to raw bytes.
func (m *CreateOptions) DecodeBinaryFields() error {
	if err := m.User.ID.Decode(); err != nil {
		return coercionError("user.id", err)
	}
	if err := m.Challenge.Decode(); err != nil {
		return coercionError("challenge", err)
	}
	return decodeDescriptors("excludeCredentials", m.ExcludeCredentials)
}

// AttestationResponse carries the authenticator's output from a
// registration ceremony.
type AttestationResponse struct {
	AttestationObject Binary `json:"attestationObject,omitzero"`
	ClientDataJSON    Binary `json:"clientDataJSON,omitzero"`
}

// CredentialAttestation is the client's result message for a
// registration ceremony: the new credential identifier plus the
// authenticator's attestation output.
type CredentialAttestation struct {
	RawID    Binary              `json:"rawId,omitzero"`
	Response AttestationResponse `json:"response"`
}

// Validate applies the attestation's format rules.
func (m *CredentialAttestation) Validate() error {
	if err := requireBinaryField("rawId", m.RawID); err != nil {
		return err
	}
	if err := requireBinaryField("response.attestationObject", m.Response.AttestationObject); err != nil {
		return err
	}
	return requireBinaryField("response.clientDataJSON", m.Response.ClientDataJSON)
}

// EncodeBinaryFields encodes the credential identifier and the
// attestation payloads to wire text.
func (m *CredentialAttestation) EncodeBinaryFields() error {
	m.RawID.Encode()
	m.Response.AttestationObject.Encode()
	m.Response.ClientDataJSON.Encode()
	return nil
}

// DecodeBinaryFields decodes the credential identifier and the
// attestation payloads to raw bytes.
func (m *CredentialAttestation) DecodeBinaryFields() error {
	if err := m.RawID.Decode(); err != nil {
		return coercionError("rawId", err)
	}
	if err := m.Response.AttestationObject.Decode(); err != nil {
		return coercionError("response.attestationObject", err)
	}
	if err := m.Response.ClientDataJSON.Decode(); err != nil {
		return coercionError("response.clientDataJSON", err)
	}
	return nil
}
