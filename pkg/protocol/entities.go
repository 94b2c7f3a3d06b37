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

// CredentialTypePublicKey is the only credential type defined by WebAuthn.
const CredentialTypePublicKey = "public-key"

// RelyingPartyEntity identifies the relying party a credential is bound to.
type RelyingPartyEntity struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
	Icon string `json:"icon,omitempty"`
}

func (rp *RelyingPartyEntity) validate(field string) error {
	return validation.RequireString(field+".name", rp.Name)
}

// UserEntity identifies the account a new credential will belong to. The
// user handle (ID) is binary on the client side and base64url text on
// the wire.
type UserEntity struct {
	ID          Binary `json:"id,omitzero"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Icon        string `json:"icon,omitempty"`
}

func (u *UserEntity) validate(field string) error {
	if err := requireBinaryField(field+".id", u.ID); err != nil {
		return err
	}
	if err := validation.RequireString(field+".name", u.Name); err != nil {
		return err
	}
	return validation.RequireString(field+".displayName", u.DisplayName)
}

// CredentialParameter pairs a credential type with a COSE algorithm
// identifier the relying party accepts.
type CredentialParameter struct {
	Type string `json:"type"`
	Alg  int    `json:"alg"`
}

func (p *CredentialParameter) validate(field string) error {
	return validation.RequireEnum(field+".type", p.Type, []string{CredentialTypePublicKey})
}

// CredentialDescriptor references a registered credential by its
// identifier, optionally hinting which transports may reach it.
type CredentialDescriptor struct {
	Type       string   `json:"type"`
	ID         Binary   `json:"id,omitzero"`
	Transports []string `json:"transports,omitempty"`
}

func (d *CredentialDescriptor) validate(field string) error {
	if err := validation.RequireEnum(field+".type", d.Type, []string{CredentialTypePublicKey}); err != nil {
		return err
	}
	if err := requireBinaryField(field+".id", d.ID); err != nil {
		return err
	}
	for _, transport := range d.Transports {
		if err := validation.RequireEnum(field+".transports", transport, validation.CredentialTransports); err != nil {
			return err
		}
	}
	return nil
}

// AuthenticatorSelection narrows which authenticators may take part in a
// registration ceremony.
type AuthenticatorSelection struct {
	AuthenticatorAttachment string `json:"authenticatorAttachment,omitempty"`
	RequireResidentKey      bool   `json:"requireResidentKey,omitempty"`
	ResidentKey             string `json:"residentKey,omitempty"`
	UserVerification        string `json:"userVerification,omitempty"`
}

func (s *AuthenticatorSelection) validate(field string) error {
	if err := validation.OptionalEnum(field+".authenticatorAttachment", s.AuthenticatorAttachment, validation.AuthenticatorAttachments); err != nil {
		return err
	}
	if err := validation.OptionalEnum(field+".residentKey", s.ResidentKey, validation.ResidentKeyRequirements); err != nil {
		return err
	}
	return validation.OptionalEnum(field+".userVerification", s.UserVerification, validation.UserVerificationLevels)
}

// validateDescriptors validates a credential descriptor list field and
// decodes/encodes are handled by the owning message.
func validateDescriptors(field string, descriptors []CredentialDescriptor) error {
	for i := range descriptors {
		if err := descriptors[i].validate(field); err != nil {
			return err
		}
	}
	return nil
}

// decodeDescriptors decodes the binary identifier of each descriptor.
func decodeDescriptors(field string, descriptors []CredentialDescriptor) error {
	for i := range descriptors {
		if err := descriptors[i].ID.Decode(); err != nil {
			return coercionError(field+".id", err)
		}
	}
	return nil
}

// encodeDescriptors encodes the binary identifier of each descriptor.
func encodeDescriptors(descriptors []CredentialDescriptor) {
	for i := range descriptors {
		descriptors[i].ID.Encode()
	}
}
