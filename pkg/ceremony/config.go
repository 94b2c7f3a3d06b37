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
	"fmt"

	"github.com/jeremyhahn/go-webauthn-client/pkg/client"
)

// Config configures the ceremony orchestrator. It is read-only after
// construction; concurrent flows share nothing else.
type Config struct {
	// AttestationOptionsPath is the registration options endpoint.
	// Default: "/attestation/options"
	AttestationOptionsPath string `yaml:"attestation_options_path" json:"attestation_options_path" mapstructure:"attestation_options_path"`

	// AttestationResultPath is the registration result endpoint.
	// Default: "/attestation/result"
	AttestationResultPath string `yaml:"attestation_result_path" json:"attestation_result_path" mapstructure:"attestation_result_path"`

	// AssertionOptionsPath is the authentication options endpoint.
	// Default: "/assertion/options"
	AssertionOptionsPath string `yaml:"assertion_options_path" json:"assertion_options_path" mapstructure:"assertion_options_path"`

	// AssertionResultPath is the authentication result endpoint.
	// Default: "/assertion/result"
	AssertionResultPath string `yaml:"assertion_result_path" json:"assertion_result_path" mapstructure:"assertion_result_path"`

	// Timeout is the ceremony timeout in milliseconds, threaded into
	// the options handed to the authenticator when the server does not
	// supply one. The authenticator enforces it.
	// Default: 60000 (60 seconds)
	Timeout int64 `yaml:"timeout" json:"timeout" mapstructure:"timeout"`

	// Attestation is the attestation conveyance preference requested
	// during registration.
	// Options: "direct", "indirect", "none"
	// Default: "direct"
	Attestation string `yaml:"attestation" json:"attestation" mapstructure:"attestation"`

	// UserVerification specifies the user verification requirement
	// requested during registration.
	// Options: "required", "preferred", "discouraged"
	// Default: "preferred"
	UserVerification string `yaml:"user_verification" json:"user_verification" mapstructure:"user_verification"`

	// AuthenticatorAttachment limits the type of authenticators
	// requested during registration.
	// Options: "platform", "cross-platform", "" (any)
	// Default: "" (any)
	AuthenticatorAttachment string `yaml:"authenticator_attachment" json:"authenticator_attachment" mapstructure:"authenticator_attachment"`

	// ResidentKey specifies the resident key (passkey) requirement
	// requested during registration.
	// Options: "required", "preferred", "discouraged", "" (unspecified)
	ResidentKey string `yaml:"resident_key" json:"resident_key" mapstructure:"resident_key"`

	// Debug enables debug logging.
	Debug bool `yaml:"debug" json:"debug" mapstructure:"debug"`
}

// SetDefaults sets default values for unset configuration fields.
func (c *Config) SetDefaults() {
	if c.AttestationOptionsPath == "" {
		c.AttestationOptionsPath = client.DefaultAttestationOptionsPath
	}
	if c.AttestationResultPath == "" {
		c.AttestationResultPath = client.DefaultAttestationResultPath
	}
	if c.AssertionOptionsPath == "" {
		c.AssertionOptionsPath = client.DefaultAssertionOptionsPath
	}
	if c.AssertionResultPath == "" {
		c.AssertionResultPath = client.DefaultAssertionResultPath
	}
	if c.Timeout == 0 {
		c.Timeout = 60000
	}
	if c.Attestation == "" {
		c.Attestation = "direct"
	}
	if c.UserVerification == "" {
		c.UserVerification = "preferred"
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout: %d", c.Timeout)
	}

	// Validate attestation preference
	switch c.Attestation {
	case "", "direct", "indirect", "none":
		// Valid
	default:
		return fmt.Errorf("invalid attestation preference: %s", c.Attestation)
	}

	// Validate user verification
	switch c.UserVerification {
	case "", "required", "preferred", "discouraged":
		// Valid
	default:
		return fmt.Errorf("invalid user verification: %s", c.UserVerification)
	}

	// Validate authenticator attachment
	switch c.AuthenticatorAttachment {
	case "", "platform", "cross-platform":
		// Valid
	default:
		return fmt.Errorf("invalid authenticator attachment: %s", c.AuthenticatorAttachment)
	}

	// Validate resident key requirement
	switch c.ResidentKey {
	case "", "required", "preferred", "discouraged":
		// Valid
	default:
		return fmt.Errorf("invalid resident key requirement: %s", c.ResidentKey)
	}

	return nil
}
