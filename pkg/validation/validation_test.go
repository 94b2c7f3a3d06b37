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

package validation

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireString(t *testing.T) {
	assert.NoError(t, RequireString("username", "alice"))

	err := RequireString("username", "")
	require.Error(t, err)

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "username", fieldErr.Field)
	assert.Contains(t, fieldErr.Expected, "non-empty")
}

func TestRequireBase64(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "unpadded", value: "Y2hhbGxlbmdl"},
		{name: "single padding", value: "YWxpY2U="},
		{name: "double padding", value: "YQ=="},
		{name: "url-safe characters", value: "a-b_c"},
		{name: "empty", value: "", wantErr: true},
		{name: "standard alphabet", value: "a+b/", wantErr: true},
		{name: "triple padding", value: "YQ===", wantErr: true},
		{name: "interior padding", value: "Y=Q=", wantErr: true},
		{name: "whitespace", value: "Y2 hh", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireBase64("challenge", tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOptionalBase64(t *testing.T) {
	assert.NoError(t, OptionalBase64("id", ""))
	assert.NoError(t, OptionalBase64("id", "YWJj"))
	assert.Error(t, OptionalBase64("id", "not base64!"))
}

func TestRequirePositiveInt(t *testing.T) {
	assert.NoError(t, RequirePositiveInt("timeout", 0))
	assert.NoError(t, RequirePositiveInt("timeout", 60000))
	assert.NoError(t, RequirePositiveInt("timeout", math.MaxInt32))
	assert.Error(t, RequirePositiveInt("timeout", -1))
	assert.Error(t, RequirePositiveInt("timeout", math.MaxInt32+1))
}

func TestRequireEnum(t *testing.T) {
	assert.NoError(t, RequireEnum("attestation", "direct", AttestationConveyances))
	assert.NoError(t, RequireEnum("attestation", "none", AttestationConveyances))
	assert.NoError(t, RequireEnum("attestation", "indirect", AttestationConveyances))

	err := RequireEnum("attestation", "enterprise", AttestationConveyances)
	require.Error(t, err)

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "attestation", fieldErr.Field)
}

func TestOptionalEnum(t *testing.T) {
	assert.NoError(t, OptionalEnum("userVerification", "", UserVerificationLevels))
	assert.NoError(t, OptionalEnum("userVerification", "preferred", UserVerificationLevels))
	assert.Error(t, OptionalEnum("userVerification", "sometimes", UserVerificationLevels))
}

func TestCredentialTransports(t *testing.T) {
	for _, transport := range []string{"usb", "nfc", "ble"} {
		assert.NoError(t, RequireEnum("transports", transport, CredentialTransports))
	}
	assert.Error(t, RequireEnum("transports", "carrier-pigeon", CredentialTransports))
	assert.Error(t, RequireEnum("transports", "internal", CredentialTransports))
}

func TestSanitizeForLog(t *testing.T) {
	assert.Equal(t, "unknown user", SanitizeForLog("unknown user"))
	assert.Equal(t, "nonewline", SanitizeForLog("no\nnew\rline\x00"))

	long := strings.Repeat("a", 2000)
	sanitized := SanitizeForLog(long)
	assert.Len(t, sanitized, 1000+len("...[truncated]"))
	assert.True(t, strings.HasSuffix(sanitized, "...[truncated]"))
}
