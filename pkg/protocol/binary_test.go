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
	"encoding/json"
	"testing"

	"github.com/jeremyhahn/go-webauthn-client/pkg/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinary_DecodeText(t *testing.T) {
	b := BinaryFromText("Y2hhbGxlbmdl")
	require.NoError(t, b.Decode())
	assert.Equal(t, []byte("challenge"), b.Bytes())
}

func TestBinary_DecodeInvalidText(t *testing.T) {
	b := BinaryFromText("not base64!")
	err := b.Decode()
	require.Error(t, err)
	assert.ErrorIs(t, err, encoding.ErrInvalidBase64)
}

func TestBinary_EncodeRaw(t *testing.T) {
	b := NewBinary([]byte("challenge"))
	b.Encode()
	assert.Equal(t, "Y2hhbGxlbmdl", b.Text())
}

func TestBinary_EncodeDecodeIdempotent(t *testing.T) {
	b := BinaryFromText("YWxpY2U")
	b.Encode() // already text, no-op
	assert.Equal(t, "YWxpY2U", b.Text())

	require.NoError(t, b.Decode())
	require.NoError(t, b.Decode()) // already raw, no-op
	assert.Equal(t, []byte("alice"), b.Bytes())
}

func TestBinary_NullRoundTrip(t *testing.T) {
	b := NullBinary()
	assert.True(t, b.IsNull())

	// null decodes to an empty byte sequence
	require.NoError(t, b.Decode())
	assert.NotNil(t, b.Bytes())
	assert.Empty(t, b.Bytes())
	assert.True(t, b.IsNull())

	// and re-encodes to null, not an empty string
	b.Encode()
	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestBinary_EmptyWithoutNullOrigin(t *testing.T) {
	// A present-but-empty value stays distinguishable from null.
	b := NewBinary([]byte{})
	b.Encode()
	assert.False(t, b.IsNull())

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, `""`, string(data))
}

func TestBinary_UnmarshalJSON(t *testing.T) {
	var b Binary
	require.NoError(t, json.Unmarshal([]byte(`"Y2hhbGxlbmdl"`), &b))
	assert.Equal(t, "Y2hhbGxlbmdl", b.Text())
	assert.False(t, b.IsNull())

	require.NoError(t, json.Unmarshal([]byte(`null`), &b))
	assert.True(t, b.IsNull())

	err := json.Unmarshal([]byte(`42`), &b)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedMessage)
}

func TestBinary_ZeroValueOmitted(t *testing.T) {
	var b Binary
	assert.True(t, b.IsZero())

	wrapper := struct {
		Value Binary `json:"value,omitzero"`
	}{}
	data, err := json.Marshal(wrapper)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestBinary_MarshalRawEncodesOnTheFly(t *testing.T) {
	b := NewBinary([]byte("alice"))
	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, `"YWxpY2U"`, string(data))
}

func TestRequireBinaryField(t *testing.T) {
	assert.NoError(t, requireBinaryField("challenge", BinaryFromText("YWJj")))
	assert.NoError(t, requireBinaryField("challenge", NewBinary([]byte{1, 2, 3})))
	assert.Error(t, requireBinaryField("challenge", BinaryFromText("***")))
	assert.Error(t, requireBinaryField("challenge", Binary{}))
	assert.Error(t, requireBinaryField("challenge", NullBinary()))
}

func TestNullableBinaryField(t *testing.T) {
	assert.NoError(t, nullableBinaryField("userHandle", Binary{}))
	assert.NoError(t, nullableBinaryField("userHandle", NullBinary()))
	assert.NoError(t, nullableBinaryField("userHandle", BinaryFromText("YWJj")))
	assert.Error(t, nullableBinaryField("userHandle", BinaryFromText("***")))
}
