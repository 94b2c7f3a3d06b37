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
	"fmt"

	"github.com/jeremyhahn/go-webauthn-client/pkg/encoding"
	"github.com/jeremyhahn/go-webauthn-client/pkg/validation"
)

// binaryState tracks which representation of a Binary is authoritative.
type binaryState uint8

const (
	binaryUnset binaryState = iota
	binaryText
	binaryRaw
	binaryNull
)

// Binary carries a message field that travels as unpadded base64url text
// on the wire but is consumed as raw bytes by credential operations.
//
// A Binary is in one of four states: unset (the field was never present
// and is omitted from the wire), null (JSON null), text (the wire form),
// or raw (the decoded form). A null value decodes to an empty byte
// sequence and re-encodes to null, so nullability survives a coercion
// round trip.
type Binary struct {
	state    binaryState
	text     string
	raw      []byte
	fromNull bool
}

// NewBinary returns a Binary holding raw bytes.
func NewBinary(raw []byte) Binary {
	return Binary{state: binaryRaw, raw: raw}
}

// BinaryFromText returns a Binary holding base64url wire text.
func BinaryFromText(text string) Binary {
	return Binary{state: binaryText, text: text}
}

// NullBinary returns a Binary in the null state.
func NullBinary() Binary {
	return Binary{state: binaryNull, fromNull: true}
}

// IsZero reports whether the field is unset. Unset fields are omitted
// from serialized messages via the omitzero JSON option.
func (b Binary) IsZero() bool {
	return b.state == binaryUnset
}

// IsNull reports whether the value is null, or was null before decoding.
func (b Binary) IsNull() bool {
	return b.state == binaryNull || b.fromNull
}

// Bytes returns the decoded bytes. It returns nil unless Decode has been
// called or the value was constructed from raw bytes.
func (b Binary) Bytes() []byte {
	return b.raw
}

// Text returns the base64url wire text. It returns "" unless Encode has
// been called or the value was constructed from wire text.
func (b Binary) Text() string {
	return b.text
}

// Decode replaces the base64url text with its decoded bytes. A null
// value decodes to an empty byte sequence; decoding is a no-op for unset
// or already-decoded values.
func (b *Binary) Decode() error {
	switch b.state {
	case binaryText:
		raw, err := encoding.DecodeBinary(b.text)
		if err != nil {
			return err
		}
		b.raw = raw
		b.state = binaryRaw
		b.text = ""
	case binaryNull:
		b.raw = []byte{}
		b.state = binaryRaw
		b.fromNull = true
	}
	return nil
}

// Encode replaces the raw bytes with their base64url text. A value that
// was null before decoding returns to null rather than becoming an empty
// string; encoding is a no-op for unset or already-encoded values.
func (b *Binary) Encode() {
	if b.state != binaryRaw {
		return
	}
	if b.fromNull && len(b.raw) == 0 {
		b.state = binaryNull
		b.raw = nil
		return
	}
	b.text = encoding.EncodeBinary(b.raw)
	b.state = binaryText
	b.raw = nil
}

// MarshalJSON emits the wire form: null for null values, base64url text
// otherwise. Raw bytes are encoded on the fly.
func (b Binary) MarshalJSON() ([]byte, error) {
	switch b.state {
	case binaryUnset, binaryNull:
		return []byte("null"), nil
	case binaryRaw:
		if b.fromNull && len(b.raw) == 0 {
			return []byte("null"), nil
		}
		return json.Marshal(encoding.EncodeBinary(b.raw))
	default:
		return json.Marshal(b.text)
	}
}

// UnmarshalJSON accepts a JSON string (wire text) or null.
func (b *Binary) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = NullBinary()
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	*b = BinaryFromText(text)
	return nil
}

// coercionError wraps a binary decode failure with the field it occurred on.
func coercionError(field string, err error) error {
	return fmt.Errorf("%s: %w", field, err)
}

// requireBinaryField validates a required binary field: present, and in
// wire form it must be base64url text.
func requireBinaryField(field string, b Binary) error {
	switch b.state {
	case binaryText:
		return validation.RequireBase64(field, b.text)
	case binaryRaw:
		return nil
	default:
		return &validation.FieldError{Field: field, Expected: "base64url string"}
	}
}

// nullableBinaryField validates a binary field that may be null or absent.
func nullableBinaryField(field string, b Binary) error {
	if b.state == binaryUnset || b.state == binaryNull {
		return nil
	}
	return requireBinaryField(field, b)
}
