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

// Package protocol defines the messages exchanged between a WebAuthn
// client and a relying-party server during the registration and
// authentication ceremonies.
//
// Each message type declares its exact wire contract through its struct
// definition: only tagged fields are serialized, unset optional fields
// produce no key, and unknown keys on incoming objects are ignored.
//
// Three operations are explicit and deliberately separate:
//
//  1. Parsing (Parse, json.Unmarshal) - structural only, never trusted
//  2. Validate - format rules applied field by field, fail closed
//  3. EncodeBinaryFields / DecodeBinaryFields - coercion between the
//     base64url text a binary field uses on the wire and the raw bytes
//     credential operations consume
//
// A message must validate before it is transmitted, and an incoming
// message must validate in its wire form before its binary fields are
// decoded and the result is handed to security-sensitive code.
package protocol
