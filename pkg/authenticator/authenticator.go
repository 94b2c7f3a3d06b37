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

// Package authenticator provides a headless software authenticator
// that satisfies the ceremony collaborator contract. It holds a single
// ECDSA P-256 credential, emits "none" format attestation objects, and
// signs assertions the way a hardware token would. Useful for
// conformance testing and automation against a relying-party server.
package authenticator

import (
	"bytes"
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/go-webauthn/webauthn/protocol/webauthncbor"
	"github.com/go-webauthn/webauthn/protocol/webauthncose"

	"github.com/jeremyhahn/go-webauthn-client/pkg/protocol"
)

// Authenticator flag bits.
const (
	flagUserPresent  = 0x01
	flagUserVerified = 0x04
	flagAttestedData = 0x40
)

// Authenticator is a software credential device holding one ECDSA
// P-256 key pair. Safe for concurrent ceremonies.
type Authenticator struct {
	// AAGUID is the authenticator's model identifier (16 bytes).
	AAGUID []byte

	// CredentialID is the credential identifier.
	CredentialID []byte

	// UserPresent indicates whether the UP flag is set on responses.
	UserPresent bool

	// UserVerified indicates whether the UV flag is set on responses.
	UserVerified bool

	privateKey *ecdsa.PrivateKey
	origin     string

	mu         sync.Mutex
	signCount  uint32
	rpID       string
	userHandle []byte
}

// Option is a functional option for configuring an Authenticator.
type Option func(*Authenticator)

// WithAAGUID sets a custom AAGUID.
func WithAAGUID(aaguid []byte) Option {
	return func(a *Authenticator) {
		a.AAGUID = aaguid
	}
}

// WithCredentialID sets a custom credential ID.
func WithCredentialID(credID []byte) Option {
	return func(a *Authenticator) {
		a.CredentialID = credID
	}
}

// WithSignCount sets the initial sign count.
func WithSignCount(count uint32) Option {
	return func(a *Authenticator) {
		a.signCount = count
	}
}

// WithUserVerified sets the UV flag on responses.
func WithUserVerified(uv bool) Option {
	return func(a *Authenticator) {
		a.UserVerified = uv
	}
}

// New creates a software authenticator bound to the given web origin.
func New(origin string, opts ...Option) (*Authenticator, error) {
	if origin == "" {
		return nil, fmt.Errorf("authenticator: origin is required")
	}

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	aaguid := make([]byte, 16)
	if _, err := rand.Read(aaguid); err != nil {
		return nil, err
	}

	credID := make([]byte, 32)
	if _, err := rand.Read(credID); err != nil {
		return nil, err
	}

	a := &Authenticator{
		AAGUID:       aaguid,
		CredentialID: credID,
		UserPresent:  true,
		UserVerified: true,
		privateKey:   privateKey,
		origin:       origin,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// PublicKey returns the credential's public key.
func (a *Authenticator) PublicKey() crypto.PublicKey {
	return a.privateKey.Public()
}

// SignCount returns the current signature counter.
func (a *Authenticator) SignCount() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.signCount
}

// CreateCredential performs the authenticator side of a registration
// ceremony. Options must carry decoded bytes in their binary fields.
func (a *Authenticator) CreateCredential(ctx context.Context, options *protocol.CreateOptions) (*protocol.CredentialAttestation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !supportsES256(options.PubKeyCredParams) {
		return nil, ErrUnsupportedAlgorithm
	}
	for _, descriptor := range options.ExcludeCredentials {
		if bytes.Equal(descriptor.ID.Bytes(), a.CredentialID) {
			return nil, ErrCredentialExcluded
		}
	}

	rpID, err := a.resolveRPID(options.RelyingParty.ID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.rpID = rpID
	a.userHandle = options.User.ID.Bytes()
	signCount := a.signCount
	a.mu.Unlock()

	authData, err := a.buildAuthenticatorData(rpID, signCount, true)
	if err != nil {
		return nil, err
	}

	attestationObject, err := webauthncbor.Marshal(map[string]interface{}{
		"authData": authData,
		"fmt":      "none",
		"attStmt":  map[string]interface{}{},
	})
	if err != nil {
		return nil, err
	}

	return &protocol.CredentialAttestation{
		RawID: protocol.NewBinary(a.CredentialID),
		Response: protocol.AttestationResponse{
			AttestationObject: protocol.NewBinary(attestationObject),
			ClientDataJSON:    protocol.NewBinary(a.buildClientDataJSON(options.Challenge.Bytes(), "webauthn.create")),
		},
	}, nil
}

// GetCredential performs the authenticator side of an authentication
// ceremony. Options must carry decoded bytes in their binary fields.
func (a *Authenticator) GetCredential(ctx context.Context, options *protocol.GetOptions) (*protocol.CredentialAssertion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(options.AllowCredentials) > 0 && !allowsCredential(options.AllowCredentials, a.CredentialID) {
		return nil, ErrCredentialNotAllowed
	}

	a.mu.Lock()
	rpID := a.rpID
	userHandle := a.userHandle
	a.signCount++
	signCount := a.signCount
	a.mu.Unlock()

	if options.RelyingPartyID != "" {
		rpID = options.RelyingPartyID
	}
	if rpID == "" {
		var err error
		rpID, err = a.resolveRPID("")
		if err != nil {
			return nil, err
		}
	}

	authData, err := a.buildAuthenticatorData(rpID, signCount, false)
	if err != nil {
		return nil, err
	}

	clientDataJSON := a.buildClientDataJSON(options.Challenge.Bytes(), "webauthn.get")
	clientDataHash := sha256.Sum256(clientDataJSON)

	// Signature covers authData || SHA-256(clientDataJSON).
	signed := append(append([]byte{}, authData...), clientDataHash[:]...)
	digest := sha256.Sum256(signed)
	signature, err := ecdsa.SignASN1(rand.Reader, a.privateKey, digest[:])
	if err != nil {
		return nil, err
	}

	assertion := &protocol.CredentialAssertion{
		RawID: protocol.NewBinary(a.CredentialID),
		Response: protocol.AssertionResponse{
			AuthenticatorData: protocol.NewBinary(authData),
			ClientDataJSON:    protocol.NewBinary(clientDataJSON),
			Signature:         protocol.NewBinary(signature),
		},
	}
	if len(userHandle) > 0 {
		assertion.Response.UserHandle = protocol.NewBinary(userHandle)
	}
	return assertion, nil
}

// resolveRPID picks the relying-party identifier: the server-supplied
// value when present, otherwise the origin's host name.
func (a *Authenticator) resolveRPID(supplied string) (string, error) {
	if supplied != "" {
		return supplied, nil
	}
	parsed, err := url.Parse(a.origin)
	if err != nil || parsed.Hostname() == "" {
		return "", fmt.Errorf("authenticator: cannot derive rpId from origin %q", a.origin)
	}
	return parsed.Hostname(), nil
}

// coseKeyBytes returns the public key in COSE EC2 format.
func (a *Authenticator) coseKeyBytes() ([]byte, error) {
	pubKey := a.privateKey.Public().(*ecdsa.PublicKey)

	coseKey := map[int]interface{}{
		1:  2,                          // kty: EC2
		3:  int(webauthncose.AlgES256), // alg: ES256
		-1: 1,                          // crv: P-256
		-2: pubKey.X.Bytes(),           // x coordinate
		-3: pubKey.Y.Bytes(),           // y coordinate
	}

	return webauthncbor.Marshal(coseKey)
}

// buildAuthenticatorData assembles the authenticator data structure.
// If includeCredential is true, attested credential data is appended
// (registration); otherwise only the fixed header is emitted.
func (a *Authenticator) buildAuthenticatorData(rpID string, signCount uint32, includeCredential bool) ([]byte, error) {
	var buf bytes.Buffer

	// rpIdHash (32 bytes)
	rpIDHash := sha256.Sum256([]byte(rpID))
	buf.Write(rpIDHash[:])

	// flags (1 byte)
	buf.WriteByte(a.buildFlags(includeCredential))

	// signCount (4 bytes, big-endian)
	signCountBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(signCountBytes, signCount)
	buf.Write(signCountBytes)

	if includeCredential {
		// AAGUID (16 bytes)
		buf.Write(a.AAGUID)

		// Credential ID length (2 bytes, big-endian)
		credIDLen := make([]byte, 2)
		binary.BigEndian.PutUint16(credIDLen, uint16(len(a.CredentialID)))
		buf.Write(credIDLen)

		// Credential ID
		buf.Write(a.CredentialID)

		// Credential public key (COSE format)
		pubKeyBytes, err := a.coseKeyBytes()
		if err != nil {
			return nil, err
		}
		buf.Write(pubKeyBytes)
	}

	return buf.Bytes(), nil
}

// buildFlags builds the authenticator flags byte.
func (a *Authenticator) buildFlags(includeCredential bool) byte {
	var flags byte
	if a.UserPresent {
		flags |= flagUserPresent
	}
	if a.UserVerified {
		flags |= flagUserVerified
	}
	if includeCredential {
		flags |= flagAttestedData
	}
	return flags
}

// buildClientDataJSON builds the collected client data structure.
func (a *Authenticator) buildClientDataJSON(challenge []byte, ceremonyType string) []byte {
	clientData := struct {
		Type      string `json:"type"`
		Challenge string `json:"challenge"`
		Origin    string `json:"origin"`
	}{
		Type:      ceremonyType,
		Challenge: base64.RawURLEncoding.EncodeToString(challenge),
		Origin:    a.origin,
	}

	jsonBytes, _ := json.Marshal(clientData)
	return jsonBytes
}

// supportsES256 reports whether the server accepts ES256 credentials.
func supportsES256(params []protocol.CredentialParameter) bool {
	for _, param := range params {
		if param.Alg == int(webauthncose.AlgES256) {
			return true
		}
	}
	return false
}

// allowsCredential reports whether credID appears in the allow list.
func allowsCredential(descriptors []protocol.CredentialDescriptor, credID []byte) bool {
	for _, descriptor := range descriptors {
		if bytes.Equal(descriptor.ID.Bytes(), credID) {
			return true
		}
	}
	return false
}
