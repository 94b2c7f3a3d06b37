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
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/descope/virtualwebauthn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-webauthn-client/pkg/client"
	"github.com/jeremyhahn/go-webauthn-client/pkg/encoding"
	"github.com/jeremyhahn/go-webauthn-client/pkg/protocol"
)

// virtualAuthenticator adapts the descope virtual authenticator to the
// collaborator contract. It round-trips options through their wire
// form, the same way a browser-hosted credential API would see them.
type virtualAuthenticator struct {
	rp         virtualwebauthn.RelyingParty
	auth       virtualwebauthn.Authenticator
	credential virtualwebauthn.Credential
}

func newVirtualAuthenticator(rp virtualwebauthn.RelyingParty) *virtualAuthenticator {
	return &virtualAuthenticator{
		rp:         rp,
		auth:       virtualwebauthn.NewAuthenticator(),
		credential: virtualwebauthn.NewCredential(virtualwebauthn.KeyTypeEC2),
	}
}

func (v *virtualAuthenticator) CreateCredential(ctx context.Context, options *protocol.CreateOptions) (*protocol.CredentialAttestation, error) {
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}

	parsed, err := virtualwebauthn.ParseAttestationOptions(string(optionsJSON))
	if err != nil {
		return nil, err
	}

	response := virtualwebauthn.CreateAttestationResponse(v.rp, v.auth, v.credential, *parsed)
	attestation, err := protocol.Parse[protocol.CredentialAttestation]([]byte(response))
	if err != nil {
		return nil, err
	}

	v.auth.AddCredential(v.credential)
	return attestation, nil
}

func (v *virtualAuthenticator) GetCredential(ctx context.Context, options *protocol.GetOptions) (*protocol.CredentialAssertion, error) {
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}

	parsed, err := virtualwebauthn.ParseAssertionOptions(string(optionsJSON))
	if err != nil {
		return nil, err
	}

	response := virtualwebauthn.CreateAssertionResponse(v.rp, v.auth, v.credential, *parsed)
	return protocol.Parse[protocol.CredentialAssertion]([]byte(response))
}

// relyingPartyServer is a minimal conformance-style server: it issues
// single-use challenges, records the registered credential and checks
// each result's client data against the challenge it handed out.
type relyingPartyServer struct {
	t            *testing.T
	rpID         string
	challenge    string
	credentialID string
}

func (s *relyingPartyServer) newChallenge() string {
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(s.t, err)
	s.challenge = base64.RawURLEncoding.EncodeToString(raw)
	return s.challenge
}

func (s *relyingPartyServer) reply(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte("[" + body + "]"))
}

// verifyClientData decodes the submitted clientDataJSON and checks the
// embedded challenge is the one this server issued.
func (s *relyingPartyServer) verifyClientData(clientDataText, ceremonyType string) error {
	raw, err := encoding.DecodeBinary(clientDataText)
	if err != nil {
		return err
	}
	var clientData struct {
		Type      string `json:"type"`
		Challenge string `json:"challenge"`
	}
	if err := json.Unmarshal(raw, &clientData); err != nil {
		return err
	}
	if clientData.Type != ceremonyType {
		return fmt.Errorf("unexpected client data type %q", clientData.Type)
	}
	if clientData.Challenge != s.challenge {
		return fmt.Errorf("challenge mismatch")
	}
	return nil
}

func (s *relyingPartyServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(client.DefaultAttestationOptionsPath, func(w http.ResponseWriter, r *http.Request) {
		var request protocol.CreateOptionsRequest
		require.NoError(s.t, json.NewDecoder(r.Body).Decode(&request))

		s.reply(w, fmt.Sprintf(`{
			"status": "ok",
			"rp": {"name": "Example Corp", "id": %q},
			"user": {"id": "dGVzdC11c2Vy", "name": %q, "displayName": %q},
			"challenge": %q,
			"pubKeyCredParams": [{"type": "public-key", "alg": -7}],
			"timeout": 60000,
			"attestation": %q
		}`, s.rpID, request.Username, request.DisplayName, s.newChallenge(), request.Attestation))
	})

	mux.HandleFunc(client.DefaultAttestationResultPath, func(w http.ResponseWriter, r *http.Request) {
		var attestation protocol.CredentialAttestation
		require.NoError(s.t, json.NewDecoder(r.Body).Decode(&attestation))
		require.NoError(s.t, attestation.Validate())
		require.NoError(s.t, s.verifyClientData(attestation.Response.ClientDataJSON.Text(), "webauthn.create"))

		s.credentialID = attestation.RawID.Text()
		s.reply(w, `{"status": "ok"}`)
	})

	mux.HandleFunc(client.DefaultAssertionOptionsPath, func(w http.ResponseWriter, r *http.Request) {
		if s.credentialID == "" {
			s.reply(w, `{"status": "failed", "errorMessage": "unknown user"}`)
			return
		}
		s.reply(w, fmt.Sprintf(`{
			"status": "ok",
			"challenge": %q,
			"rpId": %q,
			"allowCredentials": [{"type": "public-key", "id": %q}],
			"userVerification": "preferred"
		}`, s.newChallenge(), s.rpID, s.credentialID))
	})

	mux.HandleFunc(client.DefaultAssertionResultPath, func(w http.ResponseWriter, r *http.Request) {
		var assertion protocol.CredentialAssertion
		require.NoError(s.t, json.NewDecoder(r.Body).Decode(&assertion))
		require.NoError(s.t, assertion.Validate())
		require.NoError(s.t, s.verifyClientData(assertion.Response.ClientDataJSON.Text(), "webauthn.get"))

		if assertion.RawID.Text() != s.credentialID {
			s.reply(w, `{"status": "failed", "errorMessage": "unknown credential"}`)
			return
		}
		s.reply(w, `{"status": "ok"}`)
	})

	return mux
}

// TestCeremonyIntegration drives both flows end to end: real HTTP
// transport, an independent virtual authenticator and a conformance
// style server that checks challenges round-trip intact.
func TestCeremonyIntegration(t *testing.T) {
	rpServer := &relyingPartyServer{t: t, rpID: "localhost"}
	httpServer := httptest.NewServer(rpServer.handler())
	t.Cleanup(httpServer.Close)

	transport, err := client.New(&client.Config{Address: httpServer.URL})
	require.NoError(t, err)
	t.Cleanup(func() { _ = transport.Close() })

	rp := virtualwebauthn.RelyingParty{
		Name:   "Example Corp",
		ID:     rpServer.rpID,
		Origin: httpServer.URL,
	}

	svc, err := NewService(ServiceParams{
		Config:        &Config{Attestation: "none"},
		Transport:     transport,
		Authenticator: newVirtualAuthenticator(rp),
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Login before registration fails with the server's own message.
	_, err = svc.Login(ctx, "test-user", "Test User")
	require.Error(t, err)
	var protoErr *client.ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, "unknown user", protoErr.Message)

	// Register, then authenticate with the new credential.
	ack, err := svc.Register(ctx, "test-user", "Test User")
	require.NoError(t, err)
	assert.Equal(t, protocol.StatusOK, ack.Status)
	assert.NotEmpty(t, rpServer.credentialID)

	ack, err = svc.Login(ctx, "test-user", "Test User")
	require.NoError(t, err)
	assert.Equal(t, protocol.StatusOK, ack.Status)
}
