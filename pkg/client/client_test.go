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

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-webauthn-client/pkg/events"
	"github.com/jeremyhahn/go-webauthn-client/pkg/protocol"
	"github.com/jeremyhahn/go-webauthn-client/pkg/validation"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(&Config{Address: server.URL})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, server
}

func optionsRequest() *protocol.CreateOptionsRequest {
	return &protocol.CreateOptionsRequest{
		Username:    "alice",
		DisplayName: "Alice Example",
		Attestation: "direct",
	}
}

func TestNew(t *testing.T) {
	t.Run("requires address", func(t *testing.T) {
		_, err := New(&Config{})
		assert.Error(t, err)

		_, err = New(nil)
		assert.Error(t, err)
	})

	t.Run("adds scheme", func(t *testing.T) {
		client, err := New(&Config{Address: "example.com:8080"})
		require.NoError(t, err)
		assert.Equal(t, "http://example.com:8080", client.baseURL)

		client, err = New(&Config{Address: "example.com:8443", TLSEnabled: true})
		require.NoError(t, err)
		assert.Equal(t, "https://example.com:8443", client.baseURL)
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		client, err := New(&Config{Address: "http://example.com/"})
		require.NoError(t, err)
		assert.Equal(t, "http://example.com", client.baseURL)
	})
}

func TestSendRejectsNonPost(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should never reach the server")
	}))

	var out protocol.ServerResponse
	err := client.Send(context.Background(), http.MethodGet, DefaultAttestationOptionsPath, optionsRequest(), &out)
	assert.ErrorIs(t, err, ErrMethodNotAllowed)
}

func TestSendValidatesBeforeTransmitting(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid request must not be transmitted")
	}))

	req := optionsRequest()
	req.Username = ""

	var out protocol.CreateOptions
	err := client.Send(context.Background(), http.MethodPost, DefaultAttestationOptionsPath, req, &out)
	require.Error(t, err)

	var fieldErr *validation.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "username", fieldErr.Field)
}

func TestSendUnwrapsReplyArray(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"status": "ok",
			"rp": {"name": "Example Corp", "id": "example.com"},
			"user": {"id": "YWxpY2U", "name": "alice", "displayName": "Alice Example"},
			"challenge": "Y2hhbGxlbmdl",
			"pubKeyCredParams": [{"type": "public-key", "alg": -7}],
			"attestation": "direct"
		}]`))
	}))

	opts, err := client.AttestationOptions(context.Background(), optionsRequest())
	require.NoError(t, err)
	assert.Equal(t, "Y2hhbGxlbmdl", opts.Challenge.Text())
	assert.Equal(t, "example.com", opts.RelyingParty.ID)
}

func TestSendFailedReply(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A failed reply carries none of the success-schema fields;
		// it must still surface cleanly.
		_, _ = w.Write([]byte(`[{"status": "failed", "errorMessage": "unknown user"}]`))
	}))

	_, err := client.AttestationOptions(context.Background(), optionsRequest())
	require.Error(t, err)

	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, "unknown user", protoErr.Message)
	assert.Contains(t, err.Error(), "unknown user")
}

func TestSendTransportError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}))

	_, err := client.AttestationOptions(context.Background(), optionsRequest())
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)
}

func TestSendRedirectStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/attestation/options-v2")
		w.WriteHeader(http.StatusFound)
		_, _ = w.Write([]byte(`[{"status": "ok"}]`))
	}))
	t.Cleanup(server.Close)

	// Redirects are not followed; the 3xx reply must surface as a
	// transport failure, never as a parseable success body.
	httpClient := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	client, err := New(&Config{Address: server.URL}, WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.AttestationOptions(context.Background(), optionsRequest())
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusFound, transportErr.StatusCode)
}

func TestSendMalformedReply(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "this is not json"},
		{"bare object", `{"status": "ok"}`},
		{"empty array", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))

			_, err := client.AttestationOptions(context.Background(), optionsRequest())
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestSendValidatesReplySchema(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Status is ok but the challenge is missing.
		_, _ = w.Write([]byte(`[{
			"status": "ok",
			"rp": {"name": "Example Corp"},
			"user": {"id": "YWxpY2U", "name": "alice", "displayName": "Alice Example"},
			"pubKeyCredParams": [{"type": "public-key", "alg": -7}]
		}]`))
	}))

	_, err := client.AttestationOptions(context.Background(), optionsRequest())
	assert.Error(t, err)
}

func TestSendEmitsDebugEvents(t *testing.T) {
	var subtypes []string
	observer := events.ObserverFunc(func(event events.Event) {
		if event.Type == events.Debug {
			subtypes = append(subtypes, event.Subtype)
		}
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"status": "ok"}]`))
	}))
	t.Cleanup(server.Close)

	client, err := New(&Config{Address: server.URL}, WithObserver(observer))
	require.NoError(t, err)

	var out protocol.ServerResponse
	req := optionsRequest()
	require.NoError(t, client.Send(context.Background(), http.MethodPost, DefaultAttestationOptionsPath, req, &out))

	assert.Equal(t, []string{
		events.SubtypeSendRaw,
		events.SubtypeResponseRaw,
		events.SubtypeResponse,
	}, subtypes)
}

func TestSendConnectionRefused(t *testing.T) {
	client, err := New(&Config{Address: "http://127.0.0.1:1"})
	require.NoError(t, err)

	var out protocol.ServerResponse
	sendErr := client.Send(context.Background(), http.MethodPost, DefaultAssertionOptionsPath, optionsRequest(), &out)
	require.Error(t, sendErr)

	var transportErr *TransportError
	assert.ErrorAs(t, sendErr, &transportErr)
}

func TestAssertionHelpers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(DefaultAssertionOptionsPath, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{
			"status": "ok",
			"challenge": "Y2hhbGxlbmdl",
			"rpId": "example.com",
			"userVerification": "preferred"
		}]`))
	})
	mux.HandleFunc(DefaultAssertionResultPath, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"status": "ok"}]`))
	})

	client, _ := newTestClient(t, mux)

	opts, err := client.AssertionOptions(context.Background(), &protocol.GetOptionsRequest{
		Username:    "alice",
		DisplayName: "Alice Example",
	})
	require.NoError(t, err)
	assert.Equal(t, "example.com", opts.RelyingPartyID)

	require.NoError(t, opts.DecodeBinaryFields())
	assert.Equal(t, []byte("challenge"), opts.Challenge.Bytes())
}
