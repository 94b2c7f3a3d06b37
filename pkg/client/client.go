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

// Package client implements the transport adapter that carries protocol
// messages to and from a relying-party server over HTTP/JSON.
//
// A message is encoded and validated before it is serialized; a reply is
// checked for a failed status before its success schema is validated.
// Replies are wire-array-wrapped: the adapter takes the first element.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jeremyhahn/go-webauthn-client/pkg/events"
	"github.com/jeremyhahn/go-webauthn-client/pkg/logging"
	"github.com/jeremyhahn/go-webauthn-client/pkg/protocol"
)

// Default relying-party endpoint paths.
const (
	DefaultAttestationOptionsPath = "/attestation/options"
	DefaultAttestationResultPath  = "/attestation/result"
	DefaultAssertionOptionsPath   = "/assertion/options"
	DefaultAssertionResultPath    = "/assertion/result"
)

// Config configures the transport adapter.
type Config struct {
	// Address is the relying-party server address. A scheme is added
	// when missing, based on TLSEnabled.
	Address string `yaml:"address" json:"address" mapstructure:"address"`

	// TLSEnabled enables HTTPS.
	TLSEnabled bool `yaml:"tls_enabled" json:"tls_enabled" mapstructure:"tls_enabled"`

	// TLSInsecureSkipVerify disables server certificate verification.
	TLSInsecureSkipVerify bool `yaml:"tls_insecure_skip_verify" json:"tls_insecure_skip_verify" mapstructure:"tls_insecure_skip_verify"`

	// TLSCAFile is an optional CA certificate bundle.
	TLSCAFile string `yaml:"tls_ca_file" json:"tls_ca_file" mapstructure:"tls_ca_file"`

	// TLSCertFile and TLSKeyFile configure an optional client
	// certificate (mTLS).
	TLSCertFile string `yaml:"tls_cert_file" json:"tls_cert_file" mapstructure:"tls_cert_file"`
	TLSKeyFile  string `yaml:"tls_key_file" json:"tls_key_file" mapstructure:"tls_key_file"`

	// Headers are added to every request.
	Headers map[string]string `yaml:"headers" json:"headers" mapstructure:"headers"`

	// Timeout bounds each HTTP call. Zero means no client-side bound
	// beyond the request context.
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
}

// Client is the HTTP transport adapter.
type Client struct {
	config     *Config
	httpClient *http.Client
	baseURL    string
	observer   events.Observer
	logger     *logging.Logger
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithObserver attaches an observer for debug notifications.
func WithObserver(observer events.Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client (useful for tests).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a transport adapter for the configured server.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil || cfg.Address == "" {
		return nil, fmt.Errorf("client: server address is required")
	}

	// Parse and normalize the base URL
	baseURL := cfg.Address
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		if cfg.TLSEnabled {
			baseURL = "https://" + baseURL
		} else {
			baseURL = "http://" + baseURL
		}
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		config:  cfg,
		baseURL: baseURL,
		logger:  logging.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		tlsConfig, err := buildTLSConfig(cfg)
		if err != nil {
			return nil, err
		}
		c.httpClient = &http.Client{
			Transport: &http.Transport{TLSClientConfig: tlsConfig},
			Timeout:   cfg.Timeout,
		}
	}

	return c, nil
}

// buildTLSConfig builds the TLS configuration from file-based settings.
func buildTLSConfig(cfg *Config) (*tls.Config, error) {
	if !cfg.TLSEnabled {
		return nil, nil
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.TLSInsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}

	// Load CA certificate if specified
	if cfg.TLSCAFile != "" {
		caCert, err := os.ReadFile(cfg.TLSCAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}
		tlsConfig.RootCAs = caCertPool
	}

	// Load client certificate if specified (mTLS)
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}

// Send encodes, validates and transmits a message, then reconstructs and
// validates the reply into out. Only POST is supported; any other verb
// is a programmer error. A reply whose status is "failed" is surfaced as
// a *ProtocolError before the success schema is consulted.
func (c *Client) Send(ctx context.Context, method, path string, msg protocol.Message, out protocol.Response) error {
	if method != http.MethodPost {
		return ErrMethodNotAllowed
	}

	if err := msg.EncodeBinaryFields(); err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	c.observe(events.SubtypeSendRaw, string(body))

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		sendErr := &TransportError{Err: err}
		c.observe(events.SubtypeSendError, sendErr.Error())
		return sendErr
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warnf("failed to close response body: %v", closeErr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{StatusCode: resp.StatusCode, Err: err}
	}
	c.observe(events.SubtypeResponseRaw, string(respBody))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &TransportError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	// Replies are wire-array-wrapped; take the first element.
	var wrapped []json.RawMessage
	if err := json.Unmarshal(respBody, &wrapped); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(wrapped) == 0 {
		return fmt.Errorf("%w: empty reply array", ErrMalformedResponse)
	}
	reply := wrapped[0]

	// A failed reply short-circuits: surface the server's message
	// verbatim rather than validating it against a success schema.
	var envelope protocol.ServerResponse
	if err := json.Unmarshal(reply, &envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if envelope.Failed() {
		return &ProtocolError{Message: envelope.ErrorMessage}
	}

	if err := json.Unmarshal(reply, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	c.observe(events.SubtypeResponse, out)

	return out.Validate()
}

// AttestationOptions requests registration options at the default path.
func (c *Client) AttestationOptions(ctx context.Context, req *protocol.CreateOptionsRequest) (*protocol.CreateOptions, error) {
	var opts protocol.CreateOptions
	if err := c.Send(ctx, http.MethodPost, DefaultAttestationOptionsPath, req, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// AttestationResult submits a registration result at the default path.
func (c *Client) AttestationResult(ctx context.Context, att *protocol.CredentialAttestation) (*protocol.ServerResponse, error) {
	var resp protocol.ServerResponse
	if err := c.Send(ctx, http.MethodPost, DefaultAttestationResultPath, att, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AssertionOptions requests authentication options at the default path.
func (c *Client) AssertionOptions(ctx context.Context, req *protocol.GetOptionsRequest) (*protocol.GetOptions, error) {
	var opts protocol.GetOptions
	if err := c.Send(ctx, http.MethodPost, DefaultAssertionOptionsPath, req, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// AssertionResult submits an authentication result at the default path.
func (c *Client) AssertionResult(ctx context.Context, assertion *protocol.CredentialAssertion) (*protocol.ServerResponse, error) {
	var resp protocol.ServerResponse
	if err := c.Send(ctx, http.MethodPost, DefaultAssertionResultPath, assertion, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// observe emits a fire-and-forget debug notification.
func (c *Client) observe(subtype string, payload any) {
	if c.observer == nil {
		return
	}
	c.observer.Notify(events.Event{
		Type:    events.Debug,
		Subtype: subtype,
		Payload: payload,
	})
}
