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

// Package ceremony orchestrates WebAuthn registration and
// authentication flows against a relying-party server. Each flow is a
// fixed sequence: request options, validate and decode the reply, hand
// the decoded options to the authenticator, submit its result, and
// validate the acknowledgement. Any failure aborts the flow; the
// orchestrator never retries. Flows share nothing but the read-only
// configuration, so multiple may run concurrently.
package ceremony

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-webauthn-client/pkg/events"
	"github.com/jeremyhahn/go-webauthn-client/pkg/logging"
	"github.com/jeremyhahn/go-webauthn-client/pkg/protocol"
)

// Service orchestrates registration and authentication ceremonies.
type Service struct {
	config        *Config
	transport     Transport
	authenticator Authenticator
	observer      events.Observer
	logger        *logging.Logger
	configured    bool
}

// ServiceParams contains dependencies for creating a ceremony service.
type ServiceParams struct {
	// Config is the ceremony configuration (required).
	Config *Config

	// Transport carries messages to the relying-party server (required).
	Transport Transport

	// Authenticator is the host credential subsystem (required).
	Authenticator Authenticator

	// Observer receives lifecycle notifications. If nil, events are
	// discarded.
	Observer events.Observer

	// Logger is the structured logger. If nil, a default is used.
	Logger *logging.Logger
}

// NewService creates a new ceremony service with the provided dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if params.Transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if params.Authenticator == nil {
		return nil, fmt.Errorf("authenticator is required")
	}

	// Set defaults and validate
	params.Config.SetDefaults()
	if err := params.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	observer := params.Observer
	if observer == nil {
		observer = events.Discard
	}
	logger := params.Logger
	if logger == nil {
		logger = logging.NewLogger(params.Config.Debug)
	}

	return &Service{
		config:        params.Config,
		transport:     params.Transport,
		authenticator: params.Authenticator,
		observer:      observer,
		logger:        logger,
		configured:    true,
	}, nil
}

// Register runs a registration ceremony for the given user and returns
// the server's acknowledgement.
func (s *Service) Register(ctx context.Context, username, displayName string) (*protocol.ServerResponse, error) {
	return s.RegisterWithOptions(ctx, username, displayName, nil)
}

// RegisterWithOptions runs a registration ceremony with a caller
// preference overlay. Overlay values, when present, override both the
// server-supplied options and the configured defaults.
func (s *Service) RegisterWithOptions(ctx context.Context, username, displayName string, overlay *protocol.WebAuthnOptions) (*protocol.ServerResponse, error) {
	if !s.configured {
		return nil, ErrNotConfigured
	}

	flowID := uuid.NewString()
	s.emit(events.RegisterStart, flowID, "", username)
	s.logger.Debugf("registration started: user=%s flow=%s", username, flowID)

	request := &protocol.CreateOptionsRequest{
		Username:    username,
		DisplayName: displayName,
		Attestation: s.config.Attestation,
		AuthenticatorSelection: &protocol.AuthenticatorSelection{
			AuthenticatorAttachment: s.config.AuthenticatorAttachment,
			ResidentKey:             s.config.ResidentKey,
			RequireResidentKey:      s.config.ResidentKey == "required",
			UserVerification:        s.config.UserVerification,
		},
	}

	var options protocol.CreateOptions
	if err := s.transport.Send(ctx, http.MethodPost, s.config.AttestationOptionsPath, request, &options); err != nil {
		return nil, s.fail(events.RegisterError, flowID, "request registration options", err)
	}

	if err := options.DecodeBinaryFields(); err != nil {
		return nil, s.fail(events.RegisterError, flowID, "decode registration options", err)
	}
	options.Timeout = s.mergeTimeout(options.Timeout, overlay)
	options.StripEnvelope()
	s.emit(events.Debug, flowID, events.SubtypeOptions, &options)

	s.emit(events.UserPresenceStart, flowID, "", nil)
	attestation, err := s.authenticator.CreateCredential(ctx, &options)
	s.emit(events.UserPresenceDone, flowID, "", nil)
	if err != nil {
		return nil, s.fail(events.RegisterError, flowID, "create credential", err)
	}

	var ack protocol.ServerResponse
	if err := s.transport.Send(ctx, http.MethodPost, s.config.AttestationResultPath, attestation, &ack); err != nil {
		return nil, s.fail(events.RegisterError, flowID, "send registration result", err)
	}

	s.emit(events.RegisterSuccess, flowID, "", &ack)
	s.logger.Debugf("registration completed: user=%s flow=%s", username, flowID)
	return &ack, nil
}

// Login runs an authentication ceremony for the given user and returns
// the server's acknowledgement.
func (s *Service) Login(ctx context.Context, username, displayName string) (*protocol.ServerResponse, error) {
	return s.LoginWithOptions(ctx, username, displayName, nil)
}

// LoginWithOptions runs an authentication ceremony with a caller
// preference overlay.
func (s *Service) LoginWithOptions(ctx context.Context, username, displayName string, overlay *protocol.WebAuthnOptions) (*protocol.ServerResponse, error) {
	if !s.configured {
		return nil, ErrNotConfigured
	}

	flowID := uuid.NewString()
	s.emit(events.LoginStart, flowID, "", username)
	s.logger.Debugf("authentication started: user=%s flow=%s", username, flowID)

	request := &protocol.GetOptionsRequest{
		Username:    username,
		DisplayName: displayName,
	}

	var options protocol.GetOptions
	if err := s.transport.Send(ctx, http.MethodPost, s.config.AssertionOptionsPath, request, &options); err != nil {
		return nil, s.fail(events.LoginError, flowID, "request authentication options", err)
	}

	if err := options.DecodeBinaryFields(); err != nil {
		return nil, s.fail(events.LoginError, flowID, "decode authentication options", err)
	}
	options.Timeout = s.mergeTimeout(options.Timeout, overlay)
	options.StripEnvelope()
	s.emit(events.Debug, flowID, events.SubtypeOptions, &options)

	s.emit(events.UserPresenceStart, flowID, "", nil)
	assertion, err := s.authenticator.GetCredential(ctx, &options)
	s.emit(events.UserPresenceDone, flowID, "", nil)
	if err != nil {
		return nil, s.fail(events.LoginError, flowID, "get credential", err)
	}

	var ack protocol.ServerResponse
	if err := s.transport.Send(ctx, http.MethodPost, s.config.AssertionResultPath, assertion, &ack); err != nil {
		return nil, s.fail(events.LoginError, flowID, "send authentication result", err)
	}

	s.emit(events.LoginSuccess, flowID, "", &ack)
	s.logger.Debugf("authentication completed: user=%s flow=%s", username, flowID)
	return &ack, nil
}

// mergeTimeout resolves the ceremony timeout handed to the
// authenticator: the server value, filled from the configured default
// when unset, then overridden by the caller overlay when present.
func (s *Service) mergeTimeout(received int64, overlay *protocol.WebAuthnOptions) int64 {
	merged := &protocol.WebAuthnOptions{Timeout: received}
	merged.Merge(&protocol.WebAuthnOptions{Timeout: s.config.Timeout}, false)
	if overlay != nil {
		merged.Merge(overlay, true)
	}
	return merged.Timeout
}

// emit delivers a fire-and-forget lifecycle notification.
func (s *Service) emit(eventType events.Type, flowID, subtype string, payload any) {
	s.observer.Notify(events.Event{
		Type:    eventType,
		FlowID:  flowID,
		Subtype: subtype,
		Payload: payload,
	})
}

// fail emits the flow's error event and wraps the underlying error
// with the step that failed. The underlying error class is preserved
// for errors.Is/As.
func (s *Service) fail(eventType events.Type, flowID, op string, err error) error {
	s.emit(eventType, flowID, "", err.Error())
	s.logger.Errorf("%s: %v", op, err)
	return WrapError(op, err)
}
