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

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/jeremyhahn/go-webauthn-client/pkg/authenticator"
	"github.com/jeremyhahn/go-webauthn-client/pkg/ceremony"
	"github.com/jeremyhahn/go-webauthn-client/pkg/client"
	"github.com/jeremyhahn/go-webauthn-client/pkg/events"
	"github.com/jeremyhahn/go-webauthn-client/pkg/logging"
)

// Config holds global CLI configuration
type Config struct {
	// ConfigFile is the path to the configuration file
	ConfigFile string

	// Server is the relying-party server address
	Server string

	// Origin is the web origin embedded in client data.
	// If empty, the server address is used.
	Origin string

	// Timeout is the ceremony timeout in milliseconds
	Timeout int64

	// Attestation is the attestation conveyance preference
	Attestation string

	// UserVerification is the user verification requirement
	UserVerification string

	// OutputFormat controls output formatting (text, json)
	OutputFormat string

	// Debug prints ceremony lifecycle events to stderr
	Debug bool

	// TLSInsecure skips TLS certificate verification (not recommended)
	TLSInsecure bool

	// TLSCACert is the path to the CA certificate file
	TLSCACert string

	// TLSCert is the path to the client certificate file (for mTLS)
	TLSCert string

	// TLSKey is the path to the client key file (for mTLS)
	TLSKey string
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Server:           "http://localhost:8080",
		Timeout:          60000,
		Attestation:      "direct",
		UserVerification: "preferred",
		OutputFormat:     "text",
	}
}

// applyViper folds config-file and environment values merged by viper
// back into the configuration. Flag values win because they were bound
// into viper with the highest precedence.
func (c *Config) applyViper() {
	c.Server = viper.GetString("server")
	c.Origin = viper.GetString("origin")
	c.Timeout = viper.GetInt64("timeout")
	c.Attestation = viper.GetString("attestation")
	c.UserVerification = viper.GetString("user-verification")
	c.TLSCACert = viper.GetString("tls-ca")
	c.TLSCert = viper.GetString("tls-cert")
	c.TLSKey = viper.GetString("tls-key")
	c.TLSInsecure = viper.GetBool("tls-insecure")
	c.OutputFormat = viper.GetString("output")
	c.Debug = viper.GetBool("debug")
}

// origin resolves the web origin for the software authenticator.
func (c *Config) origin() string {
	if c.Origin != "" {
		return c.Origin
	}
	origin := c.Server
	if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
		if c.tlsEnabled() {
			origin = "https://" + origin
		} else {
			origin = "http://" + origin
		}
	}
	return strings.TrimSuffix(origin, "/")
}

func (c *Config) tlsEnabled() bool {
	return strings.HasPrefix(c.Server, "https://") ||
		c.TLSCACert != "" || (c.TLSCert != "" && c.TLSKey != "")
}

// buildService wires the transport, software authenticator and
// ceremony orchestrator from the configuration. The returned closer
// releases transport resources.
func (c *Config) buildService() (*ceremony.Service, func() error, error) {
	if c.Server == "" {
		return nil, nil, fmt.Errorf("server address is required")
	}

	transport, err := client.New(&client.Config{
		Address:               c.Server,
		TLSEnabled:            c.tlsEnabled(),
		TLSInsecureSkipVerify: c.TLSInsecure,
		TLSCAFile:             c.TLSCACert,
		TLSCertFile:           c.TLSCert,
		TLSKeyFile:            c.TLSKey,
	}, client.WithObserver(c.observer()), client.WithLogger(logging.NewLogger(c.Debug)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create transport: %w", err)
	}

	auth, err := authenticator.New(c.origin())
	if err != nil {
		_ = transport.Close()
		return nil, nil, fmt.Errorf("failed to create authenticator: %w", err)
	}

	svc, err := ceremony.NewService(ceremony.ServiceParams{
		Config: &ceremony.Config{
			Timeout:          c.Timeout,
			Attestation:      c.Attestation,
			UserVerification: c.UserVerification,
			Debug:            c.Debug,
		},
		Transport:     transport,
		Authenticator: auth,
		Observer:      c.observer(),
		Logger:        logging.NewLogger(c.Debug),
	})
	if err != nil {
		_ = transport.Close()
		return nil, nil, err
	}

	return svc, transport.Close, nil
}

// observer returns a lifecycle observer that prints events to stderr
// in debug mode, or a discarding one otherwise.
func (c *Config) observer() events.Observer {
	if !c.Debug {
		return events.Discard
	}
	return events.ObserverFunc(func(event events.Event) {
		if event.Subtype != "" {
			fmt.Fprintf(os.Stderr, "[%s/%s] flow=%s %v\n", event.Type, event.Subtype, event.FlowID, event.Payload)
			return
		}
		fmt.Fprintf(os.Stderr, "[%s] flow=%s %v\n", event.Type, event.FlowID, event.Payload)
	})
}
