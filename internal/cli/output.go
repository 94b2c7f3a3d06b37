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
	"encoding/json"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-webauthn-client/pkg/protocol"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintAck prints the server's ceremony acknowledgement.
func (p *Printer) PrintAck(flow, username string, ack *protocol.ServerResponse) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"flow":     flow,
			"username": username,
			"status":   ack.Status,
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "%s succeeded for %q\n", flow, username)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// printJSON writes indented JSON output.
func (p *Printer) printJSON(v interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
