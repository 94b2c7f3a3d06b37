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
	"os"

	"github.com/spf13/cobra"
)

// loginCmd runs an authentication ceremony
var loginCmd = &cobra.Command{
	Use:   "login <username> [display-name]",
	Short: "Authenticate with a previously registered credential",
	Long: `Login runs a full WebAuthn authentication ceremony: it requests
assertion options from the server, signs the challenge with the
built-in software authenticator and submits the assertion result.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]
		displayName := username
		if len(args) > 1 {
			displayName = args[1]
		}

		svc, closer, err := getConfig().buildService()
		if err != nil {
			return err
		}
		defer func() { _ = closer() }()

		ack, err := svc.Login(cmd.Context(), username, displayName)
		if err != nil {
			return err
		}

		printer := NewPrinter(getConfig().OutputFormat, os.Stdout)
		return printer.PrintAck("authentication", username, ack)
	},
}
