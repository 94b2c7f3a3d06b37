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
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Global configuration
	globalConfig *Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "webauthn-client",
	Short: "WebAuthn client - registration and authentication ceremonies from the command line",
	Long: `webauthn-client drives WebAuthn registration and authentication
ceremonies against a relying-party server using a built-in software
authenticator. It speaks the FIDO conformance message format:

  POST /attestation/options   begin registration
  POST /attestation/result    complete registration
  POST /assertion/options     begin authentication
  POST /assertion/result      complete authentication

Configuration is layered: flags override environment variables
(WEBAUTHN_CLIENT_*), which override the config file
($HOME/.webauthn-client.yaml by default).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Initialize global config
	globalConfig = NewConfig()

	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globalConfig.ConfigFile, "config", "",
		"config file (default is $HOME/.webauthn-client.yaml)")
	flags.StringVarP(&globalConfig.Server, "server", "s", globalConfig.Server,
		"relying-party server address")
	flags.StringVar(&globalConfig.Origin, "origin", globalConfig.Origin,
		"web origin embedded in client data (defaults to the server address)")
	flags.Int64Var(&globalConfig.Timeout, "timeout", globalConfig.Timeout,
		"ceremony timeout in milliseconds")
	flags.StringVar(&globalConfig.Attestation, "attestation", globalConfig.Attestation,
		"attestation conveyance preference (direct, indirect, none)")
	flags.StringVar(&globalConfig.UserVerification, "user-verification", globalConfig.UserVerification,
		"user verification requirement (required, preferred, discouraged)")
	flags.StringVar(&globalConfig.TLSCACert, "tls-ca", "",
		"path to the CA certificate file")
	flags.StringVar(&globalConfig.TLSCert, "tls-cert", "",
		"path to the client certificate file (for mTLS)")
	flags.StringVar(&globalConfig.TLSKey, "tls-key", "",
		"path to the client key file (for mTLS)")
	flags.BoolVar(&globalConfig.TLSInsecure, "tls-insecure", false,
		"skip TLS certificate verification (not recommended)")
	flags.StringVarP(&globalConfig.OutputFormat, "output", "o", globalConfig.OutputFormat,
		"output format (text, json)")
	flags.BoolVarP(&globalConfig.Debug, "debug", "d", false,
		"print ceremony lifecycle events to stderr")

	// Make every persistent flag reachable through the config file and
	// environment as well.
	for _, key := range []string{
		"server", "origin", "timeout", "attestation", "user-verification",
		"tls-ca", "tls-cert", "tls-key", "tls-insecure", "output", "debug",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}

	// Add subcommands
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads the config file and environment into viper, then
// folds the merged values back into the global configuration.
func initConfig() {
	if globalConfig.ConfigFile != "" {
		viper.SetConfigFile(globalConfig.ConfigFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".webauthn-client")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("WEBAUTHN_CLIENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; flags and env still apply.
	_ = viper.ReadInConfig()

	globalConfig.applyViper()
}

// getConfig returns the global configuration
func getConfig() *Config {
	return globalConfig
}
