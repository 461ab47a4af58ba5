// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package main

import (
	"github.com/spf13/cobra"

	devtls "github.com/tomripp/member-website-sub001/internal/tls"
	"github.com/tomripp/member-website-sub001/internal/xdg"
)

// NewCertsCmd creates the certs subcommand.
func NewCertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certs",
		Short: "Generate a self-signed certificate for local HTTPS",
		Long: `Generate a self-signed server certificate so the site can be
served over HTTPS during development. Secure session cookies are only
sent over HTTPS, so a local production-like setup needs one.

The certificate is written to the XDG config directory unless --dir is
given. Point tls_cert_file and tls_key_file at the generated files.`,
		RunE: runCerts,
	}

	cmd.Flags().String("dir", "", "output directory (default: XDG certs dir)")
	cmd.Flags().StringSlice("host", nil, "additional hostnames or IPs to include")
	cmd.Flags().Bool("force", false, "overwrite an existing certificate")

	return cmd
}

func runCerts(cmd *cobra.Command, _ []string) error {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}
	if dir == "" {
		dir = xdg.CertsDir()
	}
	hosts, err := cmd.Flags().GetStringSlice("host")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if devtls.HasDevCert(dir) && !force {
		certFile, keyFile := devtls.CertPaths(dir)
		cmd.Printf("certificate already exists:\n  %s\n  %s\nuse --force to regenerate\n", certFile, keyFile)
		return nil
	}

	cert, err := devtls.GenerateDevCert(hosts...)
	if err != nil {
		return err
	}
	if err := devtls.SaveDevCert(dir, cert); err != nil {
		return err
	}

	certFile, keyFile := devtls.CertPaths(dir)
	cmd.Printf("generated certificate:\n  %s\n  %s\n", certFile, keyFile)
	cmd.Printf("valid until %s\n", cert.Certificate.NotAfter.Format("2006-01-02"))
	return nil
}
