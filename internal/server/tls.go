package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caddyserver/certmagic"
)

// TLSOptions select where certificates come from. Domains take precedence
// over certificate files.
type TLSOptions struct {
	Domains    []string
	Email      string
	CertFile   string
	KeyFile    string
	HTTP3      bool
	StorageDir string // defaults to XDG or ~/.cache/mudawwana/certmagic
}

// Enabled reports whether the server will speak TLS.
func (o TLSOptions) Enabled() bool {
	return len(o.Domains) > 0 || (o.CertFile != "" && o.KeyFile != "")
}

// Build returns the TLS config for the listener, or nil for plain HTTP.
func (o TLSOptions) Build(ctx context.Context) (*tls.Config, error) {
	switch {
	case len(o.Domains) > 0:
		return o.buildCertMagic(ctx)
	case o.CertFile != "" || o.KeyFile != "":
		return buildFileTLS(o.CertFile, o.KeyFile)
	}
	return nil, nil
}

// buildCertMagic obtains and renews certificates through ACME. Challenges are
// answered with TLS-ALPN on the HTTPS listener itself.
func (o TLSOptions) buildCertMagic(ctx context.Context) (*tls.Config, error) {
	dir := o.StorageDir
	if dir == "" {
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			dir = filepath.Join(xdg, "mudawwana", "certmagic")
		} else {
			home, _ := os.UserHomeDir()
			dir = filepath.Join(home, ".cache", "mudawwana", "certmagic")
		}
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("cert storage: %w", err)
	}

	cm := certmagic.NewDefault()
	cm.Storage = &certmagic.FileStorage{Path: dir}
	cm.Issuers = []certmagic.Issuer{certmagic.NewACMEIssuer(cm, certmagic.ACMEIssuer{
		CA:                   certmagic.LetsEncryptProductionCA,
		Email:                o.Email,
		Agreed:               true,
		DisableHTTPChallenge: true,
	})}
	if err := cm.ManageSync(ctx, o.Domains); err != nil {
		return nil, fmt.Errorf("manage certificates: %w", err)
	}
	conf := cm.TLSConfig()
	conf.NextProtos = append([]string{"h2", "http/1.1"}, conf.NextProtos...)
	conf.MinVersion = tls.VersionTLS12
	return conf, nil
}

// buildFileTLS loads a certificate pair from PEM files and rejects expired ones.
func buildFileTLS(certFile, keyFile string) (*tls.Config, error) {
	if certFile == "" || keyFile == "" {
		return nil, errors.New("both tls.cert_file and tls.key_file are required")
	}
	c, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load keypair: %w", err)
	}
	now := time.Now()
	for i, b := range c.Certificate {
		cert, err := x509.ParseCertificate(b)
		if err != nil {
			return nil, fmt.Errorf("invalid certificate at index %d: %w", i, err)
		}
		if now.Before(cert.NotBefore) {
			return nil, fmt.Errorf("certificate not yet valid (starts %s)", cert.NotBefore)
		}
		if now.After(cert.NotAfter) {
			return nil, fmt.Errorf("certificate expired on %s", cert.NotAfter)
		}
	}
	return &tls.Config{
		Certificates: []tls.Certificate{c},
		NextProtos:   []string{"h2", "http/1.1"},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
