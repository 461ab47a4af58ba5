package tls

import (
	"crypto/tls"
	"os"
	"testing"
	"time"
)

func TestGenerateDevCert(t *testing.T) {
	cert, err := GenerateDevCert()
	if err != nil {
		t.Fatalf("GenerateDevCert() error = %v", err)
	}

	if cert.Certificate == nil {
		t.Fatal("certificate is nil")
	}
	if cert.PrivateKey == nil {
		t.Fatal("private key is nil")
	}

	found := false
	for _, name := range cert.Certificate.DNSNames {
		if name == "localhost" {
			found = true
		}
	}
	if !found {
		t.Errorf("DNSNames = %v, want to contain localhost", cert.Certificate.DNSNames)
	}

	if len(cert.Certificate.IPAddresses) < 2 {
		t.Errorf("IPAddresses = %v, want loopback addresses", cert.Certificate.IPAddresses)
	}

	if cert.Certificate.NotAfter.Before(time.Now().AddDate(0, 11, 0)) {
		t.Errorf("NotAfter = %v, want roughly one year out", cert.Certificate.NotAfter)
	}
}

func TestGenerateDevCert_ExtraHosts(t *testing.T) {
	cert, err := GenerateDevCert("members.example.test", "192.168.1.10")
	if err != nil {
		t.Fatalf("GenerateDevCert() error = %v", err)
	}

	foundDNS := false
	for _, name := range cert.Certificate.DNSNames {
		if name == "members.example.test" {
			foundDNS = true
		}
	}
	if !foundDNS {
		t.Errorf("DNSNames = %v, want to contain members.example.test", cert.Certificate.DNSNames)
	}

	foundIP := false
	for _, ip := range cert.Certificate.IPAddresses {
		if ip.String() == "192.168.1.10" {
			foundIP = true
		}
	}
	if !foundIP {
		t.Errorf("IPAddresses = %v, want to contain 192.168.1.10", cert.Certificate.IPAddresses)
	}
}

func TestSaveAndLoadDevCert(t *testing.T) {
	tmpDir := t.TempDir()

	cert, err := GenerateDevCert()
	if err != nil {
		t.Fatalf("GenerateDevCert() error = %v", err)
	}

	if HasDevCert(tmpDir) {
		t.Error("HasDevCert() = true before save")
	}

	if err := SaveDevCert(tmpDir, cert); err != nil {
		t.Fatalf("SaveDevCert() error = %v", err)
	}

	if !HasDevCert(tmpDir) {
		t.Error("HasDevCert() = false after save")
	}

	loaded, err := LoadDevCert(tmpDir)
	if err != nil {
		t.Fatalf("LoadDevCert() error = %v", err)
	}
	if !loaded.Certificate.Equal(cert.Certificate) {
		t.Error("loaded certificate does not match saved certificate")
	}

	// Key files must not be world readable.
	_, keyFile := CertPaths(tmpDir)
	info, err := os.Stat(keyFile)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("key file permissions = %o, want %o", perm, 0o600)
	}
}

func TestSavedCertUsableByHTTPServer(t *testing.T) {
	tmpDir := t.TempDir()

	cert, err := GenerateDevCert()
	if err != nil {
		t.Fatalf("GenerateDevCert() error = %v", err)
	}
	if err := SaveDevCert(tmpDir, cert); err != nil {
		t.Fatalf("SaveDevCert() error = %v", err)
	}

	certFile, keyFile := CertPaths(tmpDir)
	if _, err := tls.LoadX509KeyPair(certFile, keyFile); err != nil {
		t.Fatalf("LoadX509KeyPair() error = %v", err)
	}
}

func TestLoadDevCert_Missing(t *testing.T) {
	if _, err := LoadDevCert(t.TempDir()); err == nil {
		t.Error("LoadDevCert() on empty dir should fail")
	}
}
