package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dnsclient.yaml")
	contents := "nameservers:\n  - 1.1.1.1\n  - 8.8.8.8\ndefault_timeout: 3s\ndot_server_name: dns.example.com\nenable_cookies: true\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(f.Nameservers) != 2 || f.Nameservers[0] != "1.1.1.1" {
		t.Fatalf("Nameservers = %v", f.Nameservers)
	}
	if f.DefaultTimeout != 3*time.Second {
		t.Fatalf("DefaultTimeout = %v, want 3s", f.DefaultTimeout)
	}
	if f.DoTServerName != "dns.example.com" {
		t.Fatalf("DoTServerName = %q", f.DoTServerName)
	}
	if !f.EnableCookies {
		t.Fatal("EnableCookies = false, want true")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/dnsclient.yaml"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadConfigMalformedTimeout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dnsclient.yaml")
	if err := os.WriteFile(path, []byte("default_timeout: not-a-duration\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for a malformed duration")
	}
}
