// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != nil {
		t.Fatalf("Default() should validate cleanly, got: %v", err)
	}
	if s.SchemaVersion != CurrentSchemaVersion {
		t.Fatalf("expected schema version %q, got %q", CurrentSchemaVersion, s.SchemaVersion)
	}
	if !s.FlattenAddresses || !s.FlattenServices {
		t.Fatalf("expected both flatten toggles on by default")
	}
	if s.Server == nil || s.Server.Listen != ":8443" {
		t.Fatalf("expected default server listen of :8443, got %+v", s.Server)
	}
}

func TestValidateRequiresListen(t *testing.T) {
	s := Default()
	s.Server.Listen = ""
	if err := s.Validate(); err == nil {
		t.Fatalf("expected validation error for empty server.listen")
	}
}

func TestValidateRequiresTokenStoreWhenAuthRequired(t *testing.T) {
	s := Default()
	s.Server.RequireAuth = true
	s.Server.TokenStore = ""
	if err := s.Validate(); err == nil {
		t.Fatalf("expected validation error when require_auth is set without a token_store")
	}

	s.Server.TokenStore = "/var/lib/fwpolicy/tokens.json"
	if err := s.Validate(); err != nil {
		t.Fatalf("expected no error once token_store is set, got: %v", err)
	}
}

func TestValidateRejectsOutOfRangePort(t *testing.T) {
	s := Default()
	s.Server.Listen = ":70000"
	if err := s.Validate(); err == nil {
		t.Fatalf("expected validation error for an out-of-range port")
	}
}

func TestWriteDefaultAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fwpolicy.hcl")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Default()
	got := f.Settings
	if got.SchemaVersion != want.SchemaVersion ||
		got.FlattenAddresses != want.FlattenAddresses ||
		got.FlattenServices != want.FlattenServices ||
		got.FQDNGeoMatchAll != want.FQDNGeoMatchAll {
		t.Fatalf("round-tripped settings mismatch: got %+v, want %+v", got, want)
	}
	if got.Server == nil || got.Server.Listen != want.Server.Listen {
		t.Fatalf("round-tripped server settings mismatch: got %+v, want %+v", got.Server, want.Server)
	}
}

func TestLoadBytesCustomSettings(t *testing.T) {
	src := []byte(`
schema_version = "1.0"
flatten_addresses  = false
flatten_services   = true
fqdn_geo_match_all = true

server {
  listen       = "127.0.0.1:9443"
  token_store  = "/tmp/tokens.json"
  require_auth = true
}
`)

	f, err := LoadBytes("inline.hcl", src)
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}

	s := f.Settings
	if s.FlattenAddresses {
		t.Fatalf("expected flatten_addresses=false to be honored")
	}
	if !s.FlattenServices || !s.FQDNGeoMatchAll {
		t.Fatalf("expected flatten_services and fqdn_geo_match_all to be true")
	}
	if s.Server.Listen != "127.0.0.1:9443" || !s.Server.RequireAuth {
		t.Fatalf("unexpected server settings: %+v", s.Server)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("expected custom settings to validate, got: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fwpolicy.hcl")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	other := filepath.Join(dir, "nested", "copy.hcl")
	if err := f.SaveTo(other); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	reloaded, err := Load(other)
	if err != nil {
		t.Fatalf("Load(saved copy): %v", err)
	}
	if reloaded.Settings.Server.Listen != f.Settings.Server.Listen {
		t.Fatalf("saved copy diverged from original")
	}
}
