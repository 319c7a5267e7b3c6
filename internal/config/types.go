// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package config loads the small HCL settings file that drives the
// fwpolicy CLI and HTTP API: the pipeline's flatten/lookup toggles and the
// API listener address. It does not describe FortiGate objects — those
// live in internal/store and internal/fgconfig.
package config

// CurrentSchemaVersion is the schema version written by Default. Loading
// does not check it: a file with any schema_version decodes.
const CurrentSchemaVersion = "1.0"

// Settings is the top-level structure of an fwpolicy settings file.
//
//	schema_version = "1.0"
//
//	flatten_addresses  = true
//	flatten_services   = true
//	fqdn_geo_match_all = false
//
//	server {
//	  listen       = ":8443"
//	  token_store  = "/var/lib/fwpolicy/tokens.json"
//	  require_auth = false
//	}
type Settings struct {
	// Schema version for forward compatibility.
	// @default: "1.0"
	SchemaVersion string `hcl:"schema_version,optional" json:"schema_version,omitempty"`

	// FlattenAddresses is the default for the FLATTEN stage's address toggle.
	// @default: true
	FlattenAddresses bool `hcl:"flatten_addresses,optional" json:"flatten_addresses"`
	// FlattenServices is the default for the FLATTEN stage's service toggle.
	// @default: true
	FlattenServices bool `hcl:"flatten_services,optional" json:"flatten_services"`
	// FQDNGeoMatchAll is the default for the LOOKUP stage's fqdnGeoMatchAll knob.
	// @default: false
	FQDNGeoMatchAll bool `hcl:"fqdn_geo_match_all,optional" json:"fqdn_geo_match_all"`

	Server *ServerSettings `hcl:"server,block" json:"server,omitempty"`
}

// ServerSettings configures the optional HTTP API façade (internal/api).
type ServerSettings struct {
	// Listen is the address the HTTP API binds to.
	// @default: ":8443"
	Listen string `hcl:"listen,optional" json:"listen,omitempty"`
	// TokenStore is the path to the bearer-token store (internal/auth).
	TokenStore string `hcl:"token_store,optional" json:"token_store,omitempty"`
	// RequireAuth forces every /v1/jobs request to present a bearer token,
	// even if the token store is currently empty.
	// @default: false
	RequireAuth bool `hcl:"require_auth,optional" json:"require_auth"`
}

// Default returns the built-in settings used when no settings file is given.
func Default() *Settings {
	return &Settings{
		SchemaVersion:    CurrentSchemaVersion,
		FlattenAddresses: true,
		FlattenServices:  true,
		FQDNGeoMatchAll:  false,
		Server: &ServerSettings{
			Listen:      ":8443",
			TokenStore:  "",
			RequireAuth: false,
		},
	}
}
