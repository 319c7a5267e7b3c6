// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"grimm.is/fwpolicy/internal/errors"
)

// File is a loaded HCL settings file, keeping the original hclwrite AST
// around so Save can round-trip comments and formatting rather than
// re-serializing from the decoded struct.
type File struct {
	Path     string
	Settings *Settings

	hclFile *hclwrite.File
}

// Load reads and decodes an HCL settings file from path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "failed to read settings file")
	}
	return LoadBytes(path, data)
}

// LoadBytes decodes settings from in-memory HCL source. filename is used
// only for diagnostics.
func LoadBytes(filename string, data []byte) (*File, error) {
	hclFile, diags := hclwrite.ParseConfig(data, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, errors.Errorf(errors.KindValidation, "failed to parse HCL: %s", diags.Error())
	}

	settings := Default()
	if err := hclsimple.Decode(filename, data, nil, settings); err != nil {
		return nil, errors.Wrap(err, errors.KindValidation, "failed to decode settings")
	}
	if settings.Server == nil {
		settings.Server = Default().Server
	}

	return &File{Path: filename, Settings: settings, hclFile: hclFile}, nil
}

// Save writes the settings back to disk at its original path.
func (f *File) Save() error {
	return f.SaveTo(f.Path)
}

// SaveTo writes the settings to a specific path, creating parent
// directories as needed.
func (f *File) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, errors.KindInternal, "failed to create settings directory")
		}
	}

	if err := os.WriteFile(path, f.hclFile.Bytes(), 0600); err != nil {
		return errors.Wrap(err, errors.KindInternal, "failed to write settings file")
	}
	f.Path = path
	return nil
}

// WriteDefault writes the built-in default settings, serialized as HCL, to
// path. Used by `fwpolicy init-settings`.
func WriteDefault(path string) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	body.SetAttributeValue("schema_version", cty.StringVal("1.0"))
	body.SetAttributeValue("flatten_addresses", cty.True)
	body.SetAttributeValue("flatten_services", cty.True)
	body.SetAttributeValue("fqdn_geo_match_all", cty.False)

	server := body.AppendNewBlock("server", nil).Body()
	server.SetAttributeValue("listen", cty.StringVal(":8443"))
	server.SetAttributeValue("require_auth", cty.False)

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, errors.KindInternal, "failed to create settings directory")
		}
	}
	if err := os.WriteFile(path, f.Bytes(), 0600); err != nil {
		return errors.Wrap(err, errors.KindInternal, "failed to write settings file")
	}
	return nil
}
