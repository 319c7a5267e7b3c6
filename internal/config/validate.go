// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"net"
	"strconv"

	"grimm.is/fwpolicy/internal/errors"
	"grimm.is/fwpolicy/internal/validation"
)

// Validate checks the settings for internal consistency. It does not touch
// the filesystem or network.
func (s *Settings) Validate() error {
	if s.Server == nil {
		return nil
	}
	if s.Server.Listen == "" {
		return errors.New(errors.KindValidation, "server.listen cannot be empty when a server block is present")
	}
	if s.Server.RequireAuth && s.Server.TokenStore == "" {
		return errors.New(errors.KindValidation, "server.require_auth is set but server.token_store is empty")
	}
	if _, portStr, err := net.SplitHostPort(s.Server.Listen); err == nil {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return errors.Wrap(err, errors.KindValidation, "server.listen has a non-numeric port")
		}
		if err := validation.ValidatePortNumber(port); err != nil {
			return err
		}
	}
	return nil
}
