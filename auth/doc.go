// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth validates the admin key protecting device management.

RequireAdmin checks the X-Admin-Key request header against the
configured key:

	if err := auth.RequireAdmin(r, cfg.Server.AdminKey); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

Comparison is constant time over SHA-256 digests. An empty configured
key validates nothing.
*/
package auth
