// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"net/http"
)

var ErrInvalidAdminKey = errors.New("invalid admin key")

// AdminKeyHeader carries the admin credential on admin CRUD requests.
const AdminKeyHeader = "X-Admin-Key"

// ValidateAdminKey compares the provided key against the configured one in
// constant time. Comparing digests keeps the comparison length-independent.
func ValidateAdminKey(provided, configured string) error {
	if provided == "" || configured == "" {
		return ErrInvalidAdminKey
	}
	a := sha256.Sum256([]byte(provided))
	b := sha256.Sum256([]byte(configured))
	if !hmac.Equal(a[:], b[:]) {
		return ErrInvalidAdminKey
	}
	return nil
}

// RequireAdmin validates the admin header on a request.
func RequireAdmin(r *http.Request, configured string) error {
	return ValidateAdminKey(r.Header.Get(AdminKeyHeader), configured)
}
