// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/meserio/internal/platform/apperr"
	"github.com/taibuivan/meserio/internal/platform/ctxutil"
	"github.com/taibuivan/meserio/internal/platform/sec"
	"github.com/taibuivan/meserio/internal/platform/validate"
	"github.com/taibuivan/meserio/pkg/i18n"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID retrieves a named URL parameter (UUID/Slug) from the request.
*/
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Language returns the display language requested via the "lang" query
parameter, defaulting to the platform default language.

The value is only a preference: translation resolution falls back per
[i18n.Resolve], so an unsupported code degrades gracefully.
*/
func Language(request *http.Request) string {
	if lang := request.URL.Query().Get("lang"); lang != "" {
		return lang
	}
	return i18n.DefaultLanguage
}

/*
Claims extracts the authenticated caller claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the caller claims.

Returns:
  - *sec.AuthClaims: The authenticated caller claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {

	// Get caller claims
	claims := ctxutil.GetAuthUser(request.Context())

	// If the caller is not authenticated, return an error
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return claims, nil
}

/*
RequiredFirmID returns the firm the calling token acts for.

Answer ownership is always derived from the verified token, never from the
request payload.

Returns:
  - string: Firm UUID
  - error: apperr.Unauthorized / apperr.Forbidden if no firm identity is present
*/
func RequiredFirmID(request *http.Request) (string, error) {

	// Get caller claims
	claims, err := RequiredClaims(request)

	// If the caller is not authenticated, return an error
	if err != nil {
		return "", err
	}

	if claims.FirmID == "" {
		return "", apperr.Forbidden("A firm account is required")
	}

	return claims.FirmID, nil
}
