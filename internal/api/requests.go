// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/opticus-project/opticus/internal/validation"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// VerifyRequest is the body of POST /api/auth/verify-2fa.
type VerifyRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// decodeAndValidate decodes a JSON request body into dst and applies its
// validate tags. On failure it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && err != io.EOF {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Malformed JSON body")
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		respondErrorDetails(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

// parseBBox parses a "minLon,minLat,maxLon,maxLat" query value. A malformed
// or wrong-arity value is treated as absent, not as an error; clients get
// the unfiltered result rather than a rejection.
func parseBBox(value string) *[4]float64 {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return nil
	}

	var bbox [4]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil
		}
		bbox[i] = v
	}
	return &bbox
}

// maxMemoryBytes bounds the in-memory portion of multipart parsing; the
// remainder spools to disk.
const maxMemoryBytes = 10 << 20

// uploadedFile extracts the "file" part of a multipart upload, enforcing
// the configured size cap via MaxBytesReader.
func uploadedFile(w http.ResponseWriter, r *http.Request, maxBytes int64) (io.ReadCloser, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxMemoryBytes); err != nil {
		return nil, "", fmt.Errorf("parse multipart form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("read file part: %w", err)
	}
	return file, header.Filename, nil
}
