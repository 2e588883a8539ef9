package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/smartvegis/marketplace/internal/middleware"
)

const maxBodyBytes = 1 << 20

var errBadRequestBody = errors.New("invalid request body")

// decodeJSON decodes a single JSON object from the request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequestBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must contain a single JSON object", errBadRequestBody)
	}
	return nil
}

// userID returns the authenticated user's id. Routes using it sit behind
// middleware.Authenticate.
func userID(r *http.Request) string {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		return ""
	}
	return claims.UserID
}
