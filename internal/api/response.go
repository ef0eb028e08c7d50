// internal/api/response.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	custom_errors "effort-analyzer/internal/errors"
)

// respondWithJSON writes payload as a JSON body with the given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

// respondWithError writes {"error": message}.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// upstreamStatus maps API client errors onto the status returned to our callers.
// The second value is false for errors that are not from the client taxonomy.
func upstreamStatus(err error) (int, string, bool) {
	var formatErr *custom_errors.ErrInvalidRepoFormat
	var authErr *custom_errors.AuthenticationError
	var rateErr *custom_errors.RateLimitedError
	var upErr *custom_errors.UpstreamError
	switch {
	case errors.As(err, &formatErr):
		return http.StatusBadRequest, formatErr.Error(), true
	case errors.As(err, &upErr) && upErr.StatusCode == http.StatusNotFound:
		return http.StatusNotFound, "Repository not found on GitHub", true
	case errors.As(err, &rateErr):
		return http.StatusServiceUnavailable, "GitHub rate limit exceeded, try again later", true
	case errors.As(err, &authErr), errors.As(err, &upErr):
		return http.StatusBadGateway, "GitHub request failed", true
	}
	return 0, "", false
}
