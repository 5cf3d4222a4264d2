package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"guide-server/utils/errors"
)

// ErrorMiddleware recovers panics and answers with a standardized JSON error.
func ErrorMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("panic recovered")
					WriteError(w, errors.ErrInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError writes err as a JSON APIError response.
func WriteError(w http.ResponseWriter, err error) {
	apiErr := errors.Wrap(err, "UNKNOWN_ERROR", "Unexpected error", errors.ErrInternal.Status)
	if apiErr.Status >= 500 {
		log.Error().Str("code", apiErr.Code).Str("details", apiErr.Details).Msg("server error")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(apiErr)
}
