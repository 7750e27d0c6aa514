// haven/routes/json.go
package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"haven/haven/utils/apperrors"
	"haven/haven/utils/logging"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

var errInvalidBody = errors.New("Request body must be a JSON object.")

// generic wrapper to reduce boilerplate
func handleJSON(handler func(r *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, status, err := handler(r)
		if err != nil {
			writeError(w, r, status, err)
			return
		}
		writeJSON(w, status, res)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps known errors to their status; anything else is a 500 whose
// detail stays in the error log.
func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	status, message := errorStatus(err, status)
	if status >= http.StatusInternalServerError {
		logging.ErrorLogger.Error("request failed",
			zap.String("trace_id", logging.TraceID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func errorStatus(err error, fallback int) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrEmptyMessage):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrConversationNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, apperrors.ErrExportDisabled):
		return http.StatusServiceUnavailable, err.Error()
	}
	if fallback == 0 || fallback >= http.StatusInternalServerError {
		return http.StatusInternalServerError, "Internal server error."
	}
	return fallback, err.Error()
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

// conversationID reads the {id} path parameter. Anything that is not a
// conversation id is reported as not found.
func conversationID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 0)
	if err != nil {
		return 0, apperrors.ErrConversationNotFound
	}
	return uint(id), nil
}
