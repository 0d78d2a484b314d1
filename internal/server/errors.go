package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/vendor-intake/internal/fetcher"
	"github.com/sells-group/vendor-intake/internal/intake"
	"github.com/sells-group/vendor-intake/internal/reconcile"
	"github.com/sells-group/vendor-intake/internal/store"
)

// errBadRequest marks request decoding failures.
type errBadRequest struct {
	msg string
}

func (e *errBadRequest) Error() string { return e.msg }

func badRequest(msg string) error { return &errBadRequest{msg: msg} }

// HTTPStatus maps an error to the status code returned to clients.
func HTTPStatus(err error) int {
	var (
		bad      *errBadRequest
		invalid  *store.ValidationError
		maxBytes *http.MaxBytesError
	)
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &bad), errors.As(err, &invalid),
		errors.Is(err, reconcile.ErrInvalidExpected),
		errors.Is(err, fetcher.ErrUnsupportedFormat),
		errors.Is(err, fetcher.ErrNoRows):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, intake.ErrNoStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("server: request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
