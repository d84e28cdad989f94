package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ruteri/sskr-service/api"
	"github.com/ruteri/sskr-service/interfaces"
	"github.com/ruteri/sskr-service/sskr"
)

// RequestError provides structured error information for HTTP responses.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func badRequest(err error) *RequestError {
	return &RequestError{StatusCode: http.StatusBadRequest, Err: err}
}

// statusForError maps domain errors to HTTP status codes. Shard sets that are
// well formed but insufficient are 422, every other sskr error is 400.
func statusForError(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}

	var sskrErr sskr.Error
	switch {
	case errors.Is(err, sskr.ErrNotEnoughGroups), errors.Is(err, sskr.ErrNotEnoughMemberShards):
		return http.StatusUnprocessableEntity
	case errors.As(err, &sskrErr):
		return http.StatusBadRequest
	case errors.Is(err, interfaces.ErrUnauthorizedAdmin):
		return http.StatusForbidden
	case errors.Is(err, interfaces.ErrKeeperLocked):
		return http.StatusLocked
	case errors.Is(err, interfaces.ErrKeeperUnlocked):
		return http.StatusConflict
	case errors.Is(err, interfaces.ErrContentNotFound):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	resp := api.ErrorResponse{Error: err.Error()}
	if status == http.StatusInternalServerError {
		resp.Error = "internal server error"
	}

	var sskrErr sskr.Error
	if errors.As(err, &sskrErr) {
		resp.Code = sskrErr.Code()
	}
	writeJSON(w, status, resp)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest(errors.New("invalid request body: " + err.Error()))
	}
	return nil
}
