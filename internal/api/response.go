package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"mindreel/relevance/internal/logging"
	"mindreel/relevance/internal/model/domain"
	"mindreel/relevance/internal/validation"
)

// Response is the envelope of every API reply.
type Response struct {
	Status   string   `json:"status"`
	Data     any      `json:"data"`
	Error    *Error   `json:"error,omitempty"`
	Metadata Metadata `json:"metadata"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

const codeInternal = "INTERNAL_ERROR"

func metadata(r *http.Request) Metadata {
	return Metadata{
		Timestamp: time.Now().UTC(),
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
}

func respondJSON(w http.ResponseWriter, status int, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("write response")
	}
}

func respondData(w http.ResponseWriter, r *http.Request, data any) {
	respondJSON(w, http.StatusOK, &Response{
		Status:   "success",
		Data:     data,
		Metadata: metadata(r),
	})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	respondJSON(w, status, &Response{
		Status:   "error",
		Error:    &Error{Code: code, Message: message, Details: details},
		Metadata: metadata(r),
	})
}

// respondFailure maps err to a status code and logs server-side failures.
func respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		respondError(w, r, http.StatusBadRequest, domain.CodeInvalidInput, verr.Error(), verr.Fields)
		return
	}

	status := statusFor(err)
	code := domain.CodeOf(err)
	message := err.Error()

	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		if code == "" {
			code = codeInternal
		}
		message = http.StatusText(status)
	}
	respondError(w, r, status, code, message, nil)
}

func statusFor(err error) int {
	switch domain.CodeOf(err) {
	case domain.CodeInvalidInput, domain.CodeUnknownFamily, domain.CodeUnknownEntityKind:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeRateLimited:
		return http.StatusTooManyRequests
	case domain.CodeStorage:
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
