package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"

	"github.com/MrSnakeDoc/reel/internal/apperr"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/supabase"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}

// writeError maps err onto a status code. Unknown errors are logged and
// reported as 500 without their message.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err))
		writeMessage(w, r, status, http.StatusText(status))
		return
	}

	resp := errorResponse{Error: err.Error()}
	var apiErr *supabase.APIError
	if errors.As(err, &apiErr) {
		resp.Error = apiErr.Message
		resp.Code = apiErr.Code
	}
	writeJSON(w, r, status, resp)
}

func statusFor(err error) int {
	var (
		reqErr *apperr.RequestError
		apiErr *supabase.APIError
	)
	switch {
	case errors.Is(err, apperr.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrConfiguration):
		return http.StatusServiceUnavailable
	case errors.As(err, &reqErr):
		return catalogStatus(reqErr.StatusCode)
	case errors.As(err, &apiErr):
		return upstreamStatus(apiErr.StatusCode)
	case errors.Is(err, apperr.ErrRemoteTransport), errors.Is(err, apperr.ErrRemoteOperation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// upstreamStatus passes client errors through and folds server errors
// into 502.
func upstreamStatus(code int) int {
	if code >= 400 && code < 500 {
		return code
	}
	return http.StatusBadGateway
}

// catalogStatus is upstreamStatus for the catalog API. Its 401 and 403
// mean the server's own token was refused, which is not the caller's fault.
func catalogStatus(code int) int {
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return http.StatusBadGateway
	}
	return upstreamStatus(code)
}

// decodeBody reads an optional JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := render.DecodeJSON(io.LimitReader(r.Body, 1<<20), v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.InvalidArgument("malformed JSON body: %v", err)
	}
	return nil
}
