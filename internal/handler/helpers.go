package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"meshwork/internal/domain"
	"meshwork/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	status := domain.StatusCode(err)
	if status == http.StatusInternalServerError {
		slog.Error("unexpected error", "error", err)
		httputil.RespondError(w, status, "internal server error")
		return
	}
	httputil.RespondError(w, status, err.Error())
}

// handleBodyError reports a request body that could not be decoded
func handleBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
	default:
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	}
}

// requireUser returns the authenticated user id, answering 401 when absent
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}

// pathID parses a positive integer path parameter, answering 400 otherwise
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		httputil.RespondError(w, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// queryID reads an optional positive integer query parameter, answering 400 when malformed
func queryID(w http.ResponseWriter, r *http.Request, name string) (*int64, bool) {
	id, err := httputil.QueryInt64(r, name)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return id, true
}
