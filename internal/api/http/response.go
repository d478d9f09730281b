package http

import (
	"encoding/json"
	"errors"
	"net/http"

	carsharegrpc "carshare-escrow/internal/api/grpc"
	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/logger"

	"google.golang.org/grpc/codes"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := APIResponse{Success: status >= 200 && status < 300, Data: data}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := APIResponse{Error: &APIError{Code: code, Message: message}}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

var codeStatus = map[codes.Code]int{
	codes.NotFound:           http.StatusNotFound,
	codes.AlreadyExists:      http.StatusConflict,
	codes.PermissionDenied:   http.StatusForbidden,
	codes.InvalidArgument:    http.StatusBadRequest,
	codes.FailedPrecondition: http.StatusConflict,
}

// writeServiceError reports an engine error. Rejections carry their kind as
// the error code.
func writeServiceError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	if kind == "" {
		logger.Error("Internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
		return
	}
	status, ok := codeStatus[carsharegrpc.CodeForKind(kind)]
	if !ok {
		status = http.StatusConflict
	}
	if errors.Is(err, domain.ErrInvalidPrincipal) {
		status = http.StatusBadRequest
	}
	writeError(w, status, kind, err.Error())
}
