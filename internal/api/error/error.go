// Package error defines the JSON error body returned by every handler.
package error

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type Error struct {
	Status  int       `json:"status"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	ErrorID string    `json:"error_id"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func New(code ErrorCode, message, errorID string) *Error {
	status := code.StatusCode()
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &Error{
		Status:  status,
		Code:    code,
		Message: message,
		ErrorID: errorID,
	}
}

// EncodeError writes the error body with the status mapped from code.
func EncodeError(w http.ResponseWriter, code ErrorCode, message, errorID string) error {
	body := New(code, message, errorID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.Status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		return fmt.Errorf("encoding error body: %w", err)
	}
	return nil
}

func EncodeInternalError(w http.ResponseWriter, errorID string) error {
	return EncodeError(w, InternalServerError, "internal server error", errorID)
}
