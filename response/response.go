// Package response shapes every API reply into the standard envelope:
// successes as {statusCode, data, message, success:true} and failures as the
// apperror envelope. Handlers never write JSON on their own.
package response

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/user/streamtube-go/apperror"
)

// Envelope is the success payload wrapper.
type Envelope struct {
	StatusCode int    `json:"statusCode" example:"200"`
	Data       any    `json:"data"`
	Message    string `json:"message" example:"ok"`
	Success    bool   `json:"success" example:"true"`
}

// JSON writes data wrapped in the success envelope with the given status.
func JSON(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// Error translates any error into the standard error envelope. Errors that
// are not *AppError are wrapped as a generic internal error so nothing
// unexpected leaks to the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	if appErr.StatusCode() >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, appErr.StatusCode(), appErr.ToResponse())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
