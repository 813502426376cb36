/*
Package resp writes the standard JSON response envelope {code, message, data}.
A zero code means success; any other code comes from the errs package.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"drawify/internal/pkg/errs"
	"drawify/internal/pkg/logx"
)

// JSONResponse is the envelope of every API response.
type JSONResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// RespondJSON writes payload as JSON with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "failed to encode JSON response", "http_status", httpStatus, "uri", r.RequestURI)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(httpStatus)
	_, _ = w.Write(body)
}

// RespondSuccess writes a 200 envelope around data.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, JSONResponse{Code: 0, Message: "success", Data: data})
}

// RespondError writes customErr with its HTTP status. A nil error becomes ErrUnknown.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}
	RespondJSON(w, r, customErr.Status, JSONResponse{Code: customErr.Code, Message: customErr.Message})
}
