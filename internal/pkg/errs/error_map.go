package errs

import "net/http"

// errorMap holds the user-facing message and HTTP status for every code.
// A zero Status is reported as 200, matching the response envelope's
// convention of signalling failures through the code field.
var errorMap = map[int]CustomError{
	ErrInvalidParams:          {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:   {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:      {Code: ErrInvalidJSONFormat, Message: "Malformed JSON body.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:     {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:      {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrMalformedMessage:       {Code: ErrMalformedMessage, Message: "Malformed message: %v"},
	ErrUnsupportedMessageType: {Code: ErrUnsupportedMessageType, Message: "Unsupported message type %q."},

	ErrRoomNotFound:  {Code: ErrRoomNotFound, Message: "Room not found.", Status: http.StatusNotFound},
	ErrRoomNotJoined: {Code: ErrRoomNotJoined, Message: "Join room %d before editing it."},
	ErrShapeInvalid:  {Code: ErrShapeInvalid, Message: "Invalid shape: %v"},
	ErrShapeNotFound: {Code: ErrShapeNotFound, Message: "Shape %d not found in this room."},

	ErrUnauthorized: {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrInvalidToken: {Code: ErrInvalidToken, Message: "Invalid token.", Status: http.StatusUnauthorized},

	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrPersistenceFailed: {Code: ErrPersistenceFailed, Message: "Could not save your change. Please try again.", Status: http.StatusInternalServerError},
	ErrExportUnavailable: {Code: ErrExportUnavailable, Message: "Export is not enabled on this server.", Status: http.StatusServiceUnavailable},
	ErrExportFailed:      {Code: ErrExportFailed, Message: "Export failed. Please try again.", Status: http.StatusInternalServerError},
}
