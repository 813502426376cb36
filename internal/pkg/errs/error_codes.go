/*
Package errs provides the coded application errors shared by the HTTP API
and the websocket protocol.
*/
package errs

// 1xxx: request and message format
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that a request body is not valid JSON.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing data after the JSON body.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates the caller exceeded its request rate.
	ErrRateLimitExceeded = 1007

	// ErrMalformedMessage indicates a websocket frame that could not be decoded.
	ErrMalformedMessage = 1101

	// ErrUnsupportedMessageType indicates a websocket envelope with an unknown or client-forbidden type.
	ErrUnsupportedMessageType = 1102
)

// 2xxx: rooms and shapes
const (
	// ErrRoomNotFound indicates the referenced room does not exist.
	ErrRoomNotFound = 2103

	// ErrRoomNotJoined indicates an edit for a room the connection has not joined.
	ErrRoomNotJoined = 2105

	// ErrShapeInvalid indicates a shape that failed to decode or validate.
	ErrShapeInvalid = 2201

	// ErrShapeNotFound indicates an update or delete target that does not exist in the room.
	ErrShapeNotFound = 2202
)

// 3xxx: identity
const (
	// ErrUnauthorized indicates a missing identity token.
	ErrUnauthorized = 3001

	// ErrInvalidToken indicates an identity token that failed verification.
	ErrInvalidToken = 3002
)

// 5xxx: internal
const (
	// ErrUnknown is an unclassified internal error.
	ErrUnknown = 5000

	// ErrPersistenceFailed indicates the store rejected or failed a write.
	ErrPersistenceFailed = 5001

	// ErrExportUnavailable indicates export storage is not configured.
	ErrExportUnavailable = 5002

	// ErrExportFailed indicates rendering or uploading an export failed.
	ErrExportFailed = 5003
)
