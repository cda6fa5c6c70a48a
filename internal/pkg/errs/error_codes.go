/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Messaging Business Logic Errors
const (
	// ErrMessageInvalid indicates an inbound chat frame is missing its recipient or message body.
	ErrMessageInvalid = 2101

	// ErrMessageTooLong indicates that the message body exceeded the maximum length limit.
	ErrMessageTooLong = 2102

	// ErrNoMessagesFound indicates that a history query matched no stored messages.
	ErrNoMessagesFound = 2201

	// ErrProfileNotFound indicates that no push profile is registered for the requested user.
	ErrProfileNotFound = 2301
)

// 3xxx: Session Errors
const (
	// ErrSessionReplaced indicates that the current connection was displaced by a newer
	// connection carrying the same user identifier.
	ErrSessionReplaced = 3001
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrPersistenceFailed indicates that the durable message store rejected a write.
	ErrPersistenceFailed = 5001

	// ErrArchiveFailed indicates that a transcript export to object storage failed.
	ErrArchiveFailed = 5002
)
