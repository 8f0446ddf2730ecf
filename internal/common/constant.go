package common

const (
	// TokenSize is the number of random bytes behind every auth_id and
	// opaque session_id (256 bits, hex encoded to 64 characters).
	TokenSize = 32

	// RequestIDHeaderName is the gRPC metadata key carrying the request id.
	RequestIDHeaderName = "x-request-id"
)
