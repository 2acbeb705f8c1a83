package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Mempool feed error codes
const (
	CodeMempoolFetchFailed  Code = "MEMPOOL_FETCH_FAILED"
	CodeMempoolBadStatus    Code = "MEMPOOL_BAD_STATUS"
	CodeMempoolDecodeFailed Code = "MEMPOOL_DECODE_FAILED"
	CodeMempoolNoData       Code = "MEMPOOL_NO_DATA"
	CodeMalformedBlock      Code = "MALFORMED_BLOCK"

	// WebSocket errors
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketReconnecting    Code = "WEBSOCKET_RECONNECTING"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"
	CodeSubscribeFailed          Code = "SUBSCRIBE_FAILED"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)

// Overlay error codes
const (
	CodeOriginNotFound   Code = "ORIGIN_NOT_FOUND"
	CodeEngineLoadFailed Code = "ENGINE_LOAD_FAILED"
	CodeRenderFailed     Code = "RENDER_FAILED"
)
