package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Mempool feed
	CodeMempoolFetchFailed:  "Failed to fetch mempool blocks",
	CodeMempoolBadStatus:    "Mempool API returned an error status",
	CodeMempoolDecodeFailed: "Failed to decode mempool payload",
	CodeMempoolNoData:       "Mempool API returned no blocks",
	CodeMalformedBlock:      "Mempool block is malformed",

	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketReconnecting:    "WebSocket reconnecting",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",
	CodeSubscribeFailed:          "Failed to subscribe to mempool topics",

	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",

	// Overlay
	CodeOriginNotFound:   "Origin element not found",
	CodeEngineLoadFailed: "Animation engine failed to load",
	CodeRenderFailed:     "Overlay render failed",
}
