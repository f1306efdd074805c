package types

import "net/http"

// ErrorResponse is the JSON error body returned for every failed request.
type ErrorResponse struct {
	// Error contains the error details.
	Error ErrorDetail `json:"error"`

	// Status overrides the HTTP status derived from the error type.
	Status int `json:"-"`
}

// ErrorDetail contains detailed error information.
type ErrorDetail struct {
	// Message is a human-readable error message.
	Message string `json:"message"`

	// Type categorizes the error.
	Type string `json:"type"`

	// Param is the request field that caused the error, if any.
	// For proxy names this is a document path such as "proxies[3].name".
	Param string `json:"param,omitempty"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`
}

// Error types.
const (
	// ErrorTypeInvalidRequest indicates a client-side error (400, 413, 415, 422).
	ErrorTypeInvalidRequest = "invalid_request_error"

	// ErrorTypeNotFound indicates an unknown route (404).
	ErrorTypeNotFound = "not_found"

	// ErrorTypeMethodNotAllowed indicates an unsupported HTTP method (405).
	ErrorTypeMethodNotAllowed = "method_not_allowed"

	// ErrorTypeServerError indicates an internal server error (500).
	ErrorTypeServerError = "server_error"

	// ErrorTypeServiceUnavailable indicates the rule set is not loaded yet (503).
	ErrorTypeServiceUnavailable = "service_unavailable"

	// ErrorTypeGatewayTimeout indicates the request exceeded its deadline (504).
	ErrorTypeGatewayTimeout = "gateway_timeout"
)

// Error codes.
const (
	CodeMissingField       = "missing_field"
	CodeInvalidValue       = "invalid_value"
	CodeInvalidJSON        = "invalid_json"
	CodeInvalidYAML        = "invalid_yaml"
	CodeInvalidDocument    = "invalid_document"
	CodeInvalidProxyName   = "invalid_proxy_name"
	CodeUnsupportedMedia   = "unsupported_media_type"
	CodeRequestTooLarge    = "request_too_large"
	CodeRulesetUnavailable = "ruleset_unavailable"
	CodeRequestTimeout     = "request_timeout"
	CodeInternalError      = "internal_error"
)

// NewErrorResponse creates an error response with the given details.
func NewErrorResponse(message, errorType, param, code string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errorType,
			Param:   param,
			Code:    code,
		},
	}
}

// WithStatus sets an explicit HTTP status and returns e.
func (e *ErrorResponse) WithStatus(status int) *ErrorResponse {
	e.Status = status
	return e
}

// NewInvalidRequestError creates an error response for invalid requests (400).
func NewInvalidRequestError(message, param, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, param, code)
}

// NewUnprocessableError creates a 422 error for a well-formed document whose
// content cannot be converted.
func NewUnprocessableError(message, param, code string) *ErrorResponse {
	return NewInvalidRequestError(message, param, code).WithStatus(http.StatusUnprocessableEntity)
}

// NewMethodNotAllowedError creates an error response for unsupported methods (405).
func NewMethodNotAllowedError(method string) *ErrorResponse {
	return NewErrorResponse("Method "+method+" not allowed", ErrorTypeMethodNotAllowed, "method", "")
}

// NewServerError creates an error response for internal server errors (500).
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServerError, "", CodeInternalError)
}

// NewServiceUnavailableError creates an error response for temporary unavailability (503).
func NewServiceUnavailableError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServiceUnavailable, "", CodeRulesetUnavailable)
}

// NewGatewayTimeoutError creates an error response for timed out requests (504).
func NewGatewayTimeoutError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeGatewayTimeout, "", CodeRequestTimeout)
}

// HTTPStatusCode returns the HTTP status for the response.
func (e *ErrorResponse) HTTPStatusCode() int {
	if e.Status != 0 {
		return e.Status
	}
	return e.Error.HTTPStatusCode()
}

// HTTPStatusCode returns the HTTP status code for the error type.
func (e *ErrorDetail) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrorTypeServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrorTypeGatewayTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
