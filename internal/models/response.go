package models

// APIResponse is the uniform envelope returned by every endpoint.
// Successful responses carry Data; failures carry Message and, for
// validation failures, the per-field Errors list.
type APIResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	Error   string       `json:"error,omitempty"` // internal detail, non-production only
}

// OK wraps data in a success envelope.
func OK(data interface{}) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// OKWithMessage wraps data in a success envelope with a human message.
func OKWithMessage(message string, data interface{}) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data}
}

// Fail builds a failure envelope with a human message.
func Fail(message string) APIResponse {
	return APIResponse{Success: false, Message: message}
}
