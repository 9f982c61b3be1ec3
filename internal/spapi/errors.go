package spapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// DefaultErrorCode labels vendor failures that carry no code of their own.
const DefaultErrorCode = "SP_API_ERROR"

// Error is a non-2xx answer from SP-API or LWA.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	// Details is the decoded response body, when there was one.
	Details interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("sp-api %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// newError decodes the SP-API error envelope, falling back to the raw body.
func newError(status int, body []byte) *Error {
	e := &Error{
		StatusCode: status,
		Code:       DefaultErrorCode,
		Message:    http.StatusText(status),
	}

	var envelope struct {
		Errors []APIError `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		first := envelope.Errors[0]
		if first.Code != "" {
			e.Code = first.Code
		}
		if first.Message != "" {
			e.Message = first.Message
		}
		e.Details = envelope.Errors
		return e
	}

	if len(body) > 0 {
		var decoded interface{}
		if err := json.Unmarshal(body, &decoded); err == nil {
			e.Details = decoded
		} else {
			e.Details = string(body)
		}
	}
	return e
}
