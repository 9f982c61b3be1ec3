package pricing

import (
	"errors"

	"github.com/aws/smithy-go"

	"github.com/imrishuroy/skincare-pricing-gateway/internal/spapi"
)

// UnknownErrorCode labels batch failures with no vendor code.
const UnknownErrorCode = "UNKNOWN_ERROR"

// ErrorCode extracts the vendor code of err, or returns fallback.
func ErrorCode(err error, fallback string) string {
	var spErr *spapi.Error
	if errors.As(err, &spErr) && spErr.Code != "" {
		return spErr.Code
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() != "" {
		return apiErr.ErrorCode()
	}
	return fallback
}

// ErrorMessage prefers the vendor's own message over the wrapped chain.
func ErrorMessage(err error) string {
	var spErr *spapi.Error
	if errors.As(err, &spErr) && spErr.Message != "" {
		return spErr.Message
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorMessage() != "" {
		return apiErr.ErrorMessage()
	}
	return err.Error()
}

// ErrorDetails returns the decoded vendor body attached to err, if any.
func ErrorDetails(err error) interface{} {
	var spErr *spapi.Error
	if errors.As(err, &spErr) {
		return spErr.Details
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorFault().String()
	}
	return nil
}

func newItemError(asin string, err error) *ItemError {
	return &ItemError{
		ASIN:    asin,
		Message: ErrorMessage(err),
		Code:    ErrorCode(err, spapi.DefaultErrorCode),
		Details: ErrorDetails(err),
	}
}
