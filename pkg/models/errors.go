package models

import (
	"errors"
	"net/http"
)

// ErrorCode identifies a classified failure surfaced to callers.
type ErrorCode string

const (
	CodeRunwareTemporary ErrorCode = "RUNWARE_TEMPORARY"
	CodeRunwareBadInput  ErrorCode = "RUNWARE_BAD_INPUT"
	CodeRunwareQuota     ErrorCode = "RUNWARE_QUOTA"
	CodeDailyCap         ErrorCode = "DAILY_CAP"
	CodeRateLimited      ErrorCode = "RATE_LIMITED"
	CodeBotCheckFailed   ErrorCode = "BOT_CHECK_FAILED"
	CodeEmailTemporary   ErrorCode = "EMAIL_TEMPORARY"
	CodeEmailBlocked     ErrorCode = "EMAIL_BLOCKED"
	CodeUnknown          ErrorCode = "UNKNOWN_ERROR"
)

var errorCodeToHTTPStatus = map[ErrorCode]int{
	CodeRunwareTemporary: http.StatusServiceUnavailable,
	CodeRunwareBadInput:  http.StatusBadRequest,
	CodeRunwareQuota:     http.StatusPaymentRequired,
	CodeDailyCap:         http.StatusTooManyRequests,
	CodeRateLimited:      http.StatusTooManyRequests,
	CodeBotCheckFailed:   http.StatusForbidden,
	CodeEmailTemporary:   http.StatusServiceUnavailable,
	CodeEmailBlocked:     http.StatusBadRequest,
	CodeUnknown:          http.StatusInternalServerError,
}

// DomainError is a classified error with a stable code and an HTTP mapping.
type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string { return string(e.Code) + ": " + e.Message }

// HTTPStatus returns the HTTP status the code maps to.
func (e *DomainError) HTTPStatus() int {
	if s, ok := errorCodeToHTTPStatus[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// JobError converts the error to the form recorded on a job.
func (e *DomainError) JobError() *JobError {
	return &JobError{Code: e.Code, Message: e.Message}
}

// NewDomainError constructs a DomainError with the given code and message.
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// AsDomainError extracts a DomainError from err's chain. Unclassified errors
// are normalized to UNKNOWN_ERROR.
func AsDomainError(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return &DomainError{Code: CodeUnknown, Message: "Generation failed"}
}
