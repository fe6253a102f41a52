package jira

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error codes.
const (
	CodeAuth       = "auth_required"
	CodeNotFound   = "not_found"
	CodeValidation = "validation"
	CodeRateLimit  = "rate_limit"
	CodeAPI        = "api_error"
	CodeNetwork    = "network"
)

// Exit codes used by the CLI.
const (
	ExitOK         = 0
	ExitUsage      = 1
	ExitNotFound   = 2
	ExitAuth       = 3
	ExitValidation = 4
	ExitRateLimit  = 5
	ExitNetwork    = 6
	ExitAPI        = 7
)

// Error is returned for every failed Jira call. Transport failures carry
// CodeNetwork and are never mixed up with responses the server sent.
type Error struct {
	Code       string
	Message    string
	HTTPStatus int
	Retryable  bool
	Fields     map[string]string
	Cause      error
}

func (e *Error) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("jira %s (%d): %s", e.Code, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("jira %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

type errorBody struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
	Message       string            `json:"message"`
}

func errorFromResponse(status int, body []byte) *Error {
	e := &Error{HTTPStatus: status, Message: serverMessage(status, body)}

	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && len(eb.Errors) > 0 {
		e.Fields = eb.Errors
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Code = CodeAuth
	case status == http.StatusNotFound:
		e.Code = CodeNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e.Code = CodeValidation
	case status == http.StatusTooManyRequests:
		e.Code = CodeRateLimit
		e.Retryable = true
	default:
		e.Code = CodeAPI
		e.Retryable = status >= 500
	}
	return e
}

// serverMessage picks the most human-readable text out of a Jira error body.
func serverMessage(status int, body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		for _, m := range eb.ErrorMessages {
			if strings.TrimSpace(m) != "" {
				return m
			}
		}
		if len(eb.Errors) > 0 {
			keys := make([]string, 0, len(eb.Errors))
			for k := range eb.Errors {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, 0, len(keys))
			for _, k := range keys {
				parts = append(parts, k+": "+eb.Errors[k])
			}
			return strings.Join(parts, "; ")
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return http.StatusText(status)
}

func validationError(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

func networkError(err error) *Error {
	return &Error{Code: CodeNetwork, Message: err.Error(), Retryable: true, Cause: err}
}

// CodeOf returns the error code of a *Error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsAuth(err error) bool       { return CodeOf(err) == CodeAuth }
func IsNotFound(err error) bool   { return CodeOf(err) == CodeNotFound }
func IsValidation(err error) bool { return CodeOf(err) == CodeValidation }
func IsRateLimit(err error) bool  { return CodeOf(err) == CodeRateLimit }
func IsNetwork(err error) bool    { return CodeOf(err) == CodeNetwork }

// ExitCodeFor maps an error to a process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	switch CodeOf(err) {
	case CodeNotFound:
		return ExitNotFound
	case CodeAuth:
		return ExitAuth
	case CodeValidation:
		return ExitValidation
	case CodeRateLimit:
		return ExitRateLimit
	case CodeNetwork:
		return ExitNetwork
	case CodeAPI:
		return ExitAPI
	default:
		return ExitUsage
	}
}
